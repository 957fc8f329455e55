package archive

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// cacheKey identifies one folder lookup: a segment name under a specific
// parent. An empty parent means the store's default root.
type cacheKey struct {
	parentID string
	name     string
}

// containerResolver resolves ordered folder paths to container ids, creating
// missing folders on the way down. Resolved ids are cached for the life of
// the resolver and never evicted, so a given (parent, name) pair hits the
// remote store at most once per process.
//
// The mutex covers the whole lookup-or-create of a segment: two goroutines
// resolving the same unseen path must not both miss the cache and both
// create the folder. Two independent processes can still race and leave
// duplicate folders behind; the store enforces no name uniqueness, and this
// subsystem does not try to compensate.
type containerResolver struct {
	log   logrus.FieldLogger
	store Store

	mu    sync.Mutex
	cache map[cacheKey]string
}

func newContainerResolver(log logrus.FieldLogger, store Store) *containerResolver {
	return &containerResolver{
		log:   log,
		store: store,
		cache: make(map[cacheKey]string),
	}
}

// Resolve walks the path segments left to right starting from rootID
// (empty for the store default) and returns the id of the final segment's
// container.
func (r *containerResolver) Resolve(ctx context.Context, rootID string, path ...string) (string, error) {
	parentID := rootID

	for _, name := range path {
		id, err := r.resolveSegment(ctx, parentID, name)
		if err != nil {
			return "", err
		}

		parentID = id
	}

	return parentID, nil
}

func (r *containerResolver) resolveSegment(ctx context.Context, parentID, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cacheKey{parentID: parentID, name: name}
	if id, ok := r.cache[key]; ok {
		return id, nil
	}

	id, found, err := r.store.FindContainer(ctx, name, parentID)
	if err != nil {
		return "", fmt.Errorf("looking up folder %q: %w", name, err)
	}

	if found {
		r.log.WithFields(logrus.Fields{
			"folder": name,
			"id":     id,
		}).Debug("Found existing folder")
	} else {
		id, err = r.store.CreateContainer(ctx, name, parentID)
		if err != nil {
			return "", fmt.Errorf("creating folder %q: %w", name, err)
		}

		r.log.WithFields(logrus.Fields{
			"folder": name,
			"id":     id,
		}).Info("Created folder")
	}

	r.cache[key] = id

	return id, nil
}
