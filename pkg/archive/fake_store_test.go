package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// fakeStore is a deterministic in-memory Store. It counts remote calls so
// tests can assert cache behavior, and serves scripted errors from queues
// to exercise retry classification.
type fakeStore struct {
	mu sync.Mutex

	folders   []fakeFolder
	artifacts []fakeArtifact
	nextID    int

	findCalls           int
	createFolderCalls   int
	createArtifactCalls int

	// uploadErrs is consumed one per CreateArtifact call; a nil entry (or
	// an exhausted queue) means the call succeeds.
	uploadErrs []error

	findErr error
}

type fakeFolder struct {
	id       string
	name     string
	parentID string
}

type fakeArtifact struct {
	id       string
	name     string
	parentID string
	content  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) newID(prefix string) string {
	s.nextID++

	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) FindContainer(_ context.Context, name, parentID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.findCalls++

	if s.findErr != nil {
		return "", false, s.findErr
	}

	for _, f := range s.folders {
		if f.name == name && f.parentID == parentID {
			return f.id, true, nil
		}
	}

	return "", false, nil
}

func (s *fakeStore) CreateContainer(_ context.Context, name, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createFolderCalls++

	f := fakeFolder{id: s.newID("folder"), name: name, parentID: parentID}
	s.folders = append(s.folders, f)

	return f.id, nil
}

func (s *fakeStore) CreateArtifact(_ context.Context, name, parentID string, content io.Reader, _ string) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createArtifactCalls++

	if len(s.uploadErrs) > 0 {
		err := s.uploadErrs[0]
		s.uploadErrs = s.uploadErrs[1:]

		if err != nil {
			return Artifact{}, err
		}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return Artifact{}, err
	}

	a := fakeArtifact{id: s.newID("file"), name: name, parentID: parentID, content: string(data)}
	s.artifacts = append(s.artifacts, a)

	return Artifact{ID: a.id, Name: a.name, ViewLink: "https://fake/" + a.id}, nil
}

func (s *fakeStore) remoteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findCalls + s.createFolderCalls + s.createArtifactCalls
}

func (s *fakeStore) artifactParents() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	parents := make(map[string]string, len(s.artifacts))
	for _, a := range s.artifacts {
		parents[a.name] = a.parentID
	}

	return parents
}

func transientErr(msg string) error {
	return &RemoteError{Kind: KindTransient, Op: "create_artifact", Err: errors.New(msg)}
}

func permanentErr(msg string) error {
	return &RemoteError{Kind: KindPermanent, Op: "create_artifact", Err: errors.New(msg)}
}
