package archive

import (
	"context"
	"io"
)

// Artifact describes a file stored remotely.
type Artifact struct {
	ID       string
	Name     string
	ViewLink string
}

// Store abstracts the remote hierarchical object store. The real
// implementation talks to Google Drive; tests substitute a deterministic
// fake. An empty parentID refers to the store's default root.
type Store interface {
	// FindContainer looks up a non-trashed container with the exact name
	// under the given parent. The found flag distinguishes "no such
	// container" (expected, triggers creation) from a remote fault.
	FindContainer(ctx context.Context, name, parentID string) (id string, found bool, err error)

	// CreateContainer creates a container with the given name under the
	// given parent and returns its id.
	CreateContainer(ctx context.Context, name, parentID string) (string, error)

	// CreateArtifact uploads content as a named artifact under the given
	// parent container.
	CreateArtifact(ctx context.Context, name, parentID string, content io.Reader, contentType string) (Artifact, error)
}
