package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const jsonContentType = "application/json"

// uploadExecutor uploads one file into a resolved folder with bounded retry.
// Only transient remote failures are retried; a permanent or authorization
// failure aborts immediately. The observed source behavior has no delay
// between attempts, and that is preserved here.
type uploadExecutor struct {
	log         logrus.FieldLogger
	store       Store
	maxAttempts int
}

// Upload performs up to maxAttempts upload attempts for the file at path
// into the folder folderID. On success the returned attempt count reflects
// how many attempts were needed. The file is reopened per attempt so each
// attempt streams from the start.
func (e *uploadExecutor) Upload(ctx context.Context, path, folderID string) (Artifact, int, error) {
	name := filepath.Base(path)

	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		artifact, err := e.uploadOnce(ctx, path, name, folderID)
		if err == nil {
			e.log.WithFields(logrus.Fields{
				"file":     name,
				"id":       artifact.ID,
				"attempts": attempt,
			}).Info("Uploaded file")

			return artifact, attempt, nil
		}

		if !IsTransient(err) {
			return Artifact{}, attempt, err
		}

		lastErr = err

		if attempt < e.maxAttempts {
			e.log.WithError(err).WithFields(logrus.Fields{
				"file":    name,
				"attempt": attempt,
			}).Warn("Upload attempt failed, retrying")
		}
	}

	return Artifact{}, e.maxAttempts, &UploadError{
		Name:     name,
		Attempts: e.maxAttempts,
		Err:      lastErr,
	}
}

func (e *uploadExecutor) uploadOnce(ctx context.Context, path, name, folderID string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, &LocalFileError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	artifact, err := e.store.CreateArtifact(ctx, name, folderID, f, jsonContentType)
	if err != nil {
		return Artifact{}, fmt.Errorf("creating artifact %s: %w", name, err)
	}

	return artifact, nil
}
