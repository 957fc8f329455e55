package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultRootFolderName is the top-level archive folder created under
	// the configured Drive parent (or My Drive when none is configured).
	DefaultRootFolderName = "energyDataHub"

	// DefaultMaxAttempts bounds upload retries for transient failures.
	DefaultMaxAttempts = 3
)

// Options configures an Archiver.
type Options struct {
	// RootFolderName is the archive root folder, created on demand.
	// Defaults to DefaultRootFolderName.
	RootFolderName string

	// RootFolderID is the remote parent the root folder lives under.
	// Empty means the store's default root.
	RootFolderID string

	// MaxAttempts bounds upload attempts per file. Defaults to
	// DefaultMaxAttempts.
	MaxAttempts int
}

// Result records the outcome of one file's archival.
type Result struct {
	Path     string
	Name     string
	Artifact Artifact
	Attempts int
	Err      error
}

// Summary aggregates a batch run. Failed files are listed by local path.
type Summary struct {
	Attempted   int
	Succeeded   int
	Failed      int
	FailedFiles []string
	Results     []Result
}

// Archiver uploads locally produced snapshot files into the remote store,
// organized as <root>/<year>/<month>/ by the timestamp encoded in each
// filename. Files whose names carry no timestamp land in the root folder.
type Archiver struct {
	log      logrus.FieldLogger
	resolver *containerResolver
	exec     *uploadExecutor
	rootName string
	rootID   string
}

// New creates an Archiver on top of the given store.
func New(log logrus.FieldLogger, store Store, opts Options) *Archiver {
	if opts.RootFolderName == "" {
		opts.RootFolderName = DefaultRootFolderName
	}

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	componentLog := log.WithField("component", "archiver")

	return &Archiver{
		log:      componentLog,
		resolver: newContainerResolver(componentLog, store),
		exec: &uploadExecutor{
			log:         componentLog,
			store:       store,
			maxAttempts: opts.MaxAttempts,
		},
		rootName: opts.RootFolderName,
		rootID:   opts.RootFolderID,
	}
}

// ResolveRoot resolves (creating if needed) the archive root folder and
// returns its id. Used by connectivity checks.
func (a *Archiver) ResolveRoot(ctx context.Context) (string, error) {
	return a.resolver.Resolve(ctx, a.rootID, a.rootName)
}

// UploadFile archives a single file and returns its result.
func (a *Archiver) UploadFile(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	result := Result{Path: path, Name: name}

	if _, err := os.Stat(path); err != nil {
		result.Err = &LocalFileError{Path: path, Err: err}

		return result
	}

	segments := []string{a.rootName}

	year, month, ok := extractArchiveDate(name)
	if ok {
		segments = append(segments, year, month)
	} else {
		a.log.WithField("file", name).Warn("No timestamp in filename, archiving to root folder")
	}

	folderID, err := a.resolver.Resolve(ctx, a.rootID, segments...)
	if err != nil {
		result.Err = fmt.Errorf("resolving folder for %s: %w", name, err)

		return result
	}

	result.Artifact, result.Attempts, result.Err = a.exec.Upload(ctx, path, folderID)

	return result
}

// UploadMany archives every file in order. A single file's failure never
// aborts the batch; each file is attempted exactly once and accounted for
// exactly once in the returned summary.
func (a *Archiver) UploadMany(ctx context.Context, paths []string) Summary {
	summary := Summary{Results: make([]Result, 0, len(paths))}

	for _, path := range paths {
		result := a.UploadFile(ctx, path)

		summary.Attempted++

		if result.Err != nil {
			summary.Failed++
			summary.FailedFiles = append(summary.FailedFiles, path)

			a.log.WithError(result.Err).WithField("file", result.Name).Error("Failed to archive file")
		} else {
			summary.Succeeded++
		}

		summary.Results = append(summary.Results, result)
	}

	a.log.WithFields(logrus.Fields{
		"attempted": summary.Attempted,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Archive run complete")

	return summary
}
