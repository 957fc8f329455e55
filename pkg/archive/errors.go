package archive

import (
	"errors"
	"fmt"
)

// FailureKind classifies a remote failure for retry purposes.
type FailureKind int

const (
	// KindTransient marks failures expected to succeed on an unmodified
	// retry: throttling, timeouts, server-side faults.
	KindTransient FailureKind = iota

	// KindPermanent marks failures that will not succeed on retry without
	// changing inputs: malformed requests, definitive quota denial.
	KindPermanent

	// KindAuth marks credential rejection by the remote store.
	KindAuth
)

func (k FailureKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindAuth:
		return "authorization"
	default:
		return "unknown"
	}
}

// RemoteError is a classified failure from the remote store.
type RemoteError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// UploadError reports an upload that exhausted its retry budget. It carries
// the last error observed and the number of attempts performed.
type UploadError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading %s failed after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// LocalFileError reports an input file that could not be read locally.
type LocalFileError struct {
	Path string
	Err  error
}

func (e *LocalFileError) Error() string {
	return fmt.Sprintf("local file %s: %v", e.Path, e.Err)
}

func (e *LocalFileError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a remote failure worth retrying.
func IsTransient(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindTransient
}

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == KindAuth
}
