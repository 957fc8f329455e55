package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestExecutor_SucceedsFirstAttempt(t *testing.T) {
	store := newFakeStore()
	exec := &uploadExecutor{log: testLogger(), store: store, maxAttempts: 3}

	path := writeTempFile(t, "251025_161234_energy_price_forecast.json", `{"a":1}`)

	artifact, attempts, err := exec.Upload(context.Background(), path, "folder-1")
	require.NoError(t, err)

	assert.Equal(t, 1, attempts)
	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, 1, store.createArtifactCalls)
}

func TestExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	store := newFakeStore()
	store.uploadErrs = []error{
		transientErr("rate limited"),
		transientErr("backend error"),
	}

	exec := &uploadExecutor{log: testLogger(), store: store, maxAttempts: 3}

	path := writeTempFile(t, "251025_161234_energy_price_forecast.json", `{"a":1}`)

	artifact, attempts, err := exec.Upload(context.Background(), path, "folder-1")
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.NotEmpty(t, artifact.ID)
	assert.Equal(t, 3, store.createArtifactCalls)
}

func TestExecutor_ExhaustsAttemptsOnTransient(t *testing.T) {
	store := newFakeStore()
	store.uploadErrs = []error{
		transientErr("timeout 1"),
		transientErr("timeout 2"),
		transientErr("timeout 3"),
	}

	exec := &uploadExecutor{log: testLogger(), store: store, maxAttempts: 3}

	path := writeTempFile(t, "251025_161234_energy_price_forecast.json", `{"a":1}`)

	_, attempts, err := exec.Upload(context.Background(), path, "folder-1")
	require.Error(t, err)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, store.createArtifactCalls)

	var uploadErr *UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, 3, uploadErr.Attempts)
	assert.ErrorContains(t, uploadErr.Err, "timeout 3")
}

func TestExecutor_PermanentFailureNotRetried(t *testing.T) {
	store := newFakeStore()
	store.uploadErrs = []error{permanentErr("invalid request")}

	exec := &uploadExecutor{log: testLogger(), store: store, maxAttempts: 3}

	path := writeTempFile(t, "251025_161234_energy_price_forecast.json", `{"a":1}`)

	_, attempts, err := exec.Upload(context.Background(), path, "folder-1")
	require.Error(t, err)

	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, store.createArtifactCalls, "permanent failure must fail immediately")

	var uploadErr *UploadError
	assert.False(t, errors.As(err, &uploadErr), "permanent failure is not an exhaustion error")
}

func TestExecutor_MissingLocalFile(t *testing.T) {
	store := newFakeStore()
	exec := &uploadExecutor{log: testLogger(), store: store, maxAttempts: 3}

	_, _, err := exec.Upload(context.Background(), "/nonexistent/file.json", "folder-1")
	require.Error(t, err)

	var localErr *LocalFileError
	assert.ErrorAs(t, err, &localErr)
	assert.Zero(t, store.createArtifactCalls)
}
