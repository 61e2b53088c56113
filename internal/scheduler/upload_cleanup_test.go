package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/cardbox/internal/config"
)

func writeAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	return path
}

func TestCleanupUploads(t *testing.T) {
	dir := t.TempDir()

	stale := writeAged(t, dir, "import_old.xlsx", 48*time.Hour)
	fresh := writeAged(t, dir, "import_new.xlsx", time.Minute)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	removed, err := CleanupUploads(dir, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestCleanupUploadsMissingDir(t *testing.T) {
	removed, err := CleanupUploads(filepath.Join(t.TempDir(), "nope"), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewUploadCleanupScheduler(config.Upload{
		Dir:             t.TempDir(),
		RetentionHours:  24,
		CleanupSchedule: "0 * * * *",
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestSchedulerSkipsWithoutDir(t *testing.T) {
	s := NewUploadCleanupScheduler(config.Upload{CleanupSchedule: "0 * * * *"})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewUploadCleanupScheduler(config.Upload{
		Dir:             t.TempDir(),
		CleanupSchedule: "not a schedule",
	})

	assert.Error(t, s.Start(context.Background()))
}

func TestSchedulerRestartOutlivesOldContext(t *testing.T) {
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	s := NewUploadCleanupScheduler(config.Upload{
		Dir:             t.TempDir(),
		RetentionHours:  24,
		CleanupSchedule: "0 * * * *",
	})
	require.NoError(t, s.Start(firstCtx))
	s.Stop()

	require.NoError(t, s.Start(context.Background()))

	// Cancelling the context of the stopped run must not affect the new one
	cancelFirst()
	assert.Never(t, func() bool { return !s.IsRunning() }, 200*time.Millisecond, 20*time.Millisecond)

	s.Stop()
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := NewUploadCleanupScheduler(config.Upload{
		Dir:             t.TempDir(),
		RetentionHours:  24,
		CleanupSchedule: "0 * * * *",
	})
	require.NoError(t, s.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
