package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/cardbox/internal/config"
)

// UploadCleanupScheduler periodically removes stale spreadsheet uploads.
// Files survive between the preview and confirm steps of an import, so
// anything older than the retention window is an abandoned upload.
type UploadCleanupScheduler struct {
	cfg config.Upload

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewUploadCleanupScheduler creates a new scheduler instance
func NewUploadCleanupScheduler(cfg config.Upload) *UploadCleanupScheduler {
	return &UploadCleanupScheduler{
		cfg:  cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler
func (s *UploadCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.cfg.Dir == "" {
		log.Printf("Upload cleanup scheduler: upload directory not configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
		s.runCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Upload cleanup scheduler: started with schedule '%s', retention %dh",
		s.cfg.CleanupSchedule, s.cfg.RetentionHours)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *UploadCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	// Release the context monitor goroutine as well
	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Upload cleanup scheduler: stopped")
}

// RunNow triggers an immediate cleanup
func (s *UploadCleanupScheduler) RunNow() {
	go s.runCleanup()
}

// IsRunning returns whether the scheduler is active
func (s *UploadCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur
func (s *UploadCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runCleanup removes uploads older than the retention window.
func (s *UploadCleanupScheduler) runCleanup() {
	removed, err := CleanupUploads(s.cfg.Dir, time.Duration(s.cfg.RetentionHours)*time.Hour)
	if err != nil {
		log.Printf("Upload cleanup: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Upload cleanup: removed %d stale file(s) from %s", removed, s.cfg.Dir)
	}
}

// CleanupUploads deletes regular files in dir whose modification time is
// older than retention. Returns how many files were removed.
func CleanupUploads(dir string, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("Upload cleanup: failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}
