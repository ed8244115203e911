package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ScratchService owns the local scratch directory: it provisions the
// directory at startup and sweeps files leaked by crashed pipeline runs.
type ScratchService struct {
	dir        string
	maxAge     time.Duration
	logService LogWriter
}

func NewScratchService(dir string, maxAge time.Duration, logService LogWriter) (*ScratchService, error) {
	if dir == "" {
		return nil, errors.New("scratch dir is empty")
	}
	if maxAge <= 0 {
		return nil, errors.New("max age must be positive")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &ScratchService{dir: dir, maxAge: maxAge, logService: logService}, nil
}

func (s *ScratchService) Provision() error {
	if s == nil {
		return errors.New("scratch service is nil")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	return nil
}

// Sweep removes scratch files older than maxAge and returns how many were
// deleted. Files still inside an active pipeline run are younger than any
// sane maxAge, so they are never touched.
func (s *ScratchService) Sweep(ctx context.Context) (int, error) {
	if s == nil {
		return 0, errors.New("scratch service is nil")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		msg := fmt.Sprintf("read scratch dir: %v", err)
		_ = s.logService.CreateLog(ctx, LogActionScratchSweep, LogOutcomeFail, &msg)
		return 0, fmt.Errorf("read scratch dir: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
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

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			continue
		}
		removed++
	}

	if removed > 0 {
		msg := fmt.Sprintf("removed=%d", removed)
		_ = s.logService.CreateLog(ctx, LogActionScratchSweep, LogOutcomeSuccess, &msg)
	}

	return removed, nil
}
