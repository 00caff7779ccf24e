package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically deletes recordings left behind by crashed handlers.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper for dir. schedule uses cron syntax, e.g. "@every 30m".
func NewSweeper(dir, schedule string, maxAge time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		dir:      dir,
		maxAge:   maxAge,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the sweep schedule until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		removed, err := s.Sweep()
		if err != nil {
			s.logger.Error("audio sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("stale audio removed", zap.Int("files", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}

	c.Start()
	s.logger.Info("audio sweeper started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("audio sweeper stopped")

	return nil
}

// Sweep removes downloaded files older than maxAge and returns how many were removed.
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read audio dir: %w", err)
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempPrefix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove stale audio", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}
