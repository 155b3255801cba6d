package doctoolkit

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Sweep defaults.
const (
	DefaultRetention     = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Sweeper periodically deletes scratch entries older than the retention
// window. It is the safety net for files a CleanupSet never released, for
// example after a crash.
type Sweeper struct {
	dirs      []string
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
}

// NewSweeper sweeps the uploads and outputs directories of scratch.
// Non-positive durations select the defaults.
func NewSweeper(scratch *Scratch, retention, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		dirs:      []string{scratch.Uploads(), scratch.Outputs()},
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// SweepOnce removes every direct child of the scratch directories whose
// modification time is older than now minus the retention window. A
// directory's age is that of the newest entry inside it, so a work
// directory still being written to is kept.
// Entries that disappear during the sweep are skipped. Returns the number
// of entries removed.
func (s *Sweeper) SweepOnce(now time.Time) int {
	cutoff := now.Add(-s.retention)
	removed := 0

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("sweep: listing failed")
			continue
		}

		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				// Released by its request between ReadDir and Info.
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if !lastModified(path, info).Before(cutoff) {
				continue
			}

			if err := os.RemoveAll(path); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					s.logger.Warn().Err(err).Str("path", path).Msg("sweep: removal failed")
				}
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("sweep completed")
	}
	return removed
}

// Run sweeps once immediately, then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.SweepOnce(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.SweepOnce(now)
		}
	}
}

// lastModified returns the newest modification time at or below path.
func lastModified(path string, info fs.FileInfo) time.Time {
	newest := info.ModTime()
	if !info.IsDir() {
		return newest
	}
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			// Vanished mid-walk; judge by what was seen.
			return nil
		}
		if fi, err := d.Info(); err == nil && fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
		return nil
	})
	return newest
}
