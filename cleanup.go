package doctoolkit

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// CleanupSet collects every transient path a request creates.
// Release deletes them all and runs at most once; later calls are no-ops.
type CleanupSet struct {
	mu     sync.Mutex
	paths  []string
	once   sync.Once
	logger zerolog.Logger
}

// NewCleanupSet returns an empty set that logs deletion failures to logger.
func NewCleanupSet(logger zerolog.Logger) *CleanupSet {
	return &CleanupSet{logger: logger}
}

// Add registers paths for deletion. Empty strings are ignored.
func (c *CleanupSet) Add(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range paths {
		if p != "" {
			c.paths = append(c.paths, p)
		}
	}
}

// Paths returns a copy of the registered paths in insertion order.
func (c *CleanupSet) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

// Release deletes every registered path. Missing paths are not an error and
// a failure on one path does not stop the others. Failures are logged only.
func (c *CleanupSet) Release() {
	c.once.Do(func() {
		for _, p := range c.Paths() {
			if err := os.RemoveAll(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn().Err(err).Str("path", p).Msg("cleanup failed")
			}
		}
	})
}
