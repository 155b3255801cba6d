package doctoolkit

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent PDF and image jobs; each may hold a whole
	// document in memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the office renderer and Chrome.
	cpuDivisor = 2
)

// WorkerPool bounds the number of CPU-heavy library calls running at once.
// Callers beyond the bound wait for a slot or for their context to end.
type WorkerPool struct {
	size int
	sem  *semaphore.Weighted
}

// NewWorkerPool creates a pool with n slots. n < 1 is treated as 1.
func NewWorkerPool(n int) *WorkerPool {
	if n < 1 {
		n = 1
	}
	return &WorkerPool{size: n, sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn once a slot is free. If ctx ends while waiting, fn is not run
// and ErrCanceled is returned.
func (p *WorkerPool) Do(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: waiting for worker: %v", ErrCanceled, err)
	}
	defer p.sem.Release(1)
	return fn()
}

// Size returns the pool capacity.
func (p *WorkerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
