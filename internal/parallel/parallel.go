// Package parallel splits index ranges across a bounded set of goroutines.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/im2col/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of goroutines running at once.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4,
	}
}

// FromEnv returns DefaultConfig adjusted by IM2COL_WORKERS and IM2COL_SEQUENTIAL.
func FromEnv() Config {
	cfg := DefaultConfig()
	if n := envconfig.Workers(); n > 0 {
		cfg.NumWorkers = int(n)
		cfg.Enabled = n > 1
	}
	if envconfig.Sequential() {
		cfg.Enabled = false
	}
	return cfg
}

// Sequential reports whether ForRange would run n items on the calling goroutine.
func (cfg Config) Sequential(n int) bool {
	return !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*max(cfg.MinChunkSize, 1)
}

// ForRange splits [0, n) into contiguous chunks and calls f(start, end) once
// per chunk, on at most cfg.NumWorkers goroutines at a time. It runs f(0, n)
// on the calling goroutine if parallelism is disabled or n is too small.
// Chunks may run concurrently, so f must only write state owned by its range.
func ForRange(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if cfg.Sequential(n) {
		f(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			f(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
