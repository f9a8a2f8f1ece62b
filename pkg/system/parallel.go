package system

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultGrainSize is the smallest chunk a Parallel system hands to a worker.
// Ranges shorter than this run as a single chunk.
const DefaultGrainSize = 4096

// Parallel runs kernels on a bounded pool of goroutines.
//
// The range [0, n) is cut into contiguous chunks of at least GrainSize
// elements, at most Workers of which run at once. The first kernel error
// cancels chunks that have not started yet and is returned from Launch.
type Parallel struct {
	workers int
	grain   int
	logger  *zap.Logger
}

// Option configures a Parallel system.
type Option func(*Parallel)

// WithWorkers sets the maximum number of concurrent chunks.
// Values <= 0 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Parallel) {
		p.workers = n
	}
}

// WithGrainSize sets the minimum chunk length. Values <= 0 are ignored.
func WithGrainSize(n int) Option {
	return func(p *Parallel) {
		if n > 0 {
			p.grain = n
		}
	}
}

// WithLogger attaches a logger for launch diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parallel) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParallel creates a Parallel system.
func NewParallel(opts ...Option) *Parallel {
	p := &Parallel{
		grain:  DefaultGrainSize,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.workers = sanitizeWorkers(p.workers)
	return p
}

// sanitizeWorkers defaults non-positive worker counts to GOMAXPROCS.
func sanitizeWorkers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Name returns "parallel".
func (p *Parallel) Name() string { return "parallel" }

// Workers returns the concurrency limit.
func (p *Parallel) Workers() int { return p.workers }

// GrainSize returns the minimum chunk length.
func (p *Parallel) GrainSize() int { return p.grain }

// Launch splits [0, n) into chunks and runs kernel on each.
func (p *Parallel) Launch(ctx context.Context, n int, kernel Kernel) error {
	if n < 0 {
		return ErrInvalidLength
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	chunk := ChunkSize(n, p.workers, p.grain)
	if chunk >= n {
		return kernel(0, n)
	}

	p.logger.Debug("parallel launch",
		zap.Int("n", n),
		zap.Int("chunk", chunk),
		zap.Int("workers", p.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return kernel(lo, hi)
		})
	}
	return g.Wait()
}

// ChunkSize returns the chunk length used to split n elements across
// workers, never smaller than grain.
func ChunkSize(n, workers, grain int) int {
	workers = sanitizeWorkers(workers)
	if grain <= 0 {
		grain = 1
	}
	chunk := (n + workers - 1) / workers
	if chunk < grain {
		chunk = grain
	}
	return chunk
}
