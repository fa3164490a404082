package notepages

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("processor pool closed")

// ProcessorPool hands out Processors for processing several documents in
// parallel. Every Processor owns its browser. Processors are created lazily
// on first acquire, all with the same options.
type ProcessorPool struct {
	size       int
	opts       []Option
	processors []*Processor
	sem        chan *Processor
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewProcessorPool creates a pool with capacity for n Processors built
// from opts. Nothing is created until the first Acquire.
func NewProcessorPool(n int, opts ...Option) *ProcessorPool {
	if n < 1 {
		n = 1
	}

	return &ProcessorPool{
		size:       n,
		opts:       opts,
		processors: make([]*Processor, 0, n),
		sem:        make(chan *Processor, n),
	}
}

// Acquire gets a Processor from the pool, creating one if capacity allows.
// Blocks if all processors are in use.
func (p *ProcessorPool) Acquire() (*Processor, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	// Try to get an idle processor (non-blocking)
	select {
	case proc, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return proc, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		proc, err := NewProcessor(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, fmt.Errorf("creating processor: %w", err)
		}

		p.mu.Lock()
		p.processors = append(p.processors, proc)
		p.mu.Unlock()

		return proc, nil
	}
	p.mu.Unlock()

	// All processors created, wait for one to be released
	proc, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return proc, nil
}

// Release returns a processor to the pool. Releasing after Close is a no-op.
func (p *ProcessorPool) Release(proc *Processor) {
	if proc == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	// Capacity equals the number of processors, so this never blocks
	// unless a processor is released twice.
	select {
	case p.sem <- proc:
	default:
	}
}

// Close releases all browser resources.
// Returns an aggregated error if several processors fail to close.
func (p *ProcessorPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	processors := p.processors
	p.mu.Unlock()

	var errs []error
	for _, proc := range processors {
		if err := proc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ProcessorPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, MinPoolSize), MaxPoolSize)
}
