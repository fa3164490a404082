package notepages

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Processor, error)
	Release(*Processor)
	Size() int
	Close() error
} = (*ProcessorPool)(nil)

func newTestPool(n int) *ProcessorPool {
	return NewProcessorPool(n, WithRasterizer(&mockRasterizer{}))
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit can exceed max",
			workers: 16,
			want:    16,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
		{
			name:    "negative uses auto calculation",
			workers: -3,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestProcessorPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	defer pool.Close()

	p1, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p2, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if p1 == p2 {
		t.Error("expected different processor instances")
	}

	pool.Release(p1)
	p3, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if p3 != p1 {
		t.Error("expected to get back released processor")
	}

	pool.Release(p2)
	pool.Release(p3)
}

func TestProcessorPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := newTestPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProcessorPool_CreationError(t *testing.T) {
	t.Parallel()

	pool := NewProcessorPool(1, WithRasterizer(&mockRasterizer{}), WithBatchSize(0))
	defer pool.Close()

	if _, err := pool.Acquire(); !errors.Is(err, ErrInvalidBatchSize) {
		t.Fatalf("Acquire() error = %v, want ErrInvalidBatchSize", err)
	}

	// The failed slot is free again: a second try fails the same way
	// instead of blocking.
	done := make(chan error, 1)
	go func() {
		_, err := pool.Acquire()
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInvalidBatchSize) {
			t.Errorf("second Acquire() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second Acquire() blocked after a failed creation")
	}
}

func TestProcessorPool_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	pool := newTestPool(4)
	defer pool.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			proc, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			time.Sleep(5 * time.Millisecond) // Simulate work
			pool.Release(proc)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("concurrent access test timed out - possible deadlock")
	}
}

func TestProcessorPool_Closed(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)

	proc, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Release after close is a no-op
	pool.Release(proc)

	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
