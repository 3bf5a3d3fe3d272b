package util

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"inventory/pkg/logger"
	"inventory/pkg/metrics"
)

type job struct {
	name string
	task func(ctx context.Context) error
}

// Dispatcher runs fire-and-forget work after the request that triggered it
// has been answered. Delivery is at most once and best effort: a full queue
// or a closed dispatcher drops the task. Task errors and panics are logged
// and counted, never returned to the caller.
type Dispatcher struct {
	queue   chan job
	workers int

	// ctx is owned by the dispatcher, not by any request
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex // serializes Dispatch sends against close(queue)
	closed atomic.Bool
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:   make(chan job, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines. Calling it more than once is a no-op.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
		logger.Info().Int("workers", d.workers).Int("queue_size", cap(d.queue)).Msg("Background dispatcher started")
	})
}

// Dispatch enqueues task without blocking. It returns false when the task was dropped.
func (d *Dispatcher) Dispatch(name string, task func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed.Load() {
		metrics.RecordBackgroundTask(name, "dropped")
		logger.Warn().Str("task", name).Msg("Dispatcher closed, background task dropped")
		return false
	}

	select {
	case d.queue <- job{name: name, task: task}:
		metrics.BackgroundQueueDepth.Inc()
		return true
	default:
		metrics.RecordBackgroundTask(name, "dropped")
		logger.Warn().Str("task", name).Int("queue_size", cap(d.queue)).Msg("Background queue full, task dropped")
		return false
	}
}

// Pending is the number of queued tasks not yet picked up by a worker.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Shutdown stops intake and waits for queued and running tasks.
// When ctx expires first, running tasks see their context cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed.Swap(true) {
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		logger.Info().Msg("Background dispatcher drained")
		return nil
	case <-ctx.Done():
		d.cancel()
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		metrics.BackgroundQueueDepth.Dec()
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordBackgroundTask(j.name, "panic")
			logger.Error().
				Str("task", j.name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Background task panicked")
		}
	}()

	if err := j.task(d.ctx); err != nil {
		metrics.RecordBackgroundTask(j.name, "failed")
		logger.Error().Err(err).Str("task", j.name).Dur("duration", time.Since(start)).Msg("Background task failed")
		return
	}

	metrics.RecordBackgroundTask(j.name, "success")
	logger.Debug().Str("task", j.name).Dur("duration", time.Since(start)).Msg("Background task completed")
}
