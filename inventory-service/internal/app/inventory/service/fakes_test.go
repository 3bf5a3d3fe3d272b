package service

import (
	"context"
	"sync"

	"inventory/inventory-service/internal/app/inventory/entity"
)

// inlineDispatcher runs every task immediately on the caller's goroutine.
type inlineDispatcher struct {
	mu    sync.Mutex
	names []string
	errs  []error
}

func (d *inlineDispatcher) Dispatch(name string, task func(ctx context.Context) error) bool {
	err := task(context.Background())

	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, name)
	d.errs = append(d.errs, err)
	return true
}

func (d *inlineDispatcher) dispatched(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, got := range d.names {
		if got == name {
			n++
		}
	}
	return n
}

// queueDispatcher holds tasks until runAll is called.
type queueDispatcher struct {
	mu    sync.Mutex
	tasks []func(ctx context.Context) error
	full  bool
}

func (d *queueDispatcher) Dispatch(_ string, task func(ctx context.Context) error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.full {
		return false
	}
	d.tasks = append(d.tasks, task)
	return true
}

func (d *queueDispatcher) queued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

func (d *queueDispatcher) runAll() {
	d.mu.Lock()
	tasks := d.tasks
	d.tasks = nil
	d.mu.Unlock()

	for _, task := range tasks {
		_ = task(context.Background())
	}
}

// fakeBrandCache counts invalidations and always calls the loader.
type fakeBrandCache struct {
	mu            sync.Mutex
	invalidations int
}

func (c *fakeBrandCache) Get(ctx context.Context, load func(ctx context.Context) ([]string, error)) ([]string, error) {
	return load(ctx)
}

func (c *fakeBrandCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
}

// recordingActivity keeps every entry it is given.
type recordingActivity struct {
	mu      sync.Mutex
	entries []entity.ActivityEntry
}

func (r *recordingActivity) Record(entry entity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingActivity) all() []entity.ActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ActivityEntry(nil), r.entries...)
}

// countingStats counts recompute requests.
type countingStats struct {
	mu       sync.Mutex
	requests int
}

func (s *countingStats) RequestRecompute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return true
}

func ptr[T any](v T) *T {
	return &v
}
