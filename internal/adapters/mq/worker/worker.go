// Package worker runs the goroutines that turn refresh events into ranking refreshes.
//
// A worker that receives an event drains every other pending event first and
// then refreshes once, so a burst of mutations costs a single recomputation.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/golazo/internal/domain/model"
	"github.com/okian/golazo/pkg/logger"
	"github.com/okian/golazo/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Event abstracts what workers read off the queue.
type Event = model.RefreshEvent

// Refresher recomputes derived state after a mutation.
type Refresher interface {
	Refresh(ctx context.Context, reason model.RefreshReason) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue() <-chan Event
	TryDequeue() (Event, bool)
	Len(ctx context.Context) int
}

// Worker processes refresh events.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed and drained.
	Run(ctx context.Context)
	// Shutdown stops the worker and waits for the current refresh to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	refresher Refresher
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, refresher Refresher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		refresher: refresher,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, event); err != nil {
				w.logger.Error(ctx, "refresh failed",
					logger.String("eventID", event.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process coalesces pending events into event and refreshes once.
func (w *InMemoryWorker) process(ctx context.Context, event Event) error {
	reason := event.Reason
	coalesced := 0
	for {
		next, ok := w.queue.TryDequeue()
		if !ok {
			break
		}
		coalesced++
		reason = next.Reason
	}
	if coalesced > 0 {
		metrics.RecordQueueCoalesced(coalesced)
	}
	w.queue.Len(ctx) // refreshes the queue size gauge

	w.logger.Debug(ctx, "refreshing",
		logger.String("eventID", event.ID),
		logger.String("reason", string(reason)),
		logger.Int("coalesced", coalesced),
	)
	if err := w.refresher.Refresh(ctx, reason); err != nil {
		return fmt.Errorf("refresh after %s: %w", reason, err)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a new worker pool. Counts below one become one.
func NewPool(workerCount int, queue Queue, refresher Refresher) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		pool.workers[i] = NewInMemoryWorker(queue, refresher, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Wait blocks until every worker has returned, e.g. after the queue is closed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown stops every worker and waits for in-flight refreshes.
func (p *Pool) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()

	var errs []error
	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	metrics.UpdateWorkerCount(0)
	if err := errors.Join(errs...); err != nil {
		return err
	}
	p.logger.Info(ctx, "worker pool stopped")
	return nil
}
