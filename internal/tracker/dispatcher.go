package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gamassss/utm-tracker/internal/config"
	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
)

// HandlerFunc processes one visit. It must not return errors to the caller;
// failures are its own to log.
type HandlerFunc func(ctx context.Context, visit domain.Visit)

// Dispatcher hands visits off without blocking the request that produced them.
type Dispatcher interface {
	// Dispatch reports whether the visit was accepted.
	Dispatch(ctx context.Context, visit domain.Visit) bool
	Close(ctx context.Context) error
}

type job struct {
	ctx   context.Context
	visit domain.Visit
}

// Pool is an in-process Dispatcher backed by a bounded queue and a fixed
// number of workers.
type Pool struct {
	handle  HandlerFunc
	jobs    chan job
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewPool(handle HandlerFunc, cfg config.TrackingConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		handle:  handle,
		jobs:    make(chan job, queueSize),
		timeout: cfg.JobTimeout,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Dispatch never blocks. A full queue or a closed pool drops the visit.
func (p *Pool) Dispatch(ctx context.Context, visit domain.Visit) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	log := logger.FromContext(ctx)
	if p.closed {
		log.Warn("tracker closed, visit dropped", "short_id", visit.ShortID)
		return false
	}

	select {
	case p.jobs <- job{ctx: logger.Detach(ctx), visit: visit}:
		return true
	default:
		log.Warn("tracker queue full, visit dropped", "short_id", visit.ShortID, "queue_size", cap(p.jobs))
		return false
	}
}

// Close stops intake and waits for queued visits to finish or ctx to expire.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tracker drain interrupted: %w", ctx.Err())
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for j := range p.jobs {
		run(j.ctx, p.handle, j.visit, p.timeout)
	}
}

// run executes one visit under a timeout and recovers from panics so a bad
// event cannot take a worker down.
func run(ctx context.Context, handle HandlerFunc, visit domain.Visit, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("tracking job panicked",
				slog.String("short_id", visit.ShortID),
				slog.Any("panic", r),
			)
		}
	}()

	handle(ctx, visit)
}
