package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by TryEnqueue when the buffer has no free slot.
	ErrQueueFull = errors.New("queue full")
	// ErrNotRunning is returned when enqueueing before Start or after Stop.
	ErrNotRunning = errors.New("queue not running")
)

// Handler processes one payload. A non-nil error triggers a retry until MaxAttempts is spent.
type Handler[T any] func(ctx context.Context, payload T) error

// Config tunes the worker pool.
type Config struct {
	Workers     int
	BufferSize  int
	MaxAttempts int
	// Backoff is the delay before the second attempt; it doubles on every further attempt.
	Backoff time.Duration
	Logger  *zap.Logger
}

// Stats counts queue outcomes since Start.
type Stats struct {
	Enqueued  uint64
	Processed uint64
	Failed    uint64
	Rejected  uint64
}

// Queue is a bounded in-process worker pool for payloads of type T.
// Stop drains what is already buffered before returning.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config

	mu      sync.RWMutex
	items   chan T
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	enqueued, processed, failed, rejected atomic.Uint64
}

// New builds a queue. Zero config fields take conservative defaults.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue[T]{name: name, handler: handler, cfg: cfg}
}

// Start launches the workers. ctx bounds every handler call. Calling Start twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.items = make(chan T, q.cfg.BufferSize)
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work(q.items)
	}
	q.running = true
	q.cfg.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.cfg.Workers))
}

// TryEnqueue buffers payload without blocking.
func (q *Queue[T]) TryEnqueue(payload T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrNotRunning
	}
	select {
	case q.items <- payload:
		q.enqueued.Add(1)
		return nil
	default:
		q.rejected.Add(1)
		return ErrQueueFull
	}
}

// Stop refuses new work and waits for buffered payloads to finish. When ctx expires
// first, in-flight handlers are cancelled and ctx.Err is returned.
func (q *Queue[T]) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	close(q.items)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		q.cancel()
		<-done
	}
	q.cancel()
	stats := q.Stats()
	q.cfg.Logger.Info("queue stopped",
		zap.String("queue", q.name),
		zap.Uint64("processed", stats.Processed),
		zap.Uint64("failed", stats.Failed),
		zap.Uint64("rejected", stats.Rejected),
	)
	return err
}

// Stats returns a snapshot of the counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Rejected:  q.rejected.Load(),
	}
}

func (q *Queue[T]) work(items <-chan T) {
	defer q.wg.Done()
	for payload := range items {
		if err := q.attempt(payload); err != nil {
			q.failed.Add(1)
			q.cfg.Logger.Error("job failed", zap.String("queue", q.name), zap.Int("attempts", q.cfg.MaxAttempts), zap.Error(err))
			continue
		}
		q.processed.Add(1)
	}
}

func (q *Queue[T]) attempt(payload T) error {
	delay := q.cfg.Backoff
	var err error
	for n := 1; n <= q.cfg.MaxAttempts; n++ {
		if err = q.handler(q.ctx, payload); err == nil {
			return nil
		}
		if n == q.cfg.MaxAttempts {
			break
		}
		q.cfg.Logger.Warn("job failed, retrying", zap.String("queue", q.name), zap.Int("attempt", n), zap.Error(err))
		timer := time.NewTimer(delay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return q.ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
