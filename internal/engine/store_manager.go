package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

var (
	ErrClosed         = errors.New("store manager is closed")
	ErrEnqueueTimeout = errors.New("timeout waiting to enqueue store request")
)

type StoreManagerCfg struct {
	EnqueueTimeout time.Duration
	MaxPending     int
	Logger         *slog.Logger
}

type storeRequest[K comparable, V comparable] struct {
	fn   func(Database[K, V])
	done chan error
}

/*
StoreManager serializes access to one Store through a single owner goroutine:
- Ordering: the request channel preserves submission order.
- Exclusivity: a submitted function runs alone, so a whole command, including
  opening or closing transactions, is observed atomically by other callers.
- Backpressure: the bounded channel plus the enqueue timeout lets callers fail
  fast instead of queueing without limit.
- Shutdown: cancelling the context stops the owner; later calls get ErrClosed.
*/
type StoreManager[K comparable, V comparable] struct {
	store    *Store[K, V]
	requests chan storeRequest[K, V]
	cfg      StoreManagerCfg
	closed   chan struct{}
}

const (
	defaultEnqueueTimeout = 5 * time.Second
	defaultMaxPending     = 1024
)

func NewStoreManager[K comparable, V comparable](ctx context.Context, cfg StoreManagerCfg) (*StoreManager[K, V], context.CancelFunc, error) {
	if cfg.EnqueueTimeout < 0 {
		return nil, nil, fmt.Errorf("invalid enqueue timeout %s", cfg.EnqueueTimeout)
	}
	if cfg.EnqueueTimeout == 0 {
		cfg.EnqueueTimeout = defaultEnqueueTimeout
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaultMaxPending
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	m := &StoreManager[K, V]{
		store:    New[K, V](WithLogger(cfg.Logger)),
		requests: make(chan storeRequest[K, V], cfg.MaxPending),
		cfg:      cfg,
		closed:   make(chan struct{}),
	}

	runCtx, cancel := context.WithCancel(ctx)
	go m.run(runCtx)
	return m, cancel, nil
}

// Exec runs fn against the managed store and waits for it to finish. No
// other submitted function runs while fn does.
func (m *StoreManager[K, V]) Exec(ctx context.Context, fn func(db Database[K, V])) error {
	req := storeRequest[K, V]{fn: fn, done: make(chan error, 1)}

	timer := time.NewTimer(m.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case m.requests <- req:
	case <-m.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrEnqueueTimeout
	}

	select {
	case err := <-req.done:
		return err
	case <-m.closed:
		// The owner may have finished this request just before stopping.
		select {
		case err := <-req.done:
			return err
		default:
			return ErrClosed
		}
	}
}

// Done is closed once the owner goroutine has stopped.
func (m *StoreManager[K, V]) Done() <-chan struct{} {
	return m.closed
}

func (m *StoreManager[K, V]) run(ctx context.Context) {
	defer close(m.closed)
	for {
		select {
		case req := <-m.requests:
			req.done <- m.apply(req.fn)
		case <-ctx.Done():
			m.cfg.Logger.Debug("store manager is shutting down",
				"pending", len(m.requests), "depth", m.store.Depth())
			return
		}
	}
}

func (m *StoreManager[K, V]) apply(fn func(Database[K, V])) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store request panicked: %v", r)
			m.cfg.Logger.Error("store request panicked", "panic", r)
		}
	}()
	fn(m.store)
	return nil
}
