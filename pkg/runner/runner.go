// Package runner drives stored swaps to completion on a ticker.
package runner

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"boost-swap/pkg/log"
	"boost-swap/pkg/swap"
)

// DefaultInterval between two steps of a swap
const DefaultInterval = 15 * time.Second

// Driver advances swaps and describes their statuses
type Driver interface {
	swap.SwapDriver
	Statuses() swap.StatusTable
}

// Store holds the swaps being driven
type Store interface {
	swap.Store
	ListPending(statuses swap.StatusTable) []*swap.Swap
}

// Observer is told about every status change. n is nil when the new status
// has no notification.
type Observer func(s *swap.Swap, n *swap.Notification)

// Runner owns the polling loop of one or many swaps
type Runner struct {
	driver   Driver
	store    Store
	interval time.Duration
	observer Observer
}

// Option customises a Runner
type Option func(*Runner)

// WithInterval sets the delay between two steps
func WithInterval(interval time.Duration) Option {
	return func(r *Runner) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithObserver registers a status change callback
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// New creates a runner
func New(driver Driver, store Store, opts ...Option) *Runner {
	r := &Runner{
		driver:   driver,
		store:    store,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Step performs at most one action on the swap and persists the result. It
// reports whether the swap changed.
func (r *Runner) Step(ctx context.Context, id string) (*swap.Swap, bool, error) {
	s, err := r.store.Get(id)
	if err != nil {
		return nil, false, err
	}

	statuses := r.driver.Statuses()
	if statuses.IsTerminal(s.Status) {
		return s, false, nil
	}

	u, err := r.driver.PerformNextSwapAction(ctx, r.store, s.Network, s.WalletID, s)
	if err != nil {
		return s, false, err
	}
	if u == nil {
		return s, false, nil
	}

	updated, err := r.store.Apply(id, u)
	if err != nil {
		return s, false, err
	}

	if updated.Status != s.Status {
		log.Info("swap status changed", "swap", id, "from", s.Status, "to", updated.Status)

		var n *swap.Notification
		if d, ok := statuses[updated.Status]; ok && d.Notification != nil {
			notification := d.Notification(updated)
			n = &notification
			log.Info(notification.Message, "swap", id)
		}
		if r.observer != nil {
			r.observer(updated, n)
		}
	}

	return updated, true, nil
}

// Run steps the swap until it reaches a terminal status or ctx is done.
// Step errors are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context, id string) (*swap.Swap, error) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	statuses := r.driver.Statuses()
	for {
		s, changed, err := r.Step(ctx, id)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return s, err
		case err != nil && s == nil:
			return nil, err
		case err != nil:
			log.Warn("swap step failed, retrying", "swap", id, "status", s.Status, "err", err)
		case statuses.IsTerminal(s.Status):
			return s, nil
		case changed:
			// keep going while the swap makes progress
			if ctx.Err() != nil {
				return s, ctx.Err()
			}
			continue
		}

		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunAll drives every pending swap concurrently until all are terminal or
// ctx is done
func (r *Runner) RunAll(ctx context.Context) error {
	pending := r.store.ListPending(r.driver.Statuses())
	if len(pending) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range pending {
		id := s.ID
		g.Go(func() error {
			_, err := r.Run(ctx, id)
			return err
		})
	}

	return g.Wait()
}
