package poll

import (
	"context"
	"time"

	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/running"
)

const (
	DefaultInterval    = 15 * time.Second // Base delay between attempts
	DefaultJitter      = 15 * time.Second // Extra delay the wait may grow by
	DefaultMaxAttempts = 4                // Attempts before giving up for this round
)

// Options bound a polling round
type Options struct {
	Interval    time.Duration
	Jitter      time.Duration
	MaxAttempts int
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Interval:    DefaultInterval,
		Jitter:      DefaultJitter,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (o Options) normalized() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

var pollLog = logan.New().WithField("service", "poll")

// WithInterval calls fn immediately and then again after each wait until it
// returns a non-nil result, returns an error, the attempts run out or ctx is
// done. Waits start at Interval and back off up to Interval+Jitter. Running
// out of attempts yields (nil, nil) so the caller can try again on its next
// tick.
func WithInterval[T any](ctx context.Context, opts Options, fn func(context.Context) (*T, error)) (*T, error) {
	opts = opts.normalized()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result   *T
		fnErr    error
		attempts int
	)
	running.UntilSuccess(ctx, pollLog, "poll", func(ctx context.Context) (bool, error) {
		attempts++
		result, fnErr = fn(ctx)
		// errors from fn end the round here instead of being retried
		return fnErr != nil || result != nil || attempts >= opts.MaxAttempts, nil
	}, opts.Interval, opts.Interval+opts.Jitter)

	switch {
	case fnErr != nil:
		return nil, fnErr
	case result != nil:
		return result, nil
	case attempts < opts.MaxAttempts:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
