package kaggle

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrWaitTimeout is returned when a kernel run is still going after MaxWait.
var ErrWaitTimeout = errors.New("kernel still running")

// WaitOptions controls kernel status polling.
type WaitOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxWait         time.Duration
	// OnPoll is called with every status observed
	OnPoll func(KernelStatus)
}

// DefaultWaitOptions polls from 5s up to once a minute for an hour.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		InitialInterval: 5 * time.Second,
		MaxInterval:     time.Minute,
		MaxWait:         time.Hour,
	}
}

// WaitForKernel polls the kernel status with exponential spacing until the
// run reaches a terminal state. Status request failures stop polling at once.
func (c *Client) WaitForKernel(ctx context.Context, ref Ref, opts WaitOptions) (*KernelStatus, error) {
	b := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		b.InitialInterval = opts.InitialInterval
	}
	if opts.MaxInterval > 0 {
		b.MaxInterval = opts.MaxInterval
	}
	b.MaxElapsedTime = opts.MaxWait

	var last *KernelStatus
	poll := func() error {
		status, err := c.KernelStatus(ctx, ref)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = status
		if opts.OnPoll != nil {
			opts.OnPoll(*status)
		}
		if status.Done() {
			return nil
		}
		return ErrWaitTimeout
	}

	if err := backoff.Retry(poll, backoff.WithContext(b, ctx)); err != nil {
		return last, err
	}
	return last, nil
}
