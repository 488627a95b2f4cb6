package browser

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval is used when Poll is given a non-positive interval
const DefaultPollInterval = 100 * time.Millisecond

// Condition reports whether the awaited state has been reached. A non-nil
// error aborts the poll.
type Condition func(ctx context.Context) (bool, error)

// Poll evaluates cond immediately and then every interval until it returns
// true, returns an error, or timeout elapses. It returns ErrPollTimeout
// when the deadline passes without cond holding.
func Poll(ctx context.Context, interval, timeout time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true, wait.ConditionWithContextFunc(cond))
	if err != nil && wait.Interrupted(err) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrPollTimeout
	}
	return err
}
