package billing

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

var (
	// ErrNotFound means a referenced plan, package, user or subscription does
	// not exist locally. Never retried automatically.
	ErrNotFound = errors.New("billing: not found")

	// ErrNotSynced means a required Stripe reference is missing; the remedy is
	// running catalog synchronization, not retrying.
	ErrNotSynced = errors.New("billing: missing stripe reference, run catalog sync first")

	// ErrNoPrice means the requested interval has no positive local price
	// configured, so there is nothing to sell or synchronize.
	ErrNoPrice = errors.New("billing: no price configured for interval")

	// ErrInvalidSignature means webhook verification failed. The payload must
	// never be processed.
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
)

// RemoteError wraps a failed Stripe call. Callers may retry idempotent
// operations on it.
type RemoteError struct {
	Op   string
	Code string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("billing: stripe %s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("billing: stripe %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &RemoteError{Op: op, Code: string(stripeErr.Code), Err: err}
	}
	return &RemoteError{Op: op, Err: err}
}
