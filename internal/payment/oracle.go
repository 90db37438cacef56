package payment

import "context"

// Result is the outcome of a single charge attempt.
type Result struct {
	Succeeded bool
	PaymentID string
	Message   string
}

// Oracle decides whether a charge attempt succeeds. It is side-effect free
// with respect to booking state: callers apply the result themselves, and it
// may be invoked repeatedly for the same booking (payment retry).
type Oracle interface {
	Charge(ctx context.Context, amount float64) (Result, error)
}
