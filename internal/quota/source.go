package quota

import "context"

// Counter is a caller's stored free-usage balance. Set is false when no
// balance has ever been written for the caller.
type Counter struct {
	Remaining int
	Set       bool
}

// Source reads and writes free-usage balances.
type Source interface {
	Get(ctx context.Context, ownerID string) (Counter, error)
	Update(ctx context.Context, ownerID string, remaining int) error
}

// Decrementer is implemented by sources that can charge one use in a
// single atomic step. start is the balance assumed when none is stored.
// The result never drops below zero.
type Decrementer interface {
	Decrement(ctx context.Context, ownerID string, start int) (int, error)
}
