package breaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"createkit-backend/internal/shared/telemetry"
)

// ErrOpen is returned while the breaker is rejecting calls.
var ErrOpen = errors.New("circuit open")

// Settings tunes a Breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Breaker guards calls to one upstream provider.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// New builds a Breaker that opens after FailureThreshold consecutive
// failures and half-opens after OpenTimeout.
func New(s Settings) *Breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("breaker.state_change", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})}
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Run executes fn under b. A nil breaker runs fn directly.
func Run[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrOpen
	}
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}
