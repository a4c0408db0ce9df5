package quota

import (
	"context"
	"sync"

	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/metrics"
	"createkit-backend/internal/shared/telemetry"
)

// Class says who may run an operation.
type Class int

const (
	// FreeEligible operations are open to free callers with balance left.
	FreeEligible Class = iota
	// PremiumOnly operations require the premium plan.
	PremiumOnly
)

func (c Class) String() string {
	if c == PremiumOnly {
		return "premium_only"
	}
	return "free_eligible"
}

// Subject is the caller being gated.
type Subject struct {
	OwnerID string
	Plan    auth.Plan
}

// Gate decides whether a caller may start a billable operation. Balances
// are read fresh from Source on every call.
type Gate struct {
	Source    Source
	FreeLimit int

	// commitMu serializes read-then-write commits on sources without
	// an atomic Decrement.
	commitMu sync.Mutex
}

// NewGate builds a Gate. Callers with no stored balance start at freeLimit.
func NewGate(src Source, freeLimit int) *Gate {
	if freeLimit < 0 {
		freeLimit = 0
	}
	return &Gate{Source: src, FreeLimit: freeLimit}
}

// Admission is a granted operation. Commit must be called once the
// operation has succeeded so free callers are charged.
type Admission struct {
	gate      *Gate
	ownerID   string
	remaining int
	charge    bool
}

// Remaining is the balance seen at admission, or the stored balance after Commit.
func (a *Admission) Remaining() int {
	return a.remaining
}

// Admit checks s against class. It returns a Forbidden apperr wrapping
// ErrPremiumRequired or ErrLimitReached when the caller is refused.
func (g *Gate) Admit(ctx context.Context, s Subject, class Class) (*Admission, error) {
	if s.Plan != auth.PlanPremium && class == PremiumOnly {
		metrics.IncQuotaDenied("premium_required")
		return nil, apperr.New(apperr.KindForbidden, premiumRequiredMessage, ErrPremiumRequired)
	}

	counter, err := g.Source.Get(ctx, s.OwnerID)
	if err != nil {
		return nil, apperr.Storage("Failed to read usage quota.", err)
	}

	if s.Plan == auth.PlanPremium {
		if counter.Set && counter.Remaining != 0 {
			g.resetPremium(ctx, s.OwnerID)
		}
		return &Admission{gate: g, ownerID: s.OwnerID}, nil
	}

	remaining := counter.Remaining
	if !counter.Set {
		remaining = g.FreeLimit
	}
	if remaining <= 0 {
		metrics.IncQuotaDenied("limit_reached")
		return nil, apperr.New(apperr.KindForbidden, limitReachedMessage, ErrLimitReached)
	}
	return &Admission{gate: g, ownerID: s.OwnerID, remaining: remaining, charge: true}, nil
}

// Commit charges one free operation against the current stored balance,
// not the one seen at admission. It is a no-op for premium callers and
// safe to call more than once.
func (a *Admission) Commit(ctx context.Context) error {
	if a == nil || !a.charge {
		return nil
	}
	a.charge = false
	next, err := a.gate.decrement(ctx, a.ownerID)
	if err != nil {
		return apperr.Storage("Failed to update usage quota.", err)
	}
	a.remaining = next
	return nil
}

func (g *Gate) decrement(ctx context.Context, ownerID string) (int, error) {
	if d, ok := g.Source.(Decrementer); ok {
		return d.Decrement(ctx, ownerID, g.FreeLimit)
	}

	g.commitMu.Lock()
	defer g.commitMu.Unlock()
	counter, err := g.Source.Get(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	current := counter.Remaining
	if !counter.Set {
		current = g.FreeLimit
	}
	next := current - 1
	if next < 0 {
		next = 0
	}
	if err := g.Source.Update(ctx, ownerID, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (g *Gate) resetPremium(ctx context.Context, ownerID string) {
	if err := g.Source.Update(ctx, ownerID, 0); err != nil {
		telemetry.Warn("quota.premium_reset_failed", map[string]any{
			"user_id": ownerID,
			"error":   err,
		})
	}
}
