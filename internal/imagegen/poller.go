package imagegen

import (
	"context"
	"fmt"
	"time"

	"createkit-backend/internal/shared/metrics"
	"createkit-backend/internal/shared/telemetry"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 30
)

// JobAPI is the provider surface the Poller drives.
type JobAPI interface {
	Submit(ctx context.Context, prompt string) (string, error)
	Status(ctx context.Context, jobID string) (Job, error)
}

// Result is a completed job.
type Result struct {
	JobID    string
	URL      string
	Attempts int
}

// Poller submits a job and waits for it. The first status query runs
// immediately and later ones are spaced by Interval, so at most
// MaxAttempts-1 intervals are slept.
type Poller struct {
	API         JobAPI
	Interval    time.Duration
	MaxAttempts int
	Sleep       func(ctx context.Context, d time.Duration) error
}

// NewPoller builds a Poller, substituting defaults for non-positive settings.
func NewPoller(api JobAPI, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{API: api, Interval: interval, MaxAttempts: maxAttempts, Sleep: sleepContext}
}

// Generate submits prompt and polls until the job completes, fails or runs
// out of attempts. Polling ignores cancellation of ctx.
func (p *Poller) Generate(ctx context.Context, prompt string) (Result, error) {
	ctx = context.WithoutCancel(ctx)

	jobID, err := p.API.Submit(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	telemetry.Info("imagegen.submitted", map[string]any{"job_id": jobID})
	return p.Wait(ctx, jobID)
}

// Wait polls jobID. ErrFailed and ErrTimedOut are terminal; a status query
// error ends the loop as well.
func (p *Poller) Wait(ctx context.Context, jobID string) (Result, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.Interval); err != nil {
				return Result{}, err
			}
		}

		job, err := p.API.Status(ctx, jobID)
		if err != nil {
			metrics.ObservePollAttempts("error", attempt)
			return Result{}, fmt.Errorf("imagegen status %s: %w", jobID, err)
		}

		switch job.Status {
		case StatusCompleted:
			metrics.ObservePollAttempts("completed", attempt)
			telemetry.Info("imagegen.completed", map[string]any{"job_id": jobID, "attempts": attempt})
			return Result{JobID: jobID, URL: job.ResultURL, Attempts: attempt}, nil
		case StatusFailed:
			metrics.ObservePollAttempts("failed", attempt)
			telemetry.Warn("imagegen.failed", map[string]any{"job_id": jobID, "attempts": attempt, "error": job.Error})
			return Result{}, fmt.Errorf("%w: %s", ErrFailed, job.Error)
		}
	}

	metrics.ObservePollAttempts("timed_out", p.MaxAttempts)
	telemetry.Warn("imagegen.timed_out", map[string]any{"job_id": jobID, "attempts": p.MaxAttempts})
	return Result{}, ErrTimedOut
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
