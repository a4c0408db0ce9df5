package imagegen

import "errors"

var (
	// ErrNoJobID means the provider accepted the request but returned no job id.
	ErrNoJobID = errors.New("imagegen: provider returned no job id")
	// ErrFailed means the provider reported the job as failed.
	ErrFailed = errors.New("imagegen: job failed")
	// ErrTimedOut means the job was still pending after the last poll tick.
	ErrTimedOut = errors.New("imagegen: job timed out")
)
