package quota

import "errors"

var (
	ErrLimitReached    = errors.New("free usage limit reached")
	ErrPremiumRequired = errors.New("premium plan required")
)

const (
	limitReachedMessage    = "Free plan usage limit reached. Please upgrade to premium."
	premiumRequiredMessage = "This feature is available for premium users only. Please upgrade to premium."
)
