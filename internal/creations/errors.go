package creations

import "errors"

var (
	ErrNotFound     = errors.New("creation not found")
	ErrForbidden    = errors.New("creation owned by another user")
	ErrInvalidInput = errors.New("invalid creation input")
)
