package evo

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal configuration problems. Every error below wraps
// it, so callers can match the whole class with errors.Is.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrInvalidRate      = fmt.Errorf("%w: invalid rate", ErrConfiguration)
	ErrMissingStrategy  = fmt.Errorf("%w: missing strategy", ErrConfiguration)
	ErrStrategyExists   = fmt.Errorf("%w: strategy already registered", ErrConfiguration)
	ErrStrategyNotFound = fmt.Errorf("%w: strategy not found", ErrConfiguration)
	ErrStrategyType     = fmt.Errorf("%w: strategy has wrong type for kind", ErrConfiguration)
)
