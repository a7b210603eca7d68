package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnevaluatedFitness is returned when an operation needs a fitness value
// that has not been computed yet.
var ErrUnevaluatedFitness = errors.New("fitness has not been evaluated")

// FitnessTarget decides whether larger or smaller fitness values are better.
type FitnessTarget string

const (
	TargetMax FitnessTarget = "max"
	TargetMin FitnessTarget = "min"
)

func ParseFitnessTarget(s string) (FitnessTarget, error) {
	switch FitnessTarget(s) {
	case TargetMax, TargetMin:
		return FitnessTarget(s), nil
	case "":
		return TargetMax, nil
	default:
		return "", fmt.Errorf("unsupported fitness target: %q", s)
	}
}

// Better reports whether a is strictly better than b under the target.
func (t FitnessTarget) Better(a, b float64) bool {
	if t == TargetMin {
		return a < b
	}
	return a > b
}

// Fitness is either unevaluated or an evaluated numeric score. The zero value
// is unevaluated.
type Fitness struct {
	value     float64
	evaluated bool
}

func Unevaluated() Fitness {
	return Fitness{}
}

func Evaluated(v float64) Fitness {
	return Fitness{value: v, evaluated: true}
}

func (f Fitness) IsEvaluated() bool {
	return f.evaluated
}

// Value returns the score and whether it has been evaluated.
func (f Fitness) Value() (float64, bool) {
	return f.value, f.evaluated
}

// MustValue returns the score, panicking when the fitness is unevaluated.
func (f Fitness) MustValue() float64 {
	if !f.evaluated {
		panic(ErrUnevaluatedFitness)
	}
	return f.value
}

// Ptr returns nil for an unevaluated fitness, used by persisted records.
func (f Fitness) Ptr() *float64 {
	if !f.evaluated {
		return nil
	}
	v := f.value
	return &v
}

func (f Fitness) String() string {
	if !f.evaluated {
		return "unevaluated"
	}
	return strconv.FormatFloat(f.value, 'g', -1, 64)
}
