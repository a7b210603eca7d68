package evo

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigurationErrorsShareClass(t *testing.T) {
	for _, sentinel := range []error{ErrInvalidRate, ErrMissingStrategy, ErrStrategyExists, ErrStrategyNotFound, ErrStrategyType} {
		wrapped := fmt.Errorf("%w: detail", sentinel)
		if !errors.Is(wrapped, sentinel) || !errors.Is(wrapped, ErrConfiguration) {
			t.Fatalf("%v does not match its sentinel and class", wrapped)
		}
	}
	if got := ErrInvalidRate.Error(); got != "configuration error: invalid rate" {
		t.Fatalf("unexpected message %q", got)
	}
	if errors.Is(ErrInvalidRate, ErrMissingStrategy) {
		t.Fatal("distinct sentinels must not match each other")
	}
}
