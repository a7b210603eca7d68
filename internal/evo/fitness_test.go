package evo

import (
	"errors"
	"testing"

	"evolvekit/internal/model"
)

func TestConvertFitnessPassesThroughForMax(t *testing.T) {
	ga := newTestGA(t, nil)
	ga.Population = scoredPopulation(9, 3, 1)
	got, err := ga.ConvertFitness(3)
	if err != nil || got != 3 {
		t.Fatalf("expected passthrough, got %v %v", got, err)
	}
}

func TestConvertFitnessReflectsMinRange(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.Target = model.TargetMin
	})
	ga.Population = scoredPopulation(1, 2, 5)

	best, err := ga.ChromosomeFitness(0)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	worst, err := ga.ChromosomeFitness(2)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if best != 5 || worst != 1 {
		t.Fatalf("expected best to map to 5 and worst to 1, got %v and %v", best, worst)
	}

	converted, _ := ga.ConvertFitness(2)
	back, _ := ga.ConvertFitness(converted)
	if back != 2 {
		t.Fatalf("expected reflection to be its own inverse, got %v", back)
	}
}

func TestConvertFitnessFallsBackToSignFlip(t *testing.T) {
	ga := newTestGA(t, func(cfg *Config) {
		cfg.Target = model.TargetMin
	})
	ga.Population = scoredPopulation(1e-7, 3, 10)
	got, err := ga.ConvertFitness(3)
	if err != nil || got != -3 {
		t.Fatalf("expected sign flip, got %v %v", got, err)
	}

	ga.Population = scoredPopulation(-4, 0)
	got, err = ga.ConvertFitness(-4)
	if err != nil || got != 4 {
		t.Fatalf("expected sign flip with zero worst, got %v %v", got, err)
	}
}

func TestChromosomeFitnessRequiresEvaluation(t *testing.T) {
	ga := newTestGA(t, nil)
	ga.Population = model.NewPopulation([]*model.Chromosome{model.ChromosomeOf(1)})
	if _, err := ga.ChromosomeFitness(0); !errors.Is(err, model.ErrUnevaluatedFitness) {
		t.Fatalf("expected unevaluated error, got %v", err)
	}
}

func TestFitnessGap(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{10, 4, 6},
		{-3, 3, 6},
		{0, 0, 0},
		{1e9, 1e-9, 1e9},
	}
	for _, tc := range cases {
		if got := fitnessGap(tc.a, tc.b); got != tc.want {
			t.Fatalf("fitnessGap(%v, %v)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
