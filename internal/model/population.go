package model

import (
	"fmt"
	"sort"
)

// Population holds the chromosomes of one run. Slice order is not rank order
// until SortByBestFitness has been called.
//
// MatingPool and NextPopulation are per-generation scratch space filled by the
// selection and crossover strategies and cleared by Update.
type Population struct {
	Chromosomes    []*Chromosome
	MatingPool     []*Chromosome
	NextPopulation []*Chromosome
}

func NewPopulation(chromosomes []*Chromosome) *Population {
	return &Population{Chromosomes: chromosomes}
}

func (p *Population) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Chromosomes)
}

func (p *Population) At(i int) *Chromosome {
	return p.Chromosomes[i]
}

func (p *Population) Set(i int, c *Chromosome) {
	p.Chromosomes[i] = c
}

// FromEnd returns the n-th chromosome counting from the end, FromEnd(1) being
// the last one.
func (p *Population) FromEnd(n int) *Chromosome {
	return p.Chromosomes[len(p.Chromosomes)-n]
}

func (p *Population) SetFromEnd(n int, c *Chromosome) {
	p.Chromosomes[len(p.Chromosomes)-n] = c
}

// Best returns the first chromosome; meaningful after sorting.
func (p *Population) Best() *Chromosome {
	if p.Len() == 0 {
		return nil
	}
	return p.Chromosomes[0]
}

// Worst returns the last chromosome; meaningful after sorting.
func (p *Population) Worst() *Chromosome {
	if p.Len() == 0 {
		return nil
	}
	return p.Chromosomes[len(p.Chromosomes)-1]
}

func (p *Population) AddToMatingPool(c ...*Chromosome) {
	p.MatingPool = append(p.MatingPool, c...)
}

func (p *Population) AddToNextPopulation(c ...*Chromosome) {
	p.NextPopulation = append(p.NextPopulation, c...)
}

// Update promotes NextPopulation to the live chromosome set and clears the
// per-generation scratch space. An empty NextPopulation keeps the current
// chromosomes.
func (p *Population) Update() {
	if len(p.NextPopulation) > 0 {
		p.Chromosomes = p.NextPopulation
	}
	p.NextPopulation = nil
	p.MatingPool = nil
}

// SortByBestFitness orders the chromosomes in place so index 0 holds the best
// fitness for the target. It fails without reordering when any chromosome is
// unevaluated.
func (p *Population) SortByBestFitness(target FitnessTarget) error {
	return SortByBestFitness(p.Chromosomes, target)
}

// SortedByBestFitness returns a best-first copy, leaving p unchanged.
func (p *Population) SortedByBestFitness(target FitnessTarget) ([]*Chromosome, error) {
	out := append([]*Chromosome(nil), p.Chromosomes...)
	if err := SortByBestFitness(out, target); err != nil {
		return nil, err
	}
	return out, nil
}

// Fitnesses returns the evaluated fitness values in slice order.
func (p *Population) Fitnesses() ([]float64, error) {
	out := make([]float64, len(p.Chromosomes))
	for i, c := range p.Chromosomes {
		v, ok := c.Fitness.Value()
		if !ok {
			return nil, fmt.Errorf("%w: chromosome %d", ErrUnevaluatedFitness, i)
		}
		out[i] = v
	}
	return out, nil
}

// SortByBestFitness sorts a chromosome slice in place, best first. Ties keep
// their relative order.
func SortByBestFitness(chromosomes []*Chromosome, target FitnessTarget) error {
	for i, c := range chromosomes {
		if !c.Fitness.IsEvaluated() {
			return fmt.Errorf("%w: chromosome %d", ErrUnevaluatedFitness, i)
		}
	}
	sort.SliceStable(chromosomes, func(i, j int) bool {
		return target.Better(chromosomes[i].Fitness.value, chromosomes[j].Fitness.value)
	})
	return nil
}
