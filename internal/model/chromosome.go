package model

import (
	"fmt"
	"strings"
)

// Gene is an atomic value of a candidate solution. The engine never inspects
// Value beyond copying and comparing it.
type Gene struct {
	Value any `json:"value"`
}

func NewGene(v any) Gene {
	return Gene{Value: v}
}

func (g Gene) String() string {
	return fmt.Sprint(g.Value)
}

// Chromosome is an ordered gene sequence with a cached fitness. Every method
// that changes gene content resets the fitness to unevaluated.
type Chromosome struct {
	Genes   []Gene
	Fitness Fitness
}

func NewChromosome(genes []Gene) *Chromosome {
	return &Chromosome{Genes: genes}
}

// ChromosomeOf wraps raw values as genes.
func ChromosomeOf(values ...any) *Chromosome {
	genes := make([]Gene, len(values))
	for i, v := range values {
		genes[i] = NewGene(v)
	}
	return NewChromosome(genes)
}

func (c *Chromosome) Len() int {
	return len(c.Genes)
}

func (c *Chromosome) Gene(i int) Gene {
	return c.Genes[i]
}

func (c *Chromosome) SetGene(i int, g Gene) {
	c.Genes[i] = g
	c.Fitness = Unevaluated()
}

func (c *Chromosome) SwapGenes(i, j int) {
	c.Genes[i], c.Genes[j] = c.Genes[j], c.Genes[i]
	c.Fitness = Unevaluated()
}

func (c *Chromosome) ResetFitness() {
	c.Fitness = Unevaluated()
}

// Values returns the raw gene values in order.
func (c *Chromosome) Values() []any {
	out := make([]any, len(c.Genes))
	for i, g := range c.Genes {
		out[i] = g.Value
	}
	return out
}

// Clone copies the gene slice and the cached fitness.
func (c *Chromosome) Clone() *Chromosome {
	return &Chromosome{
		Genes:   append([]Gene(nil), c.Genes...),
		Fitness: c.Fitness,
	}
}

func (c *Chromosome) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, g := range c.Genes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.String())
	}
	b.WriteByte(']')
	return b.String()
}
