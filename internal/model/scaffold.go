// Package model defines the scaffold, genome and window data types.
package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// UnbinnedID is the genome id carried by scaffolds not assigned to any bin.
const UnbinnedID = "unbinned"

// ErrDimension is returned when signature or coverage vectors disagree in length.
var ErrDimension = errors.New("vector dimension mismatch")

// ScaffoldStats holds the per-scaffold statistics produced by the statistics store.
type ScaffoldStats struct {
	ID        string    `json:"id"`
	GenomeID  string    `json:"genome_id"`
	Length    int       `json:"length"`
	GC        float64   `json:"gc"`
	Signature []float64 `json:"signature"`
	Coverage  []float64 `json:"coverage"`
}

// Binned reports whether the scaffold is assigned to a genome.
func (s ScaffoldStats) Binned() bool {
	return s.GenomeID != "" && s.GenomeID != UnbinnedID
}

// ScaffoldSet is an insertion-ordered collection of scaffold statistics.
type ScaffoldSet struct {
	// CoverageNames and SignatureNames are the column labels of the
	// coverage and signature vectors, in vector order.
	CoverageNames  []string
	SignatureNames []string

	stats    map[string]ScaffoldStats
	order    []string
	genomes  []string
	byGenome map[string][]string
}

// NewScaffoldSet returns an empty set.
func NewScaffoldSet() *ScaffoldSet {
	return &ScaffoldSet{
		stats:    make(map[string]ScaffoldStats),
		byGenome: make(map[string][]string),
	}
}

// Add appends a scaffold. Duplicate ids and vectors whose dimensions differ
// from earlier scaffolds are rejected.
func (s *ScaffoldSet) Add(st ScaffoldStats) error {
	if st.ID == "" {
		return fmt.Errorf("scaffold id is empty")
	}
	if _, ok := s.stats[st.ID]; ok {
		return fmt.Errorf("duplicate scaffold id %q", st.ID)
	}
	if len(s.order) > 0 {
		first := s.stats[s.order[0]]
		if len(first.Signature) != len(st.Signature) {
			return fmt.Errorf("scaffold %s signature: %w", st.ID, ErrDimension)
		}
		if len(first.Coverage) != len(st.Coverage) {
			return fmt.Errorf("scaffold %s coverage: %w", st.ID, ErrDimension)
		}
	}
	if st.GenomeID == "" {
		st.GenomeID = UnbinnedID
	}

	s.stats[st.ID] = st
	s.order = append(s.order, st.ID)
	if _, ok := s.byGenome[st.GenomeID]; !ok {
		s.genomes = append(s.genomes, st.GenomeID)
	}
	s.byGenome[st.GenomeID] = append(s.byGenome[st.GenomeID], st.ID)
	return nil
}

// Get returns the statistics for a scaffold id.
func (s *ScaffoldSet) Get(id string) (ScaffoldStats, bool) {
	st, ok := s.stats[id]
	return st, ok
}

// Len returns the number of scaffolds.
func (s *ScaffoldSet) Len() int { return len(s.order) }

// IDs returns scaffold ids in insertion order.
func (s *ScaffoldSet) IDs() []string {
	return append([]string(nil), s.order...)
}

// All returns every scaffold in insertion order.
func (s *ScaffoldSet) All() []ScaffoldStats {
	out := make([]ScaffoldStats, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.stats[id])
	}
	return out
}

// Genomes returns genome ids in order of first appearance, excluding the
// unbinned pseudo-genome.
func (s *ScaffoldSet) Genomes() []string {
	var out []string
	for _, g := range s.genomes {
		if g != UnbinnedID {
			out = append(out, g)
		}
	}
	return out
}

// InGenome returns the ids of scaffolds assigned to genomeID, in insertion order.
func (s *ScaffoldSet) InGenome(genomeID string) []string {
	return append([]string(nil), s.byGenome[genomeID]...)
}

// Manhattan returns the sum of absolute elementwise differences of a and b.
func Manhattan(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimension
	}
	if len(a) == 0 {
		return 0, nil
	}
	return floats.Distance(a, b, 1), nil
}
