// Package refdist holds the empirical percentile tables used to judge GC and
// tetranucleotide deviation of scaffolds from their genome.
//
// Tables are loaded once and shared read-only for the rest of a run.
package refdist

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrMalformed is returned when a distribution file does not have the
// expected nesting or has an empty level.
var ErrMalformed = errors.New("malformed distribution")

// Percentiles maps percentile keys to critical values.
type Percentiles struct {
	keys   []float64
	values map[float64]float64
}

// Keys returns the percentile keys in ascending order.
func (p Percentiles) Keys() []float64 { return p.keys }

// Nearest returns the percentile key closest to target.
func (p Percentiles) Nearest(target float64) float64 { return Nearest(p.keys, target) }

// Value returns the critical value at key, falling back to the nearest key
// when this bucket does not carry it.
func (p Percentiles) Value(key float64) float64 {
	if v, ok := p.values[key]; ok {
		return v
	}
	return p.values[p.Nearest(key)]
}

// LengthTable maps scaffold-length buckets to percentile tables.
type LengthTable struct {
	keys  []float64
	byLen map[float64]Percentiles
}

// Lengths returns the length buckets in ascending order.
func (t *LengthTable) Lengths() []float64 { return t.keys }

// At returns the percentiles of the length bucket nearest to length.
func (t *LengthTable) At(length float64) Percentiles {
	return t.byLen[Nearest(t.keys, length)]
}

// Representative returns the percentiles of the smallest length bucket.
// Percentile keys are shared across buckets, so any bucket serves to resolve them.
func (t *LengthTable) Representative() Percentiles {
	return t.byLen[t.keys[0]]
}

// GCTable maps mean-GC buckets (as fractions) to length tables.
type GCTable struct {
	keys []float64
	byGC map[float64]*LengthTable
}

// GCKeys returns the GC buckets in ascending order.
func (t *GCTable) GCKeys() []float64 { return t.keys }

// Bucket returns the length table of the GC bucket nearest to gc (a fraction).
func (t *GCTable) Bucket(gc float64) *LengthTable {
	return t.byGC[Nearest(t.keys, gc)]
}

// Distributions bundles the GC and TD reference tables.
type Distributions struct {
	GC *GCTable
	TD *LengthTable
}

// Load reads both distribution files. Any failure is fatal to classification.
func Load(gcPath, tdPath string) (*Distributions, error) {
	gcSrc, err := os.ReadFile(gcPath)
	if err != nil {
		return nil, fmt.Errorf("read gc distribution: %w", err)
	}
	tdSrc, err := os.ReadFile(tdPath)
	if err != nil {
		return nil, fmt.Errorf("read td distribution: %w", err)
	}
	gc, err := ParseGC(string(gcSrc))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", gcPath, err)
	}
	td, err := ParseTD(string(tdSrc))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", tdPath, err)
	}
	return &Distributions{GC: gc, TD: td}, nil
}

// ParseGC parses a mean GC -> length -> percentile -> value mapping.
func ParseGC(src string) (*GCTable, error) {
	root, err := parseLiteral(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	keys, err := mappingKeys(root, "gc")
	if err != nil {
		return nil, err
	}
	t := &GCTable{keys: keys, byGC: make(map[float64]*LengthTable, len(keys))}
	for _, k := range keys {
		lt, err := buildLengthTable(root.children[k])
		if err != nil {
			return nil, fmt.Errorf("gc %v: %w", k, err)
		}
		t.byGC[k] = lt
	}
	return t, nil
}

// ParseTD parses a length -> percentile -> value mapping.
func ParseTD(src string) (*LengthTable, error) {
	root, err := parseLiteral(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return buildLengthTable(root)
}

func buildLengthTable(n *node) (*LengthTable, error) {
	keys, err := mappingKeys(n, "length")
	if err != nil {
		return nil, err
	}
	t := &LengthTable{keys: keys, byLen: make(map[float64]Percentiles, len(keys))}
	for _, k := range keys {
		p, err := buildPercentiles(n.children[k])
		if err != nil {
			return nil, fmt.Errorf("length %v: %w", k, err)
		}
		t.byLen[k] = p
	}
	return t, nil
}

func buildPercentiles(n *node) (Percentiles, error) {
	keys, err := mappingKeys(n, "percentile")
	if err != nil {
		return Percentiles{}, err
	}
	p := Percentiles{keys: keys, values: make(map[float64]float64, len(keys))}
	for _, k := range keys {
		c := n.children[k]
		if !c.leaf {
			return Percentiles{}, fmt.Errorf("%w: percentile %v is not a number", ErrMalformed, k)
		}
		p.values[k] = c.value
	}
	return p, nil
}

func mappingKeys(n *node, level string) ([]float64, error) {
	if n.leaf {
		return nil, fmt.Errorf("%w: expected %s mapping, got number", ErrMalformed, level)
	}
	if len(n.children) == 0 {
		return nil, fmt.Errorf("%w: empty %s mapping", ErrMalformed, level)
	}
	keys := make([]float64, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys, nil
}
