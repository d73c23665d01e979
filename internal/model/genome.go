package model

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// GenomeStats holds the aggregate profile of a genome bin.
type GenomeStats struct {
	ID            string    `json:"id"`
	Scaffolds     int       `json:"scaffolds"`
	Length        int       `json:"length"`
	MeanGC        float64   `json:"mean_gc"`
	MeanSignature []float64 `json:"mean_signature"`
	MeanCoverage  []float64 `json:"mean_coverage"`
	// MeanTD is the mean Manhattan distance of member signatures to MeanSignature.
	MeanTD float64 `json:"mean_td"`
}

// AggregateGenomes computes GenomeStats for every binned genome in set,
// in order of first appearance.
func AggregateGenomes(set *ScaffoldSet) ([]GenomeStats, error) {
	var out []GenomeStats
	for _, gid := range set.Genomes() {
		var members []ScaffoldStats
		for _, id := range set.InGenome(gid) {
			st, _ := set.Get(id)
			members = append(members, st)
		}
		gs, err := Aggregate(gid, members)
		if err != nil {
			return nil, fmt.Errorf("aggregate genome %s: %w", gid, err)
		}
		out = append(out, gs)
	}
	return out, nil
}

// Aggregate builds the profile of a single genome from its member scaffolds.
func Aggregate(genomeID string, members []ScaffoldStats) (GenomeStats, error) {
	gs := GenomeStats{ID: genomeID, Scaffolds: len(members)}
	if len(members) == 0 {
		return gs, fmt.Errorf("genome has no scaffolds")
	}

	gcs := make([]float64, len(members))
	for i, m := range members {
		gcs[i] = m.GC
		gs.Length += m.Length
	}
	gs.MeanGC, _ = stats.Mean(gcs)

	var err error
	if gs.MeanSignature, err = columnMeans(members, func(m ScaffoldStats) []float64 { return m.Signature }); err != nil {
		return gs, fmt.Errorf("signature: %w", err)
	}
	if gs.MeanCoverage, err = columnMeans(members, func(m ScaffoldStats) []float64 { return m.Coverage }); err != nil {
		return gs, fmt.Errorf("coverage: %w", err)
	}

	tds := make([]float64, len(members))
	for i, m := range members {
		if tds[i], err = Manhattan(m.Signature, gs.MeanSignature); err != nil {
			return gs, err
		}
	}
	gs.MeanTD, _ = stats.Mean(tds)

	return gs, nil
}

func columnMeans(members []ScaffoldStats, vec func(ScaffoldStats) []float64) ([]float64, error) {
	dims := len(vec(members[0]))
	means := make([]float64, dims)
	col := make([]float64, len(members))
	for d := 0; d < dims; d++ {
		for i, m := range members {
			v := vec(m)
			if len(v) != dims {
				return nil, ErrDimension
			}
			col[i] = v[d]
		}
		means[d], _ = stats.Mean(col)
	}
	return means, nil
}
