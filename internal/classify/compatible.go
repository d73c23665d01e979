package classify

import (
	"context"
	"fmt"

	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/refdist"
)

// Compatible reports candidate scaffolds whose statistics agree with a
// genome. Every candidate is evaluated against every genome; rows follow
// scaffold order, then genome order. Candidates map scaffold ids to the
// homology evidence carried into the report.
func Compatible(ctx context.Context, d *refdist.Distributions, candidates map[string]model.Homology, set *model.ScaffoldSet, genomes []model.GenomeStats, p Params) (*Report, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var ids []string
	for _, id := range set.IDs() {
		if _, ok := candidates[id]; ok {
			ids = append(ids, id)
		}
	}

	keys := make([]genomeKeys, len(genomes))
	for i, gs := range genomes {
		keys[i] = resolveGenomeKeys(d, gs, p)
	}

	parts := make([][]Row, len(ids))
	err := partition(ctx, len(ids), p, func(i int) error {
		ss, _ := set.Get(ids[i])
		hom := candidates[ss.ID]
		for j, gs := range genomes {
			m, err := measure(d, keys[j], ss, gs)
			if err != nil {
				return err
			}
			flags := m.compatible(p, len(gs.MeanCoverage) > 1)
			if p.Mode.Reports(len(flags)) {
				row := m.row(ss, gs, flags)
				row.Genes = hom.Genes
				row.PercHomology = hom.PercHomology
				parts[i] = append(parts[i], row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("identify compatible scaffolds: %w", err)
	}

	r := &Report{Kind: KindCompatible, GCPercentile: p.GCPercentile, TDPercentile: p.TDPercentile}
	for _, rows := range parts {
		r.Rows = append(r.Rows, rows...)
	}
	return r, nil
}

// UnbinnedCandidates returns every unbinned scaffold of set with empty
// homology evidence, for use when no homology table is available.
func UnbinnedCandidates(set *model.ScaffoldSet) map[string]model.Homology {
	out := make(map[string]model.Homology)
	for _, ss := range set.All() {
		if !ss.Binned() {
			out[ss.ID] = model.Homology{}
		}
	}
	return out
}
