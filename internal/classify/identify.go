package classify

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/refdist"
)

// Identify reports scaffolds whose statistics diverge from the genome they
// are assigned to. Rows follow genome order, then scaffold order within each
// genome.
func Identify(ctx context.Context, d *refdist.Distributions, set *model.ScaffoldSet, genomes []model.GenomeStats, p Params) (*Report, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	parts := make([][]Row, len(genomes))
	err := partition(ctx, len(genomes), p, func(i int) error {
		gs := genomes[i]
		keys := resolveGenomeKeys(d, gs, p)
		multi := len(gs.MeanCoverage) > 1

		for _, id := range set.InGenome(gs.ID) {
			ss, ok := set.Get(id)
			if !ok {
				continue
			}
			m, err := measure(d, keys, ss, gs)
			if err != nil {
				return err
			}
			flags := m.outlying(p, multi)
			if p.Mode.Reports(len(flags)) {
				parts[i] = append(parts[i], m.row(ss, gs, flags))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("identify outliers: %w", err)
	}

	r := &Report{Kind: KindOutliers, GCPercentile: p.GCPercentile, TDPercentile: p.TDPercentile}
	for _, rows := range parts {
		r.Rows = append(r.Rows, rows...)
	}
	return r, nil
}

// partition runs fn for each index in [0, n) over at most p.Workers
// goroutines, reporting progress as partitions finish.
func partition(ctx context.Context, n int, p Params, fn func(i int) error) error {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
			if p.Progress != nil {
				mu.Lock()
				done++
				p.Progress(done, n)
				mu.Unlock()
			}
			return nil
		})
	}
	return g.Wait()
}
