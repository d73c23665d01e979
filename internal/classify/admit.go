package classify

import (
	"math"
	"sort"

	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/seqio"
)

// Records converts compatibility report rows into distance records.
func Records(rows []Row) []model.CompatibilityRecord {
	out := make([]model.CompatibilityRecord, len(rows))
	for i, r := range rows {
		out[i] = model.CompatibilityRecord{
			ScaffoldID: r.ScaffoldID,
			GenomeID:   r.GenomeID,
			GCDist:     math.Abs(r.ScaffoldGC - r.GenomeGC),
			TDDist:     r.ScaffoldTD,
			CovDist:    math.Abs(r.ScaffoldCoverage - r.GenomeCoverage),
			Homology:   model.Homology{Genes: r.Genes, PercHomology: r.PercHomology},
		}
	}
	return out
}

// groupByScaffold returns scaffold ids in first-appearance order and the
// records of each scaffold sorted by genome id.
func groupByScaffold(records []model.CompatibilityRecord) ([]string, map[string][]model.CompatibilityRecord) {
	var order []string
	groups := make(map[string][]model.CompatibilityRecord)
	for _, r := range records {
		if _, ok := groups[r.ScaffoldID]; !ok {
			order = append(order, r.ScaffoldID)
		}
		groups[r.ScaffoldID] = append(groups[r.ScaffoldID], r)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].GenomeID < g[j].GenomeID })
	}
	return order, groups
}

// AdmitUnique returns the scaffolds compatible with exactly one genome,
// where that genome is genomeID.
func AdmitUnique(records []model.CompatibilityRecord, genomeID string) []string {
	order, groups := groupByScaffold(records)
	var out []string
	for _, id := range order {
		bins := make(map[string]bool)
		for _, r := range groups[id] {
			bins[r.GenomeID] = true
		}
		if len(bins) == 1 && bins[genomeID] {
			out = append(out, id)
		}
	}
	return out
}

// AdmitClosest returns the scaffolds whose closest genome in GC, TD and
// coverage distance is genomeID on all three. Ties go to the smallest genome id.
func AdmitClosest(records []model.CompatibilityRecord, genomeID string) []string {
	order, groups := groupByScaffold(records)
	var out []string
	for _, id := range order {
		g := groups[id]
		gc := argmin(g, func(r model.CompatibilityRecord) float64 { return r.GCDist })
		td := argmin(g, func(r model.CompatibilityRecord) float64 { return r.TDDist })
		cov := argmin(g, func(r model.CompatibilityRecord) float64 { return r.CovDist })
		if gc == genomeID && td == genomeID && cov == genomeID {
			out = append(out, id)
		}
	}
	return out
}

// argmin expects records sorted by genome id, so the first minimum wins ties.
func argmin(records []model.CompatibilityRecord, dist func(model.CompatibilityRecord) float64) string {
	best := math.Inf(1)
	var bestID string
	for _, r := range records {
		if d := dist(r); d < best {
			best, bestID = d, r.GenomeID
		}
	}
	return bestID
}

// RemoveOutliers returns seqs without the records named in ids. Ids not
// present in seqs are ignored.
func RemoveOutliers(seqs []seqio.Record, ids []string) []seqio.Record {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]seqio.Record, 0, len(seqs))
	for _, s := range seqs {
		if !drop[s.ID] {
			out = append(out, s)
		}
	}
	return out
}

// AddScaffolds returns genome with the pool records named in ids added.
// Records already in genome are replaced in place; ids missing from pool are
// returned as failed.
func AddScaffolds(genome, pool []seqio.Record, ids []string) (out []seqio.Record, failed []string) {
	byID := make(map[string]seqio.Record, len(pool))
	for _, r := range pool {
		byID[r.ID] = r
	}
	pos := make(map[string]int, len(genome))
	out = append(out, genome...)
	for i, r := range out {
		pos[r.ID] = i
	}
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			failed = append(failed, id)
			continue
		}
		if i, ok := pos[id]; ok {
			out[i] = r
			continue
		}
		pos[id] = len(out)
		out = append(out, r)
	}
	return out, failed
}
