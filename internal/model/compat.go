package model

// Homology is the gene-level evidence attached to a candidate scaffold.
type Homology struct {
	Genes int `json:"genes"`
	// PercHomology is the percentage of genes with a homolog in the reference.
	PercHomology float64 `json:"perc_homology"`
}

// CompatibilityRecord holds the distances between a scaffold and a candidate bin.
type CompatibilityRecord struct {
	ScaffoldID string   `json:"scaffold_id"`
	GenomeID   string   `json:"genome_id"`
	GCDist     float64  `json:"gc_dist"`
	TDDist     float64  `json:"td_dist"`
	CovDist    float64  `json:"cov_dist"`
	Homology   Homology `json:"homology"`
}
