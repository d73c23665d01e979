package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string      `json:"db_path"`
	DBSizeBytes    int64       `json:"db_size_bytes"`
	TotalDatasets  int         `json:"total_datasets"`
	TotalScaffolds int         `json:"total_scaffolds"`
	TotalRuns      int         `json:"total_runs"`
	Runs           []KindStats `json:"runs"`
}

// KindStats holds per-kind run counts.
type KindStats struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets`).Scan(&st.TotalDatasets)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scaffolds`).Scan(&st.TotalScaffolds)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) as cnt FROM runs
		GROUP BY kind ORDER BY cnt DESC, kind`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KindStats
		rows.Scan(&k.Kind, &k.Count)
		st.Runs = append(st.Runs, k)
	}

	return st, nil
}
