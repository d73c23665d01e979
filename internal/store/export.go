package store

import (
	"context"
	"fmt"
	"io"

	"github.com/rcliao/binrefine/internal/model"
)

// ExportTSV writes a stored dataset as a scaffold statistics table.
func (s *SQLiteStore) ExportTSV(ctx context.Context, dataset string, w io.Writer) (int, error) {
	set, err := s.LoadScaffolds(ctx, dataset)
	if err != nil {
		return 0, err
	}
	if err := model.WriteScaffoldStats(w, set); err != nil {
		return 0, fmt.Errorf("export %s: %w", dataset, err)
	}
	return set.Len(), nil
}

// ImportTSV parses a scaffold statistics table and stores it under dataset.
func (s *SQLiteStore) ImportTSV(ctx context.Context, dataset string, r io.Reader, replace bool) (int, error) {
	set, err := model.ReadScaffoldStats(r)
	if err != nil {
		return 0, fmt.Errorf("parse statistics: %w", err)
	}
	return s.ImportScaffolds(ctx, ImportParams{Dataset: dataset, Set: set, Replace: replace})
}
