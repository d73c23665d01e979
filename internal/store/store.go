// Package store persists scaffold statistics datasets and the history of
// classification and windowing runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/binrefine/internal/model"
)

// ErrNotFound is returned when a dataset or run does not exist.
var ErrNotFound = errors.New("not found")

// ImportParams holds parameters for importing a scaffold statistics set.
type ImportParams struct {
	Dataset string
	Set     *model.ScaffoldSet
	// Replace drops any scaffolds previously stored under Dataset.
	Replace bool
}

// Dataset describes one stored statistics set.
type Dataset struct {
	Name           string    `json:"name"`
	CoverageNames  []string  `json:"coverage_names"`
	SignatureNames []string  `json:"signature_names"`
	Scaffolds      int       `json:"scaffolds"`
	Genomes        int       `json:"genomes"`
	CreatedAt      time.Time `json:"created_at"`
}

// Run is one recorded invocation of a pipeline command.
type Run struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Dataset   string            `json:"dataset,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Output    string            `json:"output,omitempty"`
	Rows      int               `json:"rows"`
	CreatedAt time.Time         `json:"created_at"`
}

// RunParams holds parameters for recording a run.
type RunParams struct {
	Kind    string
	Dataset string
	Params  map[string]string
	Output  string
	Rows    int
}

// ListRunsParams filters recorded runs.
type ListRunsParams struct {
	Kind    string
	Dataset string
	Limit   int
}

// Store defines the statistics storage interface.
type Store interface {
	// ImportScaffolds stores a statistics set. Returns the number of scaffolds written.
	ImportScaffolds(ctx context.Context, p ImportParams) (int, error)

	// LoadScaffolds rebuilds a stored statistics set in import order.
	LoadScaffolds(ctx context.Context, dataset string) (*model.ScaffoldSet, error)

	// Datasets lists stored datasets by name.
	Datasets(ctx context.Context) ([]Dataset, error)

	// RecordRun appends a run to the history.
	RecordRun(ctx context.Context, p RunParams) (*Run, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListRunsParams) ([]Run, error)

	// Close closes the store.
	Close() error
}
