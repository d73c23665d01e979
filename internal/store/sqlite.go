package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/binrefine/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a ulid that sorts after every id issued before it.
func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		name            TEXT PRIMARY KEY,
		coverage_names  TEXT NOT NULL,
		signature_names TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS scaffolds (
		dataset    TEXT NOT NULL REFERENCES datasets(name) ON DELETE CASCADE,
		id         TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		genome_id  TEXT NOT NULL,
		length     INTEGER NOT NULL,
		gc         REAL NOT NULL,
		signature  TEXT NOT NULL,
		coverage   TEXT NOT NULL,
		PRIMARY KEY (dataset, id)
	);
	CREATE INDEX IF NOT EXISTS idx_scaffolds_genome ON scaffolds(dataset, genome_id);
	CREATE INDEX IF NOT EXISTS idx_scaffolds_seq ON scaffolds(dataset, seq);

	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		dataset    TEXT,
		params     TEXT,
		output     TEXT,
		rows       INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) ImportScaffolds(ctx context.Context, p ImportParams) (int, error) {
	if p.Dataset == "" {
		return 0, fmt.Errorf("dataset name is empty")
	}
	if p.Set == nil {
		return 0, fmt.Errorf("no scaffolds to import")
	}

	covJSON, _ := json.Marshal(nonNil(p.Set.CoverageNames))
	sigJSON, _ := json.Marshal(nonNil(p.Set.SignatureNames))
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var prevCov, prevSig string
	err = tx.QueryRowContext(ctx,
		`SELECT coverage_names, signature_names FROM datasets WHERE name = ?`, p.Dataset).Scan(&prevCov, &prevSig)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO datasets (name, coverage_names, signature_names, created_at) VALUES (?, ?, ?, ?)`,
			p.Dataset, string(covJSON), string(sigJSON), now)
		if err != nil {
			return 0, fmt.Errorf("insert dataset: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("lookup dataset: %w", err)
	case p.Replace:
		if _, err := tx.ExecContext(ctx, `DELETE FROM scaffolds WHERE dataset = ?`, p.Dataset); err != nil {
			return 0, fmt.Errorf("clear dataset: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE datasets SET coverage_names = ?, signature_names = ?, created_at = ? WHERE name = ?`,
			string(covJSON), string(sigJSON), now, p.Dataset)
		if err != nil {
			return 0, fmt.Errorf("update dataset: %w", err)
		}
	default:
		if prevCov != string(covJSON) || prevSig != string(sigJSON) {
			return 0, fmt.Errorf("dataset %s has different columns: %w", p.Dataset, model.ErrDimension)
		}
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM scaffolds WHERE dataset = ?`, p.Dataset).Scan(&next); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scaffolds (dataset, id, seq, genome_id, length, gc, signature, coverage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for _, ss := range p.Set.All() {
		sig, _ := json.Marshal(nonNil(ss.Signature))
		cov, _ := json.Marshal(nonNil(ss.Coverage))
		_, err := stmt.ExecContext(ctx, p.Dataset, ss.ID, next+written, ss.GenomeID, ss.Length, ss.GC, string(sig), string(cov))
		if err != nil {
			return written, fmt.Errorf("insert scaffold %s: %w", ss.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

func (s *SQLiteStore) LoadScaffolds(ctx context.Context, dataset string) (*model.ScaffoldSet, error) {
	var covJSON, sigJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT coverage_names, signature_names FROM datasets WHERE name = ?`, dataset).Scan(&covJSON, &sigJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", dataset, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	set := model.NewScaffoldSet()
	json.Unmarshal([]byte(covJSON), &set.CoverageNames)
	json.Unmarshal([]byte(sigJSON), &set.SignatureNames)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, genome_id, length, gc, signature, coverage
		 FROM scaffolds WHERE dataset = ? ORDER BY seq`, dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		ss, err := scanScaffold(rows)
		if err != nil {
			return nil, err
		}
		if err := set.Add(ss); err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", dataset, err)
		}
	}
	return set, rows.Err()
}

func (s *SQLiteStore) Datasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, d.coverage_names, d.signature_names, d.created_at,
		       COUNT(sc.id),
		       COUNT(DISTINCT CASE WHEN sc.genome_id != ? THEN sc.genome_id END)
		FROM datasets d LEFT JOIN scaffolds sc ON sc.dataset = d.name
		GROUP BY d.name ORDER BY d.name`, model.UnbinnedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		var covJSON, sigJSON, createdAt string
		if err := rows.Scan(&d.Name, &covJSON, &sigJSON, &createdAt, &d.Scaffolds, &d.Genomes); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(covJSON), &d.CoverageNames)
		json.Unmarshal([]byte(sigJSON), &d.SignatureNames)
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDataset removes a dataset and its scaffolds.
func (s *SQLiteStore) DeleteDataset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("dataset %s: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) RecordRun(ctx context.Context, p RunParams) (*Run, error) {
	if p.Kind == "" {
		return nil, fmt.Errorf("run kind is empty")
	}
	now := time.Now().UTC()
	run := &Run{
		ID:        s.newID(),
		Kind:      p.Kind,
		Dataset:   p.Dataset,
		Params:    p.Params,
		Output:    p.Output,
		Rows:      p.Rows,
		CreatedAt: now.Truncate(time.Second),
	}

	var paramsJSON *string
	if len(p.Params) > 0 {
		b, _ := json.Marshal(p.Params)
		str := string(b)
		paramsJSON = &str
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, dataset, params, output, rows, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, nullString(p.Dataset), paramsJSON, nullString(p.Output), p.Rows, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListRunsParams) ([]Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, p.Kind)
	}
	if p.Dataset != "" {
		where = append(where, "dataset = ?")
		args = append(args, p.Dataset)
	}

	query := fmt.Sprintf(`
		SELECT id, kind, dataset, params, output, rows, created_at
		FROM runs WHERE %s
		ORDER BY id DESC
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, dataset, params, output, rows, created_at FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanScaffold(row scanner) (model.ScaffoldStats, error) {
	var ss model.ScaffoldStats
	var sigJSON, covJSON string
	if err := row.Scan(&ss.ID, &ss.GenomeID, &ss.Length, &ss.GC, &sigJSON, &covJSON); err != nil {
		return ss, err
	}
	if err := json.Unmarshal([]byte(sigJSON), &ss.Signature); err != nil {
		return ss, fmt.Errorf("scaffold %s signature: %w", ss.ID, err)
	}
	if err := json.Unmarshal([]byte(covJSON), &ss.Coverage); err != nil {
		return ss, fmt.Errorf("scaffold %s coverage: %w", ss.ID, err)
	}
	return ss, nil
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var dataset, params, output sql.NullString
	var createdAt string

	err := row.Scan(&r.ID, &r.Kind, &dataset, &params, &output, &r.Rows, &createdAt)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if dataset.Valid {
		r.Dataset = dataset.String
	}
	if output.Valid {
		r.Output = output.String
	}
	if params.Valid {
		json.Unmarshal([]byte(params.String), &r.Params)
	}
	return r, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
