package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/binrefine/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSet(t *testing.T, ids ...string) *model.ScaffoldSet {
	t.Helper()
	set := model.NewScaffoldSet()
	set.CoverageNames = []string{"sample1", "sample2"}
	set.SignatureNames = []string{"AAAA", "AAAC"}
	for i, id := range ids {
		genome := "binA"
		if i%2 == 1 {
			genome = ""
		}
		err := set.Add(model.ScaffoldStats{
			ID: id, GenomeID: genome, Length: 1000 * (i + 1), GC: 40 + float64(i),
			Signature: []float64{0.25, 0.75}, Coverage: []float64{float64(i), 2.5},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return set
}

func TestImportAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.ImportScaffolds(ctx, ImportParams{Dataset: "assembly", Set: testSet(t, "s3", "s1", "s2")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 scaffolds, got %d", n)
	}

	got, err := s.LoadScaffolds(ctx, "assembly")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := got.IDs()
	if strings.Join(ids, ",") != "s3,s1,s2" {
		t.Errorf("expected import order s3,s1,s2, got %v", ids)
	}
	s1, _ := got.Get("s1")
	if s1.GenomeID != model.UnbinnedID {
		t.Errorf("expected s1 unbinned, got %q", s1.GenomeID)
	}
	if s1.Length != 2000 || s1.GC != 41 || s1.Coverage[0] != 1 {
		t.Errorf("unexpected stats %+v", s1)
	}
	if len(got.CoverageNames) != 2 || got.SignatureNames[1] != "AAAC" {
		t.Errorf("unexpected column names %v %v", got.CoverageNames, got.SignatureNames)
	}
}

func TestImportAppendAndReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "a", "b")})
	if _, err := s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "c")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := s.LoadScaffolds(ctx, "d")
	if got.Len() != 3 {
		t.Errorf("expected 3 scaffolds after append, got %d", got.Len())
	}

	// appending an existing id violates the primary key
	if _, err := s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "a")}); err == nil {
		t.Error("expected error appending a duplicate scaffold")
	}

	if _, err := s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "z"), Replace: true}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = s.LoadScaffolds(ctx, "d")
	if got.Len() != 1 || got.IDs()[0] != "z" {
		t.Errorf("expected only z after replace, got %v", got.IDs())
	}
}

func TestImportColumnMismatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "a")})
	other := testSet(t, "b")
	other.CoverageNames = []string{"sampleX", "sample2"}
	_, err := s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: other})
	if !errors.Is(err, model.ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
}

func TestLoadMissingDataset(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadScaffolds(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDatasetsAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.ImportScaffolds(ctx, ImportParams{Dataset: "beta", Set: testSet(t, "a", "b", "c")})
	s.ImportScaffolds(ctx, ImportParams{Dataset: "alpha", Set: testSet(t, "a")})

	ds, err := s.Datasets(ctx)
	if err != nil {
		t.Fatalf("datasets: %v", err)
	}
	if len(ds) != 2 || ds[0].Name != "alpha" {
		t.Fatalf("expected alpha and beta, got %+v", ds)
	}
	if ds[1].Scaffolds != 3 || ds[1].Genomes != 1 {
		t.Errorf("expected 3 scaffolds in 1 genome, got %d in %d", ds[1].Scaffolds, ds[1].Genomes)
	}

	if err := s.DeleteDataset(ctx, "beta"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.LoadScaffolds(ctx, "beta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected beta gone, got %v", err)
	}
	if err := s.DeleteDataset(ctx, "beta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r1, err := s.RecordRun(ctx, RunParams{Kind: "outliers", Dataset: "d", Params: map[string]string{"report": "any"}, Rows: 4})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if r1.ID == "" {
		t.Error("expected non-empty ID")
	}
	r2, _ := s.RecordRun(ctx, RunParams{Kind: "windows", Output: "out/links_file.tsv", Rows: 10})
	s.RecordRun(ctx, RunParams{Kind: "outliers", Dataset: "other"})

	all, err := s.ListRuns(ctx, ListRunsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[1].ID != r2.ID {
		t.Errorf("expected newest first, got %s at position 1", all[1].ID)
	}

	outliers, _ := s.ListRuns(ctx, ListRunsParams{Kind: "outliers", Dataset: "d"})
	if len(outliers) != 1 || outliers[0].Params["report"] != "any" || outliers[0].Rows != 4 {
		t.Errorf("unexpected filtered runs %+v", outliers)
	}

	limited, _ := s.ListRuns(ctx, ListRunsParams{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(limited))
	}

	got, err := s.GetRun(ctx, r2.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Output != "out/links_file.tsv" || got.Dataset != "" {
		t.Errorf("unexpected run %+v", got)
	}
	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.RecordRun(ctx, RunParams{}); err == nil {
		t.Error("expected error for empty kind")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.ImportScaffolds(ctx, ImportParams{Dataset: "d", Set: testSet(t, "a", "b")})
	s.RecordRun(ctx, RunParams{Kind: "outliers"})
	s.RecordRun(ctx, RunParams{Kind: "outliers"})
	s.RecordRun(ctx, RunParams{Kind: "windows"})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalDatasets != 1 || st.TotalScaffolds != 2 || st.TotalRuns != 3 {
		t.Errorf("unexpected totals %+v", st)
	}
	if len(st.Runs) != 2 || st.Runs[0].Kind != "outliers" || st.Runs[0].Count != 2 {
		t.Errorf("unexpected run breakdown %+v", st.Runs)
	}
}

func TestExportImportTSV(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.ImportScaffolds(ctx, ImportParams{Dataset: "src", Set: testSet(t, "a", "b")})

	var buf bytes.Buffer
	n, err := s.ExportTSV(ctx, "src", &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 exported, got %d", n)
	}

	n, err = s.ImportTSV(ctx, "copy", &buf, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}
	got, _ := s.LoadScaffolds(ctx, "copy")
	b, _ := got.Get("b")
	if b.GC != 41 || b.Signature[1] != 0.75 {
		t.Errorf("unexpected round-tripped stats %+v", b)
	}
}
