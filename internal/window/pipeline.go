package window

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/binrefine/internal/seqio"
)

// LinksFileName is the name of the links file written next to the windows.
const LinksFileName = "links_file.tsv"

// RunParams configures a windowing run over a scaffold file.
type RunParams struct {
	ScaffoldFile string
	OutputDir    string
	Options      Options
	LinkMode     LinkMode
	Workers      int

	// Progress, if set, is called after each scaffold is windowed.
	Progress func(done, total int)
	// Notify, if set, receives informational notes.
	Notify func(string)
}

// RunResult names the artifacts of a windowing run.
type RunResult struct {
	WindowFile string
	LinksFile  string
	Scaffolds  int
	Windows    int
	Links      int
}

// WindowFileName returns "<stem>windows<ext>" for a scaffold file name, so
// scaffolds.fna gives scaffoldswindows.fna. Dots inside the stem are
// dropped. Windows are written uncompressed, so a .gz suffix is dropped too.
func WindowFileName(scaffoldFile string) string {
	base := strings.TrimSuffix(filepath.Base(scaffoldFile), ".gz")
	ext := filepath.Ext(base)
	stem := strings.ReplaceAll(strings.TrimSuffix(base, ext), ".", "")
	return stem + "windows" + ext
}

// GenerateAll windows every record concurrently and returns one group per
// record, in input order. Any invalid size aborts the whole batch.
func GenerateAll(ctx context.Context, recs []seqio.Record, opts Options, workers int, progress func(done, total int)) ([]Group, error) {
	if workers < 1 {
		workers = 1
	}
	groups := make([]Group, len(recs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var mu sync.Mutex
	done := 0
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ws, err := Generate(rec.ID, rec.Seq, opts)
			if err != nil {
				return err
			}
			groups[i] = Group{Parent: rec.ID, Windows: ws}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(recs))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

// Run windows a scaffold file, writing the windows as a FASTA file and the
// adjacency links to LinksFileName in p.OutputDir.
func Run(ctx context.Context, p RunParams) (*RunResult, error) {
	recs, err := seqio.ReadFile(p.ScaffoldFile)
	if err != nil {
		return nil, fmt.Errorf("read scaffolds: %w", err)
	}

	groups, err := GenerateAll(ctx, recs, p.Options, p.Workers, p.Progress)
	if err != nil {
		return nil, fmt.Errorf("generate windows: %w", err)
	}

	res := &RunResult{
		WindowFile: filepath.Join(p.OutputDir, WindowFileName(p.ScaffoldFile)),
		LinksFile:  filepath.Join(p.OutputDir, LinksFileName),
		Scaffolds:  len(recs),
	}

	var out []seqio.Record
	for _, g := range groups {
		for _, w := range g.Windows {
			out = append(out, seqio.Record{ID: w.ID, Seq: w.Seq})
		}
	}
	res.Windows = len(out)
	if err := seqio.WriteFile(res.WindowFile, out); err != nil {
		return nil, fmt.Errorf("write windows: %w", err)
	}

	if err := WriteLinks(res.LinksFile, groups, p.LinkMode, p.Notify); err != nil {
		return nil, err
	}
	res.Links = len(Links(groups))
	return res, nil
}
