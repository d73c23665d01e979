package classify

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind distinguishes outlier reports from compatibility reports.
type Kind int

const (
	KindOutliers Kind = iota
	KindCompatible
)

const (
	outlyingColumn   = "Outlying distributions"
	compatibleColumn = "Compatible distributions"
)

// Row is one reported scaffold/genome pair. GCLower and GCUpper are absolute
// GC percentages (genome mean plus the critical deviation).
type Row struct {
	ScaffoldID string
	GenomeID   string
	Length     int
	Flags      []Flag

	ScaffoldGC float64
	GenomeGC   float64
	GCLower    float64
	GCUpper    float64

	ScaffoldTD float64
	GenomeTD   float64
	TDBound    float64

	ScaffoldCoverage float64
	GenomeCoverage   float64
	CovCorr          float64
	CovPercErr       float64

	// Set on compatibility reports only.
	Genes        int
	PercHomology float64
}

// Report is the result of a classification pass.
type Report struct {
	Kind         Kind
	GCPercentile float64
	TDPercentile float64
	Rows         []Row
}

func formatPerc(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func (r *Report) header() []string {
	flags := outlyingColumn
	if r.Kind == KindCompatible {
		flags = compatibleColumn
	}
	gc, td := formatPerc(r.GCPercentile), formatPerc(r.TDPercentile)
	h := []string{
		"Scaffold id", "Genome id", "Scaffold length (bp)", flags,
		"Scaffold GC", "Mean genome GC",
		"Lower GC bound (" + gc + "%)", "Upper GC bound (" + gc + "%)",
		"Scaffold TD", "Mean genome TD", "Upper TD bound (" + td + "%)",
		"Mean scaffold coverage", "Mean genome coverage", "Coverage correlation", "Mean coverage error",
	}
	if r.Kind == KindCompatible {
		h = append(h, "# genes", "% genes with homology")
	}
	return h
}

// Write writes the report as a tab-separated table with a header line.
func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(r.header(), "\t"))
	for _, row := range r.Rows {
		flags := make([]string, len(row.Flags))
		for i, f := range row.Flags {
			flags[i] = string(f)
		}
		fmt.Fprintf(bw, "%s\t%s\t%d\t%s", row.ScaffoldID, row.GenomeID, row.Length, strings.Join(flags, ","))
		fmt.Fprintf(bw, "\t%.2f\t%.2f\t%.2f\t%.2f", row.ScaffoldGC, row.GenomeGC, row.GCLower, row.GCUpper)
		fmt.Fprintf(bw, "\t%.3f\t%.3f\t%.3f", row.ScaffoldTD, row.GenomeTD, row.TDBound)
		fmt.Fprintf(bw, "\t%.2f\t%.2f\t%.2f\t%.2f", row.ScaffoldCoverage, row.GenomeCoverage, row.CovCorr, row.CovPercErr)
		if r.Kind == KindCompatible {
			fmt.Fprintf(bw, "\t%d\t%.1f", row.Genes, row.PercHomology)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// ReadReport parses a report produced by Write.
func ReadReport(rd io.Reader) (*Report, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("read report: empty input")
	}

	header := strings.Split(sc.Text(), "\t")
	if len(header) < 15 {
		return nil, fmt.Errorf("read report: expected at least 15 columns, got %d", len(header))
	}
	r := &Report{}
	switch header[3] {
	case outlyingColumn:
		r.Kind = KindOutliers
	case compatibleColumn:
		r.Kind = KindCompatible
	default:
		return nil, fmt.Errorf("read report: unknown flag column %q", header[3])
	}
	var err error
	if r.GCPercentile, err = headerPerc(header[6], "Lower GC bound ("); err != nil {
		return nil, err
	}
	if r.TDPercentile, err = headerPerc(header[10], "Upper TD bound ("); err != nil {
		return nil, err
	}
	want := len(r.header())

	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		f := strings.Split(text, "\t")
		if len(f) != want {
			return nil, fmt.Errorf("read report line %d: expected %d fields, got %d", line, want, len(f))
		}
		row, err := parseRow(f, r.Kind)
		if err != nil {
			return nil, fmt.Errorf("read report line %d: %w", line, err)
		}
		r.Rows = append(r.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func headerPerc(h, prefix string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(h, prefix), "%)")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("read report: bad percentile in %q", h)
	}
	return v, nil
}

func parseRow(f []string, kind Kind) (Row, error) {
	row := Row{ScaffoldID: f[0], GenomeID: f[1]}
	var err error
	if row.Length, err = strconv.Atoi(f[2]); err != nil {
		return row, fmt.Errorf("length: %w", err)
	}
	if f[3] != "" {
		for _, s := range strings.Split(f[3], ",") {
			row.Flags = append(row.Flags, Flag(s))
		}
	}

	nums := []*float64{
		&row.ScaffoldGC, &row.GenomeGC, &row.GCLower, &row.GCUpper,
		&row.ScaffoldTD, &row.GenomeTD, &row.TDBound,
		&row.ScaffoldCoverage, &row.GenomeCoverage, &row.CovCorr, &row.CovPercErr,
	}
	for i, dst := range nums {
		if *dst, err = strconv.ParseFloat(f[4+i], 64); err != nil {
			return row, fmt.Errorf("column %d: %w", 5+i, err)
		}
	}

	if kind == KindCompatible {
		if row.Genes, err = strconv.Atoi(f[15]); err != nil {
			return row, fmt.Errorf("genes: %w", err)
		}
		if row.PercHomology, err = strconv.ParseFloat(f[16], 64); err != nil {
			return row, fmt.Errorf("homology: %w", err)
		}
	}
	return row, nil
}

// ReadScaffoldIDs returns the first column of a tab-separated table,
// skipping its header line.
func ReadScaffoldIDs(rd io.Reader) ([]string, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var ids []string
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		id, _, _ := strings.Cut(sc.Text(), "\t")
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}
