package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Column labels of the scaffold statistics table.
const (
	ColScaffoldID = "Scaffold id"
	ColGenomeID   = "Genome id"
	ColGC         = "GC"
	ColLength     = "Length (bp)"
)

var kmerColumn = regexp.MustCompile(`^[ACGT]{4}$`)

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	return cr
}

func newTSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

// headerIndex maps lower-cased, trimmed header labels to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func requireColumns(idx map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := idx[strings.ToLower(n)]; !ok {
			return fmt.Errorf("missing column %q", n)
		}
	}
	return nil
}

// ReadScaffoldStats parses a scaffold statistics table. Columns named like
// a tetranucleotide (e.g. AAAA) form the signature; every other column after
// the fixed ones is a coverage dimension.
func ReadScaffoldStats(r io.Reader) (*ScaffoldSet, error) {
	cr := newTSVReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, ColScaffoldID, ColGenomeID, ColGC, ColLength); err != nil {
		return nil, err
	}
	fixed := map[int]bool{
		idx[strings.ToLower(ColScaffoldID)]: true,
		idx[strings.ToLower(ColGenomeID)]:   true,
		idx[strings.ToLower(ColGC)]:         true,
		idx[strings.ToLower(ColLength)]:     true,
	}

	set := NewScaffoldSet()
	var sigCols, covCols []int
	for i, h := range header {
		if fixed[i] {
			continue
		}
		h = strings.TrimSpace(h)
		if kmerColumn.MatchString(h) {
			sigCols = append(sigCols, i)
			set.SignatureNames = append(set.SignatureNames, h)
		} else {
			covCols = append(covCols, i)
			set.CoverageNames = append(set.CoverageNames, h)
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		st := ScaffoldStats{
			ID:       strings.TrimSpace(rec[idx[strings.ToLower(ColScaffoldID)]]),
			GenomeID: strings.TrimSpace(rec[idx[strings.ToLower(ColGenomeID)]]),
		}
		if st.GC, err = parseFloat(rec[idx[strings.ToLower(ColGC)]]); err != nil {
			return nil, fmt.Errorf("line %d gc: %w", line, err)
		}
		if st.Length, err = strconv.Atoi(strings.TrimSpace(rec[idx[strings.ToLower(ColLength)]])); err != nil {
			return nil, fmt.Errorf("line %d length: %w", line, err)
		}
		if st.Signature, err = parseColumns(rec, sigCols); err != nil {
			return nil, fmt.Errorf("line %d signature: %w", line, err)
		}
		if st.Coverage, err = parseColumns(rec, covCols); err != nil {
			return nil, fmt.Errorf("line %d coverage: %w", line, err)
		}
		if err := set.Add(st); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return set, nil
}

// WriteScaffoldStats writes set in the layout read by ReadScaffoldStats.
func WriteScaffoldStats(w io.Writer, set *ScaffoldSet) error {
	cw := newTSVWriter(w)
	header := []string{ColScaffoldID, ColGenomeID, ColGC, ColLength}
	header = append(header, set.CoverageNames...)
	header = append(header, set.SignatureNames...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, st := range set.All() {
		rec := []string{st.ID, st.GenomeID, formatFloat(st.GC), strconv.Itoa(st.Length)}
		for _, v := range st.Coverage {
			rec = append(rec, formatFloat(v))
		}
		for _, v := range st.Signature {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGenomeStats writes one row per genome with its aggregate profile.
func WriteGenomeStats(w io.Writer, genomes []GenomeStats, coverageNames []string) error {
	cw := newTSVWriter(w)
	header := []string{ColGenomeID, "Scaffolds", "Length (bp)", "Mean GC", "Mean TD"}
	for _, n := range coverageNames {
		header = append(header, "Mean coverage: "+n)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range genomes {
		rec := []string{
			g.ID,
			strconv.Itoa(g.Scaffolds),
			strconv.Itoa(g.Length),
			strconv.FormatFloat(g.MeanGC, 'f', 2, 64),
			strconv.FormatFloat(g.MeanTD, 'f', 3, 64),
		}
		for _, c := range g.MeanCoverage {
			rec = append(rec, strconv.FormatFloat(c, 'f', 2, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Column labels of the homology table.
const (
	ColGenes        = "# genes"
	ColPercHomology = "% genes with homology"
)

// ReadHomology parses per-scaffold gene homology evidence and keeps
// scaffolds with at least minGenes genes and at least minPerc percent of
// genes with homology.
func ReadHomology(r io.Reader, minGenes int, minPerc float64) (map[string]Homology, error) {
	cr := newTSVReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	if err := requireColumns(idx, ColScaffoldID, ColGenes, ColPercHomology); err != nil {
		return nil, err
	}
	idCol := idx[strings.ToLower(ColScaffoldID)]
	genesCol := idx[ColGenes]
	percCol := idx[ColPercHomology]

	out := make(map[string]Homology)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= genesCol || len(rec) <= percCol {
			return nil, fmt.Errorf("line %d: short record", line)
		}
		var h Homology
		if h.Genes, err = strconv.Atoi(strings.TrimSpace(rec[genesCol])); err != nil {
			return nil, fmt.Errorf("line %d genes: %w", line, err)
		}
		if h.PercHomology, err = parseFloat(rec[percCol]); err != nil {
			return nil, fmt.Errorf("line %d homology: %w", line, err)
		}
		if h.Genes >= minGenes && h.PercHomology >= minPerc {
			out[strings.TrimSpace(rec[idCol])] = h
		}
	}
	return out, nil
}

func parseColumns(rec []string, cols []int) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := parseFloat(rec[c])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
