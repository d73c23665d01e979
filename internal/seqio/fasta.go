// Package seqio reads and writes FASTA sequence stores.
package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one named sequence.
type Record struct {
	ID   string
	Desc string
	Seq  string
}

// Reader reads FASTA records one at a time.
type Reader struct {
	br      *bufio.Reader
	pending string // header line of the next record
	line    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 1<<20)}
}

// Read returns the next record, or io.EOF when input is exhausted.
func (r *Reader) Read() (Record, error) {
	header := r.pending
	r.pending = ""
	for header == "" {
		l, err := r.readLine()
		if err != nil {
			return Record{}, err
		}
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, ";") {
			continue
		}
		if !strings.HasPrefix(l, ">") {
			return Record{}, fmt.Errorf("line %d: expected '>' header", r.line)
		}
		header = l
	}

	rec := Record{}
	name := strings.TrimSpace(header[1:])
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		rec.ID, rec.Desc = name[:i], strings.TrimSpace(name[i+1:])
	} else {
		rec.ID = name
	}
	if rec.ID == "" {
		return Record{}, fmt.Errorf("line %d: empty sequence id", r.line)
	}

	var sb strings.Builder
	for {
		l, err := r.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Record{}, err
		}
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, ">") {
			r.pending = l
			break
		}
		sb.WriteString(l)
	}
	rec.Seq = sb.String()
	return rec, nil
}

func (r *Reader) readLine() (string, error) {
	l, err := r.br.ReadString('\n')
	if err == io.EOF && l != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	r.line++
	return l, nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	fr := NewReader(r)
	var out []Record
	for {
		rec, err := fr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ReadFile reads a FASTA file; names ending in .gz are decompressed.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	recs, err := ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}

// Write writes records to w, one sequence line per record.
func Write(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if r.Desc != "" {
			fmt.Fprintf(bw, ">%s %s\n", r.ID, r.Desc)
		} else {
			fmt.Fprintf(bw, ">%s\n", r.ID)
		}
		bw.WriteString(r.Seq)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes records to path, creating parent directories.
func WriteFile(path string, recs []Record) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GenomeID derives a bin id from a genome file name by dropping the
// directory and the last extension.
func GenomeID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}
