package seqio

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadAll(t *testing.T) {
	in := ">s1 first scaffold\nACGT\nACGT\n\n>s2\nG\n>s3\n"
	recs, err := ReadAll(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].ID != "s1" || recs[0].Desc != "first scaffold" || recs[0].Seq != "ACGTACGT" {
		t.Errorf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Seq != "G" {
		t.Errorf("expected 'G', got %q", recs[1].Seq)
	}
	if recs[2].Seq != "" {
		t.Errorf("expected empty sequence, got %q", recs[2].Seq)
	}
}

func TestReadAll_NoTrailingNewline(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(">a\nAC"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0].Seq != "AC" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestReadAll_MissingHeader(t *testing.T) {
	if _, err := ReadAll(strings.NewReader("ACGT\n")); err == nil {
		t.Fatal("expected error for sequence without header")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	recs := []Record{{ID: "a", Seq: "ACGT"}, {ID: "b", Desc: "x y", Seq: "TT"}}
	var buf bytes.Buffer
	if err := Write(&buf, recs); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != recs[0] || got[1] != recs[1] {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestReadFile_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.fna.gz")
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(">a\nACGT\n"))
	gz.Close()
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0].Seq != "ACGT" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestGenomeID(t *testing.T) {
	tests := map[string]string{
		"bins/bin_1.fna":    "bin_1",
		"bin.2.fa":          "bin.2",
		"/x/bin_3.fasta.gz": "bin_3",
	}
	for in, want := range tests {
		if got := GenomeID(in); got != want {
			t.Errorf("GenomeID(%q) = %q, want %q", in, got, want)
		}
	}
}
