package classify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/seqio"
)

func sampleRow() Row {
	return Row{
		ScaffoldID: "s1", GenomeID: "binA", Length: 5120, Flags: []Flag{FlagGC, FlagCovPerc},
		ScaffoldGC: 55.25, GenomeGC: 50.5, GCLower: 46.5, GCUpper: 54.5,
		ScaffoldTD: 0.125, GenomeTD: 0.25, TDBound: 0.5,
		ScaffoldCoverage: 12.75, GenomeCoverage: 10.5, CovCorr: 0.75, CovPercErr: -1,
	}
}

func TestReport_RoundTrip(t *testing.T) {
	r := &Report{Kind: KindOutliers, GCPercentile: 95, TDPercentile: 99.5, Rows: []Row{sampleRow()}}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.Contains(t, header, "Lower GC bound (95%)")
	assert.Contains(t, header, "Upper TD bound (99.5%)")
	assert.Contains(t, buf.String(), "GC,COV_PERC")

	got, err := ReadReport(&buf)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestReport_CompatibleRoundTrip(t *testing.T) {
	row := sampleRow()
	row.Flags = []Flag{FlagGC, FlagTD, FlagCovCorr}
	row.Genes = 3
	row.PercHomology = 66.5
	r := &Report{Kind: KindCompatible, GCPercentile: 90, TDPercentile: 95, Rows: []Row{row}}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	got, err := ReadReport(&buf)
	require.NoError(t, err)
	assert.Equal(t, KindCompatible, got.Kind)
	assert.Equal(t, r.Rows, got.Rows)
}

func TestReadReport_Errors(t *testing.T) {
	_, err := ReadReport(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadReport(strings.NewReader("Scaffold id\tGenome id\n"))
	assert.Error(t, err)

	var buf bytes.Buffer
	r := &Report{Kind: KindOutliers, GCPercentile: 95, TDPercentile: 95}
	require.NoError(t, r.Write(&buf))
	buf.WriteString("s1\tbinA\tnotanumber\n")
	_, err = ReadReport(&buf)
	assert.Error(t, err)
}

func TestReadScaffoldIDs(t *testing.T) {
	in := "Scaffold id\tGenome id\ns1\tbinA\n\ns2\tbinB\n"
	ids, err := ReadScaffoldIDs(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
}

func TestRecords(t *testing.T) {
	recs := Records([]Row{{
		ScaffoldID: "u1", GenomeID: "G1",
		ScaffoldGC: 48, GenomeGC: 50, ScaffoldTD: 0.2,
		ScaffoldCoverage: 9, GenomeCoverage: 12, Genes: 2, PercHomology: 50,
	}})
	require.Len(t, recs, 1)
	assert.Equal(t, 2.0, recs[0].GCDist)
	assert.Equal(t, 0.2, recs[0].TDDist)
	assert.Equal(t, 3.0, recs[0].CovDist)
	assert.Equal(t, model.Homology{Genes: 2, PercHomology: 50}, recs[0].Homology)
}

func rec(scaffold, genome string, gc, td, cov float64) model.CompatibilityRecord {
	return model.CompatibilityRecord{ScaffoldID: scaffold, GenomeID: genome, GCDist: gc, TDDist: td, CovDist: cov}
}

func admissionRecords() []model.CompatibilityRecord {
	return []model.CompatibilityRecord{
		rec("x", "G1", 1, 0.1, 1),
		rec("x", "G2", 2, 0.2, 2),
		// closest to G1 in GC and TD but to G2 in coverage
		rec("y", "G1", 1, 0.1, 5),
		rec("y", "G2", 2, 0.2, 1),
		rec("z", "G2", 3, 0.3, 3),
		rec("w", "G2", 1, 0.1, 1),
		rec("w", "G1", 1, 0.1, 1),
	}
}

func TestAdmitUnique(t *testing.T) {
	recs := admissionRecords()
	assert.Empty(t, AdmitUnique(recs, "G1"))
	assert.Equal(t, []string{"z"}, AdmitUnique(recs, "G2"))
	assert.Empty(t, AdmitUnique(recs, "G3"))
}

func TestAdmitUnique_RepeatedGenomeCountsOnce(t *testing.T) {
	recs := []model.CompatibilityRecord{rec("x", "G1", 1, 1, 1), rec("x", "G1", 2, 2, 2)}
	assert.Equal(t, []string{"x"}, AdmitUnique(recs, "G1"))
}

func TestAdmitClosest(t *testing.T) {
	recs := admissionRecords()
	assert.Equal(t, []string{"x", "w"}, AdmitClosest(recs, "G1"))
	assert.Equal(t, []string{"z"}, AdmitClosest(recs, "G2"))
}

func TestRemoveOutliers(t *testing.T) {
	seqs := []seqio.Record{{ID: "a", Seq: "AC"}, {ID: "b", Seq: "GT"}, {ID: "c", Seq: "TT"}}

	assert.Equal(t, seqs, RemoveOutliers(seqs, nil))
	assert.Equal(t, seqs, RemoveOutliers(seqs, []string{"missing"}))

	got := RemoveOutliers(seqs, []string{"b"})
	assert.Equal(t, []seqio.Record{{ID: "a", Seq: "AC"}, {ID: "c", Seq: "TT"}}, got)
}

func TestAddScaffolds(t *testing.T) {
	genome := []seqio.Record{{ID: "a", Seq: "AC"}}
	pool := []seqio.Record{{ID: "a", Seq: "ACGT"}, {ID: "u1", Seq: "GG"}}

	out, failed := AddScaffolds(genome, pool, []string{"u1", "a", "gone"})
	assert.Equal(t, []string{"gone"}, failed)
	assert.Equal(t, []seqio.Record{{ID: "a", Seq: "ACGT"}, {ID: "u1", Seq: "GG"}}, out)
	assert.Equal(t, "AC", genome[0].Seq)
}
