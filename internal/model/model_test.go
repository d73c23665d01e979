package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsTable = "Scaffold id\tGenome id\tGC\tLength (bp)\tsample1\tsample2\tAAAA\tAAAC\n" +
	"s1\tbinA\t50\t1000\t10\t20\t0.5\t0.5\n" +
	"s2\tbinA\t60\t3000\t30\t40\t0.25\t0.75\n" +
	"s3\t\t40\t500\t1\t1\t1\t0\n" +
	"s4\tbinB\t30\t800\t5\t5\t0\t1\n"

func TestReadScaffoldStats(t *testing.T) {
	set, err := ReadScaffoldStats(strings.NewReader(statsTable))
	require.NoError(t, err)

	assert.Equal(t, 4, set.Len())
	assert.Equal(t, []string{"sample1", "sample2"}, set.CoverageNames)
	assert.Equal(t, []string{"AAAA", "AAAC"}, set.SignatureNames)
	assert.Equal(t, []string{"binA", "binB"}, set.Genomes())
	assert.Equal(t, []string{"s1", "s2"}, set.InGenome("binA"))

	s3, ok := set.Get("s3")
	require.True(t, ok)
	assert.Equal(t, UnbinnedID, s3.GenomeID)
	assert.False(t, s3.Binned())

	s2, _ := set.Get("s2")
	assert.Equal(t, 3000, s2.Length)
	assert.Equal(t, []float64{30, 40}, s2.Coverage)
	assert.Equal(t, []float64{0.25, 0.75}, s2.Signature)
}

func TestReadScaffoldStats_MissingColumn(t *testing.T) {
	_, err := ReadScaffoldStats(strings.NewReader("Scaffold id\tGC\n"))
	assert.Error(t, err)
}

func TestReadScaffoldStats_Duplicate(t *testing.T) {
	table := "Scaffold id\tGenome id\tGC\tLength (bp)\n" +
		"s1\tbinA\t50\t1000\n" +
		"s1\tbinA\t50\t1000\n"
	_, err := ReadScaffoldStats(strings.NewReader(table))
	assert.Error(t, err)
}

func TestWriteScaffoldStats_RoundTrip(t *testing.T) {
	set, err := ReadScaffoldStats(strings.NewReader(statsTable))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteScaffoldStats(&buf, set))

	again, err := ReadScaffoldStats(&buf)
	require.NoError(t, err)
	assert.Equal(t, set.All(), again.All())
}

func TestAggregateGenomes(t *testing.T) {
	set, err := ReadScaffoldStats(strings.NewReader(statsTable))
	require.NoError(t, err)

	genomes, err := AggregateGenomes(set)
	require.NoError(t, err)
	require.Len(t, genomes, 2)

	a := genomes[0]
	assert.Equal(t, "binA", a.ID)
	assert.Equal(t, 2, a.Scaffolds)
	assert.Equal(t, 4000, a.Length)
	assert.InDelta(t, 55.0, a.MeanGC, 1e-9)
	assert.InDeltaSlice(t, []float64{20, 30}, a.MeanCoverage, 1e-9)
	assert.InDeltaSlice(t, []float64{0.375, 0.625}, a.MeanSignature, 1e-9)
	// each member is 0.25 away from the centroid
	assert.InDelta(t, 0.25, a.MeanTD, 1e-9)
}

func TestManhattan(t *testing.T) {
	d, err := Manhattan([]float64{1, 2, 3}, []float64{2, 0, 3})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d, 1e-12)

	_, err = Manhattan([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestWindowID(t *testing.T) {
	id := WindowID("contig:7", 100, 200)
	assert.Equal(t, "contig:7:100to200", id)

	parent, start, end, err := ParseWindowID(id)
	require.NoError(t, err)
	assert.Equal(t, "contig:7", parent)
	assert.Equal(t, 100, start)
	assert.Equal(t, 200, end)

	_, _, _, err = ParseWindowID("nocolon")
	assert.Error(t, err)
}

func TestReadHomology(t *testing.T) {
	table := "Scaffold id\t# genes\t% genes with homology\n" +
		"s1\t5\t80.0\n" +
		"s2\t1\t100\n" +
		"s3\t4\t10\n"
	h, err := ReadHomology(strings.NewReader(table), 2, 50)
	require.NoError(t, err)
	assert.Equal(t, map[string]Homology{"s1": {Genes: 5, PercHomology: 80}}, h)
}
