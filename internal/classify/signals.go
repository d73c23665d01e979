// Package classify identifies scaffolds whose GC, tetranucleotide or
// coverage profile diverges from, or agrees with, a genome bin.
package classify

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/rcliao/binrefine/internal/model"
	"github.com/rcliao/binrefine/internal/refdist"
)

const (
	// MinRequiredCoverage is the genome coverage below which a sample is
	// ignored when computing percent error.
	MinRequiredCoverage = 0.01

	// NoCoverage is reported as the percent error when no sample qualifies.
	NoCoverage = -1.0
)

var (
	// ErrReportMode is returned for report modes other than "any" and "all".
	ErrReportMode = errors.New("invalid report mode")

	// ErrDimension is returned when scaffold and genome vectors disagree in length.
	ErrDimension = model.ErrDimension
)

// Flag names a signal on which a scaffold was judged.
type Flag string

const (
	FlagGC      Flag = "GC"
	FlagTD      Flag = "TD"
	FlagCovCorr Flag = "COV_CORR"
	FlagCovPerc Flag = "COV_PERC"
)

// Mode selects how many flagged signals a scaffold needs to be reported.
type Mode string

const (
	ModeAny Mode = "any" // at least one signal
	ModeAll Mode = "all" // at least three of the four signals
)

// ParseMode validates a report mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAny, ModeAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w %q (valid: any, all)", ErrReportMode, s)
}

// Reports reports whether n flagged signals meet the mode's threshold.
func (m Mode) Reports(n int) bool {
	switch m {
	case ModeAny:
		return n >= 1
	case ModeAll:
		return n >= 3
	}
	return false
}

// Params configures a classification pass.
type Params struct {
	GCPercentile float64
	TDPercentile float64
	// CovCorr is the minimum Pearson correlation of coverage profiles.
	CovCorr float64
	// CovPerc is the maximum mean absolute percent error of coverage.
	CovPerc float64
	Mode    Mode

	// Workers bounds the number of partitions classified concurrently.
	Workers int
	// Progress, if set, is called after each partition completes.
	Progress func(done, total int)
}

func (p Params) validate() error {
	if _, err := ParseMode(string(p.Mode)); err != nil {
		return err
	}
	return nil
}

// genomeKeys are the distribution keys resolved once per genome.
type genomeKeys struct {
	gc       *refdist.LengthTable
	lowerKey float64
	upperKey float64
	tdKey    float64
}

func resolveGenomeKeys(d *refdist.Distributions, gs model.GenomeStats, p Params) genomeKeys {
	bucket := d.GC.Bucket(gs.MeanGC / 100)
	rep := bucket.Representative()
	return genomeKeys{
		gc:       bucket,
		lowerKey: rep.Nearest((100 - p.GCPercentile) / 2),
		upperKey: rep.Nearest((100 + p.GCPercentile) / 2),
		tdKey:    d.TD.Representative().Nearest(p.TDPercentile),
	}
}

// measurement holds every signal of one scaffold against one genome.
type measurement struct {
	deltaGC float64
	lower   float64
	upper   float64
	deltaTD float64
	tdBound float64
	corr    float64
	percErr float64
	// noCoverage is set when no sample met MinRequiredCoverage.
	noCoverage bool
}

func measure(d *refdist.Distributions, k genomeKeys, ss model.ScaffoldStats, gs model.GenomeStats) (measurement, error) {
	var m measurement
	if len(ss.Coverage) != len(gs.MeanCoverage) {
		return m, fmt.Errorf("scaffold %s vs genome %s coverage: %w", ss.ID, gs.ID, ErrDimension)
	}

	length := float64(ss.Length)
	gcp := k.gc.At(length)
	m.lower = gcp.Value(k.lowerKey)
	m.upper = gcp.Value(k.upperKey)
	m.tdBound = d.TD.At(length).Value(k.tdKey)

	m.deltaGC = (ss.GC - gs.MeanGC) / 100
	td, err := model.Manhattan(ss.Signature, gs.MeanSignature)
	if err != nil {
		return m, fmt.Errorf("scaffold %s vs genome %s signature: %w", ss.ID, gs.ID, err)
	}
	m.deltaTD = td

	m.corr = 1.0
	if len(gs.MeanCoverage) > 1 {
		m.corr = stat.Correlation(gs.MeanCoverage, ss.Coverage, nil)
	}

	var errs []float64
	for i, g := range gs.MeanCoverage {
		if g >= MinRequiredCoverage {
			diff := ss.Coverage[i] - g
			if diff < 0 {
				diff = -diff
			}
			errs = append(errs, diff*100/g)
		}
	}
	if len(errs) == 0 {
		m.noCoverage = true
		m.percErr = NoCoverage
	} else {
		m.percErr, _ = stats.Mean(errs)
	}
	return m, nil
}

// outlying returns the signals on which the scaffold diverges.
func (m measurement) outlying(p Params, multiSample bool) []Flag {
	var flags []Flag
	if m.deltaGC < m.lower || m.deltaGC > m.upper {
		flags = append(flags, FlagGC)
	}
	if m.deltaTD > m.tdBound {
		flags = append(flags, FlagTD)
	}
	if multiSample && m.corr < p.CovCorr {
		flags = append(flags, FlagCovCorr)
	}
	if m.noCoverage || m.percErr > p.CovPerc {
		flags = append(flags, FlagCovPerc)
	}
	return flags
}

// compatible returns the signals on which the scaffold agrees. A scaffold
// with no qualifying coverage sample is never compatible on COV_PERC.
func (m measurement) compatible(p Params, multiSample bool) []Flag {
	var flags []Flag
	if m.deltaGC >= m.lower && m.deltaGC <= m.upper {
		flags = append(flags, FlagGC)
	}
	if m.deltaTD <= m.tdBound {
		flags = append(flags, FlagTD)
	}
	if multiSample && m.corr >= p.CovCorr {
		flags = append(flags, FlagCovCorr)
	}
	if !m.noCoverage && m.percErr <= p.CovPerc {
		flags = append(flags, FlagCovPerc)
	}
	return flags
}

func (m measurement) row(ss model.ScaffoldStats, gs model.GenomeStats, flags []Flag) Row {
	scov, _ := stats.Mean(ss.Coverage)
	gcov, _ := stats.Mean(gs.MeanCoverage)
	return Row{
		ScaffoldID:       ss.ID,
		GenomeID:         gs.ID,
		Length:           ss.Length,
		Flags:            flags,
		ScaffoldGC:       ss.GC,
		GenomeGC:         gs.MeanGC,
		GCLower:          gs.MeanGC + m.lower*100,
		GCUpper:          gs.MeanGC + m.upper*100,
		ScaffoldTD:       m.deltaTD,
		GenomeTD:         gs.MeanTD,
		TDBound:          m.tdBound,
		ScaffoldCoverage: scov,
		GenomeCoverage:   gcov,
		CovCorr:          m.corr,
		CovPercErr:       m.percErr,
	}
}
