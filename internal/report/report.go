// Package report turns a run's recorded selections into summary
// statistics, PNG histograms and an interactive HTML chart page.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the basic distribution statistics of one recorded
// quantity across a run's selected events.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes distribution statistics for a sample. Non-finite
// values are dropped; an empty sample yields a zero Summary.
func Summarize(xs []float64) Summary {
	xs = finite(xs)
	if len(xs) == 0 {
		return Summary{}
	}
	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	for _, x := range xs {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d mean=%.4f sd=%.4f min=%.4f max=%.4f",
		s.N, s.Mean, s.StdDev, s.Min, s.Max)
}

// Bin is one histogram bin.
type Bin struct {
	Center float64
	Count  int
}

// Histogram bins a sample into nBins equal-width bins between the
// sample min and max. Non-finite values are dropped; a constant sample
// collapses into a single bin.
func Histogram(xs []float64, nBins int) []Bin {
	xs = finite(xs)
	if len(xs) == 0 || nBins < 1 {
		return nil
	}
	s := Summarize(xs)
	if s.Min == s.Max {
		return []Bin{{Center: s.Min, Count: len(xs)}}
	}
	width := (s.Max - s.Min) / float64(nBins)
	bins := make([]Bin, nBins)
	for i := range bins {
		bins[i].Center = s.Min + (float64(i)+0.5)*width
	}
	for _, x := range xs {
		i := int((x - s.Min) / width)
		if i >= nBins {
			i = nBins - 1 // top edge lands in the last bin
		}
		bins[i].Count++
	}
	return bins
}

// finite drops NaN and infinite samples. Selected events can carry a
// NaN chi2/ndof when the upstream fit reported zero degrees of freedom.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}
