package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteHistogramPNG renders a histogram of the sample to a PNG file.
func WriteHistogramPNG(path, title, xLabel string, xs []float64, nBins int) error {
	if len(xs) == 0 {
		return fmt.Errorf("plot %s: empty sample", title)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "events"

	h, err := plotter.NewHist(plotter.Values(xs), nBins)
	if err != nil {
		return fmt.Errorf("failed to build histogram for %s: %w", title, err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
