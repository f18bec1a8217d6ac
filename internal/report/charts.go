package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChartsHTML renders an interactive chart page with the delta and
// chi2/ndof distributions of a run's selected events.
func WriteChartsHTML(path, runID string, deltas, chi2 []float64, nBins int) error {
	page := components.NewPage()
	page.PageTitle = "golden.report run " + runID

	page.AddCharts(
		histogramBar("Momentum deviation", "delta (%)", runID, deltas, nBins),
		histogramBar("Track quality", "chi2/ndof", runID, chi2, nBins),
	)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart page: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}

func histogramBar(title, axis, runID string, xs []float64, nBins int) *charts.Bar {
	bins := Histogram(xs, nBins)

	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.3g", b.Center)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("run=%s selected=%d", runID, len(xs)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: axis}),
		charts.WithYAxisOpts(opts.YAxis{Name: "events"}),
	)
	bar.SetXAxis(labels).AddSeries("events", data)
	return bar
}
