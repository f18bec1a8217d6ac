// Command report summarises a recorded run: distribution statistics on
// stdout, PNG histograms and an interactive HTML chart page on disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spectro-data/golden.report/internal/eventdb"
	"github.com/spectro-data/golden.report/internal/report"
)

var (
	dbFile = flag.String("db", "golden_results.db", "Results database path")
	runID  = flag.String("run", "", "Run ID to report (default: latest run)")
	outDir = flag.String("out", "report_out", "Output directory for histograms and charts")
	nBins  = flag.Int("bins", 40, "Histogram bin count")
)

func main() {
	flag.Parse()

	db, err := eventdb.New(*dbFile)
	if err != nil {
		log.Fatalf("failed to open results database: %v", err)
	}
	defer db.Close()

	id := *runID
	if id == "" {
		run, err := db.LatestRun()
		if err != nil {
			log.Fatalf("no run to report: %v", err)
		}
		id = run.ID
		log.Printf("reporting latest run %s (%s, %d terms, method %s)",
			run.ID, run.MatrixFile, run.NTerms, run.Method)
	}

	summary, err := db.Summary(id)
	if err != nil {
		log.Fatalf("failed to summarise run: %v", err)
	}
	fmt.Printf("run %s: %d events (%d selected, %d none, %d errors)\n",
		id, summary.Events, summary.Selected, summary.None, summary.Errors)

	deltas, err := db.SelectedDeltas(id)
	if err != nil {
		log.Fatalf("failed to read deltas: %v", err)
	}
	chi2, err := db.SelectedChi2(id)
	if err != nil {
		log.Fatalf("failed to read chi2: %v", err)
	}
	fmt.Printf("  delta:     %s\n", report.Summarize(deltas))
	fmt.Printf("  chi2/ndof: %s\n", report.Summarize(chi2))

	if len(deltas) == 0 {
		log.Print("no selected events; skipping plots")
		return
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	deltaPNG := filepath.Join(*outDir, "delta.png")
	if err := report.WriteHistogramPNG(deltaPNG, "Momentum deviation", "delta (%)", deltas, *nBins); err != nil {
		log.Fatalf("%v", err)
	}
	chi2PNG := filepath.Join(*outDir, "chi2.png")
	if err := report.WriteHistogramPNG(chi2PNG, "Track quality", "chi2/ndof", chi2, *nBins); err != nil {
		log.Fatalf("%v", err)
	}
	htmlPath := filepath.Join(*outDir, "run.html")
	if err := report.WriteChartsHTML(htmlPath, id, deltas, chi2, *nBins); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %s, %s and %s", deltaPNG, chi2PNG, htmlPath)
}
