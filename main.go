// Command golden.report reconstructs target-frame kinematics for
// spectrometer events and selects one golden track per event.
//
// Events are read as JSON lines, annotated through the transport matrix,
// run through the configured selection strategy, and the per-event
// results are recorded to a sqlite database for reporting.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spectro-data/golden.report/internal/config"
	"github.com/spectro-data/golden.report/internal/eventdb"
	"github.com/spectro-data/golden.report/internal/events"
	"github.com/spectro-data/golden.report/internal/spectro"
	"github.com/spectro-data/golden.report/internal/version"
)

var (
	configFile  = flag.String("config", "", "Tuning config file (JSON)")
	matrixFile  = flag.String("matrix", "", "Transport matrix file (overrides config)")
	eventsFile  = flag.String("events", "", "Events file (JSON lines), - for stdin")
	dbFile      = flag.String("db", "golden_results.db", "Results database; empty disables recording")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("golden.report %s (%s, built %s)\n",
			version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *eventsFile == "" {
		log.Fatal("events file is required (-events)")
	}

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	mf := *matrixFile
	if mf == "" {
		mf = cfg.GetMatrixFile()
	}
	if mf == "" {
		log.Fatal("transport matrix file is required (-matrix or matrix_file in config)")
	}

	matrix, err := spectro.LoadMatrix(mf, cfg.GetStrictMatrix())
	if err != nil {
		log.Fatalf("failed to load transport matrix: %v", err)
	}
	log.Printf("read %d matrix element terms from %s", matrix.NTerms(), mf)
	log.Printf("spectrometer setting: pcentral=%.4f GeV/c, theta_lab=%.3f deg",
		cfg.EffectivePCentral(), cfg.EffectiveThetaLab())
	if cfg.GetPCentral() == 0 {
		log.Print("warning: pcentral not configured; reconstructed momenta will be zero")
	}

	recon := cfg.BuildReconstructor(matrix)
	selCfg := cfg.BuildSelectorConfig()
	log.Printf("selection strategy: %s, sorting: %v", methodName(selCfg.Strategy), selCfg.SortTracks)

	var in io.Reader
	if *eventsFile == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(*eventsFile)
		if err != nil {
			log.Fatalf("failed to open events file: %v", err)
		}
		defer f.Close()
		in = f
	}

	var db *eventdb.DB
	var runID string
	if *dbFile != "" {
		db, err = eventdb.New(*dbFile)
		if err != nil {
			log.Fatalf("failed to open results database: %v", err)
		}
		defer db.Close()
		runID, err = db.BeginRun(mf, matrix.NTerms(), methodName(selCfg.Strategy))
		if err != nil {
			log.Fatalf("failed to begin run: %v", err)
		}
		log.Printf("recording run %s to %s", runID, *dbFile)
	}

	var processed, selected, none, dataErrs int
	r := events.NewReader(in)
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to read events: %v", err)
		}
		processed++

		res, err := processEvent(cfg, selCfg, recon, ev)
		if err != nil {
			var initErr *spectro.InitError
			if errors.As(err, &initErr) {
				log.Fatalf("event %s: %v", ev.ID, err)
			}
			dataErrs++
			log.Printf("event %s: %v", ev.ID, err)
			record(db, runID, ev, res, eventdb.StatusError)
			continue
		}
		if res.None() {
			none++
			record(db, runID, ev, res, eventdb.StatusNone)
			continue
		}
		selected++
		record(db, runID, ev, res, eventdb.StatusSelected)
	}

	log.Printf("processed %d events: %d selected, %d without selection, %d data errors",
		processed, selected, none, dataErrs)
}

// processEvent reconstructs the event's tracks and runs selection. The
// selector is rebuilt per event because the hodoscope snapshot is part
// of the event; a missing snapshot under a strategy that needs one
// surfaces as an InitError.
func processEvent(cfg *config.TuningConfig, selCfg spectro.SelectorConfig,
	recon *spectro.Reconstructor, ev *events.Event) (spectro.SelectionResult, error) {

	recon.ReconstructAll(ev.Tracks)

	var matcher *spectro.ScintMatcher
	if ev.Hodoscope != nil {
		matcher = cfg.BuildMatcher(ev.Hodoscope)
	}
	sel, err := spectro.NewSelector(selCfg, matcher)
	if err != nil {
		return spectro.SelectionResult{Index: -1}, err
	}
	return sel.Select(ev.Tracks)
}

// record stores one event outcome when recording is enabled.
func record(db *eventdb.DB, runID string, ev *events.Event, res spectro.SelectionResult, status string) {
	if db == nil {
		return
	}
	sel := eventdb.Selection{
		EventID:     ev.ID,
		Status:      status,
		TrackIndex:  res.Index,
		NTracks:     len(ev.Tracks),
		RejectCodes: res.RejectCodes,
	}
	if status == eventdb.StatusSelected {
		t := ev.Tracks[res.Index]
		sel.Chi2PerNDoF = t.Chi2PerNDoF()
		sel.XpTar = t.XpTar
		sel.YTar = t.YTar
		sel.YpTar = t.YpTar
		sel.Delta = t.Delta
		sel.P = t.P
	}
	if err := db.RecordSelection(runID, sel); err != nil {
		log.Printf("failed to record event %s: %v", ev.ID, err)
	}
}

func methodName(s spectro.Strategy) string {
	switch s {
	case spectro.StrategyScin:
		return string(spectro.MethodScin)
	case spectro.StrategyPrune:
		return string(spectro.MethodPrune)
	default:
		return string(spectro.MethodChi2)
	}
}
