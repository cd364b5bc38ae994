package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nivasraf/caai-logbook/internal/aggregate"
	"github.com/nivasraf/caai-logbook/internal/airports"
	"github.com/nivasraf/caai-logbook/internal/classify"
	"github.com/nivasraf/caai-logbook/internal/config"
	"github.com/nivasraf/caai-logbook/internal/form"
	"github.com/nivasraf/caai-logbook/internal/importer"
	"github.com/nivasraf/caai-logbook/internal/reconcile"
	"github.com/nivasraf/caai-logbook/internal/report"
	"github.com/nivasraf/caai-logbook/internal/rules"
)

// Pipeline steps. Each step runs everything before it, so "analyze" imports
// and fills distances first, and "all" finishes with the filled form.
const (
	stepImport    = "import"
	stepDistances = "distances"
	stepAnalyze   = "analyze"
	stepFillForm  = "fill-form"
	stepAll       = "all"
)

func main() {
	step := flag.String("step", stepAll, "Pipeline step to run: import, distances, analyze, fill-form, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(cfg, *step, os.Stdout); err != nil {
		log.Printf("Pipeline failed: %v", err)
		os.Exit(1)
	}
}

// run executes the batch pipeline up to and including the requested step.
func run(cfg *config.Config, step string, out io.Writer) error {
	switch step {
	case stepImport, stepDistances, stepAnalyze, stepFillForm, stepAll:
	default:
		return fmt.Errorf("unknown step %q", step)
	}

	recs, summary, err := importer.ReadLogbook(cfg.LogbookFile, importer.Options{MappingFile: cfg.ColumnMapping})
	if err != nil {
		return fmt.Errorf("failed to read logbook: %w", err)
	}
	fmt.Fprintf(out, "Imported %d of %d rows from %s (%.1f hours, format %s)\n",
		summary.Imported, summary.Rows, cfg.LogbookFile, summary.TotalTime, summary.Format)
	if step == stepImport {
		return nil
	}

	db := airports.Builtin()
	if cfg.CustomAirports != "" {
		if err := db.LoadCustom(cfg.CustomAirports); err != nil {
			return fmt.Errorf("failed to load custom airports: %w", err)
		}
	}
	fill := db.FillDistances(recs)
	fmt.Fprintf(out, "Filled %d route distances, %d legs skipped\n", fill.Filled, fill.Skipped)
	for _, code := range fill.NotFound {
		log.Printf("Warning: unknown airport code %s", code)
	}
	if step == stepDistances {
		return nil
	}

	rs := rules.Default()
	agg := aggregate.New(rs, classify.New(rs))
	agg.Warnf = log.Printf
	for _, r := range recs {
		agg.Add(r)
	}
	res := agg.Result()
	rec := reconcile.Reconcile(rs, res)

	if step == stepAnalyze || step == stepAll {
		if err := report.Write(out, rs, res, &rec); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if step == stepAnalyze {
		return nil
	}

	if err := form.Fill(rs, res, cfg.FormTemplate, cfg.FormOutput); err != nil {
		return fmt.Errorf("failed to fill form: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", cfg.FormOutput)
	return nil
}
