package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	spectra "github.com/lucasjlepore/spectra-analyzer"
	"github.com/lucasjlepore/spectra-analyzer/pipeline"
)

func main() {
	var (
		inDirs    = flag.String("in", "", "Input bundle directory (comma-separated for a batch)")
		outDir    = flag.String("out", "", "Output directory (parent directory for a batch)")
		planPath  = flag.String("plan", "", "YAML conversion plan")
		specUnit  = flag.String("spec-unit", "", "Spectral unit override, e.g. nm|ev|k")
		varUnit   = flag.String("var-unit", "", "Variable unit override, e.g. s|m|datetime|intvl")
		norm      = flag.String("norm", "", "Normalization override: none|t|%t|r|a|ae")
		format    = flag.String("format", "", "Output data format: parquet|csv|csv.zst (default: same as input)")
		overwrite = flag.Bool("overwrite", false, "Allow writing into non-empty output directories")
		jobs      = flag.Int("jobs", 4, "Bundles converted concurrently in batch mode")
		logJSON   = flag.Bool("log-json", false, "Emit warnings as JSON")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --in bundle[,bundle...] --out outdir [--plan plan.yaml] [--norm a] [--format parquet|csv|csv.zst]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*inDirs) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := spectra.NewTextLogger(os.Stderr, slog.LevelWarn)
	if *logJSON {
		logger = spectra.NewJSONLogger(os.Stderr, slog.LevelWarn)
	}

	plan, err := buildPlan(*planPath, *specUnit, *varUnit, *norm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spectra_convert failed: %v\n", err)
		os.Exit(1)
	}

	inputs := splitList(*inDirs)
	opts := make([]pipeline.Options, 0, len(inputs))
	for _, in := range inputs {
		out := *outDir
		if len(inputs) > 1 {
			out = filepath.Join(*outDir, filepath.Base(filepath.Clean(in)))
		}
		opts = append(opts, pipeline.Options{
			InputDir:  in,
			OutDir:    out,
			Plan:      plan,
			Format:    *format,
			Overwrite: *overwrite,
			Logger:    logger,
		})
	}

	results, err := pipeline.RunAll(context.Background(), opts, *jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spectra_convert failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("spectra_convert complete\n")
	for _, res := range results {
		fmt.Printf("Output dir:    %s\n", res.OutputDir)
		fmt.Printf("manifest.json: %s\n", res.ManifestPath)
		fmt.Printf("data:          %s\n", res.DataPath)
		fmt.Printf("notes.md:      %s\n", res.NotesPath)
		fmt.Printf("shape:         %d x %d (%s, %s, %s)\n",
			res.Summary.Rows, res.Summary.Columns, res.Summary.SpecUnit, res.Summary.VarUnit, res.Summary.Norm)
	}
}

// buildPlan loads the plan file, if any, and applies flag overrides on top.
func buildPlan(path, specUnit, varUnit, norm string) (*pipeline.Plan, error) {
	plan := &pipeline.Plan{}
	if strings.TrimSpace(path) != "" {
		p, err := pipeline.LoadPlan(path)
		if err != nil {
			return nil, err
		}
		plan = p
	}
	if specUnit != "" {
		plan.SpecUnit = specUnit
	}
	if varUnit != "" {
		plan.VarUnit = varUnit
	}
	if norm != "" {
		plan.Norm = norm
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
