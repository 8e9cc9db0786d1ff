package main

import (
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
		outDir    = flag.String("out-dir", "", "Output directory for the bundle")
		format    = flag.String("format", pipeline.FormatParquet, "Data format: parquet|csv|csv.zst")
		planPath  = flag.String("plan", "", "Optional YAML conversion plan applied before writing")
		overwrite = flag.Bool("overwrite", true, "Allow writing to non-empty output directories")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	inputPath := flag.Arg(0)
	if strings.TrimSpace(*outDir) == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		*outDir = filepath.Join(".", "exports", base+"_"+pipeline.BundleFormatVersion)
	}

	result, err := pipeline.Run(pipeline.Options{
		FitPath:   inputPath,
		OutDir:    *outDir,
		PlanPath:  *planPath,
		Format:    *format,
		Overwrite: *overwrite,
		Logger:    spectra.NewTextLogger(os.Stderr, slog.LevelWarn),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	s := result.Summary
	fmt.Printf("Export complete\n")
	fmt.Printf("Output dir: %s\n", result.OutputDir)
	fmt.Printf("Manifest:   %s\n", result.ManifestPath)
	fmt.Printf("Data:       %s\n", result.DataPath)
	fmt.Printf("Notes:      %s\n", result.NotesPath)
	fmt.Printf("Channels:   %d x %d records (%d missing values)\n", s.Rows, s.Columns, s.MissingValues)
	if !s.Start.IsZero() {
		fmt.Printf("Recorded:   %s .. %s\n", s.Start.Format("2006-01-02 15:04:05"), s.End.Format("2006-01-02 15:04:05"))
	}
}
