package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	spectra "github.com/lucasjlepore/spectra-analyzer"
	"github.com/lucasjlepore/spectra-analyzer/fitsource"
	"github.com/lucasjlepore/spectra-analyzer/pipeline"
)

func main() {
	var (
		jsonOut  = flag.Bool("json", false, "Emit the summary as JSON")
		showAxis = flag.Bool("axes", false, "Include the row and column labels in text output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <bundle-dir | activity.fit>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	path := flag.Arg(0)
	tbl, err := load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "summary failed: %v\n", err)
		os.Exit(1)
	}

	summary := spectra.Summarize(tbl)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(spectra.BuildNotes(summary))
	if *showAxis {
		fmt.Println()
		fmt.Println("Rows")
		for i, v := range tbl.Index().Values() {
			fmt.Printf("- %03d | %g %s\n", i, v, tbl.SpecUnit())
		}
		fmt.Println()
		fmt.Println("Columns")
		for j, v := range tbl.Columns().Values() {
			fmt.Printf("- %03d | %g %s\n", j, v, tbl.VarUnit())
		}
	}
}

func load(path string) (*spectra.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".fit") {
		return fitsource.LoadFile(path)
	}
	tbl, _, err := pipeline.ReadBundle(path)
	return tbl, err
}
