package pipeline

import (
	"time"

	spectra "github.com/lucasjlepore/spectra-analyzer"
)

const (
	// BundleFormatVersion identifies the on-disk schema of a bundle.
	BundleFormatVersion = "spectra_bundle_v1"

	manifestName = "manifest.json"
	notesName    = "notes.md"
)

// Data file formats.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatCSVZstd = "csv.zst"
)

// Options configures Run. Exactly one of InputDir and FitPath is required.
type Options struct {
	InputDir  string
	FitPath   string
	OutDir    string
	PlanPath  string
	Plan      *Plan  // takes precedence over PlanPath
	Format    string // parquet|csv|csv.zst; defaults to the input bundle's format
	Overwrite bool
	Logger    *spectra.Logger
}

// Result returns generated output paths.
type Result struct {
	OutputDir    string          `json:"output_dir"`
	ManifestPath string          `json:"manifest_path"`
	DataPath     string          `json:"data_path"`
	NotesPath    string          `json:"notes_path"`
	Summary      spectra.Summary `json:"summary"`
}

// WriteOptions controls WriteBundle.
type WriteOptions struct {
	Format    string
	Overwrite bool
	Plan      *Plan // recorded in the manifest
}

// Manifest describes a bundle. Table holds every piece of table state except
// the matrix, which lives in DataFile.
type Manifest struct {
	FormatVersion string           `json:"format_version"`
	GeneratedAt   time.Time        `json:"generated_at"`
	DataFile      string           `json:"data_file"`
	DataFormat    string           `json:"data_format"`
	DataSHA256    string           `json:"data_sha256"`
	Rows          int              `json:"rows"`
	Columns       int              `json:"columns"`
	Table         spectra.Snapshot `json:"table"`
	Plan          *Plan            `json:"plan,omitempty"`
}

// cellRow is one matrix cell in the long parquet layout.
type cellRow struct {
	Row   int64   `parquet:"name=row, type=INT64"`
	Col   int64   `parquet:"name=col, type=INT64"`
	Value float64 `parquet:"name=value, type=DOUBLE"`
}
