package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	spectra "github.com/lucasjlepore/spectra-analyzer"
)

// ErrChecksumMismatch is returned when a bundle's data file does not match
// the checksum recorded in its manifest.
var ErrChecksumMismatch = errors.New("data file checksum mismatch")

// WriteBundle writes t to dir as manifest.json plus one data file.
func WriteBundle(dir string, t *spectra.Table, opts WriteOptions) (*Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if err := ensureOutputDir(dir, opts.Overwrite); err != nil {
		return nil, err
	}

	snap := t.Snapshot()
	snap.Data = nil
	data := t.Data()

	dataPath := filepath.Join(dir, dataFileName(format))
	switch format {
	case FormatParquet:
		err = writeParquetFile(dataPath, data)
	case FormatCSV:
		err = writeCSVFile(dataPath, data, snap.SpecValues, snap.VarValues, false)
	case FormatCSVZstd:
		err = writeCSVFile(dataPath, data, snap.SpecValues, snap.VarValues, true)
	}
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", filepath.Base(dataPath), err)
	}

	sha, err := fileSHA256(dataPath)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", filepath.Base(dataPath), err)
	}

	rows, cols := t.Dims()
	manifest := &Manifest{
		FormatVersion: BundleFormatVersion,
		GeneratedAt:   time.Now().UTC(),
		DataFile:      filepath.Base(dataPath),
		DataFormat:    format,
		DataSHA256:    sha,
		Rows:          rows,
		Columns:       cols,
		Table:         snap,
		Plan:          opts.Plan,
	}
	if err := writeJSON(filepath.Join(dir, manifestName), manifest); err != nil {
		return nil, fmt.Errorf("write %s: %w", manifestName, err)
	}
	return manifest, nil
}

// ReadBundle loads a bundle written by WriteBundle. opts are passed to the
// table constructor.
func ReadBundle(dir string, opts ...spectra.Option) (*spectra.Table, *Manifest, error) {
	manifest, err := readManifest(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, nil, err
	}
	if manifest.FormatVersion != BundleFormatVersion {
		return nil, nil, fmt.Errorf("unsupported bundle format %q (expected %s)", manifest.FormatVersion, BundleFormatVersion)
	}

	dataPath := filepath.Join(dir, filepath.Base(manifest.DataFile))
	if manifest.DataSHA256 != "" {
		sha, err := fileSHA256(dataPath)
		if err != nil {
			return nil, nil, fmt.Errorf("hash %s: %w", manifest.DataFile, err)
		}
		if sha != manifest.DataSHA256 {
			return nil, nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, manifest.DataFile)
		}
	}

	var data *mat.Dense
	switch manifest.DataFormat {
	case FormatParquet:
		data, err = readParquetFile(dataPath, manifest.Rows, manifest.Columns)
	case FormatCSV:
		data, err = readCSVFile(dataPath, manifest.Rows, manifest.Columns, false)
	case FormatCSVZstd:
		data, err = readCSVFile(dataPath, manifest.Rows, manifest.Columns, true)
	default:
		err = fmt.Errorf("unsupported data format %q", manifest.DataFormat)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", manifest.DataFile, err)
	}

	t, err := spectra.FromSnapshot(manifest.Table, data, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuild table: %w", err)
	}
	return t, manifest, nil
}

func readManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", manifestName, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", manifestName, err)
	}
	return &m, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		return FormatParquet, nil
	case FormatParquet, FormatCSV, FormatCSVZstd:
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected parquet|csv|csv.zst)", format)
}

func dataFileName(format string) string {
	return "data." + format
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
