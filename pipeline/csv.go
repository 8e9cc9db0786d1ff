package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"
)

// writeCSVFile writes the matrix in wide layout: a header of column labels,
// then one line per spectral row starting with its label.
func writeCSVFile(path string, data *mat.Dense, specLabels, varLabels []float64, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeCSV(f, data, specLabels, varLabels, compress); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeCSV(out io.Writer, data *mat.Dense, specLabels, varLabels []float64, compress bool) error {
	if !compress {
		return writeCSV(out, data, specLabels, varLabels)
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	if err := writeCSV(enc, data, specLabels, varLabels); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func writeCSV(out io.Writer, data *mat.Dense, specLabels, varLabels []float64) error {
	w := csv.NewWriter(out)
	header := make([]string, 0, len(varLabels)+1)
	header = append(header, "spectral")
	for _, v := range varLabels {
		header = append(header, formatFloat(v))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	r, c := data.Dims()
	row := make([]string, c+1)
	for i := 0; i < r; i++ {
		row[0] = formatFloat(specLabels[i])
		for j := 0; j < c; j++ {
			row[j+1] = formatFloat(data.At(i, j))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func readCSVFile(path string, rows, cols int, compressed bool) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !compressed {
		return readCSV(f, rows, cols)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readCSV(dec, rows, cols)
}

func readCSV(in io.Reader, rows, cols int) (*mat.Dense, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = cols + 1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) != rows+1 {
		return nil, fmt.Errorf("csv has %d data lines, want %d", len(records)-1, rows)
	}

	data := mat.NewDense(rows, cols, nil)
	for i, rec := range records[1:] {
		for j, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %d: %w", i+2, j+2, err)
			}
			data.Set(i, j, v)
		}
	}
	return data, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
