package pipeline

import (
	"encoding/json"
	"fmt"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"gonum.org/v1/gonum/mat"

	spectra "github.com/lucasjlepore/spectra-analyzer"
)

const snapshotMetadataKey = "spectra.snapshot"

// MarshalParquet encodes a table as a self-contained parquet file: the cells
// as long rows and the remaining state as footer metadata.
func MarshalParquet(t *spectra.Table) ([]byte, error) {
	snap := t.Snapshot()
	snap.Data = nil
	meta, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	fw := parquetbuffer.NewBufferFile()
	if err := writeCells(fw, t.Data(), string(meta)); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// UnmarshalParquet decodes the output of MarshalParquet.
func UnmarshalParquet(b []byte, opts ...spectra.Option) (*spectra.Table, error) {
	fr := parquetbuffer.NewBufferFileFromBytes(b)
	pr, err := reader.NewParquetReader(fr, new(cellRow), 4)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer pr.ReadStop()

	var snap spectra.Snapshot
	found := false
	for _, kv := range pr.Footer.KeyValueMetadata {
		if kv.Key == snapshotMetadataKey && kv.Value != nil {
			if err := json.Unmarshal([]byte(*kv.Value), &snap); err != nil {
				return nil, fmt.Errorf("decode snapshot: %w", err)
			}
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("parquet file has no %s metadata", snapshotMetadataKey)
	}

	data, err := readCells(pr, len(snap.SpecValues), len(snap.VarValues))
	if err != nil {
		return nil, err
	}
	return spectra.FromSnapshot(snap, data, opts...)
}

func writeParquetFile(path string, data *mat.Dense) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeCells(fw, data, ""); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func readParquetFile(path string, rows, cols int) (*mat.Dense, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(cellRow), 4)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()
	return readCells(pr, rows, cols)
}

func writeCells(fw source.ParquetFile, data *mat.Dense, meta string) error {
	pw, err := writer.NewParquetWriter(fw, new(cellRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	if meta != "" {
		pw.Footer.KeyValueMetadata = append(pw.Footer.KeyValueMetadata, &parquet.KeyValue{
			Key:   snapshotMetadataKey,
			Value: &meta,
		})
	}

	r, c := data.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			row := cellRow{Row: int64(i), Col: int64(j), Value: data.At(i, j)}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				return err
			}
		}
	}
	return pw.WriteStop()
}

func readCells(pr *reader.ParquetReader, rows, cols int) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, spectra.ErrEmptyTable
	}
	n := int(pr.GetNumRows())
	if n != rows*cols {
		return nil, fmt.Errorf("parquet holds %d cells, want %dx%d", n, rows, cols)
	}
	cells := make([]cellRow, n)
	if err := pr.Read(&cells); err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}

	data := mat.NewDense(rows, cols, nil)
	for _, cell := range cells {
		if cell.Row < 0 || int(cell.Row) >= rows || cell.Col < 0 || int(cell.Col) >= cols {
			return nil, fmt.Errorf("cell (%d, %d) outside %dx%d", cell.Row, cell.Col, rows, cols)
		}
		data.Set(int(cell.Row), int(cell.Col), cell.Value)
	}
	return data, nil
}
