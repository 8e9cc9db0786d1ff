package spectra

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/spectra-analyzer/index"
)

func TestReferenceSelectors(t *testing.T) {
	tbl := newTestTable(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, []float64{400, 500, 600})

	require.NoError(t, tbl.SetReference(ColumnAt(1)))
	assert.Equal(t, []float64{2, 4, 6}, tbl.Reference())

	require.NoError(t, tbl.SetReference(ColumnTime(testStart)))
	assert.Equal(t, []float64{1, 3, 5}, tbl.Reference())

	secs, err := tbl.AsVarUnit("s")
	require.NoError(t, err)
	require.NoError(t, secs.SetReference(ColumnLabel(10)))
	assert.Equal(t, []float64{2, 4, 6}, secs.Reference())

	require.NoError(t, tbl.SetReference(MeanOfColumns(0, 2)))
	assert.Equal(t, []float64{1.5, 3.5, 5.5}, tbl.Reference())

	require.NoError(t, tbl.SetReference(Vector([]float64{7, 8, 9})))
	assert.Equal(t, []float64{7, 8, 9}, tbl.Reference())
}

func TestReferenceSelectorErrors(t *testing.T) {
	tbl := newTestTable(t, [][]float64{{1, 2}, {3, 4}}, []float64{400, 500})

	var re *ReferenceError
	require.ErrorAs(t, tbl.SetReference(ColumnAt(2)), &re)
	assert.Contains(t, re.Error(), "out of range")

	require.ErrorAs(t, tbl.SetReference(ColumnLabel(12345)), &re)
	require.ErrorAs(t, tbl.SetReference(ColumnTime(testStart.Add(time.Hour))), &re)
	require.ErrorAs(t, tbl.SetReference(MeanOfColumns(1, 1)), &re)
	require.ErrorAs(t, tbl.SetBaseline(Vector([]float64{1})), &re)
	assert.Equal(t, "baseline", re.Role)

	require.ErrorIs(t, tbl.SetReference(nil), ErrNoReference)
	assert.Nil(t, tbl.Reference())
}

func TestSeriesMustMatchRowIndex(t *testing.T) {
	tbl := newTestTable(t, [][]float64{{1}, {2}, {3}}, []float64{400, 500, 600})

	same, err := index.NewSpecIndex([]float64{400, 500, 600}, "nm")
	require.NoError(t, err)
	require.NoError(t, tbl.SetReference(Series(same, []float64{4, 5, 6})))
	assert.Equal(t, []float64{4, 5, 6}, tbl.Reference())

	shifted, err := index.NewSpecIndex([]float64{400, 500, 601}, "nm")
	require.NoError(t, err)
	err = tbl.SetReference(Series(shifted, []float64{4, 5, 6}))
	var re *ReferenceError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, err.Error(), "row index mismatch")
	assert.Contains(t, err.Error(), "601")

	ev, err := same.Convert("ev")
	require.NoError(t, err)
	require.ErrorAs(t, tbl.SetReference(Series(ev, []float64{4, 5, 6})), &re)
}

func TestSetReferenceRefusedWhileNormalized(t *testing.T) {
	tbl := newTestTable(t, [][]float64{{10}, {20}}, []float64{400, 500},
		WithReferenceValues([]float64{10, 10}),
	)
	require.NoError(t, tbl.SetNorm(NormTransmittance, nil))

	require.ErrorIs(t, tbl.SetReference(Vector([]float64{1, 1})), ErrReferenceInUse)
	require.ErrorIs(t, tbl.ClearReference(), ErrReferenceInUse)
	assert.Equal(t, []float64{10, 10}, tbl.Reference())

	require.NoError(t, tbl.SetNorm(NormNone, nil))
	require.NoError(t, tbl.ClearReference())
	assert.Nil(t, tbl.Reference())
}

func TestSetReferenceWarnsOnNaN(t *testing.T) {
	var buf bytes.Buffer
	tbl := newTestTable(t, [][]float64{{10}, {20}, {30}}, []float64{400, 500, 600}, WithLogger(bufferLogger(&buf)))

	require.NoError(t, tbl.SetReference(Vector([]float64{1, 0, math.NaN()})))
	out := buf.String()
	assert.Contains(t, out, "zeros or NaNs")
	assert.Contains(t, out, "zeros=1")
	assert.Contains(t, out, "nans=1")
}
