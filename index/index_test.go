package index

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/spectra-analyzer/units"
)

func TestSpecIndexRoundTripNanometersElectronVolts(t *testing.T) {
	idx, err := NewSpecIndex([]float64{400, 500, 600}, "nm")
	require.NoError(t, err)

	ev, err := idx.Convert("ev")
	require.NoError(t, err)
	assert.Equal(t, "ev", ev.Unit())
	assert.InDelta(t, 3.0996, ev.At(0), 1e-4)

	back, err := ev.Convert("nm")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{400, 500, 600}, back.Values(), 1e-9)
	assert.Equal(t, "Nanometers", back.FullUnit())
}

func TestConvertUnknownUnit(t *testing.T) {
	idx, err := NewSpecIndex([]float64{1}, "nm")
	require.NoError(t, err)

	_, err = idx.Convert("parsec")
	var ue *units.UnitError
	require.ErrorAs(t, err, &ue)

	_, err = NewSpecIndex([]float64{1}, "parsec")
	require.ErrorAs(t, err, &ue)
}

func TestConvertNoneRetags(t *testing.T) {
	idx, err := NewSpecIndex([]float64{400, 500}, "nm")
	require.NoError(t, err)

	none, err := idx.Convert(units.None)
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 500}, none.Values())

	again, err := none.Convert(units.None)
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 500}, again.Values())

	nm, err := none.Convert("nm")
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 500}, nm.Values())
}

func TestConvertSameUnitCopies(t *testing.T) {
	idx, err := NewSpecIndex([]float64{400.1}, "nm")
	require.NoError(t, err)
	same, err := idx.Convert("nm")
	require.NoError(t, err)
	assert.Equal(t, idx.Values(), same.Values())
	assert.True(t, idx.Equal(same))
}

func TestLengthInvariance(t *testing.T) {
	idx, err := NewSpecIndex([]float64{1, 2, 3, 4}, "um")
	require.NoError(t, err)
	for _, code := range units.Spectral().Codes() {
		out, err := idx.Convert(code)
		require.NoError(t, err)
		assert.Equal(t, idx.Len(), out.Len(), code)
	}

	ti := FromTimes(testTimes())
	for _, code := range units.Interval().Codes() {
		out, err := ti.Convert(code)
		require.NoError(t, err)
		assert.Equal(t, ti.Len(), out.Len(), code)
	}
}

func TestSliceTakeAndLookup(t *testing.T) {
	idx, err := NewSpecIndex([]float64{700, 600, 500, 400}, "nm")
	require.NoError(t, err)

	s, err := idx.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{600, 500}, s.Values())

	tk, err := idx.Take([]int{3, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{400, 700}, tk.Values())

	_, err = idx.Slice(2, 9)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = idx.Take([]int{-1})
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 2, idx.Nearest(480))
	assert.Equal(t, []int{1, 2}, idx.Between(650, 450))
	assert.Nil(t, idx.Between(100, 200))
}

func TestValuesAreCopies(t *testing.T) {
	in := []float64{1, 2}
	idx, err := NewSpecIndex(in, "nm")
	require.NoError(t, err)
	in[0] = 99
	v := idx.Values()
	v[1] = 99
	assert.Equal(t, []float64{1, 2}, idx.Values())
}

func testTimes() []time.Time {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return []time.Time{base, base.Add(10 * time.Second), base.Add(30 * time.Second)}
}

func TestTimeIndexAnchorFidelity(t *testing.T) {
	times := testTimes()
	ti := FromTimes(times)
	assert.Equal(t, units.Datetime, ti.Unit())

	secs, err := ti.Convert("s")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 30}, secs.Values())

	mins, err := secs.Convert("m")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 6, 0.5}, mins.Values(), 1e-12)

	back, err := mins.Convert(units.Datetime)
	require.NoError(t, err)
	got, err := back.Times()
	require.NoError(t, err)
	require.Len(t, got, len(times))
	for i := range times {
		assert.True(t, times[i].Equal(got[i]), "timestamp %d", i)
		assert.Equal(t, times[i], got[i])
	}
}

func TestTimeIndexAnchorKeepsZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	times := []time.Time{
		time.Date(2021, 6, 1, 12, 0, 0, 123, loc),
		time.Date(2021, 6, 1, 12, 0, 1, 456, loc),
	}
	ti := FromTimes(times)
	h, err := ti.Convert("h")
	require.NoError(t, err)
	back, err := h.Convert(units.Datetime)
	require.NoError(t, err)
	got, err := back.Times()
	require.NoError(t, err)
	assert.Equal(t, times, got)
}

func TestTimeIndexWithoutAnchor(t *testing.T) {
	ti, err := NewTimeIndex([]float64{0, 1, 2}, "s")
	require.NoError(t, err)
	assert.False(t, ti.HasAnchor())

	_, err = ti.Convert(units.Datetime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAnchor))

	var dce *units.DatetimeCanonicalError
	require.ErrorAs(t, err, &dce)
	var ue *units.UnitError
	assert.False(t, errors.As(err, &ue))

	_, err = NewTimeIndex([]float64{0}, units.Datetime)
	assert.ErrorIs(t, err, ErrMissingAnchor)

	_, err = ti.Times()
	assert.ErrorIs(t, err, ErrMissingAnchor)
}

func TestTimeIndexIntervalConversions(t *testing.T) {
	ti, err := NewTimeIndex([]float64{0, 90, 180}, "s")
	require.NoError(t, err)

	m, err := ti.Convert("m")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1.5, 3}, m.Values(), 1e-12)

	ms, err := m.Convert("ms")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 90000, 180000}, ms.Values(), 1e-6)
}

func TestTimeIndexOrdinals(t *testing.T) {
	ti := FromTimes(testTimes())
	ord, err := ti.Convert(units.Ordinal)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, ord.Values())

	secs, err := ord.Convert("s")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 30}, secs.Values())

	plain, err := NewTimeIndex([]float64{5, 6}, "s")
	require.NoError(t, err)
	plainOrd, err := plain.Convert(units.Ordinal)
	require.NoError(t, err)
	_, err = plainOrd.Convert("s")
	assert.ErrorIs(t, err, ErrMissingAnchor)
}

func TestTimeIndexNone(t *testing.T) {
	ti := FromTimes(testTimes())
	none, err := ti.Convert(units.None)
	require.NoError(t, err)
	assert.Equal(t, ti.Values(), none.Values())

	back, err := none.Convert(units.Datetime)
	require.NoError(t, err)
	assert.True(t, back.Equal(ti))
}

func TestTimeIndexSliceAndCloneCarryAnchor(t *testing.T) {
	times := testTimes()
	ti := FromTimes(times)
	secs, err := ti.Convert("s")
	require.NoError(t, err)

	tail, err := secs.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 30}, tail.Values())

	dt, err := tail.Convert(units.Datetime)
	require.NoError(t, err)
	got, err := dt.Times()
	require.NoError(t, err)
	assert.Equal(t, times[1:], got)

	rezeroed, err := dt.Convert("s")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20}, rezeroed.Values())

	picked, err := secs.Take([]int{2, 0})
	require.NoError(t, err)
	pt, err := picked.Times()
	require.NoError(t, err)
	assert.Equal(t, []time.Time{times[2], times[0]}, pt)

	c := secs.Clone()
	assert.True(t, c.HasAnchor())
	assert.True(t, c.Equal(secs))

	var ax Axis = secs
	cax := ax.CloneAxis()
	assert.True(t, cax.(*TimeIndex).HasAnchor())
}

func TestTimeRange(t *testing.T) {
	start := time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC)
	ti := TimeRange(start, 4, 250*time.Millisecond)
	assert.Equal(t, 4, ti.Len())

	ms, err := ti.Convert("ms")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 250, 500, 750}, ms.Values(), 1e-9)

	pos, ok := ti.Position(start.Add(500 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestEmptyTimeIndexKeepsAnchor(t *testing.T) {
	ti := FromTimes(nil)
	assert.True(t, ti.HasAnchor())
	s, err := ti.Convert("s")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	_, err = s.Convert(units.Datetime)
	require.NoError(t, err)
}

func TestRestoreTimeIndex(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	anchor := []time.Time{start, start.Add(time.Minute)}

	x, err := Restore([]float64{0, 1}, "m", anchor)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, x.Values())
	assert.True(t, x.HasAnchor())

	dt, err := x.Convert(units.Datetime)
	require.NoError(t, err)
	times, err := dt.Times()
	require.NoError(t, err)
	assert.True(t, times[1].Equal(anchor[1]))

	_, err = Restore([]float64{0, 1}, "m", anchor[:1])
	assert.Error(t, err)

	_, err = Restore([]float64{0, 1}, units.Datetime, nil)
	assert.ErrorIs(t, err, ErrMissingAnchor)

	_, err = Restore([]float64{0}, "fortnight", anchor[:1])
	assert.Error(t, err)
}

func TestDatetimeValuesOutsideNanosecondRange(t *testing.T) {
	times := []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 500_000_000, time.UTC),
		time.Date(2400, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	x := FromTimes(times)
	assert.InDelta(t, float64(times[0].Unix())+0.5, x.At(0), 1e-3)
	assert.Equal(t, float64(times[1].Unix()), x.At(1))

	elapsed, err := x.Convert("s")
	require.NoError(t, err)
	back, err := elapsed.Convert(units.Datetime)
	require.NoError(t, err)
	assert.Equal(t, x.Values(), back.Values())
}
