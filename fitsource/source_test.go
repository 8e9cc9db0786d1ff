package fitsource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tormoder/fit"

	"github.com/lucasjlepore/spectra-analyzer/index"
	"github.com/lucasjlepore/spectra-analyzer/units"
)

var testStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

func TestDecodeBuildsChannelTable(t *testing.T) {
	tbl, err := Decode(bytes.NewReader(buildTestFIT(t, true)), WithName("ride"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if tbl.Name() != "ride" {
		t.Fatalf("unexpected name: %q", tbl.Name())
	}
	r, c := tbl.Dims()
	if r != len(Channels) || c != 3 {
		t.Fatalf("unexpected dims: %dx%d", r, c)
	}
	if tbl.SpecUnit() != units.None {
		t.Fatalf("row unit should be none, got %q", tbl.SpecUnit())
	}
	if tbl.VarUnit() != units.Datetime {
		t.Fatalf("column unit should be datetime, got %q", tbl.VarUnit())
	}

	ti, ok := tbl.Columns().(*index.TimeIndex)
	if !ok {
		t.Fatalf("columns should be a time index, got %T", tbl.Columns())
	}
	times, err := ti.Times()
	if err != nil {
		t.Fatalf("Times error: %v", err)
	}
	for j, want := range []time.Time{testStart, testStart.Add(time.Second), testStart.Add(2 * time.Second)} {
		if !times[j].Equal(want) {
			t.Fatalf("timestamp %d: got %s want %s", j, times[j], want)
		}
	}

	nan := math.NaN()
	want := [][]float64{
		{245, 250, 260},
		{135, nan, 137},
		{92, 93, 94},
		{5, 5.5, 6},
		{100, 100.2, 100.4},
		{21, 21, 22},
	}
	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(want, tbl.Rows(), opts); diff != "" {
		t.Fatalf("channel values mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeElapsedSeconds(t *testing.T) {
	tbl, err := Decode(bytes.NewReader(buildTestFIT(t, true)))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	secs, err := tbl.AsVarUnit("s")
	if err != nil {
		t.Fatalf("AsVarUnit error: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 1, 2}, secs.Columns().Values()); diff != "" {
		t.Fatalf("elapsed seconds mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileDefaultsName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morning.fit")
	if err := os.WriteFile(path, buildTestFIT(t, true), 0o644); err != nil {
		t.Fatalf("write sample fit: %v", err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if tbl.Name() != "morning" {
		t.Fatalf("unexpected name: %q", tbl.Name())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.fit")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeWithoutRecords(t *testing.T) {
	_, err := Decode(bytes.NewReader(buildTestFIT(t, false)))
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestChannelRow(t *testing.T) {
	if i, ok := ChannelRow("speed"); !ok || i != 3 {
		t.Fatalf("speed row: got %d, %v", i, ok)
	}
	if _, ok := ChannelRow("torque"); ok {
		t.Fatal("unexpected torque channel")
	}
}

func buildTestFIT(t *testing.T, withRecords bool) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	event := fit.NewEventMsg()
	event.Timestamp = testStart
	event.Event = fit.EventTimer
	event.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, event)

	if withRecords {
		// Written out of order; Decode sorts by timestamp.
		for _, r := range []struct {
			offset      time.Duration
			power       uint16
			hr          uint8
			cadence     uint8
			speed       uint16
			altitude    uint16
			temperature int8
		}{
			{2 * time.Second, 260, 137, 94, 6000, 3002, 22},
			{0, 245, 135, 92, 5000, 3000, 21},
			{time.Second, 250, math.MaxUint8, 93, 5500, 3001, 21},
		} {
			record := fit.NewRecordMsg()
			record.Timestamp = testStart.Add(r.offset)
			record.Power = r.power
			record.HeartRate = r.hr
			record.Cadence = r.cadence
			record.Speed = r.speed
			record.Altitude = r.altitude
			record.Temperature = r.temperature
			activity.Records = append(activity.Records, record)
		}
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}
