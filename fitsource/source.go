// Package fitsource reads FIT activity files into spectra tables: one row per
// sensor channel, one column per record, with the record timestamps as the
// datetime anchor of the column axis.
package fitsource

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"
	"gonum.org/v1/gonum/mat"

	spectra "github.com/lucasjlepore/spectra-analyzer"
	"github.com/lucasjlepore/spectra-analyzer/index"
	"github.com/lucasjlepore/spectra-analyzer/units"
)

// ErrNoRecords is returned for activities without timestamped records.
var ErrNoRecords = errors.New("activity has no timestamped records")

// Channel describes one table row.
type Channel struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Channels lists the rows of a decoded table, in row order.
var Channels = []Channel{
	{Name: "power", Unit: "W"},
	{Name: "heart_rate", Unit: "bpm"},
	{Name: "cadence", Unit: "rpm"},
	{Name: "speed", Unit: "m/s"},
	{Name: "altitude", Unit: "m"},
	{Name: "temperature", Unit: "C"},
}

var extractors = []func(*fit.RecordMsg) (float64, bool){
	extractPower,
	extractHeartRate,
	extractCadence,
	extractSpeed,
	extractAltitude,
	extractTemperature,
}

type config struct {
	name   string
	logger *spectra.Logger
}

// Option configures Decode and LoadFile.
type Option func(*config)

// WithName sets the table name. LoadFile defaults it to the file's base name.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger handed to the table.
func WithLogger(l *spectra.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// LoadFile decodes the activity FIT file at path.
func LoadFile(path string, opts ...Option) (*spectra.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	opts = append([]Option{WithName(strings.TrimSuffix(base, filepath.Ext(base)))}, opts...)
	return Decode(f, opts...)
}

// Decode reads an activity FIT stream. Records are ordered by timestamp and
// records without a valid timestamp are dropped. Missing sensor values are NaN.
func Decode(r io.Reader, opts ...Option) (*spectra.Table, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	records := sortedRecords(activity.Records)
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	times := make([]time.Time, len(records))
	data := mat.NewDense(len(Channels), len(records), nil)
	for j, rec := range records {
		times[j] = rec.Timestamp
		for i, extract := range extractors {
			v, ok := extract(rec)
			if !ok {
				v = math.NaN()
			}
			data.Set(i, j, v)
		}
	}

	rows, err := index.NewSpecIndex(channelOrdinals(), units.None)
	if err != nil {
		return nil, err
	}
	tableOpts := []spectra.Option{spectra.WithName(cfg.name)}
	if cfg.logger != nil {
		tableOpts = append(tableOpts, spectra.WithLogger(cfg.logger))
	}
	return spectra.New(data, rows, index.FromTimes(times), tableOpts...)
}

// ChannelRow returns the row position of the named channel.
func ChannelRow(name string) (int, bool) {
	for i, c := range Channels {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

func channelOrdinals() []float64 {
	out := make([]float64, len(Channels))
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func sortedRecords(records []*fit.RecordMsg) []*fit.RecordMsg {
	out := make([]*fit.RecordMsg, 0, len(records))
	for _, rec := range records {
		if rec == nil || !validTime(rec.Timestamp) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func extractPower(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}

func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	if cad256 := rec.GetCadence256Scaled(); isFinite(cad256) && cad256 > 0 {
		return cad256, true
	}
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.Cadence), true
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func extractAltitude(rec *fit.RecordMsg) (float64, bool) {
	if alt := rec.GetEnhancedAltitudeScaled(); isFinite(alt) {
		return alt, true
	}
	if alt := rec.GetAltitudeScaled(); isFinite(alt) {
		return alt, true
	}
	return 0, false
}

func extractTemperature(rec *fit.RecordMsg) (float64, bool) {
	if rec.Temperature == math.MaxInt8 {
		return 0, false
	}
	return float64(rec.Temperature), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
