// Package thermal reads GPU temperature from an NTC thermistor divider
// and maps temperature to cooler power.
package thermal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// The thermistor hangs off 3.3V with a 10K pulldown to ground; the ADC
// samples the midpoint.
const DefaultPulldownOhms = 10_000

const adcFullScale = 65535

var (
	// ErrOpenCircuit means the ADC read zero counts, so the divider is
	// broken or the thermistor is disconnected.
	ErrOpenCircuit = errors.New("thermal: divider reads zero, thermistor disconnected")

	// ErrEmptyTable rejects a lookup table with no entries.
	ErrEmptyTable = errors.New("thermal: empty temperature lookup table")
)

// ADC reads raw converter counts in the 16-bit number space. The RP2040
// implementation lives under targets/rp2040.
type ADC interface {
	ReadCounts() uint16
}

// Resistance computes the thermistor's resistance in ohms from a divider
// reading. counts is the raw ADC value, full scale meaning the full
// supply across the pulldown.
func Resistance(counts uint16, pulldownOhms float64) (float64, error) {
	if counts == 0 {
		return 0, ErrOpenCircuit
	}
	return pulldownOhms*(adcFullScale/float64(counts)) - pulldownOhms, nil
}

// Table maps thermistor resistance to temperature by nearest entry.
// Nearest match keeps the table small; interpolation buys nothing at the
// accuracy of a 3950-curve part.
type Table struct {
	entries []tableEntry // sorted by resistance ascending
}

type tableEntry struct {
	resistanceOhms float64
	temperatureC   float64
}

// ParseTable decodes a lookup table from JSON of the form
//
//	{"-40": "401.9", "25": "10.0", ...}
//
// keyed by temperature in degrees C with resistance values in kOhm, the
// format thermistor datasheets transcribe to most directly.
func ParseTable(data []byte) (*Table, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding lookup table: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{}
	for tempStr, resStr := range raw {
		temp, err := strconv.ParseFloat(tempStr, 64)
		if err != nil {
			return nil, fmt.Errorf("temperature key %q: %w", tempStr, err)
		}
		kOhm, err := strconv.ParseFloat(resStr, 64)
		if err != nil {
			return nil, fmt.Errorf("resistance for %q: %w", tempStr, err)
		}
		t.entries = append(t.entries, tableEntry{
			resistanceOhms: kOhm * 1000,
			temperatureC:   temp,
		})
	}
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].resistanceOhms < t.entries[j].resistanceOhms
	})
	return t, nil
}

// NewTable builds a lookup table from parallel temperature and resistance
// values in ohms.
func NewTable(temperaturesC, resistancesOhms []float64) (*Table, error) {
	if len(temperaturesC) == 0 || len(temperaturesC) != len(resistancesOhms) {
		return nil, ErrEmptyTable
	}
	t := &Table{}
	for i := range temperaturesC {
		t.entries = append(t.entries, tableEntry{
			resistanceOhms: resistancesOhms[i],
			temperatureC:   temperaturesC[i],
		})
	}
	sort.Slice(t.entries, func(i, j int) bool {
		return t.entries[i].resistanceOhms < t.entries[j].resistanceOhms
	})
	return t, nil
}

// Temperature returns the temperature of the table entry whose resistance
// is closest to ohms.
func (t *Table) Temperature(ohms float64) float64 {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].resistanceOhms >= ohms
	})
	switch i {
	case 0:
		return t.entries[0].temperatureC
	case len(t.entries):
		return t.entries[len(t.entries)-1].temperatureC
	}
	below, above := t.entries[i-1], t.entries[i]
	if math.Abs(ohms-below.resistanceOhms) <= math.Abs(above.resistanceOhms-ohms) {
		return below.temperatureC
	}
	return above.temperatureC
}

// Sensor reads temperature from one thermistor divider.
type Sensor struct {
	adc          ADC
	table        *Table
	pulldownOhms float64
}

// NewSensor returns a sensor over the given ADC channel. A nil table uses
// the built-in 10K 3950 curve.
func NewSensor(adc ADC, table *Table, pulldownOhms float64) *Sensor {
	if table == nil {
		table = Default3950Table()
	}
	if pulldownOhms <= 0 {
		pulldownOhms = DefaultPulldownOhms
	}
	return &Sensor{adc: adc, table: table, pulldownOhms: pulldownOhms}
}

// Temperature samples the divider once and returns degrees C.
func (s *Sensor) Temperature() (float64, error) {
	ohms, err := Resistance(s.adc.ReadCounts(), s.pulldownOhms)
	if err != nil {
		return 0, err
	}
	return s.table.Temperature(ohms), nil
}

// default3950 is the resistance curve of a 10K B=3950 NTC part in 5
// degree steps, resistances in ohms.
var default3950 = []tableEntry{
	{401860, -40}, {281577, -35}, {200204, -30}, {144317, -25},
	{105385, -20}, {77898, -15}, {58246, -10}, {44026, -5},
	{33621, 0}, {25925, 5}, {20175, 10}, {15837, 15},
	{12535, 20}, {10000, 25}, {8037, 30}, {6506, 35},
	{5301, 40}, {4348, 45}, {3588, 50}, {2978, 55},
	{2486, 60}, {2086, 65}, {1760, 70}, {1492, 75},
	{1270, 80}, {1087, 85}, {934, 90}, {805, 95},
	{698, 100}, {606, 105}, {529, 110}, {463, 115},
	{407, 120}, {359, 125},
}

// Default3950Table returns the built-in curve for the 10K 3950 thermistor
// shipped with the cooler.
func Default3950Table() *Table {
	entries := make([]tableEntry, len(default3950))
	copy(entries, default3950)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].resistanceOhms < entries[j].resistanceOhms
	})
	return &Table{entries: entries}
}
