package thermal

import (
	"errors"
	"math"
	"testing"
)

type fakeADC struct {
	counts uint16
}

func (f *fakeADC) ReadCounts() uint16 { return f.counts }

func TestResistance(t *testing.T) {
	tests := []struct {
		name   string
		counts uint16
		want   float64
	}{
		// Midpoint reading means thermistor equals the pulldown.
		{"divider at midpoint", 32768, 9999.7},
		// Full scale means zero volts across the thermistor.
		{"full scale", 65535, 0},
		{"quarter scale", 16384, 29999.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resistance(tt.counts, DefaultPulldownOhms)
			if err != nil {
				t.Fatalf("Resistance(%d): %v", tt.counts, err)
			}
			if math.Abs(got-tt.want) > 2 {
				t.Errorf("Resistance(%d) = %g, want %g +/- 2", tt.counts, got, tt.want)
			}
		})
	}
}

func TestResistanceOpenCircuit(t *testing.T) {
	_, err := Resistance(0, DefaultPulldownOhms)
	if !errors.Is(err, ErrOpenCircuit) {
		t.Fatalf("expected ErrOpenCircuit, got %v", err)
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(`{"0": "32.0", "25": "10.0", "50": "3.6", "100": "0.7"}`))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	tests := []struct {
		ohms float64
		want float64
	}{
		{10_000, 25},
		{9_500, 25}, // nearest, not exact
		{3_700, 50},
		{100_000, 0},  // beyond the cold end clamps
		{100, 100},    // beyond the hot end clamps
		{6_800, 50},   // equidistant, ties go to the lower resistance
		{32_000, 0},
	}
	for _, tt := range tests {
		if got := table.Temperature(tt.ohms); got != tt.want {
			t.Errorf("Temperature(%g) = %g, want %g", tt.ohms, got, tt.want)
		}
	}
}

func TestParseTableErrors(t *testing.T) {
	if _, err := ParseTable([]byte(`{}`)); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("empty table: got %v, want ErrEmptyTable", err)
	}
	if _, err := ParseTable([]byte(`not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := ParseTable([]byte(`{"cold": "32.0"}`)); err == nil {
		t.Error("non-numeric temperature key accepted")
	}
	if _, err := ParseTable([]byte(`{"25": "10k"}`)); err == nil {
		t.Error("non-numeric resistance accepted")
	}
}

func TestSensorReadsRoomTemperature(t *testing.T) {
	// Thermistor at 10K against the 10K pulldown puts the divider at half
	// scale, which is 25C on the default 3950 curve.
	sensor := NewSensor(&fakeADC{counts: 32768}, nil, 0)
	temp, err := sensor.Temperature()
	if err != nil {
		t.Fatalf("Temperature: %v", err)
	}
	if temp != 25 {
		t.Errorf("temperature = %g, want 25", temp)
	}
}

func TestSensorOpenCircuit(t *testing.T) {
	sensor := NewSensor(&fakeADC{counts: 0}, nil, 0)
	if _, err := sensor.Temperature(); !errors.Is(err, ErrOpenCircuit) {
		t.Fatalf("expected ErrOpenCircuit, got %v", err)
	}
}

func TestPowerCurve(t *testing.T) {
	tests := []struct {
		tempC float64
		want  float64
	}{
		{-10, 0},
		{0, 0},
		{29.9, 0},
		{30, 0},
		{50, 0.25},
		{70, 0.5},
		{85, 0.75},
		{100, 1},
		{120, 1},
	}
	for _, tt := range tests {
		got := DefaultCurve.Power(tt.tempC)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Power(%g) = %g, want %g", tt.tempC, got, tt.want)
		}
	}
}

func TestPowerCurveMonotone(t *testing.T) {
	prev := -1.0
	for temp := -20.0; temp <= 120; temp += 0.5 {
		p := DefaultCurve.Power(temp)
		if p < prev {
			t.Fatalf("Power(%g) = %g fell below %g", temp, p, prev)
		}
		prev = p
	}
}
