// Package pulse holds the platform-independent half of square-wave
// measurement: the result type, the raw counter values produced by the
// measurement state machine, and the math that converts between them.
//
// The hardware side (loading the PIO program, draining its FIFO) lives in
// the waveform package; everything here is pure and runs on the host.
package pulse

import (
	"errors"
	"time"
)

// Cycles-per-iteration cost of the two measured wait phases of the
// measurement program. The count-high loop is two instructions per
// decrement (jmp x-- / jmp pin), the count-low loop is three
// (jmp y-- / jmp pin / jmp). Derived from the program listing in the
// waveform package; if the program changes these must be re-derived.
const (
	CyclesPerHighIteration = 2
	CyclesPerLowIteration  = 3

	// Worst-case per-iteration cost used for timeout budgeting across all
	// four wait phases, with margin.
	worstCaseCyclesPerIteration = 5
)

// ErrZeroPeriod is returned when a measurement produced edge transitions
// but zero elapsed cycles between them. That can only come from counter
// corruption, so it is surfaced as a failure rather than coerced into a
// duty-cycle value.
var ErrZeroPeriod = errors.New("pulse: measured period of zero cycles")

// RawCycleCounts is the transient output of one run of the measurement
// state machine: the two remaining-count register values pushed through the
// RX FIFO, plus the per-phase timeout flags. It never leaves the driver
// boundary; callers see Properties.
type RawCycleCounts struct {
	// CHigh is the down-counter value captured when the falling edge ended
	// the high portion of the waveform.
	CHigh uint32

	// DLow is the down-counter value captured when the rising edge ended
	// the low portion.
	DLow uint32

	// NeverHigh is set when the pin stayed low for the whole window: the
	// wait for the initial rising edge exhausted its budget.
	NeverHigh bool

	// NeverLow is set when the pin stayed high for the whole window: the
	// wait for the falling edge that would end the high portion exhausted
	// its budget.
	NeverLow bool
}

// Properties is the immutable result of one pulse measurement.
//
// DutyCycle is always populated. PeriodSeconds and WidthSeconds are only
// meaningful when TimingValid is true; a waveform observed always-low
// (duty 0) or always-high (duty 1) has no measurable period or width, and
// both fields are zero with TimingValid false.
type Properties struct {
	PeriodSeconds float64
	WidthSeconds  float64
	DutyCycle     float64
	TimingValid   bool
}

// TimeoutCycles converts a wall-clock measurement timeout into the
// down-counter seed handed to the state machine. The seed is budgeted at
// the worst-case five cycles per wait iteration so that a slow but
// legitimate waveform is never misreported as 0%/100% duty.
func TimeoutCycles(timeout time.Duration, clockHz uint32) uint32 {
	if timeout <= 0 || clockHz == 0 {
		return 0
	}
	cycles := timeout.Seconds() * float64(clockHz) / worstCaseCyclesPerIteration
	if cycles < 0 {
		return 0
	}
	if cycles > float64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(cycles)
}

// Convert turns the raw counter values of one measurement into physical
// units. seed is the down-counter seed the measurement was started with and
// clockHz the state machine clock the counters ran at.
//
// Timeouts are data, not errors: NeverHigh yields duty 0, NeverLow duty 1,
// both with no timing fields. A zero total period is a failure.
func Convert(raw RawCycleCounts, seed uint32, clockHz uint32) (Properties, error) {
	if raw.NeverHigh {
		return Properties{DutyCycle: 0}, nil
	}
	if raw.NeverLow {
		return Properties{DutyCycle: 1}, nil
	}

	// The registers count down from the seed, so elapsed iterations are
	// seed minus the captured value. The high capture happens one
	// iteration late relative to the edge, hence the +1.
	highCycles := (seed - raw.CHigh + 1) * CyclesPerHighIteration
	lowCycles := (seed - raw.DLow) * CyclesPerLowIteration
	totalCycles := highCycles + lowCycles
	if totalCycles == 0 {
		return Properties{}, ErrZeroPeriod
	}

	clockPeriod := 1 / float64(clockHz)
	return Properties{
		PeriodSeconds: float64(totalCycles) * clockPeriod,
		WidthSeconds:  float64(highCycles) * clockPeriod,
		DutyCycle:     float64(highCycles) / float64(totalCycles),
		TimingValid:   true,
	}, nil
}
