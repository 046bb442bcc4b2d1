package waveform

import (
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/pulse"
)

// Poll interval while draining the RX FIFO. The main firmware loop yields
// at the same granularity.
const fifoPollInterval = 10 * time.Microsecond

// Extra wall-clock allowance on top of the hardware timeout before the
// software deadline declares the state machine hung.
const deadlineMargin = 50 * time.Millisecond

// PulseReader measures period, width and duty cycle of the square wave on
// the pin owned by its sequencer, which must be running MeasureProgram.
//
// Each Measure call is synchronous: it seeds the state machine's timeout
// down-counter, blocks until the two capture words arrive (or the window
// expires inside the hardware), and converts the counts to physical units.
type PulseReader struct {
	sm      Sequencer
	clockHz uint32
}

// NewPulseReader returns a reader over a sequencer running MeasureProgram
// with its down-counters ticking at clockHz.
func NewPulseReader(sm Sequencer, clockHz uint32) *PulseReader {
	return &PulseReader{sm: sm, clockHz: clockHz}
}

// Measure observes the pin for at most timeout and returns the measured
// pulse properties. A window that expires with the pin stuck low or high
// is a valid result (duty 0 or 1); hardware faults are returned as errors.
func (r *PulseReader) Measure(timeout time.Duration) (pulse.Properties, error) {
	seed := pulse.TimeoutCycles(timeout, r.clockHz)
	if seed == 0 {
		return pulse.Properties{}, ErrTimeoutTooShort
	}

	raw, err := r.ReadRaw(seed, timeout)
	if err != nil {
		return pulse.Properties{}, err
	}
	return pulse.Convert(raw, seed, r.clockHz)
}

// ReadRaw runs one measurement with an explicit down-counter seed and
// returns the raw counter captures. Most callers want Measure.
func (r *PulseReader) ReadRaw(seed uint32, timeout time.Duration) (pulse.RawCycleCounts, error) {
	// Anything already in the RX FIFO is a leftover from a measurement
	// this call did not request; the stream can no longer be paired with
	// requests, so reset rather than misattribute.
	if _, ok := r.sm.TryGet(); ok {
		r.reset()
		return pulse.RawCycleCounts{}, ErrFIFOOverrun
	}

	r.sm.Put(seed)

	// The hardware timeout bounds the measurement; the software deadline
	// only guards against a miscalibrated seed, which would otherwise
	// block forever.
	deadline := time.Now().Add(2*timeout + deadlineMargin)

	cHigh, err := r.nextWord(deadline)
	if err != nil {
		return pulse.RawCycleCounts{}, err
	}
	dLow, err := r.nextWord(deadline)
	if err != nil {
		return pulse.RawCycleCounts{}, err
	}

	raw := pulse.RawCycleCounts{CHigh: cHigh, DLow: dLow}
	// A wrapped counter marks the phase that exhausted the window: X wraps
	// waiting for the falling edge (pin never left high), Y wraps waiting
	// for the rising edge (pin never went high at all).
	switch {
	case cHigh == TimeoutSentinel:
		raw.NeverLow = true
	case dLow == TimeoutSentinel:
		raw.NeverHigh = true
	}
	return raw, nil
}

func (r *PulseReader) nextWord(deadline time.Time) (uint32, error) {
	for {
		if w, ok := r.sm.TryGet(); ok {
			return w, nil
		}
		if time.Now().After(deadline) {
			r.reset()
			return 0, ErrMeasurementHung
		}
		time.Sleep(fifoPollInterval)
	}
}

// reset returns the state machine to the top of the program with empty
// FIFOs so the next measurement starts clean.
func (r *PulseReader) reset() {
	r.sm.SetEnabled(false)
	r.sm.ClearFIFOs()
	r.sm.Restart()
	r.sm.SetEnabled(true)
}
