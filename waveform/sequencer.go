package waveform

import "errors"

// Errors surfaced by the drivers. A measurement window expiring without
// edges is NOT one of these; that is a valid 0%/100% duty result.
var (
	// ErrFIFOOverrun means stale words were found in the RX FIFO before a
	// measurement started. The result stream can no longer be paired with
	// requests, so the call fails rather than report a bogus duty cycle.
	ErrFIFOOverrun = errors.New("waveform: unexpected data in RX FIFO")

	// ErrMeasurementHung means the state machine produced no result within
	// the software deadline. Only possible with a miscalibrated hardware
	// timeout; the driver resets the state machine before returning it.
	ErrMeasurementHung = errors.New("waveform: state machine produced no result before deadline")

	// ErrTimeoutTooShort means the requested window is below one
	// down-counter cycle at the configured clock.
	ErrTimeoutTooShort = errors.New("waveform: measurement timeout shorter than one counter cycle")

	// ErrFrequencyTooHigh means the requested output frequency needs a
	// half-period down-count below 1.
	ErrFrequencyTooHigh = errors.New("waveform: frequency not representable at state machine clock")
)

// Sequencer is the driver-side view of one PIO state machine running one
// of this package's programs. The RP2040 implementation lives under
// targets/rp2040; tests use an in-memory fake.
type Sequencer interface {
	// Put enqueues a word on the TX FIFO, waiting for space if full.
	Put(word uint32)

	// TryGet dequeues a word from the RX FIFO. Never blocks.
	TryGet() (uint32, bool)

	// SetEnabled starts or stops program execution.
	SetEnabled(enabled bool)

	// ClearFIFOs drops all pending words in both FIFOs.
	ClearFIFOs()

	// Restart resets the state machine's internal state and rewinds it to
	// the start of its program. Call only while disabled.
	Restart()
}

// OutputSequencer is a Sequencer whose program drives a pin; the pin can
// be parked low while the state machine is disabled.
type OutputSequencer interface {
	Sequencer

	// ForcePinLow drives the output pin low. Call only while disabled.
	ForcePinLow()
}
