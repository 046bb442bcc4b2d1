package waveform

// SquareWaveWriter drives a pin with a square wave of controllable
// frequency through a sequencer running SquareProgram.
//
// The program free-runs on its last loaded half-period count, so changing
// frequency is a single FIFO write picked up at the next wrap. Repeating
// the current frequency is deliberately a no-op: re-loading the same count
// would re-synchronize the wave mid-cycle for no benefit.
type SquareWaveWriter struct {
	sm        OutputSequencer
	clockHz   uint32
	currentHz uint32
	active    bool
}

// NewSquareWaveWriter returns a writer over a sequencer running
// SquareProgram with half-period counts ticking at clockHz. The state
// machine must start disabled; the first SetFrequency call enables it.
func NewSquareWaveWriter(sm OutputSequencer, clockHz uint32) *SquareWaveWriter {
	return &SquareWaveWriter{sm: sm, clockHz: clockHz}
}

// SetFrequency retargets the output to hz. Zero disables the output and
// parks the pin low. The returned flag reports whether anything changed;
// calling with the frequency already in effect does nothing.
func (w *SquareWaveWriter) SetFrequency(hz uint32) (bool, error) {
	if hz == w.currentHz {
		return false, nil
	}

	if hz == 0 {
		w.disable()
		return true, nil
	}

	counts := w.clockHz / hz / 2
	if counts < 1 {
		return false, ErrFrequencyTooHigh
	}

	if !w.active {
		// First activation: load the initial count before enabling so the
		// program's opening blocking pull completes immediately.
		w.sm.ClearFIFOs()
		w.sm.Restart()
		w.sm.Put(counts)
		w.sm.SetEnabled(true)
		w.active = true
	} else {
		w.sm.Put(counts)
	}

	w.currentHz = hz
	return true, nil
}

// Frequency returns the frequency currently in effect, zero if disabled.
func (w *SquareWaveWriter) Frequency() uint32 {
	return w.currentHz
}

func (w *SquareWaveWriter) disable() {
	w.sm.SetEnabled(false)
	w.sm.ClearFIFOs()
	w.sm.Restart()
	w.sm.ForcePinLow()
	w.active = false
	w.currentHz = 0
}
