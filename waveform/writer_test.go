package waveform

import (
	"errors"
	"testing"
)

func TestSetFrequencyFirstActivation(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	changed, err := w.SetFrequency(1000)
	if err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if !changed {
		t.Error("first activation must report a change")
	}
	if !sm.enabled {
		t.Error("state machine must be enabled")
	}
	if len(sm.tx) != 1 || sm.tx[0] != 500 {
		t.Fatalf("tx = %v, want one half-period count of 500", sm.tx)
	}
	if w.Frequency() != 1000 {
		t.Errorf("Frequency() = %d, want 1000", w.Frequency())
	}
}

func TestSetFrequencyDeduplicates(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	if _, err := w.SetFrequency(2000); err != nil {
		t.Fatal(err)
	}
	wrote := len(sm.tx)

	changed, err := w.SetFrequency(2000)
	if err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if changed {
		t.Error("repeating the current frequency must report no change")
	}
	if len(sm.tx) != wrote {
		t.Errorf("repeat wrote %d extra words", len(sm.tx)-wrote)
	}
}

func TestSetFrequencyRetarget(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 2_000_000)

	if _, err := w.SetFrequency(1000); err != nil {
		t.Fatal(err)
	}
	changed, err := w.SetFrequency(4000)
	if err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if !changed {
		t.Error("retarget must report a change")
	}
	if got := sm.tx[len(sm.tx)-1]; got != 250 {
		t.Errorf("last count = %d, want 250", got)
	}
	if sm.restarts != 1 {
		t.Errorf("retarget restarted the state machine (%d restarts, want the 1 from activation)", sm.restarts)
	}
}

func TestSetFrequencyZeroDisables(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	if _, err := w.SetFrequency(1000); err != nil {
		t.Fatal(err)
	}
	changed, err := w.SetFrequency(0)
	if err != nil {
		t.Fatalf("SetFrequency(0): %v", err)
	}
	if !changed {
		t.Error("disabling must report a change")
	}
	if sm.enabled {
		t.Error("state machine must be disabled")
	}
	if !sm.pinLow {
		t.Error("pin must be parked low")
	}
	if w.Frequency() != 0 {
		t.Errorf("Frequency() = %d, want 0", w.Frequency())
	}
}

func TestSetFrequencyZeroWhileDisabledIsNoop(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	changed, err := w.SetFrequency(0)
	if err != nil {
		t.Fatalf("SetFrequency(0): %v", err)
	}
	if changed {
		t.Error("zero on an idle writer must report no change")
	}
	if sm.enabled || len(sm.tx) != 0 {
		t.Error("idle writer must not touch the state machine")
	}
}

func TestSetFrequencyTooHigh(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	// 1MHz count clock cannot express >500kHz output.
	changed, err := w.SetFrequency(600_000)
	if !errors.Is(err, ErrFrequencyTooHigh) {
		t.Fatalf("expected ErrFrequencyTooHigh, got %v", err)
	}
	if changed {
		t.Error("a rejected frequency must report no change")
	}
	if sm.enabled {
		t.Error("a rejected frequency must not enable the state machine")
	}

	// The writer stays usable after a rejection.
	if _, err := w.SetFrequency(1000); err != nil {
		t.Fatalf("SetFrequency after rejection: %v", err)
	}
	if w.Frequency() != 1000 {
		t.Errorf("Frequency() = %d, want 1000", w.Frequency())
	}
}

func TestSetFrequencyReactivateAfterDisable(t *testing.T) {
	sm := &fakeSequencer{}
	w := NewSquareWaveWriter(sm, 1_000_000)

	if _, err := w.SetFrequency(1000); err != nil {
		t.Fatal(err)
	}
	if _, err := w.SetFrequency(0); err != nil {
		t.Fatal(err)
	}
	changed, err := w.SetFrequency(500)
	if err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if !changed || !sm.enabled {
		t.Error("reactivation must re-enable the state machine")
	}
	if got := sm.tx[len(sm.tx)-1]; got != 1000 {
		t.Errorf("count = %d, want 1000", got)
	}
}
