//go:build rp2040

package main

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/Tesla-Cooler/tesla-cooler-software/waveform"
)

// pioSequencer adapts one claimed PIO state machine to the waveform
// package's Sequencer interface.
type pioSequencer struct {
	sm     pio.StateMachine
	offset uint8
	pin    machine.Pin
}

func (s *pioSequencer) Put(word uint32) {
	for s.sm.IsTxFIFOFull() {
	}
	s.sm.TxPut(word)
}

func (s *pioSequencer) TryGet() (uint32, bool) {
	if s.sm.IsRxFIFOEmpty() {
		return 0, false
	}
	return s.sm.RxGet(), true
}

func (s *pioSequencer) SetEnabled(enabled bool) {
	s.sm.SetEnabled(enabled)
}

func (s *pioSequencer) ClearFIFOs() {
	s.sm.ClearFIFOs()
}

// Restart rewinds the state machine to the top of its program. See
// StateMachine.Init for this sequence of operations.
func (s *pioSequencer) Restart() {
	s.sm.Restart()
	s.sm.ClkDivRestart()
	s.sm.Exec(pio.EncodeJmp(s.offset, pio.JmpAlways))
}

func (s *pioSequencer) ForcePinLow() {
	s.sm.Exec(0xe000) // set pins, 0
}

// newMeasureSequencer loads the measurement program onto sm, routes pin
// to its jmp input, and leaves it running and waiting for a seed. The
// returned clock is the rate its down counters tick at.
func newMeasureSequencer(sm pio.StateMachine, pin machine.Pin) (*pioSequencer, uint32, error) {
	sm.TryClaim()
	offset, err := sm.PIO().AddProgram(waveform.MeasureProgram, waveform.MeasureOrigin)
	if err != nil {
		return nil, 0, err
	}

	pin.Configure(machine.PinConfig{Mode: machine.PinInput})

	cfg := pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+waveform.MeasureWrapBottom, offset+waveform.MeasureWrapTop)
	cfg.SetJmpPin(pin)
	cfg.SetClkDivIntFrac(1, 0)
	sm.Init(offset, cfg)
	sm.SetEnabled(true)

	return &pioSequencer{sm: sm, offset: offset, pin: pin}, machine.CPUFrequency(), nil
}

// newSquareSequencer loads the square wave program onto sm with pin as
// its set output, parked low and disabled; the writer enables it on the
// first frequency. The returned clock is the half-period count rate,
// half the state machine clock since each count costs two instructions.
func newSquareSequencer(sm pio.StateMachine, pin machine.Pin) (*pioSequencer, uint32, error) {
	sm.TryClaim()
	offset, err := sm.PIO().AddProgram(waveform.SquareProgram, waveform.SquareOrigin)
	if err != nil {
		return nil, 0, err
	}

	pin.Configure(machine.PinConfig{Mode: sm.PIO().PinMode()})
	sm.SetPindirsConsecutive(pin, 1, true)

	cfg := pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+waveform.SquareWrapBottom, offset+waveform.SquareWrapTop)
	cfg.SetSetPins(pin, 1)
	cfg.SetClkDivIntFrac(1, 0)
	sm.Init(offset, cfg)

	seq := &pioSequencer{sm: sm, offset: offset, pin: pin}
	seq.ForcePinLow()
	return seq, machine.CPUFrequency() / waveform.SquareCyclesPerCount, nil
}
