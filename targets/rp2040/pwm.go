//go:build rp2040

package main

import (
	"machine"

	"github.com/Tesla-Cooler/tesla-cooler-software/cooler"
)

// pwmSlice abstracts over TinyGo's unexported *pwmGroup type behind
// machine.PWM0..PWM7.
type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// fanPWM drives one fan through a hardware PWM channel. Implements
// cooler.PWMChannel.
type fanPWM struct {
	slice   pwmSlice
	channel uint8
}

// newFanPWM configures the slice owning pin for the fan drive frequency
// and returns the channel. Fans sharing a slice must use the same
// frequency; the fan constants guarantee that.
func newFanPWM(pin machine.Pin, freqHz uint32) (*fanPWM, error) {
	slice := pwmForPin(pin)
	err := slice.Configure(machine.PWMConfig{
		Period: uint64(1_000_000_000) / uint64(freqHz),
	})
	if err != nil {
		return nil, err
	}
	channel, err := slice.Channel(pin)
	if err != nil {
		return nil, err
	}
	return &fanPWM{slice: slice, channel: channel}, nil
}

// SetDuty scales duty from the 0..MaxDuty space onto the slice's
// hardware top value.
func (f *fanPWM) SetDuty(duty int) {
	if duty < 0 {
		duty = 0
	}
	if duty > cooler.MaxDuty {
		duty = cooler.MaxDuty
	}
	top := uint64(f.slice.Top())
	f.slice.Set(f.channel, uint32(uint64(duty)*top/cooler.MaxDuty))
}

// pwmForPin maps a GPIO to its PWM slice. RP2040: GPIO N belongs to
// slice (N >> 1) & 7, even pins on channel A, odd on channel B.
func pwmForPin(pin machine.Pin) pwmSlice {
	switch (pin >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
