//go:build rp2040

package main

import "machine"

// Board wiring. Each cooler's fans sit behind mosfets on consecutive
// GPIOs; the thermistor dividers feed the onboard ADC.
var (
	coolerAFanPins = []machine.Pin{machine.GP2, machine.GP3, machine.GP4}
	coolerBFanPins = []machine.Pin{machine.GP6, machine.GP7, machine.GP8}
)

const (
	coolerAThermistorPin = machine.ADC0 // GP26
	coolerBThermistorPin = machine.ADC1 // GP27

	// Four wire fan header: incoming PWM command and outgoing tach.
	// The two waveform programs both load at offset 0, so they live on
	// separate PIO blocks.
	pwmCommandPin = machine.GP10 // PIO0
	tachOutputPin = machine.GP11 // PIO1

	// Host query link.
	queryTxPin = machine.GP16
	queryRxPin = machine.GP17

	// External MCP3008 for the intake and exhaust thermistors, on SPI1.
	envSckPin = machine.GP14
	envSdoPin = machine.GP15
	envSdiPin = machine.GP12
	envCsPin  = machine.GP13
)
