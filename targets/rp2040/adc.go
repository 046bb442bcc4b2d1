//go:build rp2040

package main

import "machine"

// onboardADC reads one RP2040 ADC pin. Implements thermal.ADC; TinyGo
// scales conversions into the 16-bit number space the divider math
// expects.
type onboardADC struct {
	adc machine.ADC
}

// newOnboardADC configures pin for analog input. machine.InitADC must
// have run first.
func newOnboardADC(pin machine.Pin) (*onboardADC, error) {
	adc := machine.ADC{Pin: pin}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	return &onboardADC{adc: adc}, nil
}

func (a *onboardADC) ReadCounts() uint16 {
	return a.adc.Get()
}
