//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp3008"
)

// The intake and exhaust thermistors hang off an external MCP3008 on
// SPI1; the onboard converter's channels are taken by the zone dividers.
type environmentADCs struct {
	dev mcp3008.Device
}

func newEnvironmentADCs() (*environmentADCs, error) {
	err := machine.SPI1.Configure(machine.SPIConfig{
		Frequency: 1_000_000,
		SCK:       envSckPin,
		SDO:       envSdoPin,
		SDI:       envSdiPin,
	})
	if err != nil {
		return nil, err
	}

	e := &environmentADCs{dev: mcp3008.New(machine.SPI1, envCsPin)}
	e.dev.Configure()
	return e, nil
}

// Intake returns channel 0 as a thermal.ADC.
func (e *environmentADCs) Intake() *mcpChannel { return &mcpChannel{pin: e.dev.CH0} }

// Exhaust returns channel 1 as a thermal.ADC.
func (e *environmentADCs) Exhaust() *mcpChannel { return &mcpChannel{pin: e.dev.CH1} }

// mcpChannel adapts one MCP3008 input to thermal.ADC. The driver scales
// the 10-bit conversion into the 16-bit number space.
type mcpChannel struct {
	pin mcp3008.ADCPin
}

func (c *mcpChannel) ReadCounts() uint16 {
	return c.pin.Get()
}
