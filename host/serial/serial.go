// Package serial abstracts the host side of the cooler's UART query
// link so tooling can be tested against in-memory ports.
package serial

import "io"

// Port is a serial connection to the cooler.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Device path, e.g. "/dev/ttyUSB0" or "COM3".
	Device string

	// Baud rate; the firmware's query UART runs at 115200.
	Baud int

	// Read timeout in milliseconds, 0 for blocking reads.
	ReadTimeout int
}

// DefaultConfig returns the configuration matching the firmware's query
// UART.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 2000,
	}
}
