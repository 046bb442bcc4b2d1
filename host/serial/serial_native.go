package serial

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// nativePort wraps the tarm/serial implementation.
type nativePort struct {
	port *serial.Port
}

// Open opens a native serial port.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", cfg.Device, err)
	}

	return &nativePort{port: port}, nil
}

func (p *nativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *nativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *nativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}
