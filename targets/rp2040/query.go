//go:build rp2040

package main

import (
	"machine"
	"math"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/query"
)

const queryBaudRate = 115200

// uartStream adapts the board UART to io.ReadWriter with blocking reads;
// the raw UART returns immediately when no bytes are buffered.
type uartStream struct {
	uart *machine.UART
}

func (s *uartStream) Read(p []byte) (int, error) {
	for s.uart.Buffered() == 0 {
		time.Sleep(500 * time.Microsecond)
	}
	return s.uart.Read(p)
}

func (s *uartStream) Write(p []byte) (int, error) {
	return s.uart.Write(p)
}

// temperatureReader samples one zone; failed sensors report NaN so the
// host still sees every zone at its fixed offset.
type temperatureReader func() (float64, error)

// serveQueries answers host polls on UART0 forever. Zone order is fixed:
// cooler A, cooler B, intake, exhaust.
func serveQueries(readers []temperatureReader) {
	uart := machine.UART0
	err := uart.Configure(machine.UARTConfig{
		BaudRate: queryBaudRate,
		TX:       queryTxPin,
		RX:       queryRxPin,
	})
	if err != nil {
		println("query: uart configure failed:", err.Error())
		return
	}

	server := &query.Server{
		Info: query.Info{
			FirmwareVersion: firmwareVersion,
			ZoneCount:       2,
			ZoneSensorsType: "NTC Thermistor",
		},
		Temperatures: func() ([]float32, error) {
			temps := make([]float32, len(readers))
			for i, read := range readers {
				c, err := read()
				if err != nil {
					println("query: sensor", i, "read failed:", err.Error())
					c = math.NaN()
				}
				temps[i] = float32(c)
			}
			return temps, nil
		},
		Logf: logf,
	}

	stream := &uartStream{uart: uart}
	for {
		// Serve returns on the exit command; keep answering the next
		// session.
		if err := server.Serve(stream); err != nil {
			println("query: serve failed:", err.Error())
			time.Sleep(time.Second)
		}
	}
}
