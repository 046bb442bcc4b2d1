// Package query implements the serial protocol a host uses to poll the
// cooler: single-byte commands answered with framed responses. The
// firmware serves it over the board UART; host tooling speaks the client
// side over a serial port.
//
// Wire format, host to device: one command byte. Device to host: the
// echoed command byte, a big-endian uint16 payload length, then the
// payload. Info replies carry JSON; temperature replies carry one
// little-endian float32 per sensor.
package query

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Command bytes. ASCII digits so the protocol can be poked at from a
// terminal.
const (
	CommandExit             = '0'
	CommandInfo             = '1'
	CommandReadTemperatures = '2'
)

// Responses larger than this are a framing bug, not data.
const maxPayload = 4096

var (
	// ErrBadFrame means a response frame could not be parsed.
	ErrBadFrame = errors.New("query: malformed response frame")

	// ErrCommandMismatch means the device echoed a different command
	// byte than the one sent, so the stream is out of sync.
	ErrCommandMismatch = errors.New("query: response for a different command")
)

// Info identifies the device to the host.
type Info struct {
	FirmwareVersion string `json:"firmware_version"`
	ZoneCount       int    `json:"zone_count"`
	ZoneSensorsType string `json:"zone_sensors_type"`
}

// Server answers query commands on a serial stream.
type Server struct {
	// Info is returned verbatim for CommandInfo.
	Info Info

	// Temperatures samples every sensor, in zone order.
	Temperatures func() ([]float32, error)

	// Logf may be nil.
	Logf func(format string, args ...interface{})
}

// Serve answers commands until CommandExit arrives or the stream fails.
// Unknown command bytes are logged and skipped so a noisy line cannot
// wedge the device.
func (s *Server) Serve(rw io.ReadWriter) error {
	var cmd [1]byte
	for {
		if _, err := io.ReadFull(rw, cmd[:]); err != nil {
			return fmt.Errorf("reading command: %w", err)
		}

		switch cmd[0] {
		case CommandExit:
			return nil
		case CommandInfo, CommandReadTemperatures:
			if err := s.answer(rw, cmd[0]); err != nil {
				return err
			}
		default:
			s.logf("query: invalid command byte %#02x", cmd[0])
		}
	}
}

func (s *Server) answer(w io.Writer, cmd byte) error {
	var payload []byte
	var err error

	switch cmd {
	case CommandInfo:
		payload, err = json.Marshal(s.Info)
		if err != nil {
			return fmt.Errorf("encoding info: %w", err)
		}
	case CommandReadTemperatures:
		temps, err := s.Temperatures()
		if err != nil {
			// The host still gets a well-formed frame; an empty payload
			// tells it no reading was available this poll.
			s.logf("query: temperature read failed: %v", err)
			temps = nil
		}
		payload = packTemperatures(temps)
	}

	return writeFrame(w, cmd, payload)
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

func packTemperatures(temps []float32) []byte {
	payload := make([]byte, 4*len(temps))
	for i, t := range temps {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(t))
	}
	return payload
}

func writeFrame(w io.Writer, cmd byte, payload []byte) error {
	header := []byte{cmd, 0, 0}
	binary.BigEndian.PutUint16(header[1:], uint16(len(payload)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

func readFrame(r io.Reader, want byte) ([]byte, error) {
	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading frame header: %w", err)
	}
	if header[0] != want {
		return nil, fmt.Errorf("%w: sent %#02x, got %#02x", ErrCommandMismatch, want, header[0])
	}
	length := binary.BigEndian.Uint16(header[1:])
	if length > maxPayload {
		return nil, fmt.Errorf("%w: payload length %d", ErrBadFrame, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return payload, nil
}

// RequestInfo asks the device to identify itself.
func RequestInfo(rw io.ReadWriter) (Info, error) {
	if _, err := rw.Write([]byte{CommandInfo}); err != nil {
		return Info{}, fmt.Errorf("sending info command: %w", err)
	}
	payload, err := readFrame(rw, CommandInfo)
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(payload, &info); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	return info, nil
}

// RequestTemperatures polls every sensor, in zone order. An empty slice
// means the device had no reading available.
func RequestTemperatures(rw io.ReadWriter) ([]float32, error) {
	if _, err := rw.Write([]byte{CommandReadTemperatures}); err != nil {
		return nil, fmt.Errorf("sending temperature command: %w", err)
	}
	payload, err := readFrame(rw, CommandReadTemperatures)
	if err != nil {
		return nil, err
	}
	if len(payload)%4 != 0 {
		return nil, fmt.Errorf("%w: temperature payload of %d bytes", ErrBadFrame, len(payload))
	}
	temps := make([]float32, len(payload)/4)
	for i := range temps {
		temps[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	return temps, nil
}
