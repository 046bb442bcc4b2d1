package query

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
)

// duplex glues a request stream to a response buffer so the client and
// server halves can be exercised against each other without a serial
// port.
type duplex struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (d *duplex) Read(p []byte) (int, error)  { return d.in.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.out.Write(p) }

func serve(t *testing.T, s *Server, commands ...byte) *bytes.Buffer {
	t.Helper()
	in := bytes.NewBuffer(append(commands, CommandExit))
	out := &bytes.Buffer{}
	if err := s.Serve(&duplex{in: in, out: out}); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	return out
}

var testInfo = Info{
	FirmwareVersion: "1.0.0",
	ZoneCount:       2,
	ZoneSensorsType: "Washer Thermistor",
}

func TestInfoRoundTrip(t *testing.T) {
	s := &Server{Info: testInfo}
	out := serve(t, s, CommandInfo)

	info, err := RequestInfo(&duplex{in: out, out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("RequestInfo: %v", err)
	}
	if info != testInfo {
		t.Errorf("info = %+v, want %+v", info, testInfo)
	}
}

func TestTemperaturesRoundTrip(t *testing.T) {
	want := []float32{21.5, 35.25, 18, 19}
	s := &Server{
		Info:         testInfo,
		Temperatures: func() ([]float32, error) { return want, nil },
	}
	out := serve(t, s, CommandReadTemperatures)

	temps, err := RequestTemperatures(&duplex{in: out, out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("RequestTemperatures: %v", err)
	}
	if len(temps) != len(want) {
		t.Fatalf("got %d temperatures, want %d", len(temps), len(want))
	}
	for i := range want {
		if temps[i] != want[i] {
			t.Errorf("temps[%d] = %g, want %g", i, temps[i], want[i])
		}
	}
}

func TestTemperatureWireFormat(t *testing.T) {
	s := &Server{
		Temperatures: func() ([]float32, error) { return []float32{1.0}, nil },
	}
	out := serve(t, s, CommandReadTemperatures)

	frame := out.Bytes()
	// cmd, 2-byte big-endian length, 4-byte little-endian float.
	if len(frame) != 7 {
		t.Fatalf("frame length = %d, want 7", len(frame))
	}
	if frame[0] != CommandReadTemperatures {
		t.Errorf("command echo = %#02x", frame[0])
	}
	if frame[1] != 0 || frame[2] != 4 {
		t.Errorf("length bytes = %#02x %#02x, want big-endian 4", frame[1], frame[2])
	}
	bits := uint32(frame[3]) | uint32(frame[4])<<8 | uint32(frame[5])<<16 | uint32(frame[6])<<24
	if math.Float32frombits(bits) != 1.0 {
		t.Errorf("payload decodes to %g, want 1.0", math.Float32frombits(bits))
	}
}

func TestSensorFailureYieldsEmptyFrame(t *testing.T) {
	s := &Server{
		Temperatures: func() ([]float32, error) { return nil, errors.New("adc fault") },
	}
	out := serve(t, s, CommandReadTemperatures)

	temps, err := RequestTemperatures(&duplex{in: out, out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("RequestTemperatures: %v", err)
	}
	if len(temps) != 0 {
		t.Errorf("got %d temperatures from a failed read, want 0", len(temps))
	}
}

func TestServeSkipsUnknownCommands(t *testing.T) {
	var logged []string
	s := &Server{
		Info: testInfo,
		Logf: func(format string, args ...interface{}) {
			logged = append(logged, format)
		},
	}
	out := serve(t, s, 'x', CommandInfo)

	if len(logged) != 1 || !strings.Contains(logged[0], "invalid command") {
		t.Errorf("logged = %v, want one invalid command line", logged)
	}
	if _, err := RequestInfo(&duplex{in: out, out: &bytes.Buffer{}}); err != nil {
		t.Errorf("info after junk byte: %v", err)
	}
}

func TestServeStopsOnExit(t *testing.T) {
	s := &Server{Info: testInfo}
	out := serve(t, s) // exit only
	if out.Len() != 0 {
		t.Errorf("exit produced %d response bytes", out.Len())
	}
}

func TestRequestInfoCommandMismatch(t *testing.T) {
	out := &bytes.Buffer{}
	out.Write([]byte{CommandReadTemperatures, 0, 0})
	_, err := RequestInfo(&duplex{in: out, out: &bytes.Buffer{}})
	if !errors.Is(err, ErrCommandMismatch) {
		t.Fatalf("expected ErrCommandMismatch, got %v", err)
	}
}

func TestRequestTemperaturesShortFrame(t *testing.T) {
	out := &bytes.Buffer{}
	out.Write([]byte{CommandReadTemperatures, 0, 3, 1, 2, 3})
	_, err := RequestTemperatures(&duplex{in: out, out: &bytes.Buffer{}})
	if !errors.Is(err, ErrBadFrame) {
		t.Fatalf("expected ErrBadFrame, got %v", err)
	}
}

func TestRequestTruncatedStream(t *testing.T) {
	out := &bytes.Buffer{}
	out.Write([]byte{CommandInfo, 0, 10, 'p'})
	_, err := RequestInfo(&duplex{in: out, out: &bytes.Buffer{}})
	if err == nil || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}
}
