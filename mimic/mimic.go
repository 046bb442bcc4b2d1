// Package mimic emulates a four wire fan's control interface: it
// measures the duty cycle of an incoming PWM command signal and answers
// with a tachometer square wave whose frequency tracks the commanded
// duty. Useful when the cooler replaces a stock fan whose controller
// expects tach feedback.
package mimic

import (
	"math"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/pulse"
)

// DefaultWindow bounds one duty measurement. PWM command signals sit in
// the tens of kHz, so 10ms covers hundreds of periods.
const DefaultWindow = 10 * time.Millisecond

// DefaultHzPerDuty scales commanded duty to tach frequency: full duty
// reads back as 100Hz, the tach rate of the stock fan at full speed.
const DefaultHzPerDuty = 100

// Measurer yields pulse properties of the command signal. Satisfied by
// waveform.PulseReader.
type Measurer interface {
	Measure(timeout time.Duration) (pulse.Properties, error)
}

// FrequencySetter drives the tach output. Satisfied by
// waveform.SquareWaveWriter.
type FrequencySetter interface {
	SetFrequency(hz uint32) (bool, error)
}

// Mimic couples one command input to one tach output.
type Mimic struct {
	Reader Measurer
	Writer FrequencySetter

	// Window per measurement; zero means DefaultWindow.
	Window time.Duration

	// HzPerDuty converts duty in [0,1] to output frequency; zero means
	// DefaultHzPerDuty.
	HzPerDuty float64

	// Logf may be nil.
	Logf func(format string, args ...interface{})
}

// Step measures the command signal once and retargets the tach output.
// A command stuck at zero duty stops the tach wave entirely.
func (m *Mimic) Step() error {
	window := m.Window
	if window == 0 {
		window = DefaultWindow
	}
	scale := m.HzPerDuty
	if scale == 0 {
		scale = DefaultHzPerDuty
	}

	props, err := m.Reader.Measure(window)
	if err != nil {
		return err
	}

	hz := uint32(math.Round(props.DutyCycle * scale))
	changed, err := m.Writer.SetFrequency(hz)
	if err != nil {
		return err
	}
	if changed {
		m.logf("mimic: input duty %.2f, tach output %d Hz", props.DutyCycle, hz)
	}
	return nil
}

// Run steps forever, logging errors. Measurement errors are transient
// (a reset state machine recovers on the next window), so the loop never
// gives up.
func (m *Mimic) Run() {
	for {
		if err := m.Step(); err != nil {
			m.logf("mimic: %v", err)
		}
	}
}

func (m *Mimic) logf(format string, args ...interface{}) {
	if m.Logf != nil {
		m.Logf(format, args...)
	}
}
