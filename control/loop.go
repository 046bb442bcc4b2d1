// Package control runs the per-cooler regulation loop: read the
// thermistor, map temperature to power, drive the fans, feed the
// watchdog.
package control

import (
	"fmt"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/cooler"
	"github.com/Tesla-Cooler/tesla-cooler-software/thermal"
)

// DefaultInterval is how often the loop re-evaluates fan speeds. Thermal
// mass makes anything faster pointless.
const DefaultInterval = 5 * time.Second

// DefaultRotateEvery rotates fan wear once an hour at the default
// interval.
const DefaultRotateEvery = 720

// Watchdog is fed once per fully successful iteration. An iteration that
// fails anywhere leaves it unfed so a persistent fault reboots the board
// into a known-safe state.
type Watchdog interface {
	Update()
}

// Loop regulates one cooler. Configure the fields and call Run; Tick is
// exposed for callers that drive the cadence themselves.
type Loop struct {
	// Name tags log lines when one firmware image runs several coolers.
	Name string

	// Temperature reads the thermistor in degrees C.
	Temperature func() (float64, error)

	// TemperatureOffset corrects for the thermistor sitting on the
	// outside of the GPU rather than on the die. Determined per build.
	TemperatureOffset float64

	Curve thermal.PowerCurve
	Fans  *cooler.Manager

	// Watchdog may be nil when the loop runs without reboot protection.
	Watchdog Watchdog

	// Interval between iterations; zero means DefaultInterval.
	Interval time.Duration

	// RotateEvery is the number of iterations between wear rotations;
	// zero means DefaultRotateEvery, negative disables rotation.
	RotateEvery int

	// Logf may be nil to silence the loop.
	Logf func(format string, args ...interface{})

	iterations int
	sleep      func(time.Duration)
}

// Step runs one iteration: sample, convert, drive. Returns the first
// error in the chain; fans are left at their previous duties on failure.
func (l *Loop) Step() error {
	thermistorC, err := l.Temperature()
	if err != nil {
		return fmt.Errorf("reading cooler %s thermistor: %w", l.Name, err)
	}
	gpuC := thermistorC + l.TemperatureOffset

	power := l.Curve.Power(gpuC)
	duties, err := l.Fans.Power(power)
	if err != nil {
		return fmt.Errorf("driving cooler %s fans: %w", l.Name, err)
	}

	l.logf("cooler %s: thermistor %.1fC, gpu %.1fC, power %.2f, duties %v",
		l.Name, thermistorC, gpuC, power, duties)
	return nil
}

// Tick runs one iteration with the watchdog and rotation bookkeeping
// around it. The watchdog is only fed when the whole iteration succeeded.
func (l *Loop) Tick() {
	if err := l.Step(); err != nil {
		l.logf("cooler %s: %v", l.Name, err)
	} else if l.Watchdog != nil {
		l.Watchdog.Update()
	}

	l.iterations++
	rotateEvery := l.RotateEvery
	if rotateEvery == 0 {
		rotateEvery = DefaultRotateEvery
	}
	if rotateEvery > 0 && l.iterations%rotateEvery == 0 {
		l.Fans.RotateActive()
		l.logf("cooler %s: rotated fan wear order", l.Name)
	}
}

// Run ticks forever at the configured interval. It never returns; run one
// goroutine per cooler.
func (l *Loop) Run() {
	interval := l.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	sleep := l.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	for {
		l.Tick()
		sleep(interval)
	}
}

func (l *Loop) logf(format string, args ...interface{}) {
	if l.Logf != nil {
		l.Logf(format, args...)
	}
}
