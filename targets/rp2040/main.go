//go:build rp2040

package main

import (
	"fmt"
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"github.com/Tesla-Cooler/tesla-cooler-software/control"
	"github.com/Tesla-Cooler/tesla-cooler-software/cooler"
	"github.com/Tesla-Cooler/tesla-cooler-software/mimic"
	"github.com/Tesla-Cooler/tesla-cooler-software/thermal"
	"github.com/Tesla-Cooler/tesla-cooler-software/waveform"
)

const firmwareVersion = "1.0.0"

const speedsPerPower = 30

func main() {
	// Clear any watchdog state left over from the previous boot.
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	machine.InitADC()

	// Offsets between the thermistor on the card's shell and the die
	// temperature, determined experimentally per side. The hot side GPU
	// sits right up against the other card.
	loopA := buildCoolerLoop("A", coolerAFanPins, cooler.GM1204PQV18AShortWire, coolerAThermistorPin, 5)
	loopB := buildCoolerLoop("B", coolerBFanPins, cooler.GM1204PQV18ALongWire, coolerBThermistorPin, 30)

	feeder := newGroupFeeder(2)
	loopA.Watchdog = feeder.Member(0)
	loopB.Watchdog = feeder.Member(1)

	if err := machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: watchdogTimeoutMillis,
	}); err != nil {
		println("watchdog configure failed:", err.Error())
	} else if err := machine.Watchdog.Start(); err != nil {
		println("watchdog start failed:", err.Error())
	}

	go loopA.Run()
	go loopB.Run()

	if fanMimic, err := buildFanMimic(); err != nil {
		println("fan mimic disabled:", err.Error())
	} else {
		go fanMimic.Run()
	}

	serveQueries(buildTemperatureReaders(loopA, loopB))
}

// buildCoolerLoop wires one cooler: fan PWM channels, thermistor sensor,
// and the regulation loop around them.
func buildCoolerLoop(
	name string,
	fanPins []machine.Pin,
	constants cooler.FanConstants,
	thermistorPin machine.Pin,
	temperatureOffset float64,
) *control.Loop {
	channels := make([]cooler.PWMChannel, 0, len(fanPins))
	for _, pin := range fanPins {
		pwm, err := newFanPWM(pin, constants.PWMFrequency)
		if err != nil {
			// A fan that cannot be driven would leave the GPU cooking;
			// better to reboot into a retry than limp on.
			panic("cooler " + name + " pwm setup: " + err.Error())
		}
		channels = append(channels, pwm)
	}

	adc, err := newOnboardADC(thermistorPin)
	if err != nil {
		panic("cooler " + name + " adc setup: " + err.Error())
	}
	sensor := thermal.NewSensor(adc, nil, thermal.DefaultPulldownOhms)

	return &control.Loop{
		Name:              name,
		Temperature:       sensor.Temperature,
		TemperatureOffset: temperatureOffset,
		Curve:             thermal.DefaultCurve,
		Fans:              cooler.NewManager(channels, constants, speedsPerPower),
		Logf:              logf,
	}
}

// buildFanMimic wires the four wire fan emulation: PWM command in on
// PIO0, tach wave out on PIO1.
func buildFanMimic() (*mimic.Mimic, error) {
	measureSeq, measureClock, err := newMeasureSequencer(pio.PIO0.StateMachine(0), pwmCommandPin)
	if err != nil {
		return nil, err
	}
	squareSeq, squareClock, err := newSquareSequencer(pio.PIO1.StateMachine(0), tachOutputPin)
	if err != nil {
		return nil, err
	}

	return &mimic.Mimic{
		Reader: waveform.NewPulseReader(measureSeq, measureClock),
		Writer: waveform.NewSquareWaveWriter(squareSeq, squareClock),
		Logf:   logf,
	}, nil
}

// buildTemperatureReaders assembles the query protocol's zone order:
// cooler A, cooler B, intake, exhaust. The environment sensors are
// optional hardware; when absent their zones read as failed.
func buildTemperatureReaders(loopA, loopB *control.Loop) []temperatureReader {
	readers := []temperatureReader{loopA.Temperature, loopB.Temperature}

	env, err := newEnvironmentADCs()
	if err != nil {
		println("environment sensors disabled:", err.Error())
		return readers
	}
	intake := thermal.NewSensor(env.Intake(), nil, thermal.DefaultPulldownOhms)
	exhaust := thermal.NewSensor(env.Exhaust(), nil, thermal.DefaultPulldownOhms)
	return append(readers, intake.Temperature, exhaust.Temperature)
}

// logf prints through the USB console. Firmware logging stays println
// based; the serial monitor is the only sink.
func logf(format string, args ...interface{}) {
	println(fmt.Sprintf(format, args...))
}
