package cooler

import (
	"testing"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/fanspeed"
)

type fakePWM struct {
	writes []int
}

func (f *fakePWM) SetDuty(duty int) { f.writes = append(f.writes, duty) }

func (f *fakePWM) last() int {
	if len(f.writes) == 0 {
		return 0
	}
	return f.writes[len(f.writes)-1]
}

// Small synthetic fan so tests can pick exact duties.
var testConstants = FanConstants{
	PWMFrequency: 30_000,
	DutyBands: []fanspeed.Band{
		{Floor: 100, Ceiling: 300},
		{Floor: 301, Ceiling: 600},
		{Floor: 601, Ceiling: 1000},
	},
	MinColdStartDuty: 250,
	MinSpinningDuty:  100,
}

func newTestManager(t *testing.T, fans int) (*Manager, []*fakePWM, *int) {
	t.Helper()
	pwms := make([]*fakePWM, fans)
	channels := make([]PWMChannel, fans)
	for i := range pwms {
		pwms[i] = &fakePWM{}
		channels[i] = pwms[i]
	}
	m := NewManager(channels, testConstants, 20)
	sleeps := 0
	m.sleep = func(d time.Duration) {
		if d != coldStartSettle {
			t.Errorf("slept %v, want %v", d, coldStartSettle)
		}
		sleeps++
	}
	return m, pwms, &sleeps
}

func TestPowerColdStartKick(t *testing.T) {
	m, pwms, sleeps := newTestManager(t, 3)

	// Power 0 targets one fan at duty 100, below the cold start duty of
	// 250, from a cold start.
	duties, err := m.Power(0)
	if err != nil {
		t.Fatal(err)
	}
	if duties[0] != 100 {
		t.Fatalf("duties = %v, want quietest floor first", duties)
	}

	want := []int{250, 100}
	if len(pwms[0].writes) != 2 || pwms[0].writes[0] != want[0] || pwms[0].writes[1] != want[1] {
		t.Errorf("fan 0 writes = %v, want %v", pwms[0].writes, want)
	}
	if *sleeps != 1 {
		t.Errorf("slept %d times, want 1 settle after the kick", *sleeps)
	}
}

func TestPowerNoKickWhenSpinning(t *testing.T) {
	m, pwms, sleeps := newTestManager(t, 1)

	if _, err := m.Power(1); err != nil {
		t.Fatal(err)
	}
	// 1000 is above the cold start duty, so no kick on the way up.
	if *sleeps != 0 {
		t.Fatalf("kick on a target above cold start duty")
	}

	// Back down below cold start duty while spinning: direct write.
	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}
	if *sleeps != 0 {
		t.Errorf("kicked a fan that was already spinning")
	}
	if pwms[0].last() != 100 {
		t.Errorf("final duty = %d, want 100", pwms[0].last())
	}
}

func TestPowerNoKickForStoppedFan(t *testing.T) {
	m, pwms, sleeps := newTestManager(t, 3)

	// Power 0 stops fans 1 and 2; writing their zero duty must not kick.
	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}
	if *sleeps != 1 {
		t.Fatalf("slept %d times, want only fan 0's kick", *sleeps)
	}
	for i, pwm := range pwms[1:] {
		if len(pwm.writes) != 1 || pwm.writes[0] != 0 {
			t.Errorf("stopped fan %d writes = %v, want [0]", i+1, pwm.writes)
		}
	}
}

func TestRotateActiveMovesLoad(t *testing.T) {
	m, pwms, _ := newTestManager(t, 3)

	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}
	if pwms[0].last() != 100 {
		t.Fatalf("fan 0 duty = %d, want 100 before rotation", pwms[0].last())
	}

	m.RotateActive()
	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}

	// After one left rotation the former second channel heads the order
	// and takes the fastest duty; the former head goes to the back.
	if pwms[1].last() != 100 {
		t.Errorf("fan 1 duty = %d, want 100 after rotation", pwms[1].last())
	}
	if pwms[0].last() != 0 {
		t.Errorf("fan 0 duty = %d, want 0 after rotation", pwms[0].last())
	}
}

func TestRotateActiveKeepsColdStartState(t *testing.T) {
	m, pwms, sleeps := newTestManager(t, 2)

	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}
	kicks := *sleeps

	// The spinning fan's state travels with its channel through the
	// rotation: driving it low again must not re-kick it.
	m.RotateActive()
	m.RotateActive()
	if _, err := m.Power(0); err != nil {
		t.Fatal(err)
	}
	if *sleeps != kicks {
		t.Errorf("re-kicked a fan whose state was rotated")
	}
	if pwms[0].last() != 100 {
		t.Errorf("fan 0 duty = %d, want 100", pwms[0].last())
	}
}

func TestRotateActiveSingleFan(t *testing.T) {
	m, _, _ := newTestManager(t, 1)
	m.RotateActive()
	if m.FanCount() != 1 {
		t.Fatal("single fan manager lost its channel")
	}
}
