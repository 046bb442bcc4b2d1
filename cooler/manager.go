package cooler

import (
	"fmt"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/fanspeed"
)

// PWMChannel is one fan's drive output. The RP2040 implementation lives
// under targets/rp2040; tests use in-memory fakes.
type PWMChannel interface {
	// SetDuty sets the compare value, 0..MaxDuty. Zero stops the fan.
	SetDuty(duty int)
}

// Time a kicked fan is given to spin up before being throttled back down
// to its real target.
const coldStartSettle = time.Second

// Manager owns one cooler's group of identical fans.
//
// Duties always go out fastest first over the channel order, so rotating
// the channel order redistributes which physical fan works hardest.
type Manager struct {
	channels   []*fanChannel
	constants  FanConstants
	speedSteps int

	// sleep is swapped out by tests; the cold-start settle would
	// otherwise make them take a wall-clock second per kick.
	sleep func(time.Duration)
}

type fanChannel struct {
	pwm PWMChannel

	// lastDuty tracks what was last written so a stopped fan can be
	// recognized without reading hardware back. Travels with the channel
	// through rotation.
	lastDuty int
}

// NewManager returns a manager over the given fan outputs. speedSteps
// sets the allocator's duty resolution.
func NewManager(channels []PWMChannel, constants FanConstants, speedSteps int) *Manager {
	m := &Manager{
		constants:  constants,
		speedSteps: speedSteps,
		sleep:      time.Sleep,
	}
	for _, ch := range channels {
		m.channels = append(m.channels, &fanChannel{pwm: ch})
	}
	return m
}

// Power sets the group to the given aggregate power in [0, 1] and returns
// the duties written, fastest first. Zero maps to a single fan at its
// slowest speed, one to every fan flat out.
func (m *Manager) Power(power float64) ([]int, error) {
	duties, err := fanspeed.Allocate(power, len(m.channels), m.constants.DutyBands, m.speedSteps)
	if err != nil {
		return nil, fmt.Errorf("allocating %v across %d fans: %w", power, len(m.channels), err)
	}

	for i, duty := range duties {
		m.setFanDuty(m.channels[i], duty)
	}
	return duties, nil
}

// setFanDuty writes one fan's duty, kicking a stopped fan up to its cold
// start duty first when the target alone could not start it. A target of
// zero never kicks; the fan just stays stopped.
func (m *Manager) setFanDuty(ch *fanChannel, duty int) {
	if ch.lastDuty == 0 && duty > 0 && duty < m.constants.MinColdStartDuty {
		ch.pwm.SetDuty(m.constants.MinColdStartDuty)
		m.sleep(coldStartSettle)
	}

	ch.pwm.SetDuty(duty)
	ch.lastDuty = duty
}

// RotateActive left-rotates the channel order. Because duties are written
// fastest first, regular rotation levels wear when fewer than all fans
// are spinning.
func (m *Manager) RotateActive() {
	if len(m.channels) < 2 {
		return
	}
	first := m.channels[0]
	copy(m.channels, m.channels[1:])
	m.channels[len(m.channels)-1] = first
}

// FanCount returns the number of managed fans.
func (m *Manager) FanCount() int {
	return len(m.channels)
}
