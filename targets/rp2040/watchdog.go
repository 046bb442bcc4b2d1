//go:build rp2040

package main

import (
	"machine"
	"sync"
)

// The watchdog window has to ride out a full control interval plus a
// cold start settle on every fan.
const watchdogTimeoutMillis = 8000

// groupFeeder gates the hardware watchdog behind all cooler loops: every
// member has to report a healthy iteration before the counter is fed, so
// one wedged loop still reboots the board.
type groupFeeder struct {
	mu      sync.Mutex
	healthy []bool
}

func newGroupFeeder(size int) *groupFeeder {
	return &groupFeeder{healthy: make([]bool, size)}
}

// Member returns the feeder handle for one loop. Implements
// control.Watchdog.
func (g *groupFeeder) Member(index int) *feederMember {
	return &feederMember{group: g, index: index}
}

type feederMember struct {
	group *groupFeeder
	index int
}

func (m *feederMember) Update() {
	g := m.group
	g.mu.Lock()
	defer g.mu.Unlock()

	g.healthy[m.index] = true
	for _, ok := range g.healthy {
		if !ok {
			return
		}
	}
	machine.Watchdog.Update()
	for i := range g.healthy {
		g.healthy[i] = false
	}
}
