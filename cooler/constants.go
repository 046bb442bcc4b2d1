// Package cooler drives one cooler's group of fans. It turns an abstract
// power demand into per-fan PWM duties through the fanspeed allocator and
// handles the physical quirks the allocator is ignorant of: fans that
// stall below a minimum startup duty, and wear spread across the group.
package cooler

import "github.com/Tesla-Cooler/tesla-cooler-software/fanspeed"

// MaxDuty is the full-scale 16-bit PWM compare value used across fan
// configurations, per the RP2040 PWM slice wrap settings.
const MaxDuty = 65_025

// FanConstants describes one physical fan model. All fans attached to a
// manager are assumed to be the same model.
type FanConstants struct {
	// PWMFrequency is the slowest drive frequency that produces no
	// audible coil whine, in Hz.
	PWMFrequency uint32

	// DutyBands are the usable duty ranges at PWMFrequency, quietest
	// first. The allocator weighs these cubically by position.
	DutyBands []fanspeed.Band

	// MinColdStartDuty transitions the fan from stopped to its slowest
	// speed. Duties below it are only reachable from an already spinning
	// fan.
	MinColdStartDuty int

	// MinSpinningDuty is the lowest duty at which a spinning fan keeps
	// spinning.
	MinSpinningDuty int
}

// GM1204PQV18AShortWire is the Maglev GM1204PQV1-8A replacement fan wired
// directly to its driver.
var GM1204PQV18AShortWire = FanConstants{
	PWMFrequency: 30_000,
	DutyBands: []fanspeed.Band{
		{Floor: 4_001, Ceiling: 5_000},
		{Floor: 5_001, Ceiling: 10_000},
		{Floor: 10_001, Ceiling: 30_000},
		{Floor: 30_001, Ceiling: 50_000},
		{Floor: 50_001, Ceiling: 60_000},
		{Floor: 60_001, Ceiling: MaxDuty},
	},
	MinColdStartDuty: 8_000,
	MinSpinningDuty:  3_000,
}

// GM1204PQV18ALongWire is the same fan behind a long harness; the voltage
// drop raises every threshold.
var GM1204PQV18ALongWire = FanConstants{
	PWMFrequency: 30_000,
	DutyBands: []fanspeed.Band{
		{Floor: 19_000, Ceiling: 35_000},
		{Floor: 35_001, Ceiling: 45_000},
		{Floor: 45_001, Ceiling: 50_000},
		{Floor: 50_001, Ceiling: 60_000},
		{Floor: 60_001, Ceiling: MaxDuty},
	},
	MinColdStartDuty: 40_000,
	MinSpinningDuty:  19_000,
}
