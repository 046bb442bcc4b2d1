// Package fanspeed distributes an aggregate cooling power demand across a
// group of identical fans so that the group is as quiet as possible. Two
// fans spinning slowly beat one fan spinning fast, so duty bands are
// weighted steeply against the loud end of the range.
//
// Allocation is pure and deterministic; the hardware-facing side lives in
// the cooler package.
package fanspeed

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoCombination means no assignment of candidate duties reached the
// demanded aggregate, even after widening the search tolerance once.
// Indicates speedSteps is far too coarse for the configured bands.
var ErrNoCombination = errors.New("fanspeed: no duty combination reaches target sum")

// ErrInvalidConfig covers out-of-range allocator inputs.
var ErrInvalidConfig = errors.New("fanspeed: invalid allocator config")

// Band is a contiguous range of duty-cycle values a fan can occupy,
// inclusive on both ends.
type Band struct {
	Floor   int
	Ceiling int
}

// Contains reports whether duty falls inside the band.
func (b Band) Contains(duty int) bool {
	return duty >= b.Floor && duty <= b.Ceiling
}

// weightedBand pairs a band with its acoustic cost.
type weightedBand struct {
	Band
	Weight int
}

// cubicWeights assigns each band a cost of (index+1) cubed, quietest
// first. The steep growth makes spreading load across fans strictly
// cheaper than concentrating it.
func cubicWeights(bands []Band) []weightedBand {
	weighted := make([]weightedBand, len(bands))
	for i, b := range bands {
		n := i + 1
		weighted[i] = weightedBand{Band: b, Weight: n * n * n}
	}
	return weighted
}

// weigh totals the acoustic cost of a duty assignment. A duty of exactly
// zero is a stopped fan and costs nothing; a duty outside every band also
// adds nothing.
func weigh(duties []int, bands []weightedBand) int {
	total := 0
	for _, duty := range duties {
		if duty == 0 {
			continue
		}
		for _, b := range bands {
			if b.Contains(duty) {
				total += b.Weight
				break
			}
		}
	}
	return total
}

// linearInterpolate maps x from [inMin, inMax] to [outMin, outMax],
// flooring like integer division.
func linearInterpolate(x, inMin, inMax float64, outMin, outMax int) int {
	return int(math.Floor((x-inMin)*float64(outMax-outMin)/(inMax-inMin))) + outMin
}

// combinationsToSum enumerates every unordered selection (with
// repetition) of 1..length candidate duties whose sum lands within
// tolerance of target, zero-padded to exactly length entries.
//
// Each result is sorted ascending and appears once; result order is the
// enumeration order (shorter selections first), which keeps downstream
// tie-breaking reproducible. Brute enumeration is deliberate: the domain
// is tens of candidates and at most a handful of fans, so the search
// stays tiny.
func combinationsToSum(candidates []int, length, target, tolerance int) [][]int {
	var results [][]int
	seen := make(map[string]bool)

	emit := func(combo []int) {
		padded := make([]int, length)
		copy(padded[length-len(combo):], combo)
		sort.Ints(padded)
		key := fmt.Sprint(padded)
		if !seen[key] {
			seen[key] = true
			results = append(results, padded)
		}
	}

	var walk func(combo []int, start, sum, want int)
	walk = func(combo []int, start, sum, want int) {
		if len(combo) == want {
			if diff := sum - target; diff >= -tolerance && diff <= tolerance {
				emit(combo)
			}
			return
		}
		for i := start; i < len(candidates); i++ {
			walk(append(combo, candidates[i]), i, sum+candidates[i], want)
		}
	}

	for want := 1; want <= length; want++ {
		walk(nil, 0, 0, want)
	}
	return results
}

// candidateDuties steps from the quietest floor to the loudest ceiling in
// speedSteps increments. The ceiling is always included so full power is
// representable exactly.
func candidateDuties(minFloor, maxCeiling, speedSteps int) []int {
	step := (maxCeiling - minFloor) / speedSteps
	if step < 1 {
		step = 1
	}
	var values []int
	for v := minFloor; v <= maxCeiling; v += step {
		values = append(values, v)
	}
	if values[len(values)-1] != maxCeiling {
		values = append(values, maxCeiling)
	}
	return values
}

// Allocate distributes power across fanCount fans and returns one duty
// per fan, sorted fastest first. Zero entries are stopped fans.
//
// Power 0 resolves to a single fan at the quietest floor; power 1 to all
// fans at the loudest ceiling. The aggregate demand assumes airflow adds
// linearly across fans.
//
// If no combination lands within one step of the demand, the search is
// retried once with double the tolerance before giving up with
// ErrNoCombination.
func Allocate(power float64, fanCount int, bands []Band, speedSteps int) ([]int, error) {
	switch {
	case power < 0 || power > 1:
		return nil, fmt.Errorf("%w: power %v outside [0, 1]", ErrInvalidConfig, power)
	case fanCount < 1:
		return nil, fmt.Errorf("%w: fan count %d", ErrInvalidConfig, fanCount)
	case speedSteps < 1:
		return nil, fmt.Errorf("%w: speed steps %d", ErrInvalidConfig, speedSteps)
	case len(bands) == 0:
		return nil, fmt.Errorf("%w: no duty bands", ErrInvalidConfig)
	}

	minFloor := bands[0].Floor
	maxCeiling := bands[len(bands)-1].Ceiling
	target := linearInterpolate(power, 0, 1, minFloor, maxCeiling*fanCount)

	step := (maxCeiling - minFloor) / speedSteps
	if step < 1 {
		step = 1
	}
	candidates := candidateDuties(minFloor, maxCeiling, speedSteps)

	combos := combinationsToSum(candidates, fanCount, target, step)
	if len(combos) == 0 {
		combos = combinationsToSum(candidates, fanCount, target, 2*step)
	}
	if len(combos) == 0 {
		return nil, fmt.Errorf("%w: power %v, %d fans, %d steps",
			ErrNoCombination, power, fanCount, speedSteps)
	}

	weighted := cubicWeights(bands)
	best := combos[0]
	bestWeight := weigh(best, weighted)
	bestMiss := targetMiss(best, target)
	for _, combo := range combos[1:] {
		w := weigh(combo, weighted)
		miss := targetMiss(combo, target)
		if w < bestWeight || (w == bestWeight && miss < bestMiss) {
			best, bestWeight, bestMiss = combo, w, miss
		}
	}

	// Fastest first. The fan manager relies on this to pair the highest
	// duties with the least-worn fans.
	duties := make([]int, len(best))
	copy(duties, best)
	sort.Sort(sort.Reverse(sort.IntSlice(duties)))
	return duties, nil
}

func targetMiss(duties []int, target int) int {
	sum := 0
	for _, d := range duties {
		sum += d
	}
	if sum > target {
		return sum - target
	}
	return target - sum
}
