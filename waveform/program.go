// Package waveform measures and generates square waves using RP2040 PIO
// state machines. The micro-programs below are hand-assembled instruction
// words; the drivers in this package talk to the state machines running
// them through the Sequencer interface, so all driver logic is testable
// off-hardware.
package waveform

// PIO instruction encoding. Only the opcodes these programs need.
const (
	pioInstrJmp  = 0x0000
	pioInstrIn   = 0x4000
	pioInstrPush = 0x8000
	pioInstrPull = 0x8080
	pioInstrMov  = 0xa000
	pioInstrSet  = 0xe000

	// JMP conditions (bits 7:5)
	jmpAlways   = 0x0 << 5
	jmpXDec     = 0x2 << 5 // branch if X non-zero; X decremented regardless
	jmpYDec     = 0x4 << 5
	jmpPinHigh  = 0x6 << 5
	blockFlag   = 0x0020 // PUSH/PULL block bit
	pioRegPins  = 0x0
	pioRegX     = 0x1
	pioRegY     = 0x2
	pioRegOSR   = 0x7
	movDestSh   = 5
	inSrcSh     = 5
	setDestSh   = 5
	jmpAddrMask = 0x001f
)

func encJmp(cond uint16, addr uint16) uint16 { return pioInstrJmp | cond | (addr & jmpAddrMask) }
func encMov(dest, src uint16) uint16         { return pioInstrMov | dest<<movDestSh | src }
func encIn(src uint16, count uint16) uint16  { return pioInstrIn | src<<inSrcSh | (count & 0x1f) }
func encSet(dest, value uint16) uint16       { return pioInstrSet | dest<<setDestSh | value }
func encPushBlock() uint16                   { return pioInstrPush | blockFlag }
func encPullBlock() uint16                   { return pioInstrPull | blockFlag }
func encPullNoblock() uint16                 { return pioInstrPull }

// TimeoutSentinel is the register value left behind when a down-count loop
// exhausts its budget: "jmp x--" decrements through zero, wrapping the
// register to all-ones. The drivers translate it into the per-phase
// timeout flags of pulse.RawCycleCounts.
const TimeoutSentinel = 0xffffffff

// MeasureProgram characterizes one full cycle of an input square wave.
//
// The CPU pushes a down-counter seed; the program then walks four wait
// phases against the jmp pin, counting down a scratch register in each:
//
//	phase 1 (3 cycles/iter): find a falling edge, or confirm the pin is
//	        already low. A timeout here falls through; a stuck-high pin
//	        is caught in phase 3 instead.
//	phase 2 (2 cycles/iter): wait for the rising edge that starts the
//	        measured pulse. Timeout => pin never went high.
//	phase 3 (2 cycles/iter): count down X while the pin is high; the
//	        capture of X marks the falling edge. Timeout => never low.
//	phase 4 (3 cycles/iter): count down Y while the pin is low; the
//	        capture of Y marks the next rising edge.
//
// X and Y are pushed in that fixed order; the reader converts them with
// the 2x / 3x per-iteration corrections in the pulse package.
var MeasureProgram = []uint16{
	//  0: pull block          ; seed <- CPU, one measurement per word
	encPullBlock(),
	//  1: mov x, osr
	encMov(pioRegX, pioRegOSR),
	//  2: mov y, x            ; Y keeps the seed for later reloads
	encMov(pioRegY, pioRegX),
	// phase 1: settle low
	//  3: jmp pin, 5          ; still high -> count down
	encJmp(jmpPinHigh, 5),
	//  4: jmp 6               ; low found
	encJmp(jmpAlways, 6),
	//  5: jmp x--, 3
	encJmp(jmpXDec, 3),
	//  6: mov x, y            ; reload budget
	encMov(pioRegX, pioRegY),
	// phase 2: wait rising
	//  7: jmp pin, 9          ; rising edge found
	encJmp(jmpPinHigh, 9),
	//  8: jmp x--, 7          ; timeout falls through with X wrapped
	encJmp(jmpXDec, 7),
	//  9: mov x, y            ; X now counts the high portion
	encMov(pioRegX, pioRegY),
	// phase 3: count high
	// 10: jmp x--, 12         ; timeout falls through to 11
	encJmp(jmpXDec, 12),
	// 11: jmp 13              ; never went low; X wrapped to sentinel
	encJmp(jmpAlways, 13),
	// 12: jmp pin, 10         ; still high -> keep counting
	encJmp(jmpPinHigh, 10),
	// phase 4: count low
	// 13: jmp y--, 15         ; timeout falls through to 14
	encJmp(jmpYDec, 15),
	// 14: jmp 17              ; never rose again; Y wrapped to sentinel
	encJmp(jmpAlways, 17),
	// 15: jmp pin, 17         ; rising edge -> emit
	encJmp(jmpPinHigh, 17),
	// 16: jmp 13
	encJmp(jmpAlways, 13),
	// emit both captures, high count first
	// 17: in x, 32
	encIn(pioRegX, 32),
	// 18: push block
	encPushBlock(),
	// 19: in y, 32
	encIn(pioRegY, 32),
	// 20: push block
	encPushBlock(),
}

// MeasureProgram wrap points and load origin. The program uses absolute
// jump targets, so it must be loaded at offset 0.
const (
	MeasureOrigin     = 0
	MeasureWrapBottom = 0
	MeasureWrapTop    = 20
)

// SquareProgram free-runs a square wave from a half-period down-count.
//
// The initial count is loaded with a blocking pull before the output is
// enabled; afterwards each period starts with a non-blocking pull, which
// on an empty FIFO copies X back into the OSR, so the wave continues at
// the last loaded count without ever stalling. Each half-period loop is
// two instructions per count, so the adapter clocks the state machine at
// twice the nominal count rate.
var SquareProgram = []uint16{
	//  0: pull block          ; first half-period count, pre-enable
	encPullBlock(),
	//  1: mov x, osr
	encMov(pioRegX, pioRegOSR),
	// .wrap_target
	//  2: pull noblock        ; new count if available, else OSR <- X
	encPullNoblock(),
	//  3: mov x, osr
	encMov(pioRegX, pioRegOSR),
	//  4: mov y, osr
	encMov(pioRegY, pioRegOSR),
	//  5: set pins, 1         ; high half
	encSet(pioRegPins, 1),
	//  6: jmp y--, 5
	encJmp(jmpYDec, 5),
	//  7: mov y, osr
	encMov(pioRegY, pioRegOSR),
	//  8: set pins, 0         ; low half
	encSet(pioRegPins, 0),
	//  9: jmp y--, 8
	encJmp(jmpYDec, 8),
	// .wrap -> 2
}

const (
	SquareOrigin     = 0
	SquareWrapBottom = 2
	SquareWrapTop    = 9

	// SquareCyclesPerCount is the instruction cost of one half-period
	// count; the RP2040 adapter multiplies the clock divider target by
	// this so counts tick at the configured clock rate.
	SquareCyclesPerCount = 2
)
