// Package cpu implements the Pendragon VM's execution core: the ALU,
// the instruction unit (instruction pointer, code fetch, call/return
// protocol), and the fetch-decode-execute loop that ties them to the
// isa opcode table. Grounded on the reference's src/cpu/cpu.cpp and
// src/cpu/cpu_alu_ops.cpp split between "what an operation computes"
// and "how the main loop dispatches to it".
package cpu

import "pendragon/registers"

// ALU performs every arithmetic/bitwise/shift/rotate operation against
// the accumulator AX, deriving flags per the fixed rules for each
// operation family (the reference binds its Alu to AX at
// construction; every add/sub/mul/div/rem/and/or/xor/shift/rotate
// opcode, register- or immediate-sourced, targets AX and only AX).
// Compare is the one family that does not touch AX: it derives flags
// from two values the caller already resolved, without clobbering any
// register: compare is flag-only by contract.
type ALU struct {
	regs *registers.File
}

// NewALU wraps a register file.
func NewALU(regs *registers.File) *ALU { return &ALU{regs: regs} }

func (a *ALU) ax() uint16 { return a.regs.Get(registers.AX) }

func (a *ALU) setAX(v uint16) { a.regs.Set(registers.AX, v) }

// Add computes AX + b, writes the result to AX, and derives flags.
func (a *ALU) Add(b uint16) {
	x := a.ax()
	result := x + b
	a.setAX(result)
	a.regs.Flags.Set(
		result == 0,
		result < x || result < b,
		result&0x8000 != 0,
		(x^result)&(b^result)&0x8000 != 0,
	)
}

// Sub computes AX - b.
func (a *ALU) Sub(b uint16) {
	x := a.ax()
	result := x - b
	a.setAX(result)
	a.regs.Flags.Set(
		result == 0,
		x < b,
		result&0x8000 != 0,
		(x^b)&(x^result)&0x8000 != 0,
	)
}

// Mul computes AX * b as a full 32-bit product, writes the low 16
// bits to AX, and sets C iff the high half is non-zero.
func (a *ALU) Mul(b uint16) {
	x := a.ax()
	product := uint32(x) * uint32(b)
	result := uint16(product)
	a.setAX(result)
	a.regs.Flags.Set(
		result == 0,
		product>>16 != 0,
		result&0x8000 != 0,
		false,
	)
}

// Div computes AX / b, integer division. Fails without modifying AX
// if b is zero.
func (a *ALU) Div(b uint16) error {
	if b == 0 {
		return &DivisionByZeroError{}
	}
	result := a.ax() / b
	a.setAX(result)
	a.regs.Flags.Set(result == 0, false, result&0x8000 != 0, false)
	return nil
}

// Rem computes AX % b. Fails without modifying AX if b is zero.
func (a *ALU) Rem(b uint16) error {
	if b == 0 {
		return &DivisionByZeroError{}
	}
	result := a.ax() % b
	a.setAX(result)
	a.regs.Flags.Set(result == 0, false, result&0x8000 != 0, false)
	return nil
}

func (a *ALU) bitwise(result uint16) {
	a.setAX(result)
	a.regs.Flags.Set(result == 0, false, result&0x8000 != 0, false)
}

// And computes AX & b.
func (a *ALU) And(b uint16) { a.bitwise(a.ax() & b) }

// Or computes AX | b.
func (a *ALU) Or(b uint16) { a.bitwise(a.ax() | b) }

// Xor computes AX ^ b.
func (a *ALU) Xor(b uint16) { a.bitwise(a.ax() ^ b) }

// Not computes ^AX in place, deriving flags as if the second operand
// were zero.
func (a *ALU) Not() { a.bitwise(^a.ax()) }

// shiftCount saturates counts of 16 or more to 16, the point at which
// a 16-bit shift has no bits left to preserve.
func shiftCount(count uint16) uint {
	if count >= 16 {
		return 16
	}
	return uint(count)
}

// Shl computes AX << count, saturating at 16.
func (a *ALU) Shl(count uint16) { a.bitwise(a.ax() << shiftCount(count)) }

// Shr computes AX >> count (logical), saturating at 16.
func (a *ALU) Shr(count uint16) { a.bitwise(a.ax() >> shiftCount(count)) }

// rotateCount reduces a rotate distance modulo the 16-bit width.
func rotateCount(count uint16) uint {
	return uint(count % 16)
}

// Rol rotates AX left by count mod 16. Go's shift-by-16 on a uint16
// naturally yields 0, so n == 0 needs no special case.
func (a *ALU) Rol(count uint16) {
	n := rotateCount(count)
	x := a.ax()
	a.bitwise(x<<n | x>>(16-n))
}

// Ror rotates AX right by count mod 16.
func (a *ALU) Ror(count uint16) {
	n := rotateCount(count)
	x := a.ax()
	a.bitwise(x>>n | x<<(16-n))
}

// Cmp derives Z/C/S/V as if computing a - b, without writing any
// register: Z signals equality, C signals a < b (unsigned). Kept
// flag-only rather than copying its first operand into AX, which
// would clobber it for the rest of the program.
func (a *ALU) Cmp(x, b uint16) {
	result := x - b
	a.regs.Flags.Set(
		result == 0,
		x < b,
		result&0x8000 != 0,
		(x^b)&(x^result)&0x8000 != 0,
	)
}
