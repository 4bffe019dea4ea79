package cpu

import (
	"pendragon/isa"
	"pendragon/registers"
)

// execJump handles opcodes 0x1E-0x26: unconditional and conditional
// jumps. JPO/JPNO deliberately invert their apparent polarity relative
// to their mnemonics (JPO jumps when V is clear, JPNO when V is set),
// a reference quirk replicated faithfully.
func (c *CPU) execJump(op isa.Opcode, p []byte) error {
	target := le32(p, 0)
	switch op {
	case isa.JMP_ADDR:
		return c.iu.JumpTo(target)
	case isa.JPZ_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.Z, true)
	case isa.JPNZ_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.Z, false)
	case isa.JPC_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.C, true)
	case isa.JPNC_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.C, false)
	case isa.JPS_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.S, true)
	case isa.JPNS_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.S, false)
	case isa.JPO_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.V, false)
	case isa.JPNO_ADDR:
		return c.iu.JumpIf(target, &c.Regs.Flags, registers.V, true)
	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}

// execSubroutine handles CALL/RET, delegating the call/return protocol
// to the instruction unit.
func (c *CPU) execSubroutine(op isa.Opcode, p []byte) error {
	switch op {
	case isa.CALL_ADDR:
		target := le32(p, 0)
		withReturnValue := p[4] != 0
		return c.iu.CallSubroutine(target, withReturnValue)
	case isa.RET:
		return c.iu.ReturnFromSubroutine()
	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}
