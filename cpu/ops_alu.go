package cpu

import (
	"pendragon/isa"
	"pendragon/registers"
)

// aluFamily groups the five encodings (imm16, reg, imm8, reg-high,
// reg-low) that every arithmetic/bitwise opcode is expanded into, the
// same five-wide layout the isa table assigns each mnemonic.
type aluFamily struct {
	immW, regW, immB, regH, regL isa.Opcode
}

var (
	addFamily = aluFamily{isa.ADD_IMM_W, isa.ADD_REG_W, isa.ADB_IMM_B, isa.ADH_REG_B, isa.ADL_REG_B}
	subFamily = aluFamily{isa.SUB_IMM_W, isa.SUB_REG_W, isa.SBB_IMM_B, isa.SBH_REG_B, isa.SBL_REG_B}
	mulFamily = aluFamily{isa.MUL_IMM_W, isa.MUL_REG_W, isa.MLB_IMM_B, isa.MLH_REG_B, isa.MLL_REG_B}
	divFamily = aluFamily{isa.DIV_IMM_W, isa.DIV_REG_W, isa.DVB_IMM_B, isa.DVH_REG_B, isa.DVL_REG_B}
	remFamily = aluFamily{isa.REM_IMM_W, isa.REM_REG_W, isa.RMB_IMM_B, isa.RMH_REG_B, isa.RML_REG_B}
	andFamily = aluFamily{isa.AND_IMM_W, isa.AND_REG_W, isa.ANB_IMM_B, isa.ANH_REG_B, isa.ANL_REG_B}
	orFamily  = aluFamily{isa.OR_IMM_W, isa.OR_REG_W, isa.ORB_IMM_B, isa.ORH_REG_B, isa.ORL_REG_B}
	xorFamily = aluFamily{isa.XOR_IMM_W, isa.XOR_REG_W, isa.XOB_IMM_B, isa.XOH_REG_B, isa.XOL_REG_B}
	notFamily = aluFamily{isa.NOT_IMM_W, isa.NOT_REG_W, isa.NOTB_IMM_B, isa.NOTH_REG_B, isa.NOTL_REG_B}
)

// operand resolves an ALU opcode's single source value against p,
// widening byte-sized sources to 16 bits.
func (c *CPU) operand(f aluFamily, op isa.Opcode, p []byte) (uint16, error) {
	switch op {
	case f.immW:
		return le16(p, 0), nil
	case f.immB:
		return uint16(p[0]), nil
	case f.regW:
		r, err := regAt(p, 0)
		if err != nil {
			return 0, err
		}
		return c.Regs.Get(r), nil
	case f.regH:
		r, err := regAt(p, 0)
		if err != nil {
			return 0, err
		}
		return uint16(c.Regs.High(r)), nil
	case f.regL:
		r, err := regAt(p, 0)
		if err != nil {
			return 0, err
		}
		return uint16(c.Regs.Low(r)), nil
	default:
		return 0, &UnknownOpcodeError{Opcode: byte(op)}
	}
}

// execALU handles opcodes 0x29-0x55: arithmetic add/sub/mul/div/rem
// and bitwise and/or/xor/not, every one of them implicitly targeting
// AX (see cpu.ALU doc comment).
func (c *CPU) execALU(op isa.Opcode, p []byte) error {
	switch {
	case inFamily(addFamily, op):
		b, err := c.operand(addFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Add(b)
		return nil

	case inFamily(subFamily, op):
		b, err := c.operand(subFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Sub(b)
		return nil

	case inFamily(mulFamily, op):
		b, err := c.operand(mulFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Mul(b)
		return nil

	case inFamily(divFamily, op):
		b, err := c.operand(divFamily, op, p)
		if err != nil {
			return err
		}
		return c.alu.Div(b)

	case inFamily(remFamily, op):
		b, err := c.operand(remFamily, op, p)
		if err != nil {
			return err
		}
		return c.alu.Rem(b)

	case inFamily(andFamily, op):
		b, err := c.operand(andFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.And(b)
		return nil

	case inFamily(orFamily, op):
		b, err := c.operand(orFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Or(b)
		return nil

	case inFamily(xorFamily, op):
		b, err := c.operand(xorFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Xor(b)
		return nil

	case inFamily(notFamily, op):
		// Unreachable-in-the-reference opcodes (DESIGN.md): move the
		// operand into AX, then complement in place.
		b, err := c.operand(notFamily, op, p)
		if err != nil {
			return err
		}
		c.Regs.Set(registers.AX, b)
		c.alu.Not()
		return nil

	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}

func inFamily(f aluFamily, op isa.Opcode) bool {
	return op == f.immW || op == f.regW || op == f.immB || op == f.regH || op == f.regL
}
