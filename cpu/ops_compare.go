package cpu

import "pendragon/isa"

// execCompare handles opcodes 0x6C-0x71: CMP/CPH/CPL, word and byte
// variants. None of these touch AX (see ALU.Cmp doc comment).
func (c *CPU) execCompare(op isa.Opcode, p []byte) error {
	switch op {
	case isa.CMP_REG_REG:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		b, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.alu.Cmp(c.Regs.Get(a), c.Regs.Get(b))
		return nil

	case isa.CMP_REG_IMM_W:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.alu.Cmp(c.Regs.Get(a), le16(p, 1))
		return nil

	case isa.CPH_REG_REG:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		b, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.alu.Cmp(uint16(c.Regs.High(a)), uint16(c.Regs.High(b)))
		return nil

	case isa.CPH_REG_IMM_B:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.alu.Cmp(uint16(c.Regs.High(a)), uint16(p[1]))
		return nil

	case isa.CPL_REG_REG:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		b, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.alu.Cmp(uint16(c.Regs.Low(a)), uint16(c.Regs.Low(b)))
		return nil

	case isa.CPL_REG_IMM_B:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.alu.Cmp(uint16(c.Regs.Low(a)), uint16(p[1]))
		return nil

	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}

// execIncDec handles INC/DEC, which bypass the ALU and write straight
// to the named register (original_source's execute_inc_dec_operation).
func (c *CPU) execIncDec(op isa.Opcode, p []byte) error {
	r, err := regAt(p, 0)
	if err != nil {
		return err
	}
	switch op {
	case isa.INC_REG:
		c.Regs.Inc(r)
	case isa.DEC_REG:
		c.Regs.Dec(r)
	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
	return nil
}
