package cpu

import "pendragon/isa"

// execStack handles opcodes 0x10-0x1D: push/pop/peek/flush, page
// switch, set-frame.
func (c *CPU) execStack(op isa.Opcode, p []byte) error {
	switch op {
	case isa.PUSH_REG_W:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		return c.st.PushWord(c.Regs.Get(r))

	case isa.PUSHH_REG_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		return c.st.PushByte(c.Regs.High(r))

	case isa.PUSHL_REG_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		return c.st.PushByte(c.Regs.Low(r))

	case isa.POP_REG_W:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PopWord()
		if err != nil {
			return err
		}
		c.Regs.Set(r, v)
		return nil

	case isa.POPH_REG_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PopByte()
		if err != nil {
			return err
		}
		c.Regs.SetHigh(r, v)
		return nil

	case isa.POPL_REG_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PopByte()
		if err != nil {
			return err
		}
		c.Regs.SetLow(r, v)
		return nil

	case isa.PEEK_REG_OFF_W:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PeekWordFromBase(uint32(le16(p, 1)))
		if err != nil {
			return err
		}
		c.Regs.Set(r, v)
		return nil

	case isa.PEEKF_REG_OFF_W:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PeekWordFromFrame(int32(le16(p, 1)))
		if err != nil {
			return err
		}
		c.Regs.Set(r, v)
		return nil

	case isa.PEEKB_REG_OFF_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PeekByteFromBase(uint32(le16(p, 1)))
		if err != nil {
			return err
		}
		c.Regs.SetLow(r, v)
		return nil

	case isa.PEEKFB_REG_OFF_B:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.st.PeekByteFromFrame(int32(le16(p, 1)))
		if err != nil {
			return err
		}
		c.Regs.SetLow(r, v)
		return nil

	case isa.FLSH:
		c.st.Flush()
		return nil

	case isa.PAGE_IMM_W:
		return c.data.SetPage(le16(p, 0))

	case isa.PAGE_REG:
		r, err := regAt(p, 0)
		if err != nil {
			return err
		}
		return c.data.SetPage(c.Regs.Get(r))

	case isa.SETF_ADDR:
		c.st.SetFramePointer(int64(le16(p, 0)))
		return nil

	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}

// execPushImm handles the immediate-operand push opcodes supplementing
// the register-only reference table (see isa.PUSHB_IMM_B doc comment).
func (c *CPU) execPushImm(op isa.Opcode, p []byte) error {
	switch op {
	case isa.PUSHB_IMM_B:
		return c.st.PushByte(p[0])
	case isa.PUSHW_IMM_W:
		return c.st.PushWord(le16(p, 0))
	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}
