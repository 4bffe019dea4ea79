package cpu

import "pendragon/isa"

func (c *CPU) dataReadByte(addr uint32) (byte, error) {
	page, offset := dataAddr(addr)
	if err := c.data.SetPage(page); err != nil {
		return 0, err
	}
	return c.data.ReadByte(offset)
}

func (c *CPU) dataWriteByte(addr uint32, v byte) error {
	page, offset := dataAddr(addr)
	if err := c.data.SetPage(page); err != nil {
		return err
	}
	return c.data.WriteByte(offset, v)
}

func (c *CPU) dataReadWord(addr uint32) (uint16, error) {
	page, offset := dataAddr(addr)
	if err := c.data.SetPage(page); err != nil {
		return 0, err
	}
	return c.data.ReadWord(offset)
}

func (c *CPU) dataWriteWord(addr uint32, v uint16) error {
	page, offset := dataAddr(addr)
	if err := c.data.SetPage(page); err != nil {
		return err
	}
	return c.data.WriteWord(offset, v)
}

// execLoadStore handles opcodes 0x02-0x0F: load/store/swap, word and
// byte variants, immediate / register / absolute-address sourced.
func (c *CPU) execLoadStore(op isa.Opcode, p []byte) error {
	switch op {
	case isa.LD_REG_IMM_W:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.Regs.Set(dst, le16(p, 1))
		return nil

	case isa.LD_REG_REG_W:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		src, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.Regs.Set(dst, c.Regs.Get(src))
		return nil

	case isa.SWP_REG_REG:
		a, err := regAt(p, 0)
		if err != nil {
			return err
		}
		b, err := regAt(p, 1)
		if err != nil {
			return err
		}
		av, bv := c.Regs.Get(a), c.Regs.Get(b)
		c.Regs.Set(a, bv)
		c.Regs.Set(b, av)
		return nil

	case isa.LDH_REG_IMM_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.Regs.SetHigh(dst, p[1])
		return nil

	case isa.LDH_REG_REG_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		src, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.Regs.SetHigh(dst, c.Regs.High(src))
		return nil

	case isa.LDL_REG_IMM_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		c.Regs.SetLow(dst, p[1])
		return nil

	case isa.LDL_REG_REG_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		src, err := regAt(p, 1)
		if err != nil {
			return err
		}
		c.Regs.SetLow(dst, c.Regs.Low(src))
		return nil

	case isa.LDA_REG_ADDR_W:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.dataReadWord(le32(p, 1))
		if err != nil {
			return err
		}
		c.Regs.Set(dst, v)
		return nil

	case isa.LDAB_REG_ADDR_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.dataReadByte(le32(p, 1))
		if err != nil {
			return err
		}
		c.Regs.Set(dst, uint16(v))
		return nil

	case isa.LDAH_REG_ADDR_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.dataReadByte(le32(p, 1))
		if err != nil {
			return err
		}
		c.Regs.SetHigh(dst, v)
		return nil

	case isa.LDAL_REG_ADDR_B:
		dst, err := regAt(p, 0)
		if err != nil {
			return err
		}
		v, err := c.dataReadByte(le32(p, 1))
		if err != nil {
			return err
		}
		c.Regs.SetLow(dst, v)
		return nil

	case isa.STA_ADDR_REG_W:
		src, err := regAt(p, 4)
		if err != nil {
			return err
		}
		return c.dataWriteWord(le32(p, 0), c.Regs.Get(src))

	case isa.STAH_ADDR_REG_B:
		src, err := regAt(p, 4)
		if err != nil {
			return err
		}
		return c.dataWriteByte(le32(p, 0), c.Regs.High(src))

	case isa.STAL_ADDR_REG_B:
		src, err := regAt(p, 4)
		if err != nil {
			return err
		}
		return c.dataWriteByte(le32(p, 0), c.Regs.Low(src))

	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}
