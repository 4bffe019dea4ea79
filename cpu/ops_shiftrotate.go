package cpu

import "pendragon/isa"

var (
	shlFamily = aluFamily{isa.SHL_IMM_W, isa.SHL_REG_W, isa.SLB_IMM_B, isa.SLH_REG_B, isa.SLL_REG_B}
	shrFamily = aluFamily{isa.SHR_IMM_W, isa.SHR_REG_W, isa.SHRB_IMM_B, isa.SHRH_REG_B, isa.SHRL_REG_B}
	rolFamily = aluFamily{isa.ROL_IMM_W, isa.ROL_REG_W, isa.ROLB_IMM_B, isa.ROLH_REG_B, isa.ROLL_REG_B}
	rorFamily = aluFamily{isa.ROR_IMM_W, isa.ROR_REG_W, isa.RORB_IMM_B, isa.RORH_REG_B, isa.RORL_REG_B}
)

// execShiftRotate handles opcodes 0x56-0x69: shifts and rotates,
// implicitly targeting AX like the rest of the ALU family, the count
// being the single source operand.
func (c *CPU) execShiftRotate(op isa.Opcode, p []byte) error {
	switch {
	case inFamily(shlFamily, op):
		count, err := c.operand(shlFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Shl(count)
		return nil

	case inFamily(shrFamily, op):
		count, err := c.operand(shrFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Shr(count)
		return nil

	case inFamily(rolFamily, op):
		count, err := c.operand(rolFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Rol(count)
		return nil

	case inFamily(rorFamily, op):
		count, err := c.operand(rorFamily, op, p)
		if err != nil {
			return err
		}
		c.alu.Ror(count)
		return nil

	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}
