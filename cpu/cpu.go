package cpu

import (
	"bufio"
	"io"

	"pendragon/isa"
	"pendragon/memory"
	"pendragon/registers"
	"pendragon/stack"
)

// CPU ties the register file, ALU, instruction unit, data accessor and
// stack together into the fetch/decode/execute loop. Branch,
// load/store, stack, ALU and syscall concerns are split into sibling
// files (ops_loadstore.go, ops_stack.go, ops_jump.go, ops_alu.go,
// ops_shiftrotate.go, ops_compare.go, syscall.go) alongside this one.
type CPU struct {
	Regs *registers.File
	alu  *ALU
	iu   *InstructionUnit
	data *memory.PagedAccessor
	st   *stack.Stack

	stdin  *bufio.Reader
	stdout io.Writer

	// MaxSteps bounds the number of fetch/decode/execute iterations Run
	// performs before failing with StepLimitExceededError, a defensive
	// guard the reference's Cpu::run() does not have.
	MaxSteps uint64
	steps    uint64
}

// New wires a CPU from its already-constructed parts. data is the
// paged accessor over the data context; code fetch and the call/
// return protocol live in iu.
func New(code *memory.PagedAccessor, data *memory.PagedAccessor, st *stack.Stack, stdin io.Reader, stdout io.Writer) *CPU {
	regs := registers.NewFile()
	return &CPU{
		Regs:   regs,
		alu:    NewALU(regs),
		iu:     NewInstructionUnit(code, st),
		data:   data,
		st:     st,
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
	}
}

// LoadProgram writes the code segment into the code context and
// resets the instruction pointer to 0.
func (c *CPU) LoadProgram(code []byte) error {
	return c.iu.LoadProgram(code)
}

// IR reports the current instruction pointer, for diagnostics.
func (c *CPU) IR() uint32 { return c.iu.IR() }

// dataAddr splits a 32-bit resolved address into the data context's
// page and in-page offset, mirroring the instruction unit's own split
// between two address spaces that both start at 0.
func dataAddr(addr uint32) (page, offset uint16) {
	return uint16(addr / 65536), uint16(addr % 65536)
}

// Run executes instructions until HALT, an unhandled error, or
// MaxSteps is exceeded (MaxSteps == 0 means unbounded).
func (c *CPU) Run() error {
	for {
		halted, err := c.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		c.steps++
		if c.MaxSteps != 0 && c.steps >= c.MaxSteps {
			return &StepLimitExceededError{Limit: c.MaxSteps}
		}
	}
}

// Step fetches, decodes and executes exactly one instruction, in four
// ordered side-effect phases: operand fetch, IR advance past operands,
// mutation, flag derivation (IR mutation for jumps happens last,
// inside the individual op handlers).
func (c *CPU) Step() (halted bool, err error) {
	opByte, err := c.iu.ReadByteAtIR()
	if err != nil {
		return false, err
	}
	c.iu.AdvanceIR(1)

	op := isa.Opcode(opByte)
	switch op {
	case isa.NOP:
		return false, nil
	case isa.HALT:
		return true, nil
	}

	info, ok := isa.Lookup(op)
	if !ok {
		return false, &UnknownOpcodeError{Opcode: opByte}
	}

	n := info.AdditionalBytes()
	params, err := c.iu.ReadBytesAtIR(0, n)
	if err != nil {
		return false, err
	}
	c.iu.AdvanceIR(uint16(n))

	if err := c.dispatch(op, params); err != nil {
		return false, err
	}
	return false, nil
}

// dispatch routes an opcode to its family handler by comparing it with
// each family's first and last isa constant, so it relies on every
// family's opcodes being numbered contiguously; CALL/RET, INC/DEC,
// PUSHB/PUSHW and SYS are matched individually. Each handler then
// matches its own opcodes one by one and rejects any other byte.
func (c *CPU) dispatch(op isa.Opcode, p []byte) error {
	switch {
	case op >= isa.LD_REG_IMM_W && op <= isa.STAL_ADDR_REG_B:
		return c.execLoadStore(op, p)
	case op >= isa.PUSH_REG_W && op <= isa.SETF_ADDR:
		return c.execStack(op, p)
	case op >= isa.JMP_ADDR && op <= isa.JPNO_ADDR:
		return c.execJump(op, p)
	case op == isa.CALL_ADDR || op == isa.RET:
		return c.execSubroutine(op, p)
	case op >= isa.ADD_IMM_W && op <= isa.NOTL_REG_B:
		return c.execALU(op, p)
	case op >= isa.SHL_IMM_W && op <= isa.RORL_REG_B:
		return c.execShiftRotate(op, p)
	case op == isa.INC_REG || op == isa.DEC_REG:
		return c.execIncDec(op, p)
	case op >= isa.CMP_REG_REG && op <= isa.CPL_REG_IMM_B:
		return c.execCompare(op, p)
	case op == isa.PUSHB_IMM_B || op == isa.PUSHW_IMM_W:
		return c.execPushImm(op, p)
	case op == isa.SYS_FUNC:
		return c.execSyscall(p)
	default:
		return &UnknownOpcodeError{Opcode: byte(op)}
	}
}

func regAt(p []byte, i int) (registers.Name, error) {
	return registers.FromCode(p[i])
}

func le16(p []byte, i int) uint16 {
	return uint16(p[i]) | uint16(p[i+1])<<8
}

// le32 decodes a resolved ADDRESS/EXPRESSION operand: 4 little-endian
// bytes.
func le32(p []byte, i int) uint32 {
	return uint32(p[i]) | uint32(p[i+1])<<8 | uint32(p[i+2])<<16 | uint32(p[i+3])<<24
}
