package cpu

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pendragon/isa"
	"pendragon/memory"
	"pendragon/registers"
	"pendragon/stack"
)

func newTestCPU(t *testing.T, stdin string) (*CPU, *bytes.Buffer) {
	t.Helper()
	v := memory.NewVMU()
	codeCtx, err := v.CreateContext(1 << 20)
	require.NoError(t, err)
	dataCtx, err := v.CreateContext(1 << 16)
	require.NoError(t, err)
	stackCtx, err := v.CreateContext(4096)
	require.NoError(t, err)
	v.SetMode(memory.Protected)

	codeAcc, err := v.NewPagedAccessor(codeCtx, memory.ReadWrite)
	require.NoError(t, err)
	dataAcc, err := v.NewPagedAccessor(dataCtx, memory.ReadWrite)
	require.NoError(t, err)
	stackAcc, err := v.NewStackAccessor(stackCtx, memory.ReadWrite)
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(codeAcc, dataAcc, stack.New(stackAcc), strings.NewReader(stdin), &out)
	return c, &out
}

// asm is a tiny hand-encoder used only by tests, independent of the
// assembler package, so CPU tests don't depend on it compiling first.
type asm struct{ b []byte }

func (a *asm) op(op isa.Opcode) *asm    { a.b = append(a.b, byte(op)); return a }
func (a *asm) reg(r registers.Name) *asm { a.b = append(a.b, r.Code()); return a }
func (a *asm) imm8(v byte) *asm          { a.b = append(a.b, v); return a }
func (a *asm) imm16(v uint16) *asm {
	a.b = append(a.b, byte(v), byte(v>>8))
	return a
}
func (a *asm) addr(v uint32) *asm {
	a.b = append(a.b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	return a
}

func TestScenario1SmallestProgram(t *testing.T) {
	c, _ := newTestCPU(t, "")
	code := (&asm{}).op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())
	assert.Equal(t, uint32(1), c.IR())
}

func TestScenario2IntegerAdd(t *testing.T) {
	c, _ := newTestCPU(t, "")
	code := (&asm{}).
		op(isa.LD_REG_IMM_W).reg(registers.AX).imm16(0x0007).
		op(isa.LD_REG_IMM_W).reg(registers.BX).imm16(0x0005).
		op(isa.ADD_REG_W).reg(registers.BX).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())

	assert.Equal(t, uint16(0x000C), c.Regs.Get(registers.AX))
	assert.Equal(t, uint16(0x0005), c.Regs.Get(registers.BX))
	assert.False(t, c.Regs.Flags.Get(registers.Z))
	assert.False(t, c.Regs.Flags.Get(registers.C))
	assert.False(t, c.Regs.Flags.Get(registers.S))
}

func TestScenario3LoopWithConditionalJump(t *testing.T) {
	c, _ := newTestCPU(t, "")
	// START: LD CX, 3        (0, 4 bytes)
	// LOOP:  DEC CX          (4, 2 bytes)
	//        JNZ LOOP        (6, 5 bytes)
	//        HALT            (11)
	loopAddr := uint32(4)
	code := (&asm{}).
		op(isa.LD_REG_IMM_W).reg(registers.CX).imm16(0x0003).
		op(isa.DEC_REG).reg(registers.CX).
		op(isa.JPNZ_ADDR).addr(loopAddr).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())

	assert.Equal(t, uint16(0), c.Regs.Get(registers.CX))
	assert.True(t, c.Regs.Flags.Get(registers.Z))
}

func TestScenario4SubroutineWithReturnValue(t *testing.T) {
	c, _ := newTestCPU(t, "")
	// MAIN:  CALL SUB, true (0)
	//        HALT           (6)
	// SUB:   PUSHW 0x00AB   (7)
	//        RET            (10)
	subAddr := uint32(7)
	code := (&asm{}).
		op(isa.CALL_ADDR).addr(subAddr).imm8(1).
		op(isa.HALT).
		op(isa.PUSHW_IMM_W).imm16(0x00AB).
		op(isa.RET).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())

	v, err := c.st.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x00AB), v)
	assert.True(t, c.st.IsEmpty())
	assert.Equal(t, int64(-1), c.st.FP())
}

func TestScenario5HelloWorldViaPrintLine(t *testing.T) {
	c, out := newTestCPU(t, "")
	msg := "Hello, World!"
	b := &asm{}
	for i := len(msg) - 1; i >= 0; i-- {
		b.op(isa.PUSHB_IMM_B).imm8(msg[i])
	}
	b.op(isa.PUSHW_IMM_W).imm16(uint16(len(msg)))
	b.op(isa.SYS_FUNC).imm16(0x0011)
	b.op(isa.HALT)

	require.NoError(t, c.LoadProgram(b.b))
	require.NoError(t, c.Run())
	assert.Equal(t, "Hello, World!\n", out.String())
	assert.True(t, c.st.IsEmpty())
}

func TestScenario6DivisionByZero(t *testing.T) {
	c, _ := newTestCPU(t, "")
	code := (&asm{}).
		op(isa.LD_REG_IMM_W).reg(registers.AX).imm16(0x0010).
		op(isa.LD_REG_IMM_W).reg(registers.BX).imm16(0x0000).
		op(isa.DIV_REG_W).reg(registers.BX).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))

	err := c.Run()
	require.Error(t, err)
	var dbz *DivisionByZeroError
	require.ErrorAs(t, err, &dbz)
	assert.Equal(t, uint16(0x0010), c.Regs.Get(registers.AX))
}

func TestUnknownOpcodeFails(t *testing.T) {
	c, _ := newTestCPU(t, "")
	require.NoError(t, c.LoadProgram([]byte{0x7E}))
	err := c.Run()
	require.Error(t, err)
	var uo *UnknownOpcodeError
	require.ErrorAs(t, err, &uo)
}

func TestStepLimitExceeded(t *testing.T) {
	c, _ := newTestCPU(t, "")
	c.MaxSteps = 2
	code := (&asm{}).
		op(isa.NOP).op(isa.NOP).op(isa.NOP).op(isa.NOP).op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	err := c.Run()
	require.Error(t, err)
	var sl *StepLimitExceededError
	require.ErrorAs(t, err, &sl)
}

func TestReadLineSyscallRoundTrips(t *testing.T) {
	c, _ := newTestCPU(t, "hi\n")
	code := (&asm{}).
		op(isa.PUSHW_IMM_W).imm16(10).
		op(isa.SYS_FUNC).imm16(0x0012).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())

	n, err := c.st.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), n)
	b1, err := c.st.PopByte()
	require.NoError(t, err)
	b2, err := c.st.PopByte()
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 'i'}, []byte{b1, b2})
}

func TestLoadStoreAndSwap(t *testing.T) {
	c, _ := newTestCPU(t, "")
	code := (&asm{}).
		op(isa.LD_REG_IMM_W).reg(registers.AX).imm16(0x1234).
		op(isa.LD_REG_IMM_W).reg(registers.BX).imm16(0x5678).
		op(isa.SWP_REG_REG).reg(registers.AX).reg(registers.BX).
		op(isa.STA_ADDR_REG_W).addr(0x10).reg(registers.AX).
		op(isa.LDA_REG_ADDR_W).reg(registers.CX).addr(0x10).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())

	assert.Equal(t, uint16(0x5678), c.Regs.Get(registers.AX))
	assert.Equal(t, uint16(0x1234), c.Regs.Get(registers.BX))
	assert.Equal(t, uint16(0x5678), c.Regs.Get(registers.CX))
}

func TestNotOpcodeMovesOperandIntoAXThenComplements(t *testing.T) {
	c, _ := newTestCPU(t, "")
	code := (&asm{}).
		op(isa.LD_REG_IMM_W).reg(registers.BX).imm16(0x00FF).
		op(isa.NOT_REG_W).reg(registers.BX).
		op(isa.HALT).b
	require.NoError(t, c.LoadProgram(code))
	require.NoError(t, c.Run())
	assert.Equal(t, uint16(0xFF00), c.Regs.Get(registers.AX))
}
