package cpu

import (
	"pendragon/memory"
	"pendragon/registers"
	"pendragon/stack"
)

// returnFrame is one entry of the instruction unit's private return
// stack: the address to resume at, and the caller's frame pointer to
// restore.
type returnFrame struct {
	retAddr uint32
	savedFP int64
}

// InstructionUnit owns the instruction pointer, fetches code bytes
// through a paged accessor rooted at that pointer, and runs the
// call/return protocol against the managed stack, keeping return
// addresses and saved frame pointers on its own private return stack.
type InstructionUnit struct {
	page   uint16
	offset uint16
	code   *memory.PagedAccessor
	stack  *stack.Stack
	rstack []returnFrame
}

// NewInstructionUnit wraps a read-write paged accessor over the code
// context and the managed stack used by call/return.
func NewInstructionUnit(code *memory.PagedAccessor, st *stack.Stack) *InstructionUnit {
	return &InstructionUnit{code: code, stack: st}
}

// IR returns the full 32-bit code address the instruction pointer
// currently names (page<<16 | offset).
func (u *InstructionUnit) IR() uint32 {
	return uint32(u.page)<<16 | uint32(u.offset)
}

// SetIR installs a full 32-bit code address, splitting it into the
// code accessor's current page and the in-page offset.
func (u *InstructionUnit) SetIR(addr uint32) error {
	u.page = uint16(addr / 65536)
	u.offset = uint16(addr % 65536)
	return u.code.SetPage(u.page)
}

// AdvanceIR moves the in-page offset forward by delta bytes. It never
// touches the page half: an offset that passes 0xFFFF wraps to 0 within
// the same page, so only a jump, call or return moves fetch to another
// page.
func (u *InstructionUnit) AdvanceIR(delta uint16) {
	u.offset += delta
}

// ReadByteAtIR fetches the byte at IR without advancing it.
func (u *InstructionUnit) ReadByteAtIR() (byte, error) {
	if err := u.code.SetPage(u.page); err != nil {
		return 0, err
	}
	return u.code.ReadByte(u.offset)
}

// ReadWordAtIR fetches the little-endian word at IR without advancing
// it.
func (u *InstructionUnit) ReadWordAtIR() (uint16, error) {
	if err := u.code.SetPage(u.page); err != nil {
		return 0, err
	}
	return u.code.ReadWord(u.offset)
}

// ReadBytesAtIR reads n bytes starting at offset relative to IR,
// without advancing it; used to fetch an instruction's operand bytes.
func (u *InstructionUnit) ReadBytesAtIR(relOffset uint16, n int) ([]byte, error) {
	if err := u.code.SetPage(u.page); err != nil {
		return nil, err
	}
	return u.code.BulkRead(u.offset+relOffset, n)
}

// JumpTo unconditionally sets IR.
func (u *InstructionUnit) JumpTo(addr uint32) error { return u.SetIR(addr) }

// JumpIf sets IR iff the named flag matches expected.
func (u *InstructionUnit) JumpIf(addr uint32, flags *registers.Flags, flag registers.Flag, expected bool) error {
	if flags.Get(flag) == expected {
		return u.SetIR(addr)
	}
	return nil
}

// LoadProgram writes the code segment into the code context starting
// at virtual address 0, spanning pages as needed, and resets IR to 0.
func (u *InstructionUnit) LoadProgram(code []byte) error {
	const pageSize = 65536
	for written := 0; written < len(code); {
		page := uint16(written / pageSize)
		offset := uint16(written % pageSize)
		if err := u.code.SetPage(page); err != nil {
			return err
		}
		chunk := pageSize - int(offset)
		if remaining := len(code) - written; chunk > remaining {
			chunk = remaining
		}
		if err := u.code.BulkWrite(offset, code[written:written+chunk]); err != nil {
			return err
		}
		written += chunk
	}
	return u.SetIR(0)
}

// CallSubroutine implements the four-step call protocol: push the
// return frame, jump, install the call-flag byte, and pin the new
// frame to the stack top.
func (u *InstructionUnit) CallSubroutine(target uint32, withReturnValue bool) error {
	u.rstack = append(u.rstack, returnFrame{retAddr: u.IR(), savedFP: u.stack.FP()})
	if err := u.SetIR(target); err != nil {
		return err
	}
	var flag byte
	if withReturnValue {
		flag = 1
	}
	if err := u.stack.PushByte(flag); err != nil {
		return err
	}
	u.stack.SetFrameToTop()
	return nil
}

// ReturnFromSubroutine implements the six-step return protocol,
// restoring the caller's IR and frame pointer and, if the callee
// carries a return value, re-pushing it above the restored frame.
func (u *InstructionUnit) ReturnFromSubroutine() error {
	if len(u.rstack) == 0 {
		return &ReturnStackUnderflowError{}
	}
	frame := u.rstack[len(u.rstack)-1]
	u.rstack = u.rstack[:len(u.rstack)-1]
	if err := u.SetIR(frame.retAddr); err != nil {
		return err
	}

	callFlag, err := u.stack.PeekByteFromFrame(0)
	if err != nil {
		return err
	}

	if callFlag == 1 {
		retVal, err := u.stack.PopWord()
		if err != nil {
			return err
		}
		u.stack.Flush()
		u.stack.SetFramePointer(frame.savedFP)
		if _, err := u.stack.PopByte(); err != nil {
			return err
		}
		return u.stack.PushWord(retVal)
	}

	u.stack.Flush()
	u.stack.SetFramePointer(frame.savedFP)
	_, err = u.stack.PopByte()
	return err
}
