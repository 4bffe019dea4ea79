// Package stack implements the Pendragon VM's managed call/value
// stack: a fixed-capacity byte stack living in its own memory
// context, with a movable frame pointer that protects a caller's data
// from a callee's pops. Grounded on the reference's stack.h/Stack
// design (a stack addressed through a dedicated accessor) rewritten
// around package memory's StackAccessor.
package stack

import "pendragon/memory"

// Stack is a frame-aware stack over a pre-allocated memory context.
type Stack struct {
	acc *memory.StackAccessor
	sp  uint32
	fp  int64 // -1 means "no frame installed"
}

// New wraps a ReadWrite stack accessor. sp starts at 0, fp at -1: an
// empty stack with no frame installed.
func New(acc *memory.StackAccessor) *Stack {
	return &Stack{acc: acc, sp: 0, fp: -1}
}

func (s *Stack) capacity() uint32 { return s.acc.Size() }

// SP returns the next free byte offset.
func (s *Stack) SP() uint32 { return s.sp }

// FP returns the current frame pointer (-1 if none installed).
func (s *Stack) FP() int64 { return s.fp }

// PushByte writes v at sp and advances sp by one.
func (s *Stack) PushByte(v byte) error {
	if s.sp == s.capacity() {
		return &OverflowError{Capacity: s.capacity()}
	}
	if err := s.acc.WriteByte(s.sp, v); err != nil {
		return err
	}
	s.sp++
	return nil
}

// PopByte rewinds sp by one and returns the byte there. Fails if sp is
// already at the protected floor fp+1.
func (s *Stack) PopByte() (byte, error) {
	if int64(s.sp) <= s.fp+1 {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	s.sp--
	return s.acc.ReadByte(s.sp)
}

// PushWord pushes v as two little-endian bytes.
func (s *Stack) PushWord(v uint16) error {
	if uint64(s.sp)+2 > uint64(s.capacity()) {
		return &OverflowError{Capacity: s.capacity()}
	}
	if err := s.acc.WriteByte(s.sp, byte(v)); err != nil {
		return err
	}
	if err := s.acc.WriteByte(s.sp+1, byte(v>>8)); err != nil {
		return err
	}
	s.sp += 2
	return nil
}

// PopWord reverses PushWord.
func (s *Stack) PopWord() (uint16, error) {
	if int64(s.sp)-2 < s.fp+1 {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	hi, err := s.acc.ReadByte(s.sp - 1)
	if err != nil {
		return 0, err
	}
	lo, err := s.acc.ReadByte(s.sp - 2)
	if err != nil {
		return 0, err
	}
	s.sp -= 2
	return uint16(lo) | uint16(hi)<<8, nil
}

// PeekByte reads the top byte without moving sp.
func (s *Stack) PeekByte() (byte, error) {
	if int64(s.sp)-1 < s.fp+1 {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadByte(s.sp - 1)
}

// PeekWord reads the top word without moving sp.
func (s *Stack) PeekWord() (uint16, error) {
	if int64(s.sp)-2 < s.fp+1 {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadWord(s.sp - 2)
}

// PeekByteFromBase reads at an absolute offset, ignoring the frame
// floor — it can see below fp.
func (s *Stack) PeekByteFromBase(off uint32) (byte, error) {
	if off >= s.sp {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadByte(off)
}

// PeekWordFromBase reads a word at an absolute offset, ignoring the
// frame floor.
func (s *Stack) PeekWordFromBase(off uint32) (uint16, error) {
	if int64(off)+1 >= int64(s.sp) {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadWord(off)
}

// PeekByteFromFrame reads at fp+off; offset 0 addresses the call-flag
// byte installed at call time.
func (s *Stack) PeekByteFromFrame(off int32) (byte, error) {
	addr := s.fp + int64(off)
	if addr < 0 || uint64(addr) >= uint64(s.sp) {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadByte(uint32(addr))
}

// PeekWordFromFrame reads a word at fp+off.
func (s *Stack) PeekWordFromFrame(off int32) (uint16, error) {
	addr := s.fp + int64(off)
	if addr < 0 || uint64(addr)+1 >= uint64(s.sp) {
		return 0, &UnderflowError{SP: int64(s.sp), FP: s.fp}
	}
	return s.acc.ReadWord(uint32(addr))
}

// SetFramePointer installs an arbitrary frame pointer, used by the
// instruction unit when restoring a caller's frame on return.
func (s *Stack) SetFramePointer(v int64) { s.fp = v }

// SetFrameToTop sets fp = sp-1: the most recently pushed byte (the
// call flag) becomes the new frame's base.
func (s *Stack) SetFrameToTop() { s.fp = int64(s.sp) - 1 }

// Flush resets sp to fp+1, dropping every byte the current frame
// pushed above its call flag while preserving everything at or below
// fp.
func (s *Stack) Flush() { s.sp = uint32(s.fp + 1) }

// IsEmpty reports whether the current frame has no locals.
func (s *Stack) IsEmpty() bool { return int64(s.sp) == s.fp+1 }

// IsFull reports whether sp has reached capacity.
func (s *Stack) IsFull() bool { return s.sp == s.capacity() }

// GetSize returns sp, the count of bytes from the context base.
func (s *Stack) GetSize() uint32 { return s.sp }
