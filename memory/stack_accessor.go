package memory

// StackAccessor addresses a context directly with a 32-bit offset,
// with no page register. It is meant for contexts that will serve as
// the managed stack (package stack): at construction it walks and
// physically allocates every block in the context up front, so later
// pushes never trigger on-demand allocation mid-call.
type StackAccessor struct {
	vmu   *VMU
	ctxID uint16
	size  uint32
	mode  AccessMode
}

// NewStackAccessor creates a pre-allocated 32-bit accessor over ctx.
// Only legal while the VMU is Protected.
func (v *VMU) NewStackAccessor(ctx *Context, mode AccessMode) (*StackAccessor, error) {
	if err := v.requireMode("create stack accessor", Protected); err != nil {
		return nil, err
	}
	for addr := uint32(0); addr < ctx.size; addr += BlockSize {
		if err := v.EnsurePhysicalMemory(ctx.id, addr); err != nil {
			return nil, err
		}
	}
	return &StackAccessor{vmu: v, ctxID: ctx.id, size: ctx.size, mode: mode}, nil
}

func (a *StackAccessor) requireProtected(op string) error {
	return a.vmu.requireMode(op, Protected)
}

func (a *StackAccessor) checkBounds(addr uint32) error {
	if addr >= a.size {
		return &OutOfBoundsError{Address: uint64(addr), Size: uint64(a.size)}
	}
	return nil
}

// ReadByte reads the byte at the given absolute offset.
func (a *StackAccessor) ReadByte(addr uint32) (byte, error) {
	if err := a.requireProtected("read_byte"); err != nil {
		return 0, err
	}
	if err := a.checkBounds(addr); err != nil {
		return 0, err
	}
	return a.vmu.ReadByte(a.ctxID, addr)
}

// WriteByte writes a byte at the given absolute offset. Requires
// ReadWrite mode.
func (a *StackAccessor) WriteByte(addr uint32, value byte) error {
	if err := a.requireProtected("write_byte"); err != nil {
		return err
	}
	if a.mode != ReadWrite {
		return &ReadOnlyError{ContextID: a.ctxID}
	}
	if err := a.checkBounds(addr); err != nil {
		return err
	}
	return a.vmu.WriteByte(a.ctxID, addr, value)
}

// ReadWord reads two consecutive little-endian bytes; addr+1 must
// also be in bounds.
func (a *StackAccessor) ReadWord(addr uint32) (uint16, error) {
	if err := a.checkBounds(addr + 1); err != nil {
		return 0, err
	}
	lo, err := a.ReadByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := a.ReadByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteWord writes low byte then high byte, little-endian.
func (a *StackAccessor) WriteWord(addr uint32, value uint16) error {
	if err := a.checkBounds(addr + 1); err != nil {
		return err
	}
	if err := a.WriteByte(addr, byte(value)); err != nil {
		return err
	}
	return a.WriteByte(addr+1, byte(value>>8))
}

// Size returns the accessor's context size.
func (a *StackAccessor) Size() uint32 { return a.size }
