package memory

// AccessMode gates whether an accessor may write through to its
// context.
type AccessMode int

const (
	ReadOnly AccessMode = iota
	ReadWrite
)

// PagedAccessor translates a 16-bit page plus 16-bit offset into a
// 32-bit address within one context, using the context's own
// current-page register as addressing state. It is a short-lived
// borrow: construct one per operation (or per VM step) and let it go
// out of scope; it must never outlive the VMU mode switch that
// authorized it.
type PagedAccessor struct {
	vmu     *VMU
	ctxID   uint16
	size    uint32
	mode    AccessMode
}

// NewPagedAccessor creates a paged view over ctx. Only legal while the
// VMU is Protected.
func (v *VMU) NewPagedAccessor(ctx *Context, mode AccessMode) (*PagedAccessor, error) {
	if err := v.requireMode("create paged accessor", Protected); err != nil {
		return nil, err
	}
	return &PagedAccessor{vmu: v, ctxID: ctx.id, size: ctx.size, mode: mode}, nil
}

func (a *PagedAccessor) requireProtected(op string) error {
	return a.vmu.requireMode(op, Protected)
}

// SetPage mutates the context's current-page register.
func (a *PagedAccessor) SetPage(page uint16) error {
	if err := a.requireProtected("set_page"); err != nil {
		return err
	}
	return a.vmu.setPage(a.ctxID, page)
}

// GetPage reads the context's current-page register.
func (a *PagedAccessor) GetPage() (uint16, error) {
	if err := a.requireProtected("get_page"); err != nil {
		return 0, err
	}
	return a.vmu.getPage(a.ctxID)
}

func (a *PagedAccessor) address(offset uint16) (uint32, error) {
	page, err := a.vmu.getPage(a.ctxID)
	if err != nil {
		return 0, err
	}
	addr := uint32(page)<<16 | uint32(offset)
	if addr >= a.size {
		return 0, &OutOfBoundsError{Address: uint64(addr), Size: uint64(a.size)}
	}
	return addr, nil
}

// ReadByte reads the byte at (current page, offset).
func (a *PagedAccessor) ReadByte(offset uint16) (byte, error) {
	if err := a.requireProtected("read_byte"); err != nil {
		return 0, err
	}
	addr, err := a.address(offset)
	if err != nil {
		return 0, err
	}
	return a.vmu.ReadByte(a.ctxID, addr)
}

// WriteByte writes a byte at (current page, offset). Requires
// ReadWrite mode.
func (a *PagedAccessor) WriteByte(offset uint16, value byte) error {
	if err := a.requireProtected("write_byte"); err != nil {
		return err
	}
	if a.mode != ReadWrite {
		return &ReadOnlyError{ContextID: a.ctxID}
	}
	addr, err := a.address(offset)
	if err != nil {
		return err
	}
	return a.vmu.WriteByte(a.ctxID, addr, value)
}

// ReadWord reads two consecutive little-endian bytes at (page,
// offset).
func (a *PagedAccessor) ReadWord(offset uint16) (uint16, error) {
	lo, err := a.ReadByte(offset)
	if err != nil {
		return 0, err
	}
	hi, err := a.ReadByte(offset + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteWord writes the low byte then the high byte, little-endian.
func (a *PagedAccessor) WriteWord(offset uint16, value uint16) error {
	if err := a.WriteByte(offset, byte(value)); err != nil {
		return err
	}
	return a.WriteByte(offset+1, byte(value>>8))
}

// BulkRead reads size consecutive bytes starting at offset.
func (a *PagedAccessor) BulkRead(offset uint16, size int) ([]byte, error) {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		b, err := a.ReadByte(offset + uint16(i))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// BulkWrite writes data starting at offset. Requires ReadWrite mode.
func (a *PagedAccessor) BulkWrite(offset uint16, data []byte) error {
	for i, b := range data {
		if err := a.WriteByte(offset+uint16(i), b); err != nil {
			return err
		}
	}
	return nil
}
