package memory

import "fmt"

// Mode is the VMU's two-state machine. Context lifecycle management
// is only allowed in Unprotected; accessor creation and byte I/O only
// in Protected.
type Mode int

const (
	Unprotected Mode = iota
	Protected
)

func (m Mode) String() string {
	if m == Protected {
		return "PROTECTED"
	}
	return "UNPROTECTED"
}

// addressSpaceBits is the width of the VMU's virtual address space:
// up to 2^40 bytes, partitioned among contexts by a bump allocator.
const addressSpaceBits = 40

const addressSpaceLimit = uint64(1) << addressSpaceBits

// VMU is the virtual memory unit: it owns the 40-bit virtual address
// space, creates and destroys Contexts within it, and is the only
// thing that can hand out accessors onto those contexts.
type VMU struct {
	mode     Mode
	nextFree uint64
	nextID   uint16
	contexts map[uint16]*Context
}

// NewVMU creates a VMU starting in Unprotected mode, so the caller can
// create contexts before locking the machine down to run code.
func NewVMU() *VMU {
	return &VMU{
		mode:     Unprotected,
		contexts: make(map[uint16]*Context),
	}
}

// Mode reports the current mode.
func (v *VMU) Mode() Mode { return v.mode }

// SetMode transitions freely between Unprotected and Protected.
func (v *VMU) SetMode(m Mode) { v.mode = m }

func (v *VMU) requireMode(op string, want Mode) error {
	if v.mode != want {
		return &ModeError{Op: op, Expected: want, Actual: v.mode}
	}
	return nil
}

// CreateContext allocates a new Context of the given size from the
// bump allocator. Only legal in Unprotected mode.
func (v *VMU) CreateContext(size uint32) (*Context, error) {
	if err := v.requireMode("create_context", Unprotected); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("context size must be > 0")
	}
	if v.nextFree+uint64(size) > addressSpaceLimit {
		return nil, &AddressSpaceExhaustedError{Requested: uint64(size), NextFree: v.nextFree}
	}

	id := v.nextID
	v.nextID++
	ctx := newContext(id, v.nextFree, size)
	v.nextFree += uint64(size)
	v.contexts[id] = ctx
	return ctx, nil
}

// DestroyContext removes a context and all of its physical blocks.
// Only legal in Unprotected mode.
func (v *VMU) DestroyContext(id uint16) error {
	if err := v.requireMode("destroy_context", Unprotected); err != nil {
		return err
	}
	if _, ok := v.contexts[id]; !ok {
		return &UnknownContextError{ContextID: id}
	}
	delete(v.contexts, id)
	return nil
}

func (v *VMU) context(id uint16) (*Context, error) {
	ctx, ok := v.contexts[id]
	if !ok {
		return nil, &UnknownContextError{ContextID: id}
	}
	return ctx, nil
}

// ReadByte performs a package-internal byte read against a context,
// bypassing accessor mode checks; accessors are the only callers that
// should reach this, and only while the VMU is Protected.
func (v *VMU) ReadByte(id uint16, addr uint32) (byte, error) {
	ctx, err := v.context(id)
	if err != nil {
		return 0, err
	}
	if uint64(addr) >= uint64(ctx.size) {
		return 0, &OutOfBoundsError{Address: uint64(addr), Size: uint64(ctx.size)}
	}
	return ctx.readByte(addr), nil
}

// WriteByte performs a package-internal byte write, allocating the
// backing block on first touch.
func (v *VMU) WriteByte(id uint16, addr uint32, value byte) error {
	ctx, err := v.context(id)
	if err != nil {
		return err
	}
	if uint64(addr) >= uint64(ctx.size) {
		return &OutOfBoundsError{Address: uint64(addr), Size: uint64(ctx.size)}
	}
	ctx.writeByte(addr, value)
	return nil
}

// EnsurePhysicalMemory pre-allocates the block covering addr, without
// changing its contents. Used by the stack accessor so that stack
// writes never pay an on-demand allocation cost mid-call.
func (v *VMU) EnsurePhysicalMemory(id uint16, addr uint32) error {
	ctx, err := v.context(id)
	if err != nil {
		return err
	}
	if uint64(addr) >= uint64(ctx.size) {
		return &OutOfBoundsError{Address: uint64(addr), Size: uint64(ctx.size)}
	}
	ctx.blockFor(addr, true)
	return nil
}

func (v *VMU) setPage(id uint16, page uint16) error {
	ctx, err := v.context(id)
	if err != nil {
		return err
	}
	ctx.currentPage = page
	return nil
}

func (v *VMU) getPage(id uint16) (uint16, error) {
	ctx, err := v.context(id)
	if err != nil {
		return 0, err
	}
	return ctx.currentPage, nil
}
