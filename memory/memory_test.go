package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContextRequiresUnprotected(t *testing.T) {
	v := NewVMU()
	v.SetMode(Protected)
	_, err := v.CreateContext(16)
	require.Error(t, err)
	var modeErr *ModeError
	require.ErrorAs(t, err, &modeErr)
}

func TestAccessorRequiresProtected(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(16)
	require.NoError(t, err)
	_, err = v.NewPagedAccessor(ctx, ReadWrite)
	require.Error(t, err)
}

func TestFreshMemoryReadsZero(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(8192)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	b, err := acc.ReadByte(100)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(8192)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, acc.WriteByte(42, 0x7A))
	b, err := acc.ReadByte(42)
	require.NoError(t, err)
	assert.Equal(t, byte(0x7A), b)
}

func TestWriteWordRoundTrip(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(8192)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, acc.WriteWord(10, 0xBEEF))
	w, err := acc.ReadWord(10)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), w)
}

func TestOutOfBoundsAtContextSize(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(4096)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	_, err = acc.ReadByte(4096)
	require.Error(t, err)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
}

func TestReadOnlyAccessorRejectsWrite(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(4096)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadOnly)
	require.NoError(t, err)
	err = acc.WriteByte(0, 1)
	require.Error(t, err)
	var roErr *ReadOnlyError
	require.ErrorAs(t, err, &roErr)
}

func TestPagedAddressing(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(1 << 20)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewPagedAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, acc.SetPage(3))
	require.NoError(t, acc.WriteByte(0x10, 0x99))

	require.NoError(t, acc.SetPage(0))
	b, err := acc.ReadByte(0x10)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b, "different page must not alias")

	require.NoError(t, acc.SetPage(3))
	b, err = acc.ReadByte(0x10)
	require.NoError(t, err)
	assert.Equal(t, byte(0x99), b)
}

func TestAddressSpaceExhausted(t *testing.T) {
	v := NewVMU()
	_, err := v.CreateContext(1 << 30)
	require.NoError(t, err)
	for i := 0; i < 1024; i++ {
		if _, err = v.CreateContext(1 << 30); err != nil {
			break
		}
	}
	require.Error(t, err)
	var exhausted *AddressSpaceExhaustedError
	require.ErrorAs(t, err, &exhausted)
}

func TestStackAccessorPreAllocates(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(BlockSize * 3)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewStackAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	require.Equal(t, uint32(BlockSize*3), acc.Size())
	for idx := uint32(0); idx < 3; idx++ {
		_, ok := ctx.blocks[idx]
		assert.True(t, ok, "block %d should be pre-allocated", idx)
	}
}

func TestStackAccessorWordBounds(t *testing.T) {
	v := NewVMU()
	ctx, err := v.CreateContext(4)
	require.NoError(t, err)
	v.SetMode(Protected)

	acc, err := v.NewStackAccessor(ctx, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, acc.WriteWord(2, 0x1234))
	_, err = acc.ReadWord(3)
	require.Error(t, err)
}
