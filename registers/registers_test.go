package registers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighLowViewsIndependent(t *testing.T) {
	f := NewFile()
	f.Set(AX, 0x1234)
	assert.Equal(t, byte(0x12), f.High(AX))
	assert.Equal(t, byte(0x34), f.Low(AX))

	f.SetLow(AX, 0xFF)
	assert.Equal(t, uint16(0x12FF), f.Get(AX))

	f.SetHigh(AX, 0xAB)
	assert.Equal(t, uint16(0xABFF), f.Get(AX))
}

func TestFromCodeRoundTrip(t *testing.T) {
	n, err := FromCode(1)
	require.NoError(t, err)
	assert.Equal(t, AX, n)
	assert.Equal(t, byte(1), n.Code())

	_, err = FromCode(0)
	require.Error(t, err)
	_, err = FromCode(6)
	require.Error(t, err)
}

func TestIncSetsZeroFlagOnWraparound(t *testing.T) {
	f := NewFile()
	f.Set(BX, 0xFFFF)
	f.Inc(BX)
	assert.Equal(t, uint16(0), f.Get(BX))
	assert.True(t, f.Flags.Get(Z))
	assert.True(t, f.Flags.Get(C))
}

func TestIncSetsSignFlag(t *testing.T) {
	f := NewFile()
	f.Set(CX, 0x7FFF)
	f.Inc(CX)
	assert.Equal(t, uint16(0x8000), f.Get(CX))
	assert.True(t, f.Flags.Get(S))
	assert.True(t, f.Flags.Get(V))
}

func TestDecSetsCarryOnBorrowFromZero(t *testing.T) {
	f := NewFile()
	f.Set(DX, 0)
	f.Dec(DX)
	assert.Equal(t, uint16(0xFFFF), f.Get(DX))
	assert.True(t, f.Flags.Get(C))
	assert.True(t, f.Flags.Get(S))
}

func TestDecToZeroSetsZeroNotCarry(t *testing.T) {
	f := NewFile()
	f.Set(EX, 1)
	f.Dec(EX)
	assert.Equal(t, uint16(0), f.Get(EX))
	assert.True(t, f.Flags.Get(Z))
	assert.False(t, f.Flags.Get(C))
}

func TestRegisterNameString(t *testing.T) {
	assert.Equal(t, "AX", AX.String())
	assert.Equal(t, "EX", EX.String())
}
