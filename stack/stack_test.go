package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pendragon/memory"
)

func newTestStack(t *testing.T, capacity uint32) *Stack {
	t.Helper()
	v := memory.NewVMU()
	ctx, err := v.CreateContext(capacity)
	require.NoError(t, err)
	v.SetMode(memory.Protected)
	acc, err := v.NewStackAccessor(ctx, memory.ReadWrite)
	require.NoError(t, err)
	return New(acc)
}

func TestPushPopLIFO(t *testing.T) {
	s := newTestStack(t, 64)
	for _, b := range []byte{1, 2, 3, 4, 5} {
		require.NoError(t, s.PushByte(b))
	}
	for i := 4; i >= 0; i-- {
		v, err := s.PopByte()
		require.NoError(t, err)
		assert.Equal(t, byte(i+1), v)
	}
}

func TestPushAtCapacityOverflows(t *testing.T) {
	s := newTestStack(t, 2)
	require.NoError(t, s.PushByte(1))
	require.NoError(t, s.PushByte(2))
	err := s.PushByte(3)
	require.Error(t, err)
	var overflow *OverflowError
	require.ErrorAs(t, err, &overflow)
}

func TestPopAtFrameFloorUnderflows(t *testing.T) {
	s := newTestStack(t, 64)
	require.NoError(t, s.PushByte(0xAA)) // call flag
	s.SetFrameToTop()
	_, err := s.PopByte()
	require.Error(t, err)
	var underflow *UnderflowError
	require.ErrorAs(t, err, &underflow)
}

func TestFlushDropsAboveFrame(t *testing.T) {
	s := newTestStack(t, 64)
	require.NoError(t, s.PushByte(1))
	require.NoError(t, s.PushByte(2)) // call flag
	s.SetFrameToTop()                 // fp = 1
	require.NoError(t, s.PushByte(9))
	require.NoError(t, s.PushByte(10))
	s.Flush()
	assert.Equal(t, uint32(2), s.SP())
	b, err := s.PeekByteFromBase(0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)
}

func TestWordRoundTrip(t *testing.T) {
	s := newTestStack(t, 64)
	require.NoError(t, s.PushWord(0xBEEF))
	v, err := s.PopWord()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v)
}

func TestPeekFromFrameSeesCallFlag(t *testing.T) {
	s := newTestStack(t, 64)
	require.NoError(t, s.PushByte(1)) // call flag == 1
	s.SetFrameToTop()
	flag, err := s.PeekByteFromFrame(0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), flag)
}

func TestIsEmptyAndIsFull(t *testing.T) {
	s := newTestStack(t, 2)
	assert.True(t, s.IsEmpty())
	require.NoError(t, s.PushByte(1))
	require.NoError(t, s.PushByte(2))
	assert.True(t, s.IsFull())
}
