package seqstk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeOp packs a family/type/addrmode triple into an instruction byte.
func encodeOp(family Family, typ OpType, mode AddrMode) byte {
	shift := typeShift
	if family == FamilyArithmetic {
		shift = 3 // arithmetic type codes occupy bits 4-3 (see ArithType)
	}
	return byte(family)<<familyShift | byte(typ)<<shift | byte(mode)
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	m := NewMachine()
	require.False(t, m.Load(make([]byte, RAMSize+1)))
}

func TestLoadCopiesIntoLowRAM(t *testing.T) {
	m := NewMachine()
	require.True(t, m.Load([]byte{1, 2, 3}))
	require.Equal(t, byte(1), m.RAM[0])
	require.Equal(t, byte(2), m.RAM[1])
	require.Equal(t, byte(3), m.RAM[2])
}

func TestCycleOnceNoopAtEndOfRAM(t *testing.T) {
	m := NewMachine()
	m.PC = RAMSize
	m.CycleOnce()
	require.Equal(t, int32(RAMSize), m.PC, "PC must not move past RAM_SIZE")
	require.True(t, m.Data.Empty())
}

// TestCycleOnceEndOfRAMSafety is spec.md §8 scenario 7: a PushImm opcode at
// the very last byte of RAM can never actually fetch its four-byte operand,
// and must not send PC past RAM_SIZE trying.
func TestCycleOnceEndOfRAMSafety(t *testing.T) {
	m := NewMachine()
	m.RAM[RAMSize-1] = encodeOp(FamilyStack, TypePush, AddrModeImmediate)
	m.PC = RAMSize - 1

	m.CycleOnce()
	require.Equal(t, int32(RAMSize), m.PC)
	require.True(t, m.Data.Empty())

	m.CycleOnce()
	require.Equal(t, int32(RAMSize), m.PC, "PC must not move past RAM_SIZE")
	require.True(t, m.Data.Empty())
}

func TestCycleOncePushImmediateRoundTrip(t *testing.T) {
	m := NewMachine()
	img := make([]byte, 5)
	img[0] = encodeOp(FamilyStack, TypePush, AddrModeImmediate)
	binary.LittleEndian.PutUint32(img[1:5], uint32(FloatToFix(3.0)))
	require.True(t, m.Load(img))

	m.CycleOnce()

	require.Equal(t, int32(5), m.PC)
	v, ok := m.Data.Peek()
	require.True(t, ok)
	require.Equal(t, FloatToFix(3.0), v)
}

func TestCycleOncePushStackIndirect(t *testing.T) {
	m := NewMachine()
	img := make([]byte, 1)
	img[0] = encodeOp(FamilyStack, TypePush, AddrModeStack)
	require.True(t, m.Load(img))
	require.True(t, m.writeWord(200, FloatToFix(42.0)))
	m.Data.Push(200 << 16) // address operand, as a fixed-point word

	m.CycleOnce()

	v, ok := m.Data.Peek()
	require.True(t, ok)
	require.Equal(t, FloatToFix(42.0), v)
}

func TestCycleOnceStoreImmediate(t *testing.T) {
	m := NewMachine()
	img := make([]byte, 5)
	img[0] = encodeOp(FamilyStack, TypeStore, AddrModeImmediate)
	binary.LittleEndian.PutUint32(img[1:5], uint32(50<<16))
	require.True(t, m.Load(img))
	m.Data.Push(FloatToFix(7.25))

	m.CycleOnce()

	v, ok := m.readWord(50)
	require.True(t, ok)
	require.Equal(t, FloatToFix(7.25), v)
	require.True(t, m.Data.Empty())
}

func TestCycleOnceAdd(t *testing.T) {
	m := NewMachine()
	img := []byte{encodeOp(FamilyArithmetic, TypeAdd, AddrModeStack)}
	require.True(t, m.Load(img))
	m.Data.Push(FloatToFix(2.0))
	m.Data.Push(FloatToFix(3.0))

	m.CycleOnce()

	v, ok := m.Data.Peek()
	require.True(t, ok)
	require.Equal(t, FloatToFix(5.0), v)
	require.Equal(t, 1, m.Data.Depth())
}

func TestCycleOnceShlOnesByOne(t *testing.T) {
	m := NewMachine()
	img := []byte{encodeOp(FamilyBitManip, TypeShl, AddrModeStack)}
	require.True(t, m.Load(img))
	m.Data.Push(int32(-1)) // 0xFFFFFFFF
	m.Data.Push(FloatToFix(1.0))

	m.CycleOnce()

	v, ok := m.Data.Peek()
	require.True(t, ok)
	require.Equal(t, int32(-2), v) // 0xFFFFFFFE
}

func TestCycleOncePortPush(t *testing.T) {
	m := NewMachine()
	img := []byte{0b1001_1010} // family=Port, marker=11, index=2
	require.True(t, m.Load(img))
	m.Data.Push(FloatToFix(9.0))

	m.CycleOnce()

	v, ok := m.PeekPort(2)
	require.True(t, ok)
	require.Equal(t, FloatToFix(9.0), v)
	require.True(t, m.Data.Empty())
}

func TestCycleOncePortPushEmptyStackIsNoop(t *testing.T) {
	m := NewMachine()
	img := []byte{0b1001_1000}
	require.True(t, m.Load(img))

	m.CycleOnce()

	require.Equal(t, 0, m.PortDepth(0))
}

func TestCycleOnceInvalidFamilyStillAdvancesPC(t *testing.T) {
	m := NewMachine()
	img := []byte{0b000_00000}
	require.True(t, m.Load(img))

	m.CycleOnce()

	require.Equal(t, int32(1), m.PC)
}

func TestResetClearsEverything(t *testing.T) {
	m := NewMachine()
	m.Load([]byte{1, 2, 3})
	m.Data.Push(1)
	m.Rts.Push(2)
	m.Ports[0].Push(3)
	m.PC = 10
	m.Interrupts[0] = 4

	m.Reset()

	require.Equal(t, int32(0), m.PC)
	require.True(t, m.Data.Empty())
	require.True(t, m.Rts.Empty())
	require.True(t, m.Ports[0].Empty())
	require.Equal(t, InvalidInterrupt, m.Interrupts[0])
	require.Equal(t, byte(0), m.RAM[0])
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMachine()
	m.Data.Push(1)
	clone := m.Clone()
	clone.Data.Push(2)

	require.Equal(t, 1, m.Data.Depth())
	require.Equal(t, 2, clone.Data.Depth())
}

func TestMovToRtsAndBack(t *testing.T) {
	m := NewMachine()
	img := []byte{
		encodeOp(FamilyStack, TypeMovToRts, AddrModeStack),
		encodeOp(FamilyStack, TypeMovFromRts, AddrModeStack),
	}
	require.True(t, m.Load(img))
	m.Data.Push(FloatToFix(1.0))

	m.CycleOnce()
	require.True(t, m.Data.Empty())
	require.Equal(t, 1, m.Rts.Depth())

	m.CycleOnce()
	require.True(t, m.Rts.Empty())
	v, ok := m.Data.Peek()
	require.True(t, ok)
	require.Equal(t, FloatToFix(1.0), v)
}

func TestDupRotSwap(t *testing.T) {
	m := NewMachine()
	img := []byte{
		encodeOp(FamilyStack, TypeDup, AddrModeStack),
	}
	require.True(t, m.Load(img))
	m.Data.Push(FloatToFix(5.0))
	m.CycleOnce()
	require.Equal(t, 2, m.Data.Depth())

	m2 := NewMachine()
	img2 := []byte{encodeOp(FamilyStack, TypeSwap, AddrModeStack)}
	require.True(t, m2.Load(img2))
	m2.Data.Push(1)
	m2.Data.Push(2)
	m2.CycleOnce()
	top, _ := m2.Data.Pop()
	bottom, _ := m2.Data.Pop()
	require.Equal(t, int32(1), top)
	require.Equal(t, int32(2), bottom)

	m3 := NewMachine()
	img3 := []byte{encodeOp(FamilyStack, TypeRot, AddrModeStack)}
	require.True(t, m3.Load(img3))
	m3.Data.Push(1)
	m3.Data.Push(2)
	m3.Data.Push(3)
	m3.CycleOnce()
	a, _ := m3.Data.Pop()
	b, _ := m3.Data.Pop()
	c, _ := m3.Data.Pop()
	require.Equal(t, int32(1), a)
	require.Equal(t, int32(3), b)
	require.Equal(t, int32(2), c)
}
