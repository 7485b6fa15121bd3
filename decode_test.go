package seqstk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeOpcodeFamilies(t *testing.T) {
	cases := []struct {
		name string
		b    byte
		want Family
	}{
		{"stack", 0b111_000_00, FamilyStack},
		{"arithmetic", 0b110_000_00, FamilyArithmetic},
		{"bitmanip", 0b101_000_00, FamilyBitManip},
		{"port", 0b100_000_00, FamilyPort},
		{"invalid-000", 0b000_000_00, FamilyInvalid},
		{"invalid-011", 0b011_000_00, FamilyInvalid},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := DecodeOpcode(c.b)
			require.Equal(t, c.want, d.Family)
		})
	}
}

func TestDecodeOpcodeExtractsTypeAndAddrMode(t *testing.T) {
	// family=Stack, type=Push(111), addrmode=Immediate(11)
	d := DecodeOpcode(0b111_111_11)
	require.Equal(t, FamilyStack, d.Family)
	require.Equal(t, TypePush, d.Type)
	require.Equal(t, AddrModeImmediate, d.AddrMode)
}

func TestArithTypeIgnoresLowTypeBit(t *testing.T) {
	// family=Arithmetic, ArithType bits are 4-3; bit 2 and addrmode bits vary
	// but must not affect the decoded arithmetic type.
	d1 := DecodeOpcode(0b110_110_00)
	d2 := DecodeOpcode(0b110_111_11)
	require.Equal(t, TypeAdd, d1.ArithType())
	require.Equal(t, TypeAdd, d2.ArithType())
}

func TestPortIndexUsesLowThreeBits(t *testing.T) {
	// spec.md §8 test scenario: 0b10011000 is Push on port 0.
	d := DecodeOpcode(0b1001_1000)
	require.Equal(t, FamilyPort, d.Family)
	require.Equal(t, 0, d.PortIndex())

	d2 := DecodeOpcode(0b1001_1111)
	require.Equal(t, 7, d2.PortIndex())
}
