package seqstk

// Family identifies which of the four opcode families an instruction byte
// belongs to (bits 7-5).
type Family byte

const (
	FamilyPort       Family = 0b100
	FamilyBitManip   Family = 0b101
	FamilyArithmetic Family = 0b110
	FamilyStack      Family = 0b111
	FamilyInvalid    Family = 0xFF
)

// OpType identifies the operation within a family (bits 4-2, or bits 4-3
// for the arithmetic family, which only uses two type bits).
type OpType byte

// AddrMode identifies the addressing mode used to resolve an operand
// (bits 1-0). In the port family these bits instead select a port index;
// see PortIndex.
type AddrMode byte

const (
	AddrModeStack          AddrMode = 0b00
	AddrModeIndexImmediate AddrMode = 0b01
	AddrModeIndexStack     AddrMode = 0b10
	AddrModeImmediate      AddrMode = 0b11
)

const (
	familyMask   byte = 0b111_000_00
	familyShift       = 5
	typeMask     byte = 0b000_111_00
	typeShift         = 2
	addrModeMask byte = 0b0000_0011
)

// DecodedOp is the result of splitting an instruction byte into its three
// bit-fields. Family is FamilyInvalid when the top three bits don't match
// one of the four defined families; dispatch treats that as a no-op.
type DecodedOp struct {
	Family   Family
	Type     OpType
	AddrMode AddrMode
	Raw      byte
}

// DecodeOpcode splits an instruction byte into family, type and addressing
// mode. An unrecognized family yields FamilyInvalid; type and addressing
// mode are always extracted (the dispatcher decides whether they are
// meaningful for that family).
func DecodeOpcode(b byte) DecodedOp {
	d := DecodedOp{
		Type:     OpType((b & typeMask) >> typeShift),
		AddrMode: AddrMode(b & addrModeMask),
		Raw:      b,
	}

	switch Family((b & familyMask) >> familyShift) {
	case FamilyPort:
		d.Family = FamilyPort
	case FamilyBitManip:
		d.Family = FamilyBitManip
	case FamilyArithmetic:
		d.Family = FamilyArithmetic
	case FamilyStack:
		d.Family = FamilyStack
	default:
		d.Family = FamilyInvalid
	}

	return d
}

// PortIndex returns the port index encoded in the low three bits of a port
// family instruction byte. Port ops reuse the addressing-mode field's bit
// positions as an index rather than an addressing mode.
func (d DecodedOp) PortIndex() int {
	return int(d.Raw & 0b111)
}

// ArithType extracts the two-bit arithmetic operation type (bits 4-3); the
// lowest type bit is unused by the arithmetic family.
func (d DecodedOp) ArithType() OpType {
	return OpType(d.Raw>>3) & 0b11
}

// Stack family type codes (bits 4-2).
const (
	TypePush        OpType = 0b111
	TypeStore       OpType = 0b000
	TypePop         OpType = 0b110
	TypeDup         OpType = 0b101
	TypeRot         OpType = 0b100
	TypeSwap        OpType = 0b011
	TypeMovToRts    OpType = 0b010
	TypeMovFromRts  OpType = 0b001
)

// Arithmetic family type codes (bits 4-3, via ArithType).
const (
	TypeAdd OpType = 0b11
	TypeSub OpType = 0b10
	TypeMul OpType = 0b01
	TypeDiv OpType = 0b00
)

// Bit-manipulation family type codes (bits 4-2).
const (
	TypeShl  OpType = 0b111
	TypeShr  OpType = 0b110
	TypeRotl OpType = 0b101
	TypeRotr OpType = 0b100
	TypeAnd  OpType = 0b011
	TypeOr   OpType = 0b010
	TypeXor  OpType = 0b001
	TypeNot  OpType = 0b000
)

// Port family type codes. Only Push is defined. The port dispatcher
// recognises Push by bits 4-3 alone (portPushMarker); bit 2 is the high bit
// of the port index, so TypePortPush is the bits 4-2 value only for ports
// 0-3 (ports 4-7 carry 0b111 there).
const (
	TypePortPush OpType = 0b110
)
