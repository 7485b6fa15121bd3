package seqstk

// dispatchBit handles the Bit-manipulation family (spec.md §4.7). These
// operate on raw 32-bit patterns, not the fixed-point interpretation,
// except for the shift/rotate amount itself, which is popped as a
// fixed-point word and truncated to its integer part.
func (m *Machine) dispatchBit(d DecodedOp) {
	switch d.Type {
	case TypeShl:
		m.opShift(func(val int32, n uint32) int32 { return val << n })
	case TypeShr:
		m.opShift(func(val int32, n uint32) int32 { return val >> n })
	case TypeRotl:
		m.opRotate(rotl32)
	case TypeRotr:
		m.opRotate(rotr32)
	case TypeAnd:
		m.popBinaryRaw(func(a, b int32) int32 { return a & b })
	case TypeOr:
		m.popBinaryRaw(func(a, b int32) int32 { return a | b })
	case TypeXor:
		m.popBinaryRaw(func(a, b int32) int32 { return a ^ b })
	case TypeNot:
		if v, ok := m.Data.Pop(); ok {
			m.Data.Push(^v)
		}
	}
}

// popBinaryRaw pops a then b and pushes f(a, b), treating both as raw bit
// patterns. No-op if fewer than two operands are present.
func (m *Machine) popBinaryRaw(f func(a, b int32) int32) {
	if m.Data.Depth() < 2 {
		return
	}
	a, _ := m.Data.Pop()
	b, _ := m.Data.Pop()
	m.Data.Push(f(a, b))
}

// opShift pops the shift amount (top, a fixed-point word — only its integer
// part is used) then the value to shift, and pushes shift(value, amount). A
// negative amount is a no-op: the operands are consumed but nothing is
// pushed back, consistent with how every other absorbed failure in this
// machine behaves.
func (m *Machine) opShift(shift func(val int32, n uint32) int32) {
	if m.Data.Depth() < 2 {
		return
	}
	amountWord, _ := m.Data.Pop()
	val, _ := m.Data.Pop()

	n := amountWord >> 16
	if n < 0 {
		return
	}
	m.Data.Push(shift(val, uint32(n)))
}

// opRotate pops the rotation amount (top) then the value, reduces the
// amount modulo 32 (spec.md §9's recommendation for out-of-range counts,
// applied here to negative counts as well), and pushes the rotated value.
func (m *Machine) opRotate(rotate func(val int32, n uint32) int32) {
	if m.Data.Depth() < 2 {
		return
	}
	amountWord, _ := m.Data.Pop()
	val, _ := m.Data.Pop()

	n := int32(amountWord >> 16)
	n = ((n % 32) + 32) % 32
	m.Data.Push(rotate(val, uint32(n)))
}

// rotl32 and rotr32 assume n is already reduced to [0, 31]; Go's shift
// operators place no upper limit on the count, so a shift of exactly 32
// (the n == 0 case, via 32-n) correctly yields 0 and the OR degenerates to
// the unshifted value.
func rotl32(val int32, n uint32) int32 {
	u := uint32(val)
	return int32(u<<n | u>>(32-n))
}

func rotr32(val int32, n uint32) int32 {
	u := uint32(val)
	return int32(u>>n | u<<(32-n))
}
