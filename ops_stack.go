package seqstk

// dispatchStack handles the Stack family (spec.md §4.5). Push and Store use
// the addressing-mode bits to pick an operand source; every other type
// ignores them (canonical encodings use addressing mode 00).
func (m *Machine) dispatchStack(d DecodedOp) {
	switch d.Type {
	case TypePush:
		m.opPush(d.AddrMode)
	case TypeStore:
		m.opStore(d.AddrMode)
	case TypePop:
		m.Data.Pop()
	case TypeDup:
		m.opDup()
	case TypeRot:
		m.opRot()
	case TypeSwap:
		m.opSwap()
	case TypeMovToRts:
		if v, ok := m.Data.Pop(); ok {
			m.Rts.Push(v)
		}
	case TypeMovFromRts:
		if v, ok := m.Rts.Pop(); ok {
			m.Data.Push(v)
		}
	}
}

// opPush implements the Push type. The Stack addressing mode is special: the
// popped word is itself an address, and four bytes are read from memory
// there and pushed — it is not treated as the literal push value the way
// GetAddrVal would for any other operation using Stack mode.
func (m *Machine) opPush(mode AddrMode) {
	if mode == AddrModeStack {
		addr, ok := m.GetAddr(AddrModeStack)
		if !ok {
			return
		}
		val, ok := m.readWord(addr)
		if !ok {
			return
		}
		m.Data.Push(val)
		return
	}

	val, ok := m.GetAddrVal(mode)
	if !ok {
		return
	}
	m.Data.Push(val)
}

// opStore implements the Store type: resolve the destination address, then
// pop the value to write. Address resolution runs first so that, for the
// indexed and Stack addressing modes, the address operand sits above the
// value operand on the data stack.
func (m *Machine) opStore(mode AddrMode) {
	addr, ok := m.GetAddr(mode)
	if !ok {
		return
	}
	val, popped := m.Data.Pop()
	if !popped {
		return
	}
	m.writeWord(addr, val)
}

func (m *Machine) opDup() {
	v, ok := m.Data.Peek()
	if !ok {
		return
	}
	m.Data.Push(v)
}

// opRot rotates the top three stack values: (..., a, b, c) -> (..., b, c, a).
// Leaves the stack unchanged if fewer than three values are present.
func (m *Machine) opRot() {
	if m.Data.Depth() < 3 {
		return
	}
	c, _ := m.Data.Pop()
	b, _ := m.Data.Pop()
	a, _ := m.Data.Pop()
	m.Data.Push(b)
	m.Data.Push(c)
	m.Data.Push(a)
}

// opSwap exchanges the top two stack values. Leaves the stack unchanged if
// fewer than two are present.
func (m *Machine) opSwap() {
	if m.Data.Depth() < 2 {
		return
	}
	y, _ := m.Data.Pop()
	x, _ := m.Data.Pop()
	m.Data.Push(y)
	m.Data.Push(x)
}
