package seqstk

import "encoding/binary"

// validAddr reports whether a resolved address can be used for a 4-byte
// memory access: 0 <= a and a+4 <= RAMSize.
func validAddr(a int32) bool {
	return a >= 0 && a+4 <= int32(RAMSize)
}

// consumeImmediate4 reads the four bytes at PC as a little-endian signed
// word and advances PC by 4. If the four bytes would not fully fit before
// RAMSize, PC is left untouched and ok is false — advancing into or past
// RAMSize only happens through the opcode fetch in CycleOnce, never as a
// side effect of a failed operand read (spec.md invariant 1: 0 <= PC <=
// RAMSize at all times).
func (m *Machine) consumeImmediate4() (int32, bool) {
	pc := m.PC
	if pc < 0 || int64(pc)+4 > int64(RAMSize) {
		return 0, false
	}
	m.PC += 4
	return int32(binary.LittleEndian.Uint32(m.RAM[pc : pc+4])), true
}

// consumeOperand2 reads the two bytes at PC as a little-endian signed
// 16-bit value and advances PC by 2. Same boundary discipline as
// consumeImmediate4: PC is untouched on failure.
func (m *Machine) consumeOperand2() (int16, bool) {
	pc := m.PC
	if pc < 0 || int64(pc)+2 > int64(RAMSize) {
		return 0, false
	}
	m.PC += 2
	return int16(binary.LittleEndian.Uint16(m.RAM[pc : pc+2])), true
}

// readWord reads four bytes at addr as a little-endian signed word. ok is
// false if addr is out of range.
func (m *Machine) readWord(addr int32) (int32, bool) {
	if !validAddr(addr) {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(m.RAM[addr : addr+4])), true
}

// writeWord writes v as four little-endian bytes at addr. It reports false
// and leaves RAM untouched if addr is out of range.
func (m *Machine) writeWord(addr int32, v int32) bool {
	if !validAddr(addr) {
		return false
	}
	binary.LittleEndian.PutUint32(m.RAM[addr:addr+4], uint32(v))
	return true
}

// GetAddr resolves mode to a memory address, consuming operand bytes and/or
// a data-stack value as the mode requires. ok is false if an operand could
// not be consumed (e.g. an immediate that would cross the end of RAM) or if
// the resolved address fails the RAM_SIZE bounds check — in either case any
// stack pop the resolver already performed is not undone.
func (m *Machine) GetAddr(mode AddrMode) (int32, bool) {
	switch mode {
	case AddrModeImmediate:
		raw, ok := m.consumeImmediate4()
		if !ok {
			return 0, false
		}
		addr := raw >> 16
		return addr, validAddr(addr)

	case AddrModeIndexStack:
		base, baseOK := m.consumeOperand2()
		offset, popped := m.Data.Pop()
		if !baseOK || !popped {
			return 0, false
		}
		addr := int32(base) + (offset >> 16)
		return addr, validAddr(addr)

	case AddrModeIndexImmediate:
		offset, offOK := m.consumeOperand2()
		base, popped := m.Data.Pop()
		if !offOK || !popped {
			return 0, false
		}
		addr := (base >> 16) + int32(offset)
		return addr, validAddr(addr)

	case AddrModeStack:
		word, popped := m.Data.Pop()
		if !popped {
			return 0, false
		}
		addr := word >> 16
		return addr, validAddr(addr)

	default:
		return 0, false
	}
}

// GetAddrVal resolves mode to a value. For Immediate and Stack modes the
// operand itself is the value (no second memory fetch); for the indexed
// modes it resolves an address via GetAddr and then reads four bytes from
// memory there.
func (m *Machine) GetAddrVal(mode AddrMode) (int32, bool) {
	switch mode {
	case AddrModeImmediate:
		return m.consumeImmediate4()

	case AddrModeStack:
		word, popped := m.Data.Pop()
		if !popped {
			return 0, false
		}
		return word, true

	case AddrModeIndexStack, AddrModeIndexImmediate:
		addr, ok := m.GetAddr(mode)
		if !ok {
			return 0, false
		}
		return m.readWord(addr)

	default:
		return 0, false
	}
}
