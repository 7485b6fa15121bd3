package seqstk

// portPushMarker is the fixed 2-bit pattern (bits 4-3 of the instruction
// byte) that identifies the one defined port operation, Push. Unlike the
// other three families, the port family does not have a clean 3-bit type
// field: its low 3 bits (the type field's LSB plus both addressing-mode
// bits) are entirely given over to the port index, per spec.md §4.8/§9. A
// future port opcode would need its own, non-overlapping bit allocation.
const portPushMarker = 0b11

// dispatchPort handles the Port family (spec.md §4.8). d.Type and
// d.AddrMode are not meaningful here — the port index is read directly
// from the raw instruction byte instead.
func (m *Machine) dispatchPort(d DecodedOp) {
	marker := (d.Raw >> 3) & 0b11
	if marker != portPushMarker {
		return
	}

	idx := d.PortIndex()
	v, ok := m.Data.Pop()
	if !ok {
		return
	}
	m.Ports[idx].Push(v)
}
