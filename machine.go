package seqstk

// Core size constants, fixed for the lifetime of any Machine (spec.md §6:
// dynamic memory growth is a non-goal).
const (
	RAMSize         = 32768
	NumInterrupts   = 8
	NumPorts        = 8
	InvalidInterrupt int16 = -1
)

// Machine is the execution engine: a fixed-size linear memory, a program
// counter, two evaluation stacks, an interrupt vector table and a bank of
// port stacks. It is a value type in the sense that Clone produces a deep,
// independent copy; the zero value is not ready for use, construct with
// NewMachine.
type Machine struct {
	RAM [RAMSize]byte
	PC  int32

	Data *Stack // primary evaluation stack
	Rts  *Stack // call/return auxiliary stack, target of MovToRts/MovFromRts

	Interrupts [NumInterrupts]int16
	Ports      [NumPorts]*Stack
}

// NewMachine constructs a machine in its well-defined zero state: RAM
// zeroed, PC at 0, both stacks empty, every interrupt slot invalid, every
// port empty.
func NewMachine() *Machine {
	m := &Machine{
		Data: NewStack(),
		Rts:  NewStack(),
	}
	for i := range m.Interrupts {
		m.Interrupts[i] = InvalidInterrupt
	}
	for i := range m.Ports {
		m.Ports[i] = NewStack()
	}
	return m
}

// Reset returns the machine to its post-construction zero state. Load does
// not do this implicitly (spec.md §9 flags that as ambiguous upstream); a
// host that wants to re-run an image from scratch calls Reset explicitly.
func (m *Machine) Reset() {
	m.RAM = [RAMSize]byte{}
	m.PC = 0
	m.Data.Clear()
	m.Rts.Clear()
	for i := range m.Interrupts {
		m.Interrupts[i] = InvalidInterrupt
	}
	for i := range m.Ports {
		m.Ports[i].Clear()
	}
}

// Load copies bytes into the low portion of RAM. It fails (returns false)
// and leaves RAM untouched if the image is larger than RAMSize. On success
// any RAM beyond len(bytes) is left as it was; PC and both stacks are left
// untouched.
func (m *Machine) Load(bytes []byte) bool {
	if len(bytes) > RAMSize {
		return false
	}
	copy(m.RAM[:], bytes)
	return true
}

// CycleOnce fetches and dispatches a single instruction. If PC is already
// at or past RAMSize it is a no-op. Every decode failure, resolver
// failure, stack underflow, stack overflow and divide-by-zero is absorbed
// silently per spec.md §7 — CycleOnce never panics and never returns an
// error.
func (m *Machine) CycleOnce() {
	if m.PC < 0 || m.PC >= RAMSize {
		return
	}

	opcode := m.RAM[m.PC]
	m.PC++

	d := DecodeOpcode(opcode)
	switch d.Family {
	case FamilyStack:
		m.dispatchStack(d)
	case FamilyArithmetic:
		m.dispatchArithmetic(d)
	case FamilyBitManip:
		m.dispatchBit(d)
	case FamilyPort:
		m.dispatchPort(d)
	default:
		// Unrecognized family: PC has already advanced past the opcode
		// byte; no operand bytes are consumed.
	}
}

// StackDepth reports the current depth of the data stack, for host-side
// introspection and metrics.
func (m *Machine) StackDepth() int {
	return m.Data.Depth()
}

// RtsDepth reports the current depth of the call/return stack.
func (m *Machine) RtsDepth() int {
	return m.Rts.Depth()
}

// PortDepth reports the current depth of port i's stack. It panics if i is
// out of [0, NumPorts) — a programming error in the host, not a condition
// the machine is designed to absorb silently (unlike opcode execution,
// this is not reachable from an untrusted instruction stream).
func (m *Machine) PortDepth(i int) int {
	return m.Ports[i].Depth()
}

// ReadWord reads the four-byte word at addr, for host-side inspection of
// RAM outside of instruction execution. ok is false if addr fails the
// RAM_SIZE bounds check.
func (m *Machine) ReadWord(addr int32) (int32, bool) {
	return m.readWord(addr)
}

// PeekPort returns the top value of port i's stack without removing it.
func (m *Machine) PeekPort(i int) (int32, bool) {
	return m.Ports[i].Peek()
}

// PopPort removes and returns the top value of port i's stack. This is the
// host's read side of the port abstraction — instructions only ever push.
func (m *Machine) PopPort(i int) (int32, bool) {
	return m.Ports[i].Pop()
}

// Clone returns a deep, independent copy of the machine: a structural copy
// of RAM, both stacks and every port, not an aliasing share.
func (m *Machine) Clone() *Machine {
	clone := &Machine{
		RAM:        m.RAM,
		PC:         m.PC,
		Data:       m.Data.Clone(),
		Rts:        m.Rts.Clone(),
		Interrupts: m.Interrupts,
	}
	for i := range m.Ports {
		clone.Ports[i] = m.Ports[i].Clone()
	}
	return clone
}
