package seqstk

// dispatchArithmetic handles the Arithmetic family (spec.md §4.6). All four
// operations pop a (the top of stack), then b, then push f(a, b); if fewer
// than two operands are present the operation is a no-op.
//
// This deliberately does not replicate the "push it back" single-operand
// shortcut the source this spec was distilled from only applied to Add (and
// then, apparently by accident, inherited for Sub/Mul/Div too, alongside a
// test asserting the resulting c = a + b bug for Sub). All four ops use the
// same uniform rule.
func (m *Machine) dispatchArithmetic(d DecodedOp) {
	switch d.ArithType() {
	case TypeAdd:
		m.popBinaryPush(func(a, b Fixed) Fixed { return a + b })
	case TypeSub:
		m.popBinaryPush(func(a, b Fixed) Fixed { return a - b })
	case TypeMul:
		m.popBinaryPush(FpMul)
	case TypeDiv:
		m.popBinaryPush(FpDiv)
	}
}

// popBinaryPush pops a then b and pushes f(a, b). It is a no-op if the data
// stack holds fewer than two values.
func (m *Machine) popBinaryPush(f func(a, b Fixed) Fixed) {
	if m.Data.Depth() < 2 {
		return
	}
	a, _ := m.Data.Pop()
	b, _ := m.Data.Pop()
	m.Data.Push(f(a, b))
}
