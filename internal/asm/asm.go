// Package asm is a small two-pass textual assembler for seqstk images. It
// exists for test fixtures and the CLI's "asm" dev-tool subcommand, not as
// part of the machine itself — spec.md scopes a real loader/toolchain out
// of the core (see SPEC_FULL.md's AMBIENT STACK section).
package asm

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"seqstk"
)

// mnemonic describes how one assembly mnemonic maps onto an opcode byte
// and how many operand bytes follow it.
type mnemonic struct {
	family  seqstk.Family
	typ     seqstk.OpType
	argKind argKind
}

type argKind int

const (
	argNone argKind = iota
	argImmediate       // 4-byte Q16.16 literal or label address
	argIndexStack      // 2-byte base, top-of-stack offset
	argIndexImmediate  // 2-byte offset, top-of-stack base
)

var stackMnemonics = map[string]mnemonic{
	"push.imm":  {seqstk.FamilyStack, seqstk.TypePush, argImmediate},
	"push.stk":  {seqstk.FamilyStack, seqstk.TypePush, argNone},
	"push.idxs": {seqstk.FamilyStack, seqstk.TypePush, argIndexStack},
	"push.idxi": {seqstk.FamilyStack, seqstk.TypePush, argIndexImmediate},

	"store.imm":  {seqstk.FamilyStack, seqstk.TypeStore, argImmediate},
	"store.stk":  {seqstk.FamilyStack, seqstk.TypeStore, argNone},
	"store.idxs": {seqstk.FamilyStack, seqstk.TypeStore, argIndexStack},
	"store.idxi": {seqstk.FamilyStack, seqstk.TypeStore, argIndexImmediate},

	"pop":     {seqstk.FamilyStack, seqstk.TypePop, argNone},
	"dup":     {seqstk.FamilyStack, seqstk.TypeDup, argNone},
	"rot":     {seqstk.FamilyStack, seqstk.TypeRot, argNone},
	"swap":    {seqstk.FamilyStack, seqstk.TypeSwap, argNone},
	"tors":    {seqstk.FamilyStack, seqstk.TypeMovToRts, argNone},
	"fromrts": {seqstk.FamilyStack, seqstk.TypeMovFromRts, argNone},

	"add": {seqstk.FamilyArithmetic, seqstk.TypeAdd, argNone},
	"sub": {seqstk.FamilyArithmetic, seqstk.TypeSub, argNone},
	"mul": {seqstk.FamilyArithmetic, seqstk.TypeMul, argNone},
	"div": {seqstk.FamilyArithmetic, seqstk.TypeDiv, argNone},

	"shl":  {seqstk.FamilyBitManip, seqstk.TypeShl, argNone},
	"shr":  {seqstk.FamilyBitManip, seqstk.TypeShr, argNone},
	"rotl": {seqstk.FamilyBitManip, seqstk.TypeRotl, argNone},
	"rotr": {seqstk.FamilyBitManip, seqstk.TypeRotr, argNone},
	"and":  {seqstk.FamilyBitManip, seqstk.TypeAnd, argNone},
	"or":   {seqstk.FamilyBitManip, seqstk.TypeOr, argNone},
	"xor":  {seqstk.FamilyBitManip, seqstk.TypeXor, argNone},
	"not":  {seqstk.FamilyBitManip, seqstk.TypeNot, argNone},
}

// item is one preprocessed line: either an instruction, a raw-byte
// directive, or a word (4-byte Q16.16) directive.
type item struct {
	kind    itemKind
	op      mnemonic
	operand string // raw operand text, resolved against labels in pass two
	size    int
}

type itemKind int

const (
	kindInstr itemKind = iota
	kindByte
	kindWord
)

// Assemble compiles source into a byte image suitable for Machine.Load.
// Lines are mnemonic plus optional operand; ";" starts a line comment;
// "label:" defines a label whose value is its byte offset in the image.
// push.idxs/push.idxi/store.idxs/store.idxi take a signed 16-bit literal
// operand (the instruction's own base/offset immediate, not the stack
// operand). push.imm/store.imm take either a floating-point literal (value
// to push) or a bare label/integer (treated as a raw Q16.16 address, i.e.
// shifted left 16 the way GetAddr expects).
func Assemble(source string) ([]byte, error) {
	labels := map[string]int{}
	var items []item

	offset := 0
	for lineNo, raw := range strings.Split(source, "\n") {
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSuffix(line, ":")
			labels[name] = offset
			continue
		}

		fields := strings.Fields(line)
		name := fields[0]
		var operand string
		if len(fields) > 1 {
			operand = fields[1]
		}

		switch name {
		case "byte":
			items = append(items, item{kind: kindByte, operand: operand, size: 1})
			offset++
		case "word":
			items = append(items, item{kind: kindWord, operand: operand, size: 4})
			offset += 4
		default:
			m, ok := stackMnemonics[name]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown mnemonic %q", lineNo+1, name)
			}
			size := 1 + operandSize(m.argKind)
			items = append(items, item{kind: kindInstr, op: m, operand: operand, size: size})
			offset += size
		}
	}

	out := make([]byte, 0, offset)
	for _, it := range items {
		switch it.kind {
		case kindByte:
			n, err := strconv.ParseInt(it.operand, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("byte directive: %w", err)
			}
			out = append(out, byte(n))

		case kindWord:
			f, err := strconv.ParseFloat(it.operand, 64)
			if err != nil {
				return nil, fmt.Errorf("word directive: %w", err)
			}
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], uint32(seqstk.FloatToFix(f)))
			out = append(out, buf[:]...)

		case kindInstr:
			mode, operandBytes, err := resolveOperand(it, labels)
			if err != nil {
				return nil, err
			}
			typeShift := 2
			if it.op.family == seqstk.FamilyArithmetic {
				typeShift = 3 // arithmetic type codes occupy bits 4-3
			}
			opcode := byte(it.op.family)<<5 | byte(it.op.typ)<<typeShift | byte(mode)
			out = append(out, opcode)
			out = append(out, operandBytes...)
		}
	}
	return out, nil
}

func operandSize(k argKind) int {
	switch k {
	case argImmediate:
		return 4
	case argIndexStack, argIndexImmediate:
		return 2
	default:
		return 0
	}
}

func resolveOperand(it item, labels map[string]int) (seqstk.AddrMode, []byte, error) {
	switch it.op.argKind {
	case argNone:
		return seqstk.AddrModeStack, nil, nil

	case argImmediate:
		var word int32
		if addr, ok := labels[it.operand]; ok {
			word = int32(addr) << 16
		} else if f, err := strconv.ParseFloat(it.operand, 64); err == nil {
			word = seqstk.FloatToFix(f)
		} else {
			return 0, nil, fmt.Errorf("unresolved immediate operand %q", it.operand)
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(word))
		return seqstk.AddrModeImmediate, buf, nil

	case argIndexStack, argIndexImmediate:
		n, err := strconv.ParseInt(it.operand, 0, 16)
		if err != nil {
			return 0, nil, fmt.Errorf("indexed operand %q: %w", it.operand, err)
		}
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(int16(n)))
		mode := seqstk.AddrModeIndexStack
		if it.op.argKind == argIndexImmediate {
			mode = seqstk.AddrModeIndexImmediate
		}
		return mode, buf, nil

	default:
		return 0, nil, fmt.Errorf("unhandled operand kind")
	}
}

func stripComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		return line[:i]
	}
	return line
}

// PortPush encodes the one defined port opcode for port index idx (0-7).
// It is exported separately from the mnemonic table because the port
// family does not fit the family/type/addrmode split the other three
// families use (spec.md §4.8/§9).
func PortPush(idx int) (byte, error) {
	if idx < 0 || idx > 7 {
		return 0, fmt.Errorf("port index %d out of range", idx)
	}
	return byte(seqstk.FamilyPort)<<5 | 0b11<<3 | byte(idx), nil
}
