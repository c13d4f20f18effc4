// Package mir defines the compiler's mid-level intermediate
// representation: functions, basic blocks, and operations, ported from
// the original compiler's src/mir/operation.cpp (JLang::mir) and
// generalized per spec §3/§4.4.
package mir

import (
	"fmt"

	"jlangc/internal/diagnostics"
	"jlangc/internal/types"
)

// OpKind enumerates every Operation variant, grouped as spec §3 groups
// them.
type OpKind int

const (
	// Literals
	OpLiteralInt OpKind = iota
	OpLiteralFloat
	OpLiteralChar
	OpLiteralString
	OpLiteralBool
	OpLiteralNull

	// Variable/symbol
	OpLocalDeclare
	OpLocalUndeclare
	OpLocalVariable
	OpSymbol

	// Access
	OpArrayIndex
	OpDot
	OpGetMethod

	// Casts/widenings
	OpWidenSigned
	OpWidenUnsigned
	OpWidenFloat

	// Unary
	OpNegate
	OpBitwiseNot
	OpLogicalNot
	OpAddressOf
	OpDereference
	OpSizeofType
	OpMethodGetFunction
	OpMethodGetObject

	// Binary arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo

	// Binary logical
	OpLogicalAnd
	OpLogicalOr

	// Binary bitwise/shift
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpShiftLeft
	OpShiftRight

	// Binary compare
	OpCompareLT
	OpCompareGT
	OpCompareLE
	OpCompareGE
	OpCompareEQ
	OpCompareNE

	// Assignment
	OpAssign

	// Calls
	OpFunctionCall
	OpConstructor

	// Control
	OpJump
	OpJumpConditional
	OpReturn
	OpReturnVoid
)

var opNames = map[OpKind]string{
	OpLiteralInt: "literal-int", OpLiteralFloat: "literal-float",
	OpLiteralChar: "literal-char", OpLiteralString: "literal-string",
	OpLiteralBool: "literal-bool", OpLiteralNull: "literal-null",
	OpLocalDeclare: "declare", OpLocalUndeclare: "undeclare", OpLocalVariable: "load", OpSymbol: "symbol",
	OpArrayIndex: "array-index", OpDot: "dot", OpGetMethod: "get-method",
	OpWidenSigned: "widen-signed", OpWidenUnsigned: "widen-unsigned", OpWidenFloat: "widen-float",
	OpNegate: "negate", OpBitwiseNot: "bitwise-not", OpLogicalNot: "logical-not",
	OpAddressOf: "addressof", OpDereference: "dereference", OpSizeofType: "sizeof",
	OpMethodGetFunction: "method-get-function", OpMethodGetObject: "method-get-object",
	OpAdd: "add", OpSubtract: "subtract", OpMultiply: "multiply", OpDivide: "divide", OpModulo: "modulo",
	OpLogicalAnd: "logical-and", OpLogicalOr: "logical-or",
	OpBitwiseAnd: "bitwise-and", OpBitwiseOr: "bitwise-or", OpBitwiseXor: "bitwise-xor",
	OpShiftLeft: "shift-left", OpShiftRight: "shift-right",
	OpCompareLT: "compare-lt", OpCompareGT: "compare-gt", OpCompareLE: "compare-le",
	OpCompareGE: "compare-ge", OpCompareEQ: "compare-eq", OpCompareNE: "compare-ne",
	OpAssign: "store",
	OpFunctionCall: "function-call", OpConstructor: "constructor",
	OpJump: "jump", OpJumpConditional: "jump-conditional", OpReturn: "return", OpReturnVoid: "return-void",
}

func (k OpKind) String() string {
	if n, ok := opNames[k]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// TmpID is a unique, type-bound temporary handle, spec §3 "Function
// temporary". Once bound to a type at creation, its type never changes.
type TmpID int

// BlockID identifies one basic block within a Function.
type BlockID int

// Operation is one MIR instruction: a uniform header (source reference,
// result temporary, operand temporaries) plus a kind tag and kind-specific
// payload fields. Only the fields relevant to Kind are populated; this
// mirrors the original's header/subclass split but is flattened into one
// struct, which is the idiomatic Go shape for a small fixed sum type
// (see the original's OperationUnary/OperationBinary split in
// src/mir/operation.cpp, collapsed here per spec §3's "a uniform
// header... and a kind tag").
type Operation struct {
	Kind    OpKind
	Ref     diagnostics.SourceReference
	Result  TmpID
	Operands []TmpID

	// Payload, populated per Kind.
	IntValue    uint64
	FloatValue  float64
	CharValue   rune
	StringValue string
	BoolValue   bool

	Name string      // LocalDeclare/LocalVariable/Symbol/Dot/GetMethod name
	Type *types.Type // widening target, sizeof result type (u64; the size is in IntValue), declare type

	JumpTarget   BlockID
	JumpIfTrue   BlockID
	JumpIfFalse  BlockID

	// FunctionCall/Constructor argument temporaries (Operands[0] is the
	// callee/constructor symbol tmp for FunctionCall; Constructor instead
	// uses CalleeSymbol directly since the constructor is resolved
	// statically, not through a first-class function value).
	CallArgs     []TmpID
	CalleeSymbol string
}

// IsTerminator reports whether this operation can end a basic block,
// per the BasicBlock invariant in spec §3.
func (o *Operation) IsTerminator() bool {
	switch o.Kind {
	case OpJump, OpJumpConditional, OpReturn, OpReturnVoid:
		return true
	default:
		return false
	}
}

// Describe renders one line of the textual dump format from spec §6:
// "_<result> = <op-name> ( <operand-temps or literals> )".
func (o *Operation) Describe() string {
	s := fmt.Sprintf("_%d = %s (", int(o.Result), o.Kind)
	for _, operand := range o.Operands {
		s += fmt.Sprintf(" _%d", int(operand))
	}
	if o.Name != "" {
		s += fmt.Sprintf(" %q", o.Name)
	}
	switch o.Kind {
	case OpLiteralInt:
		s += fmt.Sprintf(" %d", o.IntValue)
	case OpLiteralFloat:
		s += fmt.Sprintf(" %g", o.FloatValue)
	case OpJump:
		s += fmt.Sprintf(" BB%d", int(o.JumpTarget))
	case OpJumpConditional:
		s += fmt.Sprintf(" BB%d BB%d", int(o.JumpIfTrue), int(o.JumpIfFalse))
	}
	s += " )"
	return s
}
