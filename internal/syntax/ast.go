// Package syntax defines the tagged syntax tree consumed by lowering,
// and a recursive-descent parser that builds it while populating a
// nsresolve.Context namespace tree, since the grammar is
// context-sensitive (spec §6: "the parser must resolve type vs
// namespace vs identifier tokens"). Structure and naming follow the
// teacher's internal/parser/ast.go (Expr visitor pattern); statements
// are a plain tagged sum type since only one consumer (lowering) walks
// them, unlike expressions which the teacher's ecosystem visits from
// several directions.
package syntax

import "jlangc/internal/diagnostics"

// Expr is any expression node. Accept dispatches to a typed visitor
// method, following the teacher's ast.go pattern.
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Pos() diagnostics.SourceReference
}

type ExprVisitor interface {
	VisitIdentifier(*Identifier) interface{}
	VisitIntLiteral(*IntLiteral) interface{}
	VisitFloatLiteral(*FloatLiteral) interface{}
	VisitCharLiteral(*CharLiteral) interface{}
	VisitStringLiteral(*StringLiteral) interface{}
	VisitBoolLiteral(*BoolLiteral) interface{}
	VisitNullLiteral(*NullLiteral) interface{}
	VisitArrayIndex(*ArrayIndex) interface{}
	VisitDot(*Dot) interface{}
	VisitArrow(*Arrow) interface{}
	VisitCall(*Call) interface{}
	VisitUnary(*Unary) interface{}
	VisitIncDec(*IncDec) interface{}
	VisitSizeof(*Sizeof) interface{}
	VisitBinary(*Binary) interface{}
	VisitLogical(*Logical) interface{}
	VisitAssign(*Assign) interface{}
	VisitCompoundAssign(*CompoundAssign) interface{}
}

type baseExpr struct {
	Ref diagnostics.SourceReference
}

func (b baseExpr) Pos() diagnostics.SourceReference { return b.Ref }

// Identifier is a bare name reference: a variable, a namespace-qualified
// symbol, or (inside a method) an implicit member access.
type Identifier struct {
	baseExpr
	Name string
}

func (n *Identifier) Accept(v ExprVisitor) interface{} { return v.VisitIdentifier(n) }

type IntLiteral struct {
	baseExpr
	Text string // original lexeme, radix prefix/suffix intact
}

func (n *IntLiteral) Accept(v ExprVisitor) interface{} { return v.VisitIntLiteral(n) }

type FloatLiteral struct {
	baseExpr
	Text string
}

func (n *FloatLiteral) Accept(v ExprVisitor) interface{} { return v.VisitFloatLiteral(n) }

type CharLiteral struct {
	baseExpr
	Value rune
}

func (n *CharLiteral) Accept(v ExprVisitor) interface{} { return v.VisitCharLiteral(n) }

type StringLiteral struct {
	baseExpr
	Value string
}

func (n *StringLiteral) Accept(v ExprVisitor) interface{} { return v.VisitStringLiteral(n) }

type BoolLiteral struct {
	baseExpr
	Value bool
}

func (n *BoolLiteral) Accept(v ExprVisitor) interface{} { return v.VisitBoolLiteral(n) }

type NullLiteral struct {
	baseExpr
}

func (n *NullLiteral) Accept(v ExprVisitor) interface{} { return v.VisitNullLiteral(n) }

// ArrayIndex is `object[index]`.
type ArrayIndex struct {
	baseExpr
	Object Expr
	Index  Expr
}

func (n *ArrayIndex) Accept(v ExprVisitor) interface{} { return v.VisitArrayIndex(n) }

// Dot is `object.member` (member or method access on a composite value).
type Dot struct {
	baseExpr
	Object Expr
	Member string
}

func (n *Dot) Accept(v ExprVisitor) interface{} { return v.VisitDot(n) }

// Arrow is `object->member`, sugar for `(*object).member`, legal only in
// unsafe context.
type Arrow struct {
	baseExpr
	Object Expr
	Member string
}

func (n *Arrow) Accept(v ExprVisitor) interface{} { return v.VisitArrow(n) }

// Call is `callee(args...)`.
type Call struct {
	baseExpr
	Callee Expr
	Args   []Expr
}

func (n *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(n) }

// UnaryOp enumerates prefix unary operators.
type UnaryOp int

const (
	UnaryNegate UnaryOp = iota
	UnaryBitwiseNot
	UnaryLogicalNot
	UnaryAddressOf
	UnaryDereference
)

type Unary struct {
	baseExpr
	Op      UnaryOp
	Operand Expr
}

func (n *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(n) }

// IncDec is `++x`/`--x`/`x++`/`x--`.
type IncDec struct {
	baseExpr
	Operand   Expr
	Increment bool
	Prefix    bool
}

func (n *IncDec) Accept(v ExprVisitor) interface{} { return v.VisitIncDec(n) }

// Sizeof is `sizeof(TypeSpecifier)`.
type Sizeof struct {
	baseExpr
	Type *TypeSpecifier
}

func (n *Sizeof) Accept(v ExprVisitor) interface{} { return v.VisitSizeof(n) }

// BinaryOp enumerates infix arithmetic/bitwise/compare operators.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSubtract
	BinMultiply
	BinDivide
	BinModulo
	BinBitwiseAnd
	BinBitwiseOr
	BinBitwiseXor
	BinShiftLeft
	BinShiftRight
	BinCompareLT
	BinCompareGT
	BinCompareLE
	BinCompareGE
	BinCompareEQ
	BinCompareNE
)

type Binary struct {
	baseExpr
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(n) }

// LogicalOp is && or ||, kept distinct from Binary because it lowers to
// a control-flow diamond rather than a single op.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type Logical struct {
	baseExpr
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (n *Logical) Accept(v ExprVisitor) interface{} { return v.VisitLogical(n) }

// Assign is `lhs = rhs`.
type Assign struct {
	baseExpr
	Target Expr
	Value  Expr
}

func (n *Assign) Accept(v ExprVisitor) interface{} { return v.VisitAssign(n) }

// CompoundAssign is `lhs += rhs` and its siblings, lowered as the
// matching BinaryOp followed by Assign.
type CompoundAssign struct {
	baseExpr
	Target Expr
	Op     BinaryOp
	Value  Expr
}

func (n *CompoundAssign) Accept(v ExprVisitor) interface{} { return v.VisitCompoundAssign(n) }

// TypeSpecifier is the as-written form of a type: a qualified name plus
// pointer/reference/array decorations, left for the type resolver
// collaborator to turn into a *types.Type.
type TypeSpecifier struct {
	Ref         diagnostics.SourceReference
	Name        string // qualified base name, e.g. "u32" or "Foo::Bar"
	PointerDepth int
	IsReference bool
	ArrayLen    uint64
	IsArray     bool
}
