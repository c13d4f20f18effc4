package syntax

import "jlangc/internal/diagnostics"

// Stmt is any statement node. Unlike Expr, statements are consumed from
// exactly one direction (lowering), so a tagged sum type plus type
// switch is the idiomatic shape rather than a second visitor interface.
type Stmt interface {
	stmtNode()
	Pos() diagnostics.SourceReference
}

type baseStmt struct {
	Ref diagnostics.SourceReference
}

func (baseStmt) stmtNode()                           {}
func (b baseStmt) Pos() diagnostics.SourceReference { return b.Ref }

// VarDecl is `Type name;`, `Type name = expr;`, or the constructor form
// `Class name(args...);`.
type VarDecl struct {
	baseStmt
	Name        string
	Type        *TypeSpecifier
	Init        Expr   // non-nil for the `= expr` form
	CtorArgs    []Expr // constructor-call form's arguments (nil when there are none)
	IsCtorForm  bool
}

// ExprStmt wraps a bare expression used for its side effects (a call,
// an assignment, an increment).
type ExprStmt struct {
	baseStmt
	X Expr
}

// Block is `{ stmts... }`, an independent lexical scope.
type Block struct {
	baseStmt
	Stmts []Stmt
}

// If is `if (cond) then [else elseBranch]`. In an else-if chain, Else
// holds the nested If directly.
type If struct {
	baseStmt
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

// While is `while (cond) body`.
type While struct {
	baseStmt
	Cond Expr
	Body Stmt
}

// For is `for ([init]; [cond]; [post]) body`. Init may be a VarDecl or
// an ExprStmt; either may be nil.
type For struct {
	baseStmt
	Init Stmt
	Cond Expr
	Post Expr
	Body Stmt
}

// SwitchCase is one `case expr: stmts...` or, when Expr is nil, the
// `default: stmts...` arm, which must be last.
type SwitchCase struct {
	Ref       diagnostics.SourceReference
	Expr      Expr
	IsDefault bool
	Body      []Stmt
}

// Switch is `switch (subject) { case ...: ... default: ... }`.
type Switch struct {
	baseStmt
	Subject Expr
	Cases   []SwitchCase
}

// Break is `break;`.
type Break struct {
	baseStmt
}

// Continue is `continue;`.
type Continue struct {
	baseStmt
}

// Label is `name:` — marks a jump target; may appear before any
// statement, or standalone before `}`.
type Label struct {
	baseStmt
	Name string
}

// Goto is `goto name;`.
type Goto struct {
	baseStmt
	Label string
}

// Return is `return;` or `return expr;`.
type Return struct {
	baseStmt
	Value Expr // nil for bare return
}

// Param is one function parameter as written in a declaration or
// definition.
type Param struct {
	Name    string
	Type    *TypeSpecifier
	NameRef diagnostics.SourceReference
}

// FunctionDecl is a forward declaration: `[unsafe] RetType name(params);`
// with no body.
type FunctionDecl struct {
	Ref        diagnostics.SourceReference
	Name       string
	ReturnType *TypeSpecifier
	Params     []Param
	IsUnsafe   bool
}

// FunctionDef is a function or method definition with a body.
type FunctionDef struct {
	Ref        diagnostics.SourceReference
	Name       string
	ReturnType *TypeSpecifier
	Params     []Param
	IsUnsafe   bool
	Body       *Block
}

// ClassField is one data member of a class body.
type ClassField struct {
	Name       string
	Type       *TypeSpecifier
	Visibility VisibilityTag
	Ref        diagnostics.SourceReference
}

// VisibilityTag mirrors nsresolve.Visibility at the syntax-tree level,
// keeping this package free of a dependency on nsresolve's internals.
type VisibilityTag int

const (
	VisPublic VisibilityTag = iota
	VisProtected
	VisPrivate
)

// ClassDecl is `class Name { fields...; methods... }`.
type ClassDecl struct {
	Ref        diagnostics.SourceReference
	Name       string
	Visibility VisibilityTag
	Fields     []ClassField
	Methods    []*FunctionDef
	MethodDecls []*FunctionDecl
}

// NamespaceDecl is `namespace Name { decls... }`.
type NamespaceDecl struct {
	Ref   diagnostics.SourceReference
	Name  string
	Decls []TopLevel
}

// UsingDecl is `using [Alias =] Target;`.
type UsingDecl struct {
	Ref    diagnostics.SourceReference
	Alias  string // empty for an anonymous (flattening) using
	Target string
}

// TopLevel is anything that can appear at namespace scope.
type TopLevel interface {
	topLevelNode()
}

func (*NamespaceDecl) topLevelNode() {}
func (*ClassDecl) topLevelNode()     {}
func (*FunctionDecl) topLevelNode()  {}
func (*FunctionDef) topLevelNode()   {}
func (*UsingDecl) topLevelNode()     {}

// File is one parsed translation unit.
type File struct {
	Decls []TopLevel
}
