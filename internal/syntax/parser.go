package syntax

import (
	"fmt"

	"jlangc/internal/diagnostics"
	"jlangc/internal/lexer"
	"jlangc/internal/nsresolve"
)

// precedence gives the binding power of each binary operator token,
// following the teacher's parser.go precedence-table idiom but extended
// for the bitwise/shift operators this grammar adds.
var precedence = map[lexer.TokenType]int{
	lexer.TokenOrOr:        1,
	lexer.TokenAndAnd:      2,
	lexer.TokenPipe:        3,
	lexer.TokenCaret:       4,
	lexer.TokenAmp:         5,
	lexer.TokenDoubleEqual: 6,
	lexer.TokenNotEqual:    6,
	lexer.TokenLT:          7,
	lexer.TokenGT:          7,
	lexer.TokenLE:          7,
	lexer.TokenGE:          7,
	lexer.TokenShl:         8,
	lexer.TokenShr:         8,
	lexer.TokenPlus:        9,
	lexer.TokenMinus:       9,
	lexer.TokenStar:        10,
	lexer.TokenSlash:       10,
	lexer.TokenPercent:     10,
}

var compoundAssignOps = map[lexer.TokenType]BinaryOp{
	lexer.TokenPlusEq:    BinAdd,
	lexer.TokenMinusEq:   BinSubtract,
	lexer.TokenStarEq:    BinMultiply,
	lexer.TokenSlashEq:   BinDivide,
	lexer.TokenPercentEq: BinModulo,
	lexer.TokenShlEq:     BinShiftLeft,
	lexer.TokenShrEq:     BinShiftRight,
	lexer.TokenAmpEq:     BinBitwiseAnd,
	lexer.TokenPipeEq:    BinBitwiseOr,
	lexer.TokenCaretEq:   BinBitwiseXor,
}

// Parser is a recursive-descent parser over a lexer.Token stream,
// populating an nsresolve.Context namespace tree as it descends into
// namespace/class declarations, since the grammar is context-sensitive
// (spec §6).
type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
	NS      *nsresolve.Context
	Diags   *diagnostics.Collector
}

func NewParser(tokens []lexer.Token, file string, ns *nsresolve.Context, diags *diagnostics.Collector) *Parser {
	return &Parser{tokens: tokens, file: file, NS: ns, Diags: diags}
}

func (p *Parser) ParseFile() *File {
	f := &File{}
	for !p.isAtEnd() {
		f.Decls = append(f.Decls, p.topLevel())
	}
	return f
}

func (p *Parser) ref() diagnostics.SourceReference {
	t := p.peek()
	return diagnostics.SourceReference{File: p.file, StartLine: t.Line, StartCol: t.Column, EndLine: t.Line, EndCol: t.Column + len(t.Lexeme)}
}

func (p *Parser) topLevel() TopLevel {
	switch {
	case p.check(lexer.TokenNamespace):
		return p.namespaceDecl()
	case p.check(lexer.TokenClass):
		return p.classDecl()
	case p.check(lexer.TokenUsing):
		return p.usingDecl()
	default:
		return p.functionDeclOrDef()
	}
}

func (p *Parser) namespaceDecl() *NamespaceDecl {
	ref := p.ref()
	p.advance() // 'namespace'
	name := p.consumeIdentLike()
	p.NS.NewChild(name, nsresolve.KindNamespace, nsresolve.Public)
	p.NS.Push(name)
	p.expect(lexer.TokenLBrace)
	decl := &NamespaceDecl{Ref: ref, Name: name}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		decl.Decls = append(decl.Decls, p.topLevel())
	}
	p.expect(lexer.TokenRBrace)
	p.NS.Pop()
	return decl
}

func (p *Parser) visibilityPrefix() VisibilityTag {
	switch {
	case p.match(lexer.TokenPublic):
		return VisPublic
	case p.match(lexer.TokenProtected):
		return VisProtected
	case p.match(lexer.TokenPrivate):
		return VisPrivate
	default:
		return VisPublic
	}
}

func toNSVisibility(v VisibilityTag) nsresolve.Visibility {
	switch v {
	case VisProtected:
		return nsresolve.Protected
	case VisPrivate:
		return nsresolve.Private
	default:
		return nsresolve.Public
	}
}

func (p *Parser) classDecl() *ClassDecl {
	ref := p.ref()
	p.advance() // 'class'
	name := p.consumeIdentLike()
	p.NS.NewChild(name, nsresolve.KindClass, nsresolve.Public)
	p.NS.Push(name)
	p.expect(lexer.TokenLBrace)
	decl := &ClassDecl{Ref: ref, Name: name, Visibility: VisPublic}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		vis := p.visibilityPrefix()
		if p.checkAheadIsFunction() {
			fn := p.functionDeclOrDef()
			switch f := fn.(type) {
			case *FunctionDef:
				decl.Methods = append(decl.Methods, f)
			case *FunctionDecl:
				decl.MethodDecls = append(decl.MethodDecls, f)
			}
			continue
		}
		fieldRef := p.ref()
		ts := p.typeSpecifier()
		fieldName := p.consumeIdentLike()
		p.expect(lexer.TokenSemicolon)
		decl.Fields = append(decl.Fields, ClassField{Name: fieldName, Type: ts, Visibility: vis, Ref: fieldRef})
	}
	p.expect(lexer.TokenRBrace)
	p.NS.Pop()
	return decl
}

// checkAheadIsFunction distinguishes `Type name(` (a method) from
// `Type name;` (a field) by peeking past the type and name for '('.
func (p *Parser) checkAheadIsFunction() bool {
	save := p.current
	defer func() { p.current = save }()
	if p.check(lexer.TokenUnsafe) {
		p.advance()
	}
	p.typeSpecifier()
	if !p.check(lexer.TokenIdent) {
		return false
	}
	p.advance()
	return p.check(lexer.TokenLParen)
}

func (p *Parser) usingDecl() *UsingDecl {
	ref := p.ref()
	p.advance() // 'using'
	first := p.consumeIdentLike()
	decl := &UsingDecl{Ref: ref}
	if p.match(lexer.TokenEqual) {
		decl.Alias = first
		decl.Target = p.consumeIdentLike()
	} else {
		decl.Target = first
	}
	p.expect(lexer.TokenSemicolon)
	return decl
}

func (p *Parser) functionDeclOrDef() TopLevel {
	ref := p.ref()
	isUnsafe := p.match(lexer.TokenUnsafe)
	retType := p.typeSpecifier()
	name := p.consumeIdentLike()
	p.expect(lexer.TokenLParen)
	var params []Param
	for !p.check(lexer.TokenRParen) {
		pref := p.ref()
		pt := p.typeSpecifier()
		pname := p.consumeIdentLike()
		params = append(params, Param{Name: pname, Type: pt, NameRef: pref})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)
	if p.match(lexer.TokenSemicolon) {
		return &FunctionDecl{Ref: ref, Name: name, ReturnType: retType, Params: params, IsUnsafe: isUnsafe}
	}
	body := p.block()
	return &FunctionDef{Ref: ref, Name: name, ReturnType: retType, Params: params, IsUnsafe: isUnsafe, Body: body}
}

// typeSpecifier parses a qualified base name plus pointer/reference/array
// decorations. Arrays are written as a trailing `[N]`.
func (p *Parser) typeSpecifier() *TypeSpecifier {
	ref := p.ref()
	name := p.consumeIdentLike()
	for p.check(lexer.TokenDoubleColon) {
		p.advance()
		name += "::" + p.consumeIdentLike()
	}
	ts := &TypeSpecifier{Ref: ref, Name: name}
	for p.match(lexer.TokenStar) {
		ts.PointerDepth++
	}
	if p.match(lexer.TokenAmp) {
		ts.IsReference = true
	}
	if p.match(lexer.TokenLBracket) {
		ts.IsArray = true
		if p.check(lexer.TokenInt) {
			t := p.advance()
			var n uint64
			fmt.Sscanf(t.Lexeme, "%d", &n)
			ts.ArrayLen = n
		}
		p.expect(lexer.TokenRBracket)
	}
	return ts
}

// --- Statements ---

func (p *Parser) block() *Block {
	ref := p.ref()
	p.expect(lexer.TokenLBrace)
	b := &Block{baseStmt: baseStmt{Ref: ref}}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		b.Stmts = append(b.Stmts, p.statement())
	}
	p.expect(lexer.TokenRBrace)
	return b
}

func (p *Parser) statement() Stmt {
	switch {
	case p.check(lexer.TokenLBrace):
		return p.block()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenSwitch):
		return p.switchStatement()
	case p.match(lexer.TokenBreak):
		ref := p.previousRef()
		p.expect(lexer.TokenSemicolon)
		return &Break{baseStmt{Ref: ref}}
	case p.match(lexer.TokenContinue):
		ref := p.previousRef()
		p.expect(lexer.TokenSemicolon)
		return &Continue{baseStmt{Ref: ref}}
	case p.match(lexer.TokenGoto):
		ref := p.previousRef()
		label := p.consumeIdentLike()
		p.expect(lexer.TokenSemicolon)
		return &Goto{baseStmt: baseStmt{Ref: ref}, Label: label}
	case p.match(lexer.TokenReturn):
		ref := p.previousRef()
		var val Expr
		if !p.check(lexer.TokenSemicolon) {
			val = p.expression()
		}
		p.expect(lexer.TokenSemicolon)
		return &Return{baseStmt: baseStmt{Ref: ref}, Value: val}
	case p.check(lexer.TokenIdent) && p.peekAt(1).Type == lexer.TokenColon && p.peekAt(2).Type != lexer.TokenColon:
		ref := p.ref()
		name := p.consumeIdentLike()
		p.expect(lexer.TokenColon)
		return &Label{baseStmt: baseStmt{Ref: ref}, Name: name}
	case p.looksLikeVarDecl():
		return p.varDecl()
	default:
		ref := p.ref()
		e := p.expression()
		p.expect(lexer.TokenSemicolon)
		return &ExprStmt{baseStmt: baseStmt{Ref: ref}, X: e}
	}
}

// looksLikeVarDecl distinguishes `Type name ...;` from a bare expression
// statement by checking whether two identifiers (optionally separated by
// pointer/reference/"::' decorations) appear before any assignment or
// call-opening paren used as the statement's own head.
func (p *Parser) looksLikeVarDecl() bool {
	save := p.current
	defer func() { p.current = save }()
	if !p.check(lexer.TokenIdent) {
		return false
	}
	p.advance()
	for p.check(lexer.TokenDoubleColon) {
		p.advance()
		if !p.check(lexer.TokenIdent) {
			return false
		}
		p.advance()
	}
	for p.check(lexer.TokenStar) {
		p.advance()
	}
	p.match(lexer.TokenAmp)
	if p.match(lexer.TokenLBracket) {
		for !p.check(lexer.TokenRBracket) && !p.isAtEnd() {
			p.advance()
		}
		p.match(lexer.TokenRBracket)
	}
	return p.check(lexer.TokenIdent)
}

func (p *Parser) varDecl() Stmt {
	ref := p.ref()
	ts := p.typeSpecifier()
	name := p.consumeIdentLike()
	v := &VarDecl{baseStmt: baseStmt{Ref: ref}, Name: name, Type: ts}
	switch {
	case p.match(lexer.TokenEqual):
		v.Init = p.expression()
	case p.match(lexer.TokenLParen):
		v.IsCtorForm = true
		for !p.check(lexer.TokenRParen) {
			v.CtorArgs = append(v.CtorArgs, p.expression())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
		p.expect(lexer.TokenRParen)
	}
	p.expect(lexer.TokenSemicolon)
	return v
}

func (p *Parser) ifStatement() Stmt {
	ref := p.previousRef()
	p.expect(lexer.TokenLParen)
	cond := p.expression()
	p.expect(lexer.TokenRParen)
	then := p.statement()
	var elseBranch Stmt
	if p.match(lexer.TokenElse) {
		if p.check(lexer.TokenIf) {
			p.advance()
			elseBranch = p.ifStatement()
		} else {
			elseBranch = p.statement()
		}
	}
	return &If{baseStmt: baseStmt{Ref: ref}, Cond: cond, Then: then, Else: elseBranch}
}

func (p *Parser) whileStatement() Stmt {
	ref := p.previousRef()
	p.expect(lexer.TokenLParen)
	cond := p.expression()
	p.expect(lexer.TokenRParen)
	body := p.statement()
	return &While{baseStmt: baseStmt{Ref: ref}, Cond: cond, Body: body}
}

func (p *Parser) forStatement() Stmt {
	ref := p.previousRef()
	p.expect(lexer.TokenLParen)
	var init Stmt
	if !p.check(lexer.TokenSemicolon) {
		if p.looksLikeVarDecl() {
			init = p.varDecl()
		} else {
			iref := p.ref()
			e := p.expression()
			p.expect(lexer.TokenSemicolon)
			init = &ExprStmt{baseStmt: baseStmt{Ref: iref}, X: e}
		}
	} else {
		p.advance()
	}
	var cond Expr
	if !p.check(lexer.TokenSemicolon) {
		cond = p.expression()
	}
	p.expect(lexer.TokenSemicolon)
	var post Expr
	if !p.check(lexer.TokenRParen) {
		post = p.expression()
	}
	p.expect(lexer.TokenRParen)
	body := p.statement()
	return &For{baseStmt: baseStmt{Ref: ref}, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) switchStatement() Stmt {
	ref := p.previousRef()
	p.expect(lexer.TokenLParen)
	subject := p.expression()
	p.expect(lexer.TokenRParen)
	p.expect(lexer.TokenLBrace)
	sw := &Switch{baseStmt: baseStmt{Ref: ref}, Subject: subject}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		caseRef := p.ref()
		var c SwitchCase
		c.Ref = caseRef
		if p.match(lexer.TokenDefault) {
			c.IsDefault = true
		} else {
			p.expect(lexer.TokenCase)
			c.Expr = p.expression()
		}
		p.expect(lexer.TokenColon)
		for !p.check(lexer.TokenCase) && !p.check(lexer.TokenDefault) && !p.check(lexer.TokenRBrace) {
			c.Body = append(c.Body, p.statement())
		}
		sw.Cases = append(sw.Cases, c)
	}
	p.expect(lexer.TokenRBrace)
	return sw
}

// --- Expressions (precedence climbing, teacher's operator-table idiom) ---

func (p *Parser) expression() Expr {
	return p.assignment()
}

func (p *Parser) assignment() Expr {
	left := p.binary(0)
	ref := p.ref()
	if p.match(lexer.TokenEqual) {
		value := p.assignment()
		return &Assign{baseExpr: baseExpr{Ref: ref}, Target: left, Value: value}
	}
	if op, ok := compoundAssignOps[p.peek().Type]; ok {
		p.advance()
		value := p.assignment()
		return &CompoundAssign{baseExpr: baseExpr{Ref: ref}, Target: left, Op: op, Value: value}
	}
	return left
}

func (p *Parser) binary(minPrec int) Expr {
	left := p.unary()
	for {
		tt := p.peek().Type
		prec, ok := precedence[tt]
		if !ok || prec < minPrec {
			return left
		}
		ref := p.ref()
		p.advance()
		right := p.binary(prec + 1)
		left = combineBinary(ref, tt, left, right)
	}
}

func combineBinary(ref diagnostics.SourceReference, tt lexer.TokenType, left, right Expr) Expr {
	if tt == lexer.TokenAndAnd {
		return &Logical{baseExpr{ref}, LogicalAnd, left, right}
	}
	if tt == lexer.TokenOrOr {
		return &Logical{baseExpr{ref}, LogicalOr, left, right}
	}
	ops := map[lexer.TokenType]BinaryOp{
		lexer.TokenPlus: BinAdd, lexer.TokenMinus: BinSubtract,
		lexer.TokenStar: BinMultiply, lexer.TokenSlash: BinDivide, lexer.TokenPercent: BinModulo,
		lexer.TokenAmp: BinBitwiseAnd, lexer.TokenPipe: BinBitwiseOr, lexer.TokenCaret: BinBitwiseXor,
		lexer.TokenShl: BinShiftLeft, lexer.TokenShr: BinShiftRight,
		lexer.TokenLT: BinCompareLT, lexer.TokenGT: BinCompareGT, lexer.TokenLE: BinCompareLE, lexer.TokenGE: BinCompareGE,
		lexer.TokenDoubleEqual: BinCompareEQ, lexer.TokenNotEqual: BinCompareNE,
	}
	return &Binary{baseExpr{ref}, ops[tt], left, right}
}

func (p *Parser) unary() Expr {
	ref := p.ref()
	switch {
	case p.match(lexer.TokenMinus):
		return &Unary{baseExpr{ref}, UnaryNegate, p.unary()}
	case p.match(lexer.TokenTilde):
		return &Unary{baseExpr{ref}, UnaryBitwiseNot, p.unary()}
	case p.match(lexer.TokenNot):
		return &Unary{baseExpr{ref}, UnaryLogicalNot, p.unary()}
	case p.match(lexer.TokenAmp):
		return &Unary{baseExpr{ref}, UnaryAddressOf, p.unary()}
	case p.match(lexer.TokenStar):
		return &Unary{baseExpr{ref}, UnaryDereference, p.unary()}
	case p.match(lexer.TokenPlusPlus):
		return &IncDec{baseExpr{ref}, p.unary(), true, true}
	case p.match(lexer.TokenMinusMinus):
		return &IncDec{baseExpr{ref}, p.unary(), false, true}
	case p.match(lexer.TokenSizeof):
		p.expect(lexer.TokenLParen)
		ts := p.typeSpecifier()
		p.expect(lexer.TokenRParen)
		return &Sizeof{baseExpr{ref}, ts}
	default:
		return p.postfix()
	}
}

func (p *Parser) postfix() Expr {
	e := p.primary()
	for {
		ref := p.ref()
		switch {
		case p.match(lexer.TokenLBracket):
			idx := p.expression()
			p.expect(lexer.TokenRBracket)
			e = &ArrayIndex{baseExpr{ref}, e, idx}
		case p.match(lexer.TokenDot):
			member := p.consumeIdentLike()
			e = &Dot{baseExpr{ref}, e, member}
		case p.match(lexer.TokenArrow):
			member := p.consumeIdentLike()
			e = &Arrow{baseExpr{ref}, e, member}
		case p.match(lexer.TokenLParen):
			var args []Expr
			for !p.check(lexer.TokenRParen) {
				args = append(args, p.expression())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
			p.expect(lexer.TokenRParen)
			e = &Call{baseExpr{ref}, e, args}
		case p.match(lexer.TokenPlusPlus):
			e = &IncDec{baseExpr{ref}, e, true, false}
		case p.match(lexer.TokenMinusMinus):
			e = &IncDec{baseExpr{ref}, e, false, false}
		default:
			return e
		}
	}
}

func (p *Parser) primary() Expr {
	ref := p.ref()
	switch {
	case p.match(lexer.TokenInt):
		return &IntLiteral{baseExpr{ref}, p.previous().Lexeme}
	case p.match(lexer.TokenFloat):
		return &FloatLiteral{baseExpr{ref}, p.previous().Lexeme}
	case p.match(lexer.TokenString):
		return &StringLiteral{baseExpr{ref}, p.previous().Lexeme}
	case p.match(lexer.TokenChar):
		r := []rune(p.previous().Lexeme)
		var v rune
		if len(r) > 0 {
			v = r[0]
		}
		return &CharLiteral{baseExpr{ref}, v}
	case p.match(lexer.TokenTrue):
		return &BoolLiteral{baseExpr{ref}, true}
	case p.match(lexer.TokenFalse):
		return &BoolLiteral{baseExpr{ref}, false}
	case p.match(lexer.TokenNull):
		return &NullLiteral{baseExpr{ref}}
	case p.match(lexer.TokenLParen):
		e := p.expression()
		p.expect(lexer.TokenRParen)
		return e
	case p.check(lexer.TokenIdent) || p.check(lexer.TokenDoubleColon):
		name := p.consumeIdentLike()
		for p.check(lexer.TokenDoubleColon) {
			p.advance()
			name += "::" + p.consumeIdentLike()
		}
		return &Identifier{baseExpr{ref}, name}
	default:
		p.errorHere("expected expression")
		p.advance()
		return &NullLiteral{baseExpr{ref}}
	}
}

// --- Token-stream helpers ---

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.TokenEOF }
func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}
func (p *Parser) peekAt(n int) lexer.Token {
	i := p.current + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}
func (p *Parser) previous() lexer.Token { return p.tokens[p.current-1] }
func (p *Parser) previousRef() diagnostics.SourceReference {
	t := p.previous()
	return diagnostics.SourceReference{File: p.file, StartLine: t.Line, StartCol: t.Column, EndLine: t.Line, EndCol: t.Column + len(t.Lexeme)}
}
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}
func (p *Parser) check(tt lexer.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == tt
}
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorHere(fmt.Sprintf("expected %s, got %s", tt, p.peek().Type))
	return p.peek()
}
func (p *Parser) consumeIdentLike() string {
	if p.check(lexer.TokenIdent) {
		return p.advance().Lexeme
	}
	p.errorHere("expected identifier")
	return ""
}
func (p *Parser) errorHere(msg string) {
	if p.Diags != nil {
		p.Diags.Addf(diagnostics.KindResolution, p.ref(), "Parse Error", "%s", msg)
	}
}
