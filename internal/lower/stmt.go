package lower

import (
	"strings"

	"jlangc/internal/diagnostics"
	"jlangc/internal/mir"
	"jlangc/internal/scopetrack"
	"jlangc/internal/syntax"
	"jlangc/internal/types"
)

// lowerBlock lowers a statement block as its own lexical scope, unless
// isFunctionBody is true (the top-level body shares the function's root
// scope rather than opening a nested one, matching spec §4.2's root
// frame already being active when lowering begins).
func (fc *fctx) lowerBlock(b *syntax.Block, isFunctionBody bool) {
	if !isFunctionBody {
		fc.tracker.Push(false)
	}
	for _, s := range b.Stmts {
		fc.lowerStmt(s)
	}
	if !isFunctionBody {
		fc.unwindScope(b.Pos())
		fc.tracker.Pop()
	}
}

// unwindScope emits LocalUndeclare for every local the current frame
// owns, in LIFO order, ahead of an ordinary (non-jumping) scope exit.
// No-op if the current block already has a terminator, since control
// never reaches the unwind.
func (fc *fctx) unwindScope(ref diagnostics.SourceReference) {
	if b := fc.fn.Block(fc.curBlock); b.HasTerminator() {
		return
	}
	for _, name := range fc.tracker.VariablesToUnwindForScope() {
		t := fc.localTypes[name]
		tmp := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalUndeclare, Ref: ref, Result: tmp, Name: name, Type: t})
	}
}

func (fc *fctx) point() scopetrack.FunctionPoint {
	block := fc.fn.Block(fc.curBlock)
	return scopetrack.FunctionPoint{BlockID: int(fc.curBlock), Location: len(block.Ops)}
}

func (fc *fctx) lowerStmt(s syntax.Stmt) {
	switch n := s.(type) {
	case *syntax.VarDecl:
		fc.lowerVarDecl(n)
	case *syntax.ExprStmt:
		fc.lowerExpr(n.X)
	case *syntax.Block:
		fc.lowerBlock(n, false)
	case *syntax.If:
		fc.lowerIf(n)
	case *syntax.While:
		fc.lowerWhile(n)
	case *syntax.For:
		fc.lowerFor(n)
	case *syntax.Switch:
		fc.lowerSwitch(n)
	case *syntax.Break:
		fc.lowerBreak(n)
	case *syntax.Continue:
		fc.lowerContinue(n)
	case *syntax.Label:
		fc.lowerLabel(n)
	case *syntax.Goto:
		fc.lowerGoto(n)
	case *syntax.Return:
		fc.lowerReturn(n)
	default:
		fc.bug(s.Pos(), "unhandled statement type %T", s)
	}
}

// classLocalName returns the last ::-delimited segment of a class's
// canonical name (P::C -> C).
func classLocalName(canonical string) string {
	if i := strings.LastIndex(canonical, "::"); i >= 0 {
		return canonical[i+2:]
	}
	return canonical
}

func (fc *fctx) lowerVarDecl(n *syntax.VarDecl) {
	t, okType := fc.r.resolveType(n.Type)
	if !okType {
		return
	}
	if n.IsCtorForm {
		if !t.IsComposite() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Constructor Form On Non-class",
				"constructor-call declaration requires a class type, got %s", fmtType(t))
			return
		}
		var args []mir.TmpID
		for _, a := range n.CtorArgs {
			at, okArg := fc.lowerExpr(a)
			if !okArg {
				return
			}
			args = append(args, at)
		}
		if !fc.tracker.DeclareVariable(n.Name, t, n.Ref) {
			return
		}
		fc.localTypes[n.Name] = t
		tmp := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalDeclare, Ref: n.Ref, Result: tmp, Name: n.Name, Type: t})
		// Per spec §9 "Hard-coded constructor name": the constructor
		// symbol for class C at fully-qualified path P::C is P::C::C,
		// built from this class's own canonical name, not a sibling's.
		ctorSym := t.CanonicalName() + "::" + classLocalName(t.CanonicalName())
		result := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpConstructor, Ref: n.Ref, Result: result, CallArgs: args, CalleeSymbol: ctorSym, Type: t})
		return
	}

	if !fc.tracker.DeclareVariable(n.Name, t, n.Ref) {
		return
	}
	fc.localTypes[n.Name] = t
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLocalDeclare, Ref: n.Ref, Result: tmp, Name: n.Name, Type: t})

	if n.Init != nil {
		val, okVal := fc.lowerExpr(n.Init)
		if !okVal {
			return
		}
		vt := fc.fn.TmpType(val)
		if !types.SameCanonical(t, vt) {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Initializer Type Mismatch",
				"cannot initialize %s with %s", fmtType(t), fmtType(vt))
			return
		}
		lv := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalVariable, Ref: n.Ref, Result: lv, Name: n.Name, Type: t})
		assigned := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpAssign, Ref: n.Ref, Result: assigned, Operands: []mir.TmpID{lv, val}, Type: t})
	}
}

func (fc *fctx) lowerIf(n *syntax.If) {
	cond, okCond := fc.lowerExpr(n.Cond)
	if !okCond {
		return
	}
	if !fc.fn.TmpType(cond).IsBool() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Condition Must Be Bool", "'if' condition must be bool")
		return
	}
	thenBlock := fc.newBlock()
	doneBlock := fc.newBlock()
	elseBlock := doneBlock
	if n.Else != nil {
		elseBlock = fc.newBlock()
	}
	fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: n.Ref, Operands: []mir.TmpID{cond}, JumpIfTrue: thenBlock, JumpIfFalse: elseBlock})

	fc.setBlock(thenBlock)
	fc.lowerStmt(n.Then)
	if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
		fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: doneBlock})
	}

	if n.Else != nil {
		fc.setBlock(elseBlock)
		fc.lowerStmt(n.Else)
		if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
			fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: doneBlock})
		}
	}

	fc.setBlock(doneBlock)
}

func (fc *fctx) lowerWhile(n *syntax.While) {
	condBlock := fc.newBlock()
	bodyBlock := fc.newBlock()
	doneBlock := fc.newBlock()

	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: condBlock})
	fc.setBlock(condBlock)
	cond, okCond := fc.lowerExpr(n.Cond)
	if !okCond {
		return
	}
	if !fc.fn.TmpType(cond).IsBool() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Condition Must Be Bool", "'while' condition must be bool")
		return
	}
	fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: n.Ref, Operands: []mir.TmpID{cond}, JumpIfTrue: bodyBlock, JumpIfFalse: doneBlock})

	fc.setBlock(bodyBlock)
	fc.tracker.PushLoop(int(doneBlock), int(condBlock))
	fc.lowerStmt(n.Body)
	fc.unwindScope(n.Ref)
	fc.tracker.Pop()
	if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
		fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: condBlock})
	}

	fc.setBlock(doneBlock)
}

func (fc *fctx) lowerFor(n *syntax.For) {
	fc.tracker.Push(false)
	if n.Init != nil {
		fc.lowerStmt(n.Init)
	}

	condBlock := fc.newBlock()
	bodyBlock := fc.newBlock()
	postBlock := fc.newBlock()
	doneBlock := fc.newBlock()

	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Pos(), JumpTarget: condBlock})
	fc.setBlock(condBlock)
	if n.Cond != nil {
		cond, okCond := fc.lowerExpr(n.Cond)
		if !okCond {
			fc.unwindScope(n.Pos())
			fc.tracker.Pop()
			return
		}
		if !fc.fn.TmpType(cond).IsBool() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Pos(), "Condition Must Be Bool", "'for' condition must be bool")
			fc.unwindScope(n.Pos())
			fc.tracker.Pop()
			return
		}
		fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: n.Pos(), Operands: []mir.TmpID{cond}, JumpIfTrue: bodyBlock, JumpIfFalse: doneBlock})
	} else {
		fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Pos(), JumpTarget: bodyBlock})
	}

	fc.setBlock(bodyBlock)
	fc.tracker.PushLoop(int(doneBlock), int(postBlock))
	fc.lowerStmt(n.Body)
	fc.unwindScope(n.Pos())
	fc.tracker.Pop()
	if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
		fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Pos(), JumpTarget: postBlock})
	}

	fc.setBlock(postBlock)
	if n.Post != nil {
		fc.lowerExpr(n.Post)
	}
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Pos(), JumpTarget: condBlock})

	fc.setBlock(doneBlock)
	fc.unwindScope(n.Pos())
	fc.tracker.Pop()
}

func (fc *fctx) lowerSwitch(n *syntax.Switch) {
	subject, okSubj := fc.lowerExpr(n.Subject)
	if !okSubj {
		return
	}
	st := fc.fn.TmpType(subject)

	doneBlock := fc.newBlock()
	caseBlocks := make([]mir.BlockID, len(n.Cases))
	for i := range n.Cases {
		caseBlocks[i] = fc.newBlock()
	}

	testBlock := fc.curBlock
	var defaultBlock mir.BlockID = doneBlock
	for i, c := range n.Cases {
		if c.IsDefault {
			defaultBlock = caseBlocks[i]
			continue
		}
		fc.setBlock(testBlock)
		caseVal, okCase := fc.lowerExpr(c.Expr)
		if !okCase {
			continue
		}
		if !types.SameCanonical(st, fc.fn.TmpType(caseVal)) {
			fc.r.Diags.Addf(diagnostics.KindType, c.Ref, "Case Type Mismatch",
				"case expression type %s does not match switch subject type %s", fmtType(fc.fn.TmpType(caseVal)), fmtType(st))
			continue
		}
		eq := fc.fn.DefineTmp(fc.r.Module.Types.Bool())
		fc.emit(mir.Operation{Kind: mir.OpCompareEQ, Ref: c.Ref, Result: eq, Operands: []mir.TmpID{subject, caseVal}, Type: fc.r.Module.Types.Bool()})
		nextTest := fc.newBlock()
		fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: c.Ref, Operands: []mir.TmpID{eq}, JumpIfTrue: caseBlocks[i], JumpIfFalse: nextTest})
		testBlock = nextTest
	}
	fc.setBlock(testBlock)
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: defaultBlock})

	fc.tracker.PushSwitch(int(doneBlock))
	for i, c := range n.Cases {
		fc.setBlock(caseBlocks[i])
		for _, bs := range c.Body {
			fc.lowerStmt(bs)
		}
		if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
			next := doneBlock
			if i+1 < len(caseBlocks) {
				next = caseBlocks[i+1]
			}
			fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: next})
		}
	}
	fc.tracker.Pop()

	fc.setBlock(doneBlock)
}

func (fc *fctx) lowerBreak(n *syntax.Break) {
	if !fc.tracker.IsInLoop() {
		fc.r.Diags.Addf(diagnostics.KindControlFlow, n.Ref, "Break Outside Loop", "'break' outside a loop or switch")
		return
	}
	for _, name := range fc.tracker.VariablesToUnwindForBreak() {
		t := fc.localTypes[name]
		tmp := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalUndeclare, Ref: n.Ref, Result: tmp, Name: name, Type: t})
	}
	target := mir.BlockID(fc.tracker.LoopBreakBlock())
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: target})
	fc.setBlock(fc.newBlock())
}

func (fc *fctx) lowerContinue(n *syntax.Continue) {
	if !fc.tracker.IsInContinuableLoop() {
		fc.r.Diags.Addf(diagnostics.KindControlFlow, n.Ref, "Continue Outside Loop", "'continue' outside a loop")
		return
	}
	for _, name := range fc.tracker.VariablesToUnwindForContinue() {
		t := fc.localTypes[name]
		tmp := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalUndeclare, Ref: n.Ref, Result: tmp, Name: name, Type: t})
	}
	target := mir.BlockID(fc.tracker.LoopContinueBlock())
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: target})
	fc.setBlock(fc.newBlock())
}

// blockForLabel returns the MIR block allocated for a named goto label,
// allocating it on first reference regardless of whether that reference
// is the label statement itself or an earlier goto (a forward
// reference), so both orders resolve to the same block.
func (fc *fctx) blockForLabel(name string) mir.BlockID {
	if id, ok := fc.labelBlocks[name]; ok {
		return id
	}
	id := fc.newBlock()
	fc.labelBlocks[name] = id
	return id
}

func (fc *fctx) lowerLabel(n *syntax.Label) {
	existing := fc.tracker.GetLabel(n.Name)
	if existing != nil && existing.IsResolved() {
		fc.r.Diags.Addf(diagnostics.KindControlFlow, n.Ref, "Duplicate Label", "label %q is already defined", n.Name)
		return
	}
	target := fc.blockForLabel(n.Name)
	if b := fc.fn.Block(fc.curBlock); !b.HasTerminator() {
		fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: target})
	}
	fc.setBlock(target)
	fc.tracker.ResolveLabel(n.Name, int(target), n.Ref)
}

func (fc *fctx) lowerGoto(n *syntax.Goto) {
	target := fc.blockForLabel(n.Label)
	if fc.tracker.GetLabel(n.Label) == nil {
		fc.tracker.DeclareForwardLabel(n.Label, int(target))
	}
	fc.tracker.AddGoto(n.Label, fc.point(), n.Ref)
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: target})
	fc.setBlock(fc.newBlock())
}

func (fc *fctx) lowerReturn(n *syntax.Return) {
	unwind := fc.tracker.VariablesToUnwindForRoot()
	if n.Value == nil {
		for _, name := range unwind {
			t := fc.localTypes[name]
			tmp := fc.fn.DefineTmp(t)
			fc.emit(mir.Operation{Kind: mir.OpLocalUndeclare, Ref: n.Ref, Result: tmp, Name: name, Type: t})
		}
		fc.emit(mir.Operation{Kind: mir.OpReturnVoid, Ref: n.Ref})
		fc.setBlock(fc.newBlock())
		return
	}
	val, okVal := fc.lowerExpr(n.Value)
	if !okVal {
		return
	}
	if !types.SameCanonical(fc.fn.TmpType(val), fc.fn.ReturnType) {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Return Type Mismatch",
			"returned value has type %s, function returns %s", fmtType(fc.fn.TmpType(val)), fmtType(fc.fn.ReturnType))
		return
	}
	for _, name := range unwind {
		t := fc.localTypes[name]
		tmp := fc.fn.DefineTmp(t)
		fc.emit(mir.Operation{Kind: mir.OpLocalUndeclare, Ref: n.Ref, Result: tmp, Name: name, Type: t})
	}
	fc.emit(mir.Operation{Kind: mir.OpReturn, Ref: n.Ref, Operands: []mir.TmpID{val}, Type: fc.fn.ReturnType})
	fc.setBlock(fc.newBlock())
}
