package lower

import (
	"strconv"
	"strings"

	"jlangc/internal/diagnostics"
	"jlangc/internal/mir"
	"jlangc/internal/syntax"
	"jlangc/internal/types"
)

// lowerExpr dispatches through syntax.ExprVisitor, following the
// teacher's Accept/Visitor pattern (internal/parser/ast.go), and
// returns the temporary holding the expression's value. ok is false once
// a diagnostic has already been emitted for this subtree; callers
// should stop trying to use the zero TmpID.
func (fc *fctx) lowerExpr(e syntax.Expr) (mir.TmpID, bool) {
	v := &exprLowerer{fc: fc}
	result := e.Accept(v)
	r := result.(lowerResult)
	return r.tmp, r.ok
}

type lowerResult struct {
	tmp mir.TmpID
	ok  bool
}

type exprLowerer struct {
	fc *fctx
}

func fail() lowerResult { return lowerResult{} }
func ok(tmp mir.TmpID) lowerResult { return lowerResult{tmp: tmp, ok: true} }

func (v *exprLowerer) VisitIdentifier(n *syntax.Identifier) interface{} {
	fc := v.fc
	if lv, found := fc.tracker.Variable(n.Name); found {
		tmp := fc.fn.DefineTmp(lv.Type)
		fc.emit(mir.Operation{Kind: mir.OpLocalVariable, Ref: n.Ref, Result: tmp, Name: n.Name, Type: lv.Type})
		return ok(tmp)
	}
	if fc.isMethod {
		for _, f := range fc.classType.Fields {
			if f.Name == n.Name {
				return ok(v.emitMemberAccess(n.Ref, fc.thisTmp, n.Name, f.Type))
			}
		}
		for _, m := range fc.classType.Methods {
			if m.Name == n.Name {
				return ok(v.emitGetMethod(n.Ref, fc.thisTmp, n.Name, m.Function))
			}
		}
	}
	candidates := []string{n.Name, strings.TrimPrefix(fc.r.NS.QualifiedPath(), "::") + "::" + n.Name}
	for _, c := range candidates {
		if sym, found := fc.r.Module.Symbols.Lookup(c); found {
			tmp := fc.fn.DefineTmp(sym.Type)
			fc.emit(mir.Operation{Kind: mir.OpSymbol, Ref: n.Ref, Result: tmp, Name: sym.Name, Type: sym.Type})
			return ok(tmp)
		}
	}
	fc.r.Diags.Addf(diagnostics.KindResolution, n.Ref, "Unresolved Identifier", "identifier %q does not resolve", n.Name)
	return fail()
}

func (v *exprLowerer) emitMemberAccess(ref diagnostics.SourceReference, thisTmp mir.TmpID, name string, fieldType *types.Type) mir.TmpID {
	fc := v.fc
	classPtrTmp := thisTmp
	deref := fc.fn.DefineTmp(fc.classType)
	fc.emit(mir.Operation{Kind: mir.OpDereference, Ref: ref, Result: deref, Operands: []mir.TmpID{classPtrTmp}, Type: fc.classType})
	result := fc.fn.DefineTmp(fieldType)
	fc.emit(mir.Operation{Kind: mir.OpDot, Ref: ref, Result: result, Operands: []mir.TmpID{deref}, Name: name, Type: fieldType})
	return result
}

func (v *exprLowerer) emitGetMethod(ref diagnostics.SourceReference, thisTmp mir.TmpID, name string, fn *types.Type) mir.TmpID {
	fc := v.fc
	mcType := fc.r.Module.Types.MethodCall(fc.classType, fn)
	result := fc.fn.DefineTmp(mcType)
	fc.emit(mir.Operation{Kind: mir.OpGetMethod, Ref: ref, Result: result, Operands: []mir.TmpID{thisTmp}, Name: name, Type: mcType})
	return result
}

func (v *exprLowerer) VisitIntLiteral(n *syntax.IntLiteral) interface{} {
	fc := v.fc
	val, t, ok := parseIntLiteral(n.Text, fc.r.Module.Types)
	if !ok {
		fc.r.Diags.Addf(diagnostics.KindLiteral, n.Ref, "Integer Literal Out Of Range",
			"literal %q does not fit its type", n.Text)
		return fail()
	}
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralInt, Ref: n.Ref, Result: tmp, IntValue: val, Type: t})
	return lowerResult{tmp: tmp, ok: true}
}

func (v *exprLowerer) VisitFloatLiteral(n *syntax.FloatLiteral) interface{} {
	fc := v.fc
	text := n.Text
	width := types.WidthF64
	if strings.HasSuffix(text, "f32") {
		width = types.WidthF32
		text = strings.TrimSuffix(text, "f32")
	} else if strings.HasSuffix(text, "f64") {
		text = strings.TrimSuffix(text, "f64")
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		fc.r.Diags.Addf(diagnostics.KindLiteral, n.Ref, "Float Literal Does Not Fit", "literal %q does not fit: %v", n.Text, err)
		return fail()
	}
	t := fc.r.Module.Types.Float(width)
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralFloat, Ref: n.Ref, Result: tmp, FloatValue: f, Type: t})
	return ok(tmp)
}

func (v *exprLowerer) VisitCharLiteral(n *syntax.CharLiteral) interface{} {
	fc := v.fc
	t := fc.r.Module.Types.Int(types.Width8, false)
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralChar, Ref: n.Ref, Result: tmp, CharValue: n.Value, Type: t})
	return ok(tmp)
}

func (v *exprLowerer) VisitStringLiteral(n *syntax.StringLiteral) interface{} {
	fc := v.fc
	t := fc.r.Module.Types.PointerTo(fc.r.Module.Types.Int(types.Width8, false))
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralString, Ref: n.Ref, Result: tmp, StringValue: n.Value, Type: t})
	return ok(tmp)
}

func (v *exprLowerer) VisitBoolLiteral(n *syntax.BoolLiteral) interface{} {
	fc := v.fc
	t := fc.r.Module.Types.Bool()
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralBool, Ref: n.Ref, Result: tmp, BoolValue: n.Value, Type: t})
	return ok(tmp)
}

func (v *exprLowerer) VisitNullLiteral(n *syntax.NullLiteral) interface{} {
	fc := v.fc
	t := fc.r.Module.Types.PointerTo(fc.r.Module.Types.Void())
	tmp := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: mir.OpLiteralNull, Ref: n.Ref, Result: tmp, Type: t})
	return ok(tmp)
}

func (v *exprLowerer) VisitArrayIndex(n *syntax.ArrayIndex) interface{} {
	fc := v.fc
	obj, ok1 := fc.lowerExpr(n.Object)
	idx, ok2 := fc.lowerExpr(n.Index)
	if !ok1 || !ok2 {
		return fail()
	}
	ot := fc.fn.TmpType(obj)
	if !ot.IsArray() && !ot.IsPointer() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Not Indexable", "type %s cannot be indexed", fmtType(ot))
		return fail()
	}
	result := fc.fn.DefineTmp(ot.Elem)
	fc.emit(mir.Operation{Kind: mir.OpArrayIndex, Ref: n.Ref, Result: result, Operands: []mir.TmpID{obj, idx}, Type: ot.Elem})
	return ok(result)
}

func (v *exprLowerer) VisitDot(n *syntax.Dot) interface{} {
	fc := v.fc
	obj, okObj := fc.lowerExpr(n.Object)
	if !okObj {
		return fail()
	}
	ot := fc.fn.TmpType(obj)
	if !ot.IsComposite() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Dot On Non-composite", "left-hand side of '.' must be a composite type, got %s", fmtType(ot))
		return fail()
	}
	for _, f := range ot.Fields {
		if f.Name == n.Member {
			result := fc.fn.DefineTmp(f.Type)
			fc.emit(mir.Operation{Kind: mir.OpDot, Ref: n.Ref, Result: result, Operands: []mir.TmpID{obj}, Name: n.Member, Type: f.Type})
			return ok(result)
		}
	}
	for _, m := range ot.Methods {
		if m.Name == n.Member {
			mcType := fc.r.Module.Types.MethodCall(ot, m.Function)
			result := fc.fn.DefineTmp(mcType)
			fc.emit(mir.Operation{Kind: mir.OpGetMethod, Ref: n.Ref, Result: result, Operands: []mir.TmpID{obj}, Name: n.Member, Type: mcType})
			return ok(result)
		}
	}
	fc.r.Diags.Addf(diagnostics.KindResolution, n.Ref, "Unknown Member", "type %s has no member %q", fmtType(ot), n.Member)
	return fail()
}

func (v *exprLowerer) VisitArrow(n *syntax.Arrow) interface{} {
	fc := v.fc
	obj, okObj := fc.lowerExpr(n.Object)
	if !okObj {
		return fail()
	}
	ot := fc.fn.TmpType(obj)
	if !ot.IsPointer() || !ot.Elem.IsComposite() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Arrow On Non-pointer", "left-hand side of '->' must be a pointer-to-composite, got %s", fmtType(ot))
		return fail()
	}
	if !fc.tracker.IsUnsafe() {
		fc.r.Diags.Addf(diagnostics.KindSafety, n.Ref, "Arrow Outside Unsafe",
			"dereferencing pointers (->) must be done inside an 'unsafe' block")
		return fail()
	}
	deref := fc.fn.DefineTmp(ot.Elem)
	fc.emit(mir.Operation{Kind: mir.OpDereference, Ref: n.Ref, Result: deref, Operands: []mir.TmpID{obj}, Type: ot.Elem})
	composite := ot.Elem
	for _, f := range composite.Fields {
		if f.Name == n.Member {
			result := fc.fn.DefineTmp(f.Type)
			fc.emit(mir.Operation{Kind: mir.OpDot, Ref: n.Ref, Result: result, Operands: []mir.TmpID{deref}, Name: n.Member, Type: f.Type})
			return ok(result)
		}
	}
	for _, m := range composite.Methods {
		if m.Name == n.Member {
			return ok(v.emitGetMethod(n.Ref, deref, n.Member, m.Function))
		}
	}
	fc.r.Diags.Addf(diagnostics.KindResolution, n.Ref, "Unknown Member", "type %s has no member %q", fmtType(composite), n.Member)
	return fail()
}

func (v *exprLowerer) VisitCall(n *syntax.Call) interface{} {
	fc := v.fc
	callee, okCallee := fc.lowerExpr(n.Callee)
	if !okCallee {
		return fail()
	}
	calleeType := fc.fn.TmpType(callee)

	var args []mir.TmpID
	for _, a := range n.Args {
		at, okArg := fc.lowerExpr(a)
		if !okArg {
			return fail()
		}
		args = append(args, at)
	}

	switch {
	case calleeType.IsFunctionPointer():
		if !checkArgs(fc, n.Ref, calleeType.Params, args, calleeType.IsUnsafe) {
			return fail()
		}
		result := fc.fn.DefineTmp(calleeType.Result)
		fc.emit(mir.Operation{Kind: mir.OpFunctionCall, Ref: n.Ref, Result: result, Operands: []mir.TmpID{callee}, CallArgs: args, Type: calleeType.Result})
		return ok(result)
	case calleeType.IsMethodCall():
		fnType := calleeType.Func
		if !checkArgs(fc, n.Ref, fnType.Params, args, fnType.IsUnsafe) {
			return fail()
		}
		objTmp := fc.fn.DefineTmp(fc.r.Module.Types.PointerTo(calleeType.Receiver))
		fc.emit(mir.Operation{Kind: mir.OpMethodGetObject, Ref: n.Ref, Result: objTmp, Operands: []mir.TmpID{callee}, Type: fc.r.Module.Types.PointerTo(calleeType.Receiver)})
		fnTmp := fc.fn.DefineTmp(fnType)
		fc.emit(mir.Operation{Kind: mir.OpMethodGetFunction, Ref: n.Ref, Result: fnTmp, Operands: []mir.TmpID{callee}, Type: fnType})
		fullArgs := append([]mir.TmpID{objTmp}, args...)
		result := fc.fn.DefineTmp(fnType.Result)
		fc.emit(mir.Operation{Kind: mir.OpFunctionCall, Ref: n.Ref, Result: result, Operands: []mir.TmpID{fnTmp}, CallArgs: fullArgs, Type: fnType.Result})
		return ok(result)
	default:
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Not Callable", "type %s is not callable", fmtType(calleeType))
		return fail()
	}
}

func checkArgs(fc *fctx, ref diagnostics.SourceReference, params []*types.Type, args []mir.TmpID, isUnsafe bool) bool {
	if len(params) != len(args) {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Argument Count Mismatch",
			"expected %d arguments, got %d", len(params), len(args))
		return false
	}
	good := true
	for i, p := range params {
		at := fc.fn.TmpType(args[i])
		if !types.SameCanonical(p, at) {
			fc.r.Diags.Addf(diagnostics.KindType, ref, "Argument Type Mismatch",
				"argument %d: expected %s, got %s", i+1, fmtType(p), fmtType(at))
			good = false
		}
	}
	if isUnsafe && !fc.tracker.IsUnsafe() {
		fc.r.Diags.Addf(diagnostics.KindSafety, ref, "Unsafe Call Outside Unsafe Context",
			"calling an unsafe function/method requires an 'unsafe' context")
		good = false
	}
	return good
}

func (v *exprLowerer) VisitUnary(n *syntax.Unary) interface{} {
	fc := v.fc
	operand, okOperand := fc.lowerExpr(n.Operand)
	if !okOperand {
		return fail()
	}
	ot := fc.fn.TmpType(operand)
	switch n.Op {
	case syntax.UnaryNegate:
		if !ot.IsNumeric() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Negate Requires Numeric", "cannot negate %s", fmtType(ot))
			return fail()
		}
		result := fc.fn.DefineTmp(ot)
		fc.emit(mir.Operation{Kind: mir.OpNegate, Ref: n.Ref, Result: result, Operands: []mir.TmpID{operand}, Type: ot})
		return ok(result)
	case syntax.UnaryBitwiseNot:
		if !ot.IsUnsigned() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Bitwise Not Requires Unsigned", "cannot bitwise-not %s", fmtType(ot))
			return fail()
		}
		result := fc.fn.DefineTmp(ot)
		fc.emit(mir.Operation{Kind: mir.OpBitwiseNot, Ref: n.Ref, Result: result, Operands: []mir.TmpID{operand}, Type: ot})
		return ok(result)
	case syntax.UnaryLogicalNot:
		if !ot.IsBool() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Logical Not Requires Bool", "cannot logical-not %s", fmtType(ot))
			return fail()
		}
		result := fc.fn.DefineTmp(ot)
		fc.emit(mir.Operation{Kind: mir.OpLogicalNot, Ref: n.Ref, Result: result, Operands: []mir.TmpID{operand}, Type: ot})
		return ok(result)
	case syntax.UnaryAddressOf:
		result := fc.fn.DefineTmp(fc.r.Module.Types.PointerTo(ot))
		fc.emit(mir.Operation{Kind: mir.OpAddressOf, Ref: n.Ref, Result: result, Operands: []mir.TmpID{operand}, Type: fc.r.Module.Types.PointerTo(ot)})
		return ok(result)
	case syntax.UnaryDereference:
		if !ot.IsPointer() && !ot.IsReference() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Dereference Requires Pointer Or Reference", "cannot dereference %s", fmtType(ot))
			return fail()
		}
		if ot.IsPointer() && !fc.tracker.IsUnsafe() {
			fc.r.Diags.Addf(diagnostics.KindSafety, n.Ref, "Dereference Outside Unsafe",
				"de-referencing pointers (*) must be done inside an 'unsafe' block")
			return fail()
		}
		result := fc.fn.DefineTmp(ot.Elem)
		fc.emit(mir.Operation{Kind: mir.OpDereference, Ref: n.Ref, Result: result, Operands: []mir.TmpID{operand}, Type: ot.Elem})
		return ok(result)
	}
	fc.bug(n.Ref, "unhandled unary operator %d", n.Op)
	return fail()
}

func (v *exprLowerer) VisitIncDec(n *syntax.IncDec) interface{} {
	fc := v.fc
	operand, okOperand := fc.lowerExpr(n.Operand)
	if !okOperand {
		return fail()
	}
	t := fc.fn.TmpType(operand)
	if !t.IsNumeric() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Inc/Dec Requires Numeric", "cannot increment/decrement %s", fmtType(t))
		return fail()
	}
	one := fc.fn.DefineTmp(t)
	if t.IsFloat() {
		fc.emit(mir.Operation{Kind: mir.OpLiteralFloat, Ref: n.Ref, Result: one, FloatValue: 1, Type: t})
	} else {
		fc.emit(mir.Operation{Kind: mir.OpLiteralInt, Ref: n.Ref, Result: one, IntValue: 1, Type: t})
	}
	op := mir.OpAdd
	if !n.Increment {
		op = mir.OpSubtract
	}
	newVal := fc.fn.DefineTmp(t)
	fc.emit(mir.Operation{Kind: op, Ref: n.Ref, Result: newVal, Operands: []mir.TmpID{operand, one}, Type: t})
	fc.assignTo(n.Operand, newVal, n.Ref)
	if n.Prefix {
		return ok(newVal)
	}
	return ok(operand)
}

func (v *exprLowerer) VisitSizeof(n *syntax.Sizeof) interface{} {
	fc := v.fc
	t, okType := fc.r.resolveType(n.Type)
	if !okType {
		return fail()
	}
	size, has := t.SizeBytes()
	if !has {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Sizeof Undefined", "type %s has no defined size", fmtType(t))
		return fail()
	}
	u64 := fc.r.Module.Types.Int(types.Width64, false)
	tmp := fc.fn.DefineTmp(u64)
	fc.emit(mir.Operation{Kind: mir.OpSizeofType, Ref: n.Ref, Result: tmp, IntValue: uint64(size), Type: u64})
	return ok(tmp)
}

func (v *exprLowerer) VisitBinary(n *syntax.Binary) interface{} {
	fc := v.fc
	lhs, ok1 := fc.lowerExpr(n.Left)
	rhs, ok2 := fc.lowerExpr(n.Right)
	if !ok1 || !ok2 {
		return fail()
	}
	switch n.Op {
	case syntax.BinAdd, syntax.BinSubtract, syntax.BinMultiply, syntax.BinDivide, syntax.BinModulo:
		wl, wr, rt, okW := fc.widenNumericPair(lhs, rhs, n.Ref)
		if !okW {
			return fail()
		}
		if n.Op == syntax.BinModulo && rt.IsFloat() {
			fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Modulo Requires Integer", "'%%' forbids float operands")
			return fail()
		}
		opKind := map[syntax.BinaryOp]mir.OpKind{
			syntax.BinAdd: mir.OpAdd, syntax.BinSubtract: mir.OpSubtract,
			syntax.BinMultiply: mir.OpMultiply, syntax.BinDivide: mir.OpDivide, syntax.BinModulo: mir.OpModulo,
		}[n.Op]
		result := fc.fn.DefineTmp(rt)
		fc.emit(mir.Operation{Kind: opKind, Ref: n.Ref, Result: result, Operands: []mir.TmpID{wl, wr}, Type: rt})
		return ok(result)
	case syntax.BinBitwiseAnd, syntax.BinBitwiseOr, syntax.BinBitwiseXor:
		if !fc.requireUnsigned(lhs, n.Ref) || !fc.requireUnsigned(rhs, n.Ref) {
			return fail()
		}
		wl, wr, rt, okW := fc.widenNumericPair(lhs, rhs, n.Ref)
		if !okW {
			return fail()
		}
		opKind := map[syntax.BinaryOp]mir.OpKind{
			syntax.BinBitwiseAnd: mir.OpBitwiseAnd, syntax.BinBitwiseOr: mir.OpBitwiseOr, syntax.BinBitwiseXor: mir.OpBitwiseXor,
		}[n.Op]
		result := fc.fn.DefineTmp(rt)
		fc.emit(mir.Operation{Kind: opKind, Ref: n.Ref, Result: result, Operands: []mir.TmpID{wl, wr}, Type: rt})
		return ok(result)
	case syntax.BinShiftLeft, syntax.BinShiftRight:
		if !fc.requireUnsigned(lhs, n.Ref) || !fc.requireUnsigned(rhs, n.Ref) {
			return fail()
		}
		lt := fc.fn.TmpType(lhs)
		opKind := mir.OpShiftLeft
		if n.Op == syntax.BinShiftRight {
			opKind = mir.OpShiftRight
		}
		result := fc.fn.DefineTmp(lt)
		fc.emit(mir.Operation{Kind: opKind, Ref: n.Ref, Result: result, Operands: []mir.TmpID{lhs, rhs}, Type: lt})
		return ok(result)
	case syntax.BinCompareLT, syntax.BinCompareGT, syntax.BinCompareLE, syntax.BinCompareGE, syntax.BinCompareEQ, syntax.BinCompareNE:
		wl, wr, okW := fc.prepareComparisonOperands(n.Op, lhs, rhs, n.Ref)
		if !okW {
			return fail()
		}
		opKind := map[syntax.BinaryOp]mir.OpKind{
			syntax.BinCompareLT: mir.OpCompareLT, syntax.BinCompareGT: mir.OpCompareGT,
			syntax.BinCompareLE: mir.OpCompareLE, syntax.BinCompareGE: mir.OpCompareGE,
			syntax.BinCompareEQ: mir.OpCompareEQ, syntax.BinCompareNE: mir.OpCompareNE,
		}[n.Op]
		result := fc.fn.DefineTmp(fc.r.Module.Types.Bool())
		fc.emit(mir.Operation{Kind: opKind, Ref: n.Ref, Result: result, Operands: []mir.TmpID{wl, wr}, Type: fc.r.Module.Types.Bool()})
		return ok(result)
	}
	fc.bug(n.Ref, "unhandled binary operator %d", n.Op)
	return fail()
}

// VisitLogical lowers && and || as a faithful short-circuit diamond of
// blocks (spec §9's resolved open question), rather than as a single
// non-short-circuiting op: for `a && b`, evaluate `a`; if false, jump
// straight to `done` with the result false; otherwise evaluate `b` and
// jump to `done` with its value. `||` is the mirror image.
func (v *exprLowerer) VisitLogical(n *syntax.Logical) interface{} {
	fc := v.fc
	lhs, ok1 := fc.lowerExpr(n.Left)
	if !ok1 {
		return fail()
	}
	if !fc.fn.TmpType(lhs).IsBool() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Logical Operand Must Be Bool", "left operand of logical operator must be bool")
		return fail()
	}

	rhsBlock := fc.newBlock()
	doneBlock := fc.newBlock()
	shortBlock := fc.newBlock()

	if n.Op == syntax.LogicalAnd {
		fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: n.Ref, Operands: []mir.TmpID{lhs}, JumpIfTrue: rhsBlock, JumpIfFalse: shortBlock})
	} else {
		fc.emit(mir.Operation{Kind: mir.OpJumpConditional, Ref: n.Ref, Operands: []mir.TmpID{lhs}, JumpIfTrue: shortBlock, JumpIfFalse: rhsBlock})
	}

	boolType := fc.r.Module.Types.Bool()
	result := fc.fn.DefineTmp(boolType)

	fc.setBlock(shortBlock)
	shortVal := fc.fn.DefineTmp(boolType)
	fc.emit(mir.Operation{Kind: mir.OpLiteralBool, Ref: n.Ref, Result: shortVal, BoolValue: n.Op == syntax.LogicalOr, Type: boolType})
	shortCopy := fc.fn.DefineTmp(boolType)
	fc.emit(mir.Operation{Kind: mir.OpAssign, Ref: n.Ref, Result: shortCopy, Operands: []mir.TmpID{result, shortVal}, Type: boolType})
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: doneBlock})

	fc.setBlock(rhsBlock)
	rhs, ok2 := fc.lowerExpr(n.Right)
	if !ok2 {
		return fail()
	}
	if !fc.fn.TmpType(rhs).IsBool() {
		fc.r.Diags.Addf(diagnostics.KindType, n.Ref, "Logical Operand Must Be Bool", "right operand of logical operator must be bool")
		return fail()
	}
	rhsCopy := fc.fn.DefineTmp(boolType)
	fc.emit(mir.Operation{Kind: mir.OpAssign, Ref: n.Ref, Result: rhsCopy, Operands: []mir.TmpID{result, rhs}, Type: boolType})
	fc.emit(mir.Operation{Kind: mir.OpJump, Ref: n.Ref, JumpTarget: doneBlock})

	fc.setBlock(doneBlock)
	return ok(result)
}

func (v *exprLowerer) VisitAssign(n *syntax.Assign) interface{} {
	fc := v.fc
	value, okVal := fc.lowerExpr(n.Value)
	if !okVal {
		return fail()
	}
	result := fc.assignTo(n.Target, value, n.Ref)
	return ok(result)
}

func (v *exprLowerer) VisitCompoundAssign(n *syntax.CompoundAssign) interface{} {
	fc := v.fc
	lhs, ok1 := fc.lowerExpr(n.Target)
	rhs, ok2 := fc.lowerExpr(n.Value)
	if !ok1 || !ok2 {
		return fail()
	}
	var wl, wr mir.TmpID
	var rt *types.Type
	var okW bool
	switch n.Op {
	case syntax.BinBitwiseAnd, syntax.BinBitwiseOr, syntax.BinBitwiseXor, syntax.BinShiftLeft, syntax.BinShiftRight:
		if !fc.requireUnsigned(lhs, n.Ref) || !fc.requireUnsigned(rhs, n.Ref) {
			return fail()
		}
		if n.Op == syntax.BinShiftLeft || n.Op == syntax.BinShiftRight {
			wl, wr, rt = lhs, rhs, fc.fn.TmpType(lhs)
			okW = true
		} else {
			wl, wr, rt, okW = fc.widenNumericPair(lhs, rhs, n.Ref)
		}
	default:
		wl, wr, rt, okW = fc.widenNumericPair(lhs, rhs, n.Ref)
	}
	if !okW {
		return fail()
	}
	opKind := map[syntax.BinaryOp]mir.OpKind{
		syntax.BinAdd: mir.OpAdd, syntax.BinSubtract: mir.OpSubtract, syntax.BinMultiply: mir.OpMultiply,
		syntax.BinDivide: mir.OpDivide, syntax.BinModulo: mir.OpModulo,
		syntax.BinBitwiseAnd: mir.OpBitwiseAnd, syntax.BinBitwiseOr: mir.OpBitwiseOr, syntax.BinBitwiseXor: mir.OpBitwiseXor,
		syntax.BinShiftLeft: mir.OpShiftLeft, syntax.BinShiftRight: mir.OpShiftRight,
	}[n.Op]
	newVal := fc.fn.DefineTmp(rt)
	fc.emit(mir.Operation{Kind: opKind, Ref: n.Ref, Result: newVal, Operands: []mir.TmpID{wl, wr}, Type: rt})
	result := fc.assignTo(n.Target, newVal, n.Ref)
	return ok(result)
}

// assignTo lowers the store implied by `target = valueTmp`, enforcing
// spec §4.3's assignment rules: LHS/RHS must share a canonical type,
// except assigning a pointer to a reference-typed LHS (requires unsafe)
// and assigning a reference to a pointer-typed LHS (always allowed).
// Void and composite assignment are rejected.
func (fc *fctx) assignTo(target syntax.Expr, valueTmp mir.TmpID, ref diagnostics.SourceReference) mir.TmpID {
	lhsTmp, okLHS := fc.lowerExpr(target)
	if !okLHS {
		return 0
	}
	lt := fc.fn.TmpType(lhsTmp)
	rt := fc.fn.TmpType(valueTmp)
	if lt.IsVoid() || lt.IsComposite() {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Invalid Assignment Target", "cannot assign to %s", fmtType(lt))
		return 0
	}
	switch {
	case types.SameCanonical(lt, rt):
		// ok
	case lt.IsReference() && rt.IsPointer():
		if !fc.tracker.IsUnsafe() {
			fc.r.Diags.Addf(diagnostics.KindSafety, ref, "Pointer-to-reference Assignment Outside Unsafe",
				"assigning a pointer to a reference requires an 'unsafe' context")
			return 0
		}
	case lt.IsPointer() && rt.IsReference():
		// always allowed
	default:
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Assignment Type Mismatch",
			"cannot assign %s to %s", fmtType(rt), fmtType(lt))
		return 0
	}
	result := fc.fn.DefineTmp(lt)
	fc.emit(mir.Operation{Kind: mir.OpAssign, Ref: ref, Result: result, Operands: []mir.TmpID{lhsTmp, valueTmp}, Type: lt})
	return result
}
