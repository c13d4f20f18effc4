package lower

import (
	"jlangc/internal/diagnostics"
	"jlangc/internal/mir"
	"jlangc/internal/syntax"
	"jlangc/internal/types"
)

// widenNumericPair applies spec §4.3's usual-arithmetic widening to a
// binary operand pair: within the same signedness class the smaller
// operand is widened to the larger's type via WidenSigned/WidenUnsigned;
// floats widen via WidenFloat. Mixing signed and unsigned integers is an
// error (no implicit signedness conversion). The returned type is the
// operation's result type.
func (fc *fctx) widenNumericPair(lhs, rhs mir.TmpID, ref diagnostics.SourceReference) (mir.TmpID, mir.TmpID, *types.Type, bool) {
	lt := fc.fn.TmpType(lhs)
	rt := fc.fn.TmpType(rhs)
	if !lt.IsNumeric() || !rt.IsNumeric() {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Non-numeric Operand",
			"both operands must be numeric, got %s and %s", fmtType(lt), fmtType(rt))
		return 0, 0, nil, false
	}
	if lt.IsFloat() != rt.IsFloat() {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Mixed Integer/Float Operands",
			"cannot mix %s and %s without an explicit conversion", fmtType(lt), fmtType(rt))
		return 0, 0, nil, false
	}
	if lt.IsFloat() {
		if lt.FloatWidth == rt.FloatWidth {
			return lhs, rhs, lt, true
		}
		if lt.FloatWidth > rt.FloatWidth {
			rhs = fc.widenTo(rhs, lt, mir.OpWidenFloat, ref)
			return lhs, rhs, lt, true
		}
		lhs = fc.widenTo(lhs, rt, mir.OpWidenFloat, ref)
		return lhs, rhs, rt, true
	}
	if lt.IsSigned() != rt.IsSigned() {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Mixed Signedness",
			"cannot mix signed and unsigned operands (%s and %s) without an explicit conversion", fmtType(lt), fmtType(rt))
		return 0, 0, nil, false
	}
	widenOp := mir.OpWidenUnsigned
	if lt.IsSigned() {
		widenOp = mir.OpWidenSigned
	}
	if lt.IntWidth == rt.IntWidth {
		return lhs, rhs, lt, true
	}
	if lt.IntWidth > rt.IntWidth {
		rhs = fc.widenTo(rhs, lt, widenOp, ref)
		return lhs, rhs, lt, true
	}
	lhs = fc.widenTo(lhs, rt, widenOp, ref)
	return lhs, rhs, rt, true
}

// prepareComparisonOperands enforces spec §4.3's comparison rules:
// numeric operand pairs go through the usual arithmetic widening so
// `<`/`>`/`<=`/`>=`/`=`/`!=` compare like-width operands; non-numeric
// operands (bool, pointer, reference) must already share a canonical
// type, composite and void are rejected outright, and pointers/
// references only permit `=`/`!=`.
func (fc *fctx) prepareComparisonOperands(op syntax.BinaryOp, lhs, rhs mir.TmpID, ref diagnostics.SourceReference) (mir.TmpID, mir.TmpID, bool) {
	lt := fc.fn.TmpType(lhs)
	rt := fc.fn.TmpType(rhs)
	if lt.IsNumeric() && rt.IsNumeric() {
		wl, wr, _, okW := fc.widenNumericPair(lhs, rhs, ref)
		return wl, wr, okW
	}
	if lt.IsVoid() || rt.IsVoid() || lt.IsComposite() || rt.IsComposite() {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Comparison Requires Comparable Types",
			"cannot compare %s and %s", fmtType(lt), fmtType(rt))
		return 0, 0, false
	}
	if !types.SameCanonical(lt, rt) {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Comparison Type Mismatch",
			"cannot compare %s and %s", fmtType(lt), fmtType(rt))
		return 0, 0, false
	}
	if (lt.IsPointer() || lt.IsReference()) && op != syntax.BinCompareEQ && op != syntax.BinCompareNE {
		fc.r.Diags.Addf(diagnostics.KindType, ref, "Ordered Comparison On Pointer",
			"only '=' and '!=' are permitted on pointer/reference operands")
		return 0, 0, false
	}
	return lhs, rhs, true
}

func (fc *fctx) widenTo(operand mir.TmpID, target *types.Type, op mir.OpKind, ref diagnostics.SourceReference) mir.TmpID {
	result := fc.fn.DefineTmp(target)
	fc.emit(mir.Operation{Kind: op, Ref: ref, Result: result, Operands: []mir.TmpID{operand}, Type: target})
	return result
}

// requireUnsigned rejects a signed or float operand for bitwise/shift
// operators, per spec §4.3: "bitwise/shift require unsigned operands".
func (fc *fctx) requireUnsigned(tmp mir.TmpID, ref diagnostics.SourceReference) bool {
	t := fc.fn.TmpType(tmp)
	if t.IsUnsigned() {
		return true
	}
	fc.r.Diags.Addf(diagnostics.KindType, ref, "Bitwise Operand Must Be Unsigned",
		"bitwise and shift operators require unsigned integer operands, got %s", fmtType(t))
	return false
}
