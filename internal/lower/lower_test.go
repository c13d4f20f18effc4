package lower

import (
	"testing"

	"jlangc/internal/diagnostics"
	"jlangc/internal/lexer"
	"jlangc/internal/mir"
	"jlangc/internal/nsresolve"
	"jlangc/internal/syntax"
)

// compileSource runs the full lex/parse/resolve/lower pipeline over src
// and returns the resulting module and collector, matching the shape of
// the driver's own compileOne (cmd/jlangc/compile.go).
func compileSource(t *testing.T, src string) (*mir.Module, *diagnostics.Collector) {
	t.Helper()
	diags := diagnostics.NewCollector()
	toks := lexer.NewScanner(src).ScanTokens()
	ns := nsresolve.NewContext()
	p := syntax.NewParser(toks, "test.jl", ns, diags)
	tree := p.ParseFile()
	r := NewResolver(ns, diags)
	r.LowerFile(tree)
	return r.Module, diags
}

func TestLowerArithmeticAddition(t *testing.T) {
	mod, diags := compileSource(t, `
		u32 f() {
			u32 a = 3u32;
			u32 b = a + 5u32;
			return b;
		}
	`)
	if diags.Failed() {
		t.Fatalf("unexpected diagnostics: %v", diags.Diagnostics())
	}
	fn := mod.Function("f")
	if fn == nil {
		t.Fatalf("expected function f to be lowered")
	}
	var sawAdd bool
	for _, b := range fn.Blocks {
		for _, op := range b.Ops {
			if op.Kind == mir.OpAdd {
				sawAdd = true
			}
		}
	}
	if !sawAdd {
		t.Fatalf("expected an add operation in:\n%s", fn.Dump())
	}
}

func TestLowerIfElseBothBranchesReturn(t *testing.T) {
	mod, diags := compileSource(t, `
		u32 f(u32 x) {
			if (x > 0u32) {
				return x;
			} else {
				return 0u32;
			}
		}
	`)
	if diags.Failed() {
		t.Fatalf("unexpected diagnostics: %v", diags.Diagnostics())
	}
	if mod.HasErrors() {
		t.Fatalf("expected no structural MIR errors, got:\n%s", mod.Function("f").Dump())
	}
}

func TestLowerWhileLoop(t *testing.T) {
	mod, diags := compileSource(t, `
		u32 f() {
			u32 i = 0u32;
			while (i < 10u32) {
				i = i + 1u32;
			}
			return i;
		}
	`)
	if diags.Failed() {
		t.Fatalf("unexpected diagnostics: %v", diags.Diagnostics())
	}
	if mod.HasErrors() {
		t.Fatalf("expected well-formed MIR, got:\n%s", mod.Function("f").Dump())
	}
}

func TestLowerDereferenceOutsideUnsafeIsRejected(t *testing.T) {
	_, diags := compileSource(t, `
		u32 f(u32* p) {
			return *p;
		}
	`)
	if !diags.Failed() {
		t.Fatalf("expected a safety diagnostic for a raw-pointer dereference outside unsafe")
	}
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Kind == diagnostics.KindSafety {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a KindSafety diagnostic, got %v", diags.Diagnostics())
	}
}

func TestLowerDereferenceInsideUnsafeIsAccepted(t *testing.T) {
	_, diags := compileSource(t, `
		unsafe u32 f(u32* p) {
			return *p;
		}
	`)
	if diags.Failed() {
		t.Fatalf("unexpected diagnostics for an unsafe-context dereference: %v", diags.Diagnostics())
	}
}

func TestLowerGotoSkippingInitializationIsRejected(t *testing.T) {
	_, diags := compileSource(t, `
		u32 f() {
			goto skip;
			u32 y = 1u32;
			skip:
			return y;
		}
	`)
	if !diags.Failed() {
		t.Fatalf("expected a control-flow diagnostic for a goto that skips initialization")
	}
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Kind == diagnostics.KindControlFlow {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a KindControlFlow diagnostic, got %v", diags.Diagnostics())
	}
}

func TestLowerMismatchedForwardDeclarationIsRejected(t *testing.T) {
	_, diags := compileSource(t, `
		u32 f();
		i32 f() {
			return 0i32;
		}
	`)
	if !diags.Failed() {
		t.Fatalf("expected a diagnostic for a return-type mismatch against the forward declaration")
	}
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Title == "Mismatched Function Declaration" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Mismatched Function Declaration diagnostic, got %v", diags.Diagnostics())
	}
}
