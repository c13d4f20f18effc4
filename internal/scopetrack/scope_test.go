package scopetrack

import (
	"testing"

	"jlangc/internal/diagnostics"
	"jlangc/internal/types"
)

func ref(line int) diagnostics.SourceReference {
	return diagnostics.SourceReference{File: "t.jl", StartLine: line, StartCol: 1}
}

func TestDeclareVariableRejectsDuplicateAcrossChain(t *testing.T) {
	diags := diagnostics.NewCollector()
	reg := types.NewRegistry()
	tr := NewTracker(false, diags)

	if ok := tr.DeclareVariable("x", reg.Int(types.Width32, true), ref(1)); !ok {
		t.Fatalf("expected first declaration of x to succeed")
	}

	tr.Push(false)
	if ok := tr.DeclareVariable("x", reg.Int(types.Width32, true), ref(2)); ok {
		t.Fatalf("expected redeclaration of x in a nested scope to fail")
	}
	if !diags.Failed() {
		t.Fatalf("expected a duplicate-local diagnostic to be recorded")
	}
}

func TestIsUnsafePropagatesFromRootAndFromPush(t *testing.T) {
	diags := diagnostics.NewCollector()
	tr := NewTracker(true, diags)
	if !tr.IsUnsafe() {
		t.Fatalf("expected root-level unsafe fn to report IsUnsafe")
	}

	diags2 := diagnostics.NewCollector()
	tr2 := NewTracker(false, diags2)
	tr2.Push(true)
	if !tr2.IsUnsafe() {
		t.Fatalf("expected a pushed unsafe block to report IsUnsafe")
	}
	tr2.Pop()
	if tr2.IsUnsafe() {
		t.Fatalf("expected IsUnsafe to clear once the unsafe block is popped")
	}
}

func TestVariablesToUnwindForBreakCrossesNonLoopFrames(t *testing.T) {
	diags := diagnostics.NewCollector()
	reg := types.NewRegistry()
	tr := NewTracker(false, diags)

	tr.PushLoop(99, 98)
	tr.DeclareVariable("loopVar", reg.Int(types.Width32, true), ref(1))

	// An `if` block nested inside the loop body is its own (non-loop)
	// frame; break must still unwind across it.
	tr.Push(false)
	tr.DeclareVariable("innerVar", reg.Int(types.Width32, true), ref(2))

	got := tr.VariablesToUnwindForBreak()
	want := []string{"innerVar", "loopVar"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestCheckGotosFlagsUndefinedLabel(t *testing.T) {
	diags := diagnostics.NewCollector()
	tr := NewTracker(false, diags)

	tr.AddGoto("nowhere", FunctionPoint{BlockID: 0, Location: 0}, ref(1))
	fixups := tr.CheckGotos()

	if len(fixups) != 0 {
		t.Fatalf("expected no fixups for an undefined label, got %v", fixups)
	}
	if !diags.Failed() {
		t.Fatalf("expected an undefined-label diagnostic")
	}
}

func TestCheckGotosFlagsSkippedInitialization(t *testing.T) {
	diags := diagnostics.NewCollector()
	reg := types.NewRegistry()
	tr := NewTracker(false, diags)

	tr.AddGoto("skip", FunctionPoint{BlockID: 0, Location: 0}, ref(1))
	tr.DeclareVariable("y", reg.Int(types.Width32, true), ref(2))
	tr.ResolveLabel("skip", 1, ref(3))

	fixups := tr.CheckGotos()
	if len(fixups) != 0 {
		t.Fatalf("expected no fixups when the goto would skip initialization, got %v", fixups)
	}
	if !diags.Failed() {
		t.Fatalf("expected a skipped-initialization diagnostic")
	}
}

func TestCheckGotosProducesUnwindListForBackwardJump(t *testing.T) {
	diags := diagnostics.NewCollector()
	reg := types.NewRegistry()
	tr := NewTracker(false, diags)

	tr.ResolveLabel("top", 0, ref(1))
	tr.DeclareVariable("a", reg.Int(types.Width32, true), ref(2))
	tr.DeclareVariable("b", reg.Int(types.Width32, true), ref(3))
	tr.AddGoto("top", FunctionPoint{BlockID: 1, Location: 0}, ref(4))

	fixups := tr.CheckGotos()
	if diags.Failed() {
		t.Fatalf("expected a legal backward goto to produce no diagnostics, got %v", diags.Diagnostics())
	}
	if len(fixups) != 1 {
		t.Fatalf("expected exactly one fixup, got %d", len(fixups))
	}
	want := []string{"b", "a"}
	got := fixups[0].Unwind
	if len(got) != len(want) {
		t.Fatalf("expected unwind order %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected unwind order %v, got %v", want, got)
		}
	}
}
