package mir

import (
	"strings"
	"testing"

	"jlangc/internal/diagnostics"
	"jlangc/internal/symbols"
	"jlangc/internal/types"
)

func TestComputeReachabilitySkipsBlockAfterReturn(t *testing.T) {
	reg := types.NewRegistry()
	fn := NewFunction("f", reg.Void(), false, diagnostics.SourceReference{})

	dead := fn.AddBlock()
	fn.Block(fn.EntryBlock).Append(Operation{Kind: OpReturnVoid})
	fn.Block(dead).Append(Operation{Kind: OpReturnVoid})

	fn.ComputeReachability()

	if !fn.Reachable(fn.EntryBlock) {
		t.Fatalf("expected entry block to be reachable")
	}
	if fn.Reachable(dead) {
		t.Fatalf("expected a block with no incoming jump to be unreachable")
	}
}

func TestComputeReachabilityFollowsBothConditionalTargets(t *testing.T) {
	reg := types.NewRegistry()
	fn := NewFunction("f", reg.Void(), false, diagnostics.SourceReference{})

	thenBlock := fn.AddBlock()
	elseBlock := fn.AddBlock()
	fn.Block(fn.EntryBlock).Append(Operation{Kind: OpJumpConditional, JumpIfTrue: thenBlock, JumpIfFalse: elseBlock})
	fn.Block(thenBlock).Append(Operation{Kind: OpReturnVoid})
	fn.Block(elseBlock).Append(Operation{Kind: OpReturnVoid})

	fn.ComputeReachability()

	if !fn.Reachable(thenBlock) || !fn.Reachable(elseBlock) {
		t.Fatalf("expected both conditional targets to be reachable")
	}
	if !fn.Block(thenBlock).ReachableFrom[fn.EntryBlock] {
		t.Fatalf("expected ReachableFrom to record the entry block as thenBlock's predecessor")
	}
}

func TestInsertAtSplicesWithoutClobberingLaterOps(t *testing.T) {
	reg := types.NewRegistry()
	fn := NewFunction("f", reg.Void(), false, diagnostics.SourceReference{})
	b := fn.Block(fn.EntryBlock)

	first := fn.DefineTmp(reg.Int(types.Width32, true))
	second := fn.DefineTmp(reg.Int(types.Width32, true))
	b.Append(Operation{Kind: OpLocalVariable, Result: first, Name: "a"})
	b.Append(Operation{Kind: OpLocalVariable, Result: second, Name: "b"})

	undeclare := Operation{Kind: OpLocalUndeclare, Name: "a"}
	b.InsertAt(1, undeclare)

	if len(b.Ops) != 3 {
		t.Fatalf("expected 3 ops after insert, got %d", len(b.Ops))
	}
	if b.Ops[1].Kind != OpLocalUndeclare {
		t.Fatalf("expected inserted op at index 1, got %v", b.Ops[1].Kind)
	}
	if b.Ops[2].Result != second {
		t.Fatalf("expected the original second op to shift to index 2 intact")
	}
}

func TestHasTerminatorRequiresLastOpToTerminate(t *testing.T) {
	reg := types.NewRegistry()
	fn := NewFunction("f", reg.Void(), false, diagnostics.SourceReference{})
	b := fn.Block(fn.EntryBlock)

	if b.HasTerminator() {
		t.Fatalf("expected an empty block to have no terminator")
	}
	b.Append(Operation{Kind: OpLiteralInt, IntValue: 1})
	if b.HasTerminator() {
		t.Fatalf("expected a non-terminating last op to leave HasTerminator false")
	}
	b.Append(Operation{Kind: OpReturnVoid})
	if !b.HasTerminator() {
		t.Fatalf("expected ReturnVoid to count as a terminator")
	}
}

func TestModuleHasErrorsDetectsUnterminatedReachableBlock(t *testing.T) {
	reg := types.NewRegistry()
	m := NewModule(reg, symbols.NewTable())

	fn := NewFunction("f", reg.Void(), false, diagnostics.SourceReference{})
	// Entry block left without a terminator: structurally invalid MIR.
	m.AddFunction(fn)

	if !m.HasErrors() {
		t.Fatalf("expected HasErrors to flag a reachable block with no terminator")
	}
}

func TestFunctionDumpRendersSignatureAndBlocks(t *testing.T) {
	reg := types.NewRegistry()
	fn := NewFunction("add", reg.Int(types.Width32, true), false, diagnostics.SourceReference{})
	result := fn.DefineTmp(reg.Int(types.Width32, true))
	fn.Block(fn.EntryBlock).Append(Operation{Kind: OpLiteralInt, Result: result, IntValue: 3})
	fn.Block(fn.EntryBlock).Append(Operation{Kind: OpReturn, Operands: []TmpID{result}})

	out := fn.Dump()
	for _, want := range []string{"fn add", "BB0:", "literal-int", "return"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q: %s", want, out)
		}
	}
}
