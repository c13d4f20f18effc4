package mir

import (
	"jlangc/internal/diagnostics"
	"jlangc/internal/types"
)

// BasicBlock is a maximal straight-line sequence of Operations. Per spec
// §3, a block "contains a terminator" iff its last operation is one of
// Jump/JumpConditional/Return/ReturnVoid; operations are normally
// appended, but goto-fixup needs positional insertion (spec §9 "Goto
// fixup timing"), so Ops supports both.
type BasicBlock struct {
	ID   BlockID
	Ops  []Operation

	// ReachableFrom records which block ids this block is reachable from
	// in the forward-traversal sense of spec §4.3 "Reachability" — filled
	// in by Function.ComputeReachability, not maintained incrementally.
	ReachableFrom map[BlockID]bool
}

// HasTerminator reports whether this block's last operation terminates
// it.
func (b *BasicBlock) HasTerminator() bool {
	if len(b.Ops) == 0 {
		return false
	}
	return b.Ops[len(b.Ops)-1].IsTerminator()
}

// Append adds an operation to the end of the block — the common case.
func (b *BasicBlock) Append(op Operation) {
	b.Ops = append(b.Ops, op)
}

// InsertAt splices an operation into the block at instruction index idx,
// shifting later operations down. Used exclusively for goto-fixup
// LocalUndeclare insertion (spec §4.2/§4.3 item 4), since by the time a
// goto's unwind set is known the rest of the function has already been
// lowered.
func (b *BasicBlock) InsertAt(idx int, op Operation) {
	b.Ops = append(b.Ops, Operation{})
	copy(b.Ops[idx+1:], b.Ops[idx:])
	b.Ops[idx] = op
}

// Argument is one function parameter: name, type, and two source
// references (spec §3 MIR Function: "two source references" — one for
// the declaration's type specifier, one for the parameter name itself,
// which the original needs to report mismatched-redeclaration errors
// precisely at either site).
type Argument struct {
	Name        string
	Type        *types.Type
	TypeRef     diagnostics.SourceReference
	NameRef     diagnostics.SourceReference
}

// Function is one fully lowered MIR function.
type Function struct {
	Name       string
	ReturnType *types.Type
	Args       []Argument
	IsUnsafe   bool
	Ref        diagnostics.SourceReference

	Blocks     map[BlockID]*BasicBlock
	EntryBlock BlockID // always 0, by convention

	nextBlockID  int
	nextTmpID    int
	tmpTypes     map[TmpID]*types.Type
	reachableSet map[BlockID]bool
}

// NewFunction constructs an empty Function with its entry block (id 0)
// already allocated, per spec §3's lifecycle: "constructed empty,
// populated by lowering, finalized with reachability analysis".
func NewFunction(name string, returnType *types.Type, isUnsafe bool, ref diagnostics.SourceReference) *Function {
	f := &Function{
		Name:       name,
		ReturnType: returnType,
		IsUnsafe:   isUnsafe,
		Ref:        ref,
		Blocks:     make(map[BlockID]*BasicBlock),
		tmpTypes:   make(map[TmpID]*types.Type),
	}
	f.EntryBlock = f.AddBlock()
	return f
}

// AddBlock allocates a new, empty basic block and returns its id.
func (f *Function) AddBlock() BlockID {
	id := BlockID(f.nextBlockID)
	f.nextBlockID++
	f.Blocks[id] = &BasicBlock{ID: id}
	return id
}

// Block returns the basic block for id. It panics if id is unknown,
// since every BlockID in well-formed MIR must have been allocated by
// AddBlock — this is a compiler-internal invariant, not a user error.
func (f *Function) Block(id BlockID) *BasicBlock {
	b, ok := f.Blocks[id]
	if !ok {
		panic("mir: unknown block id")
	}
	return b
}

// DefineTmp allocates a fresh temporary bound to t. Once bound, a
// temporary's type never changes (spec §3 invariant).
func (f *Function) DefineTmp(t *types.Type) TmpID {
	id := TmpID(f.nextTmpID)
	f.nextTmpID++
	f.tmpTypes[id] = t
	return id
}

// TmpType returns the type a temporary was bound to.
func (f *Function) TmpType(id TmpID) *types.Type {
	return f.tmpTypes[id]
}

// DuplicateTmp allocates a new temporary of the same type as an existing
// one.
func (f *Function) DuplicateTmp(id TmpID) TmpID {
	return f.DefineTmp(f.tmpTypes[id])
}

// TmpCount returns how many temporaries have been allocated, the bound
// every operand id in the function must be less than (spec §8 testable
// property).
func (f *Function) TmpCount() int {
	return f.nextTmpID
}

// ComputeReachability performs the forward traversal from the entry
// block described in spec §4.3: the entry block is always reachable;
// reachability propagates across Jump, JumpConditional (both targets),
// and is not propagated across Return/ReturnVoid (they have no
// successors). Blocks unreachable by this definition may legally lack a
// terminator.
func (f *Function) ComputeReachability() {
	for _, b := range f.Blocks {
		b.ReachableFrom = make(map[BlockID]bool)
	}
	visited := make(map[BlockID]bool)
	var visit func(id BlockID)
	visit = func(id BlockID) {
		if visited[id] {
			return
		}
		visited[id] = true
		b, ok := f.Blocks[id]
		if !ok || len(b.Ops) == 0 {
			return
		}
		last := b.Ops[len(b.Ops)-1]
		switch last.Kind {
		case OpJump:
			f.Blocks[last.JumpTarget].ReachableFrom[id] = true
			visit(last.JumpTarget)
		case OpJumpConditional:
			f.Blocks[last.JumpIfTrue].ReachableFrom[id] = true
			f.Blocks[last.JumpIfFalse].ReachableFrom[id] = true
			visit(last.JumpIfTrue)
			visit(last.JumpIfFalse)
		}
	}
	visit(f.EntryBlock)
	f.reachableSet = visited
}

// Reachable reports whether block id was reached by ComputeReachability.
// Must be called after ComputeReachability.
func (f *Function) Reachable(id BlockID) bool {
	return f.reachableSet[id]
}
