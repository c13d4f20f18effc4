package mir

import (
	"jlangc/internal/symbols"
	"jlangc/internal/types"
)

// Module is the top-level compiled unit: the interned type registry, the
// global symbol table, and the ordered set of lowered functions, per
// spec §4.4 MIR Module.
type Module struct {
	Types     *types.Registry
	Symbols   *symbols.Table
	Functions []*Function
}

// NewModule creates an empty module sharing the given type registry and
// symbol table. The module holds them by reference, so entries the
// function resolver adds after construction are visible through it.
func NewModule(reg *types.Registry, syms *symbols.Table) *Module {
	return &Module{Types: reg, Symbols: syms}
}

// AddFunction registers a fully lowered function with the module.
func (m *Module) AddFunction(f *Function) {
	m.Functions = append(m.Functions, f)
}

// Function looks up a function by name, returning nil if absent.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasErrors reports whether any function in the module still contains a
// reachable block without a terminator — per spec §7, "MIR with any
// error must not be forwarded downstream", this is the structural half
// of that check (the diagnostics collector carries the rest).
func (m *Module) HasErrors() bool {
	for _, f := range m.Functions {
		f.ComputeReachability()
		for id, b := range f.Blocks {
			if f.Reachable(id) && !b.HasTerminator() {
				return true
			}
		}
	}
	return false
}
