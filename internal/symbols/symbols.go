// Package symbols is the L0 symbol table: a flat map from fully-qualified
// name to a typed global or function declaration, as described in spec
// §3 "Symbol".
package symbols

import (
	"jlangc/internal/diagnostics"
	"jlangc/internal/types"
)

// Symbol is a fully-qualified name bound to a Type and the source
// location where it was declared or defined.
type Symbol struct {
	Name       string
	Type       *types.Type
	DeclaredAt diagnostics.SourceReference
}

// Table maps canonical fully-qualified names to Symbols. It is shared,
// read-only from the perspective of function-body lowering: internal/lower's
// declaration pass populates it before any function body is lowered.
type Table struct {
	byName map[string]*Symbol
}

func NewTable() *Table {
	return &Table{byName: make(map[string]*Symbol)}
}

// Define registers a symbol, returning false (and leaving the table
// unchanged) if the name is already defined — callers decide whether
// that is an error (it usually is, outside of forward-declaration
// matching, which is handled explicitly by the function resolver).
func (t *Table) Define(sym *Symbol) bool {
	if _, exists := t.byName[sym.Name]; exists {
		return false
	}
	t.byName[sym.Name] = sym
	return true
}

// Redefine overwrites (or inserts) a symbol unconditionally. Used by the
// function resolver once it has verified a forward declaration matches
// so the recorded symbol points at the final, defining source location.
func (t *Table) Redefine(sym *Symbol) {
	t.byName[sym.Name] = sym
}

// Lookup returns the symbol bound to a fully-qualified name, if any.
func (t *Table) Lookup(fqn string) (*Symbol, bool) {
	s, ok := t.byName[fqn]
	return s, ok
}
