// Package typeresolve implements the type-resolver collaborator spec §6
// describes as external to the core: turning an as-written
// syntax.TypeSpecifier into an interned *types.Type, given the current
// namespace context for resolving qualified composite names.
package typeresolve

import (
	"strings"

	"jlangc/internal/nsresolve"
	"jlangc/internal/syntax"
	"jlangc/internal/types"
)

var primitiveNames = map[string]struct {
	width  types.IntWidth
	signed bool
}{
	"u8": {types.Width8, false}, "u16": {types.Width16, false},
	"u32": {types.Width32, false}, "u64": {types.Width64, false},
	"i8": {types.Width8, true}, "i16": {types.Width16, true},
	"i32": {types.Width32, true}, "i64": {types.Width64, true},
}

var floatNames = map[string]types.FloatWidth{
	"f32": types.WidthF32,
	"f64": types.WidthF64,
}

// Resolver extracts *types.Type values from syntax.TypeSpecifier nodes.
// It is a thin collaborator, not part of the three core subsystems, and
// is grounded in spec §6's `extract_from_type_specifier`.
type Resolver struct {
	Registry *types.Registry
	// Composites maps a class's fully-qualified name to its registered
	// composite type, populated as class declarations are registered.
	Composites map[string]*types.Type
}

func NewResolver(reg *types.Registry) *Resolver {
	return &Resolver{Registry: reg, Composites: make(map[string]*types.Type)}
}

// RegisterComposite records a class's composite type under
// its canonical qualified name so later TypeSpecifier resolutions
// referring to it succeed.
func (r *Resolver) RegisterComposite(qualifiedName string, t *types.Type) {
	r.Composites[qualifiedName] = t
}

// Extract resolves ts against the namespace context ns, returning the
// base type wrapped in ts's pointer depth, then reference, then array
// length. ok is false if the base name doesn't resolve to any known
// type.
func (r *Resolver) Extract(ts *syntax.TypeSpecifier, ns *nsresolve.Context) (*types.Type, bool) {
	base, ok := r.base(ts.Name, ns)
	if !ok {
		return nil, false
	}
	t := base
	for i := 0; i < ts.PointerDepth; i++ {
		t = r.Registry.PointerTo(t)
	}
	if ts.IsReference {
		t = r.Registry.ReferenceTo(t)
	}
	if ts.IsArray {
		t = r.Registry.ArrayOf(t, ts.ArrayLen)
	}
	return t, true
}

func (r *Resolver) base(name string, ns *nsresolve.Context) (*types.Type, bool) {
	if name == "void" {
		return r.Registry.Void(), true
	}
	if name == "bool" {
		return r.Registry.Bool(), true
	}
	if p, ok := primitiveNames[name]; ok {
		return r.Registry.Int(p.width, p.signed), true
	}
	if w, ok := floatNames[name]; ok {
		return r.Registry.Float(w), true
	}
	res := ns.Lookup(name)
	if res.Reason == nsresolve.ReasonFound {
		qualified := strings.TrimPrefix(res.Node.QualifiedPath(), "::")
		if t, ok := r.Composites[qualified]; ok {
			return t, true
		}
	}
	return nil, false
}
