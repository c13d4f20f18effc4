// Package lower implements the function-definition resolver (spec §4.3):
// it drives namespace-resolved, type-extracted syntax into validated
// MIR, threading the scope/safety tracker (internal/scopetrack) and
// consulting the type resolver collaborator (internal/typeresolve) and
// namespace resolver (internal/nsresolve) along the way. Grounded in the
// teacher's two bytecode compilers (internal/compiler, internal/compregister)
// for the general shape of a tree-walking lowering pass with jump-patching
// and a register/scope bookkeeping struct, generalized here to emit MIR
// operations instead of bytecode.
package lower

import (
	"strings"

	"jlangc/internal/diagnostics"
	"jlangc/internal/mir"
	"jlangc/internal/nsresolve"
	"jlangc/internal/scopetrack"
	"jlangc/internal/symbols"
	"jlangc/internal/syntax"
	"jlangc/internal/typeresolve"
	"jlangc/internal/types"
)

// Resolver lowers one translation unit's parsed syntax.File into a
// mir.Module. It owns the shared, per-unit state: the type registry, the
// symbol table, the namespace context built during parsing, and the
// diagnostics collector every subordinate stage reports into.
type Resolver struct {
	Module *mir.Module
	NS     *nsresolve.Context
	TR     *typeresolve.Resolver
	Diags  *diagnostics.Collector

	pending []pendingFunction
}

type pendingFunction struct {
	def        *syntax.FunctionDef
	qualified  string
	nsPath     []string // scope names from root to the function's declaring namespace/class, for re-entry during body lowering
	isMethod   bool
	classType  *types.Type
	className  string
	declArgs   []syntax.Param // the prior forward declaration's params, for mismatch checks (nil if none)
	declRet    *types.Type
	declUnsafe bool
	hasDecl    bool
}

func NewResolver(ns *nsresolve.Context, diags *diagnostics.Collector) *Resolver {
	reg := types.NewRegistry()
	return &Resolver{
		Module: mir.NewModule(reg, symbols.NewTable()),
		NS:     ns,
		TR:     typeresolve.NewResolver(reg),
		Diags:  diags,
	}
}

// LowerFile processes an entire parsed translation unit: a declaration
// pass that populates the symbol table and registers composite types,
// followed by a body-lowering pass over every function and method
// encountered, matching spec §4.3's "Classify / Build signature / ...
// / Goto fixup" pipeline per function.
func (r *Resolver) LowerFile(f *syntax.File) {
	for _, d := range f.Decls {
		r.declareTopLevel(d)
	}
	for _, pf := range r.pending {
		r.lowerFunction(pf)
	}
}

func (r *Resolver) declareTopLevel(d syntax.TopLevel) {
	switch n := d.(type) {
	case *syntax.NamespaceDecl:
		r.NS.Push(n.Name)
		for _, inner := range n.Decls {
			r.declareTopLevel(inner)
		}
		r.NS.Pop()
	case *syntax.UsingDecl:
		res := r.NS.Lookup(n.Target)
		if res.Reason != nsresolve.ReasonFound {
			r.Diags.Addf(diagnostics.KindResolution, n.Ref, "Unresolved Using Target",
				"using-target %q does not resolve", n.Target)
			return
		}
		r.NS.AddUsing(n.Alias, res.Node)
	case *syntax.ClassDecl:
		r.declareClass(n)
	case *syntax.FunctionDecl:
		r.declareFreeFunctionDecl(n)
	case *syntax.FunctionDef:
		r.declareFreeFunctionDef(n)
	}
}

func (r *Resolver) qualifiedName(name string) string {
	if ctx := strings.TrimPrefix(r.NS.QualifiedPath(), "::"); ctx != "" {
		return ctx + "::" + name
	}
	return name
}

func (r *Resolver) resolveType(ts *syntax.TypeSpecifier) (*types.Type, bool) {
	t, ok := r.TR.Extract(ts, r.NS)
	if !ok {
		r.Diags.Addf(diagnostics.KindResolution, ts.Ref, "Unresolved Type", "type %q does not resolve", ts.Name)
		return nil, false
	}
	return t, true
}

func (r *Resolver) declareClass(c *syntax.ClassDecl) {
	r.NS.NewChild(c.Name, nsresolve.KindClass, toNSVisibility(c.Visibility))
	r.NS.Push(c.Name)
	qualified := strings.TrimPrefix(r.NS.QualifiedPath(), "::")

	var fields []types.Field
	for _, fld := range c.Fields {
		ft, ok := r.resolveType(fld.Type)
		if !ok {
			continue
		}
		fields = append(fields, types.Field{Name: fld.Name, Type: ft})
	}

	// Placeholder registration so method bodies referencing the class
	// itself (a field or argument of type `ClassName*`) resolve even
	// before methods are attached. The registry interns composites by
	// canonical name and will not construct a second Type for the same
	// name, so the method list is attached by mutating this same Type's
	// Methods field below once every method signature is known, rather
	// than by calling Composite() again.
	composite := r.Module.Types.Composite(qualified, fields, nil)
	r.TR.RegisterComposite(qualified, composite)

	var methods []types.Method
	for _, decl := range c.MethodDecls {
		mt, ok := r.methodFunctionPointer(decl.ReturnType, decl.Params, decl.IsUnsafe)
		if !ok {
			continue
		}
		methods = append(methods, types.Method{Name: decl.Name, Function: mt})
		sym := &symbols.Symbol{Name: qualified + "::" + decl.Name, Type: mt, DeclaredAt: decl.Ref}
		r.Module.Symbols.Define(sym)
	}
	for _, def := range c.Methods {
		mt, ok := r.methodFunctionPointer(def.ReturnType, def.Params, def.IsUnsafe)
		if !ok {
			continue
		}
		methods = append(methods, types.Method{Name: def.Name, Function: mt})
		symName := qualified + "::" + def.Name
		if existing, ok := r.Module.Symbols.Lookup(symName); ok {
			if !types.SameCanonical(existing.Type, mt) {
				r.Diags.Addf(diagnostics.KindResolution, def.Ref, "Mismatched Method Declaration",
					"method %q does not match its prior declaration", def.Name).
					With(existing.DeclaredAt, "declared here")
			}
		} else {
			r.Module.Symbols.Define(&symbols.Symbol{Name: symName, Type: mt, DeclaredAt: def.Ref})
		}
		r.pending = append(r.pending, pendingFunction{
			def: def, qualified: symName, nsPath: r.NS.CurrentPath(), isMethod: true, classType: composite, className: qualified,
		})
	}

	composite.Methods = methods

	r.NS.Pop()
}

func (r *Resolver) methodFunctionPointer(ret *syntax.TypeSpecifier, params []syntax.Param, isUnsafe bool) (*types.Type, bool) {
	retType, ok := r.resolveType(ret)
	if !ok {
		return nil, false
	}
	var paramTypes []*types.Type
	for _, p := range params {
		pt, ok := r.resolveType(p.Type)
		if !ok {
			return nil, false
		}
		paramTypes = append(paramTypes, pt)
	}
	return r.Module.Types.FunctionPointer(paramTypes, retType, isUnsafe), true
}

func (r *Resolver) declareFreeFunctionDecl(d *syntax.FunctionDecl) {
	fp, ok := r.methodFunctionPointer(d.ReturnType, d.Params, d.IsUnsafe)
	if !ok {
		return
	}
	name := r.qualifiedName(d.Name)
	r.Module.Symbols.Define(&symbols.Symbol{Name: name, Type: fp, DeclaredAt: d.Ref})
}

func (r *Resolver) declareFreeFunctionDef(def *syntax.FunctionDef) {
	fp, ok := r.methodFunctionPointer(def.ReturnType, def.Params, def.IsUnsafe)
	if !ok {
		return
	}
	name := r.qualifiedName(def.Name)
	if existing, ok := r.Module.Symbols.Lookup(name); ok {
		if !types.SameCanonical(existing.Type, fp) {
			r.Diags.Addf(diagnostics.KindResolution, def.Ref, "Mismatched Function Declaration",
				"function %q does not match its prior declaration", def.Name).
				With(existing.DeclaredAt, "declared here")
		}
		r.Module.Symbols.Redefine(&symbols.Symbol{Name: name, Type: fp, DeclaredAt: def.Ref})
	} else {
		r.Module.Symbols.Define(&symbols.Symbol{Name: name, Type: fp, DeclaredAt: def.Ref})
	}
	r.pending = append(r.pending, pendingFunction{def: def, qualified: name, nsPath: r.NS.CurrentPath()})
}

func toNSVisibility(v syntax.VisibilityTag) nsresolve.Visibility {
	switch v {
	case syntax.VisProtected:
		return nsresolve.Protected
	case syntax.VisPrivate:
		return nsresolve.Private
	default:
		return nsresolve.Public
	}
}

// fctx is the mutable state threaded through lowering of a single
// function body — the teacher's compregister.Compiler carries an
// equivalent bundle (RegisterAllocator, Scope stack, LoopInfo) for its
// own lowering pass.
type fctx struct {
	r          *Resolver
	fn         *mir.Function
	tracker    *scopetrack.Tracker
	curBlock   mir.BlockID
	localTypes map[string]*types.Type
	labelBlocks map[string]mir.BlockID
	classType  *types.Type // non-nil inside a method
	thisTmp    mir.TmpID
	isMethod   bool
}

func (fc *fctx) emit(op mir.Operation) {
	fc.fn.Block(fc.curBlock).Append(op)
}

func (fc *fctx) newBlock() mir.BlockID {
	return fc.fn.AddBlock()
}

func (fc *fctx) setBlock(id mir.BlockID) {
	fc.curBlock = id
}

// pushNamespacePath re-enters the scope a pendingFunction was declared
// in, so type and identifier resolution during body lowering sees the
// same namespace context the declaration pass saw, not the root it has
// unwound back to by the time r.pending is drained.
func (r *Resolver) pushNamespacePath(path []string) {
	for _, seg := range path {
		r.NS.Push(seg)
	}
}

func (r *Resolver) popNamespacePath(path []string) {
	for range path {
		r.NS.Pop()
	}
}

func (r *Resolver) lowerFunction(pf pendingFunction) {
	r.pushNamespacePath(pf.nsPath)
	defer r.popNamespacePath(pf.nsPath)

	retType, ok := r.resolveType(pf.def.ReturnType)
	if !ok {
		retType = r.Module.Types.Void()
	}
	fn := mir.NewFunction(pf.qualified, retType, pf.def.IsUnsafe, pf.def.Ref)

	tracker := scopetrack.NewTracker(pf.def.IsUnsafe, r.Diags)
	fc := &fctx{r: r, fn: fn, tracker: tracker, curBlock: fn.EntryBlock, localTypes: make(map[string]*types.Type), labelBlocks: make(map[string]mir.BlockID)}

	if pf.isMethod {
		fc.isMethod = true
		fc.classType = pf.classType
		thisType := r.Module.Types.PointerTo(pf.classType)
		thisTmp := fn.DefineTmp(thisType)
		fc.thisTmp = thisTmp
		fn.Args = append(fn.Args, mir.Argument{Name: "<this>", Type: thisType, TypeRef: pf.def.Ref, NameRef: pf.def.Ref})
	}
	for _, p := range pf.def.Params {
		pt, ok := r.resolveType(p.Type)
		if !ok {
			continue
		}
		fn.Args = append(fn.Args, mir.Argument{Name: p.Name, Type: pt, TypeRef: p.Type.Ref, NameRef: p.NameRef})
		if !tracker.DeclareVariable(p.Name, pt, p.NameRef) {
			continue
		}
		fc.localTypes[p.Name] = pt
		tmp := fn.DefineTmp(pt)
		fc.emit(mir.Operation{Kind: mir.OpLocalDeclare, Ref: p.NameRef, Result: tmp, Name: p.Name, Type: pt})
	}

	fc.lowerBlock(pf.def.Body, false)

	// Implicit end-of-function completion, per spec §4.3 Reachability:
	// a reachable block without a terminator gets an implicit ReturnVoid
	// if the function returns void, otherwise a "missing return" error.
	fn.ComputeReachability()
	for id, b := range fn.Blocks {
		if !fn.Reachable(id) || b.HasTerminator() {
			continue
		}
		if retType.IsVoid() {
			b.Append(mir.Operation{Kind: mir.OpReturnVoid, Ref: pf.def.Ref})
		} else {
			r.Diags.Addf(diagnostics.KindControlFlow, pf.def.Ref, "Missing Return",
				"control reaches the end of non-void function %q without a return", pf.def.Name)
		}
	}

	fc.applyGotoFixups()

	r.Module.AddFunction(fn)
}

// applyGotoFixups asks the tracker for every goto's unwind list and
// splices LocalUndeclare operations in at the recorded point, per spec
// §9 "Goto fixup timing" — this happens once, after the whole body has
// been emitted.
func (fc *fctx) applyGotoFixups() {
	fixups := fc.tracker.CheckGotos()
	for _, fx := range fixups {
		block := fc.fn.Block(mir.BlockID(fx.Point.BlockID))
		idx := fx.Point.Location
		for _, name := range fx.Unwind {
			t := fc.localTypes[name]
			tmp := fc.fn.DefineTmp(t)
			block.InsertAt(idx, mir.Operation{Kind: mir.OpLocalUndeclare, Ref: fx.Ref, Result: tmp, Name: name, Type: t})
			idx++
		}
	}
}

func (fc *fctx) bug(ref diagnostics.SourceReference, format string, args ...interface{}) {
	fc.r.Diags.Bug(ref, format, args...)
}

func fmtType(t *types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.CanonicalName()
}
