// Package types implements the interned Type registry: the L0 layer that
// owns every Type value used by the rest of the core. Types are
// immutable once created; everything else holds non-owning references
// into the registry, matching the "cyclic ownership" design note (no
// type ever owns another type, only the registry does).
package types

import "fmt"

// Kind discriminates the shape of a Type.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindPointer
	KindReference
	KindArray
	KindComposite
	KindFunctionPointer
	KindMethodCall
)

// IntWidth is the bit width of an integer primitive.
type IntWidth int

const (
	Width8 IntWidth = 8
	Width16 IntWidth = 16
	Width32 IntWidth = 32
	Width64 IntWidth = 64
)

// FloatWidth is the bit width of a float primitive.
type FloatWidth int

const (
	WidthF32 FloatWidth = 32
	WidthF64 FloatWidth = 64
)

// Field is one member of a composite (class) type.
type Field struct {
	Name string
	Type *Type
}

// Method is one method exposed by a composite type; its signature is
// itself a function-pointer Type (with an implicit <this> handled by the
// caller, per spec §4.3).
type Method struct {
	Name     string
	Function *Type // KindFunctionPointer
}

// Type is an interned descriptor. Only the Registry constructs these;
// every field below is set at construction and not mutated afterward,
// except a composite's Methods, which the function resolver attaches
// after registering the class.
type Type struct {
	Kind Kind

	// Primitive integer/float fields.
	IntWidth   IntWidth
	Signed     bool
	FloatWidth FloatWidth

	// Pointer-to / reference-to / array-of.
	Elem      *Type
	ArrayLen  uint64

	// Composite.
	Fields  []Field
	Methods []Method

	// Function-pointer.
	Params    []*Type
	Result    *Type
	IsUnsafe  bool

	// Method-call: pairs a composite receiver with a function-pointer.
	Receiver *Type
	Func     *Type

	canonical string
}

// CanonicalName is the unique, fully-qualified spelling of this type,
// used for identity comparisons across MIR and the symbol table (two
// Types with the same canonical name are the same type — see Registry's
// interning map).
func (t *Type) CanonicalName() string { return t.canonical }

func (t *Type) IsVoid() bool      { return t.Kind == KindVoid }
func (t *Type) IsBool() bool      { return t.Kind == KindBool }
func (t *Type) IsInteger() bool   { return t.Kind == KindInt }
func (t *Type) IsFloat() bool     { return t.Kind == KindFloat }
func (t *Type) IsNumeric() bool   { return t.IsInteger() || t.IsFloat() }
func (t *Type) IsSigned() bool    { return t.Kind == KindInt && t.Signed }
func (t *Type) IsUnsigned() bool  { return t.Kind == KindInt && !t.Signed }
func (t *Type) IsPointer() bool   { return t.Kind == KindPointer }
func (t *Type) IsReference() bool { return t.Kind == KindReference }
func (t *Type) IsArray() bool     { return t.Kind == KindArray }
func (t *Type) IsComposite() bool { return t.Kind == KindComposite }
func (t *Type) IsFunctionPointer() bool { return t.Kind == KindFunctionPointer }
func (t *Type) IsMethodCall() bool      { return t.Kind == KindMethodCall }

// PrimitiveSize returns the size in bytes of primitive kinds (bool,
// integer, float, pointer, reference). Composite and array sizes are
// computed by SizeBytes, which additionally needs field/element layout.
func (t *Type) PrimitiveSize() int {
	switch t.Kind {
	case KindBool:
		return 1
	case KindInt:
		return int(t.IntWidth) / 8
	case KindFloat:
		return int(t.FloatWidth) / 8
	case KindPointer, KindReference:
		return 8
	default:
		return 0
	}
}

// SizeBytes computes this type's size where defined by the spec (§3:
// "a size-in-bytes (computable where defined)"). Function-pointer and
// method-call types have no size; callers must not call sizeof on them.
func (t *Type) SizeBytes() (int, bool) {
	switch t.Kind {
	case KindVoid:
		return 0, true
	case KindBool, KindInt, KindFloat, KindPointer, KindReference:
		return t.PrimitiveSize(), true
	case KindArray:
		elemSize, ok := t.Elem.SizeBytes()
		if !ok {
			return 0, false
		}
		return elemSize * int(t.ArrayLen), true
	case KindComposite:
		total := 0
		for _, f := range t.Fields {
			sz, ok := f.Type.SizeBytes()
			if !ok {
				return 0, false
			}
			total += sz
		}
		return total, true
	default:
		return 0, false
	}
}

// Registry owns every interned Type for one translation unit. All
// pointer-to/reference-to/array-of/method-call constructions the core
// synthesizes during lowering go through here so that two requests for
// "pointer to u32" return the identical *Type (pointer equality implies
// type equality for primitives and derived types; composite equality
// still compares by CanonicalName since two distinct classes could in
// principle share a registry instance across translation units only by
// construction mistake — this registry is always per-unit).
type Registry struct {
	byName map[string]*Type
}

// NewRegistry creates an empty registry and interns the built-in
// primitives (void, bool, u8..u64, i8..i64, f32, f64).
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Type)}
	r.intern(&Type{Kind: KindVoid, canonical: "void"})
	r.intern(&Type{Kind: KindBool, canonical: "bool"})
	for _, w := range []IntWidth{Width8, Width16, Width32, Width64} {
		r.intern(&Type{Kind: KindInt, IntWidth: w, Signed: false, canonical: fmt.Sprintf("u%d", w)})
		r.intern(&Type{Kind: KindInt, IntWidth: w, Signed: true, canonical: fmt.Sprintf("i%d", w)})
	}
	r.intern(&Type{Kind: KindFloat, FloatWidth: WidthF32, canonical: "f32"})
	r.intern(&Type{Kind: KindFloat, FloatWidth: WidthF64, canonical: "f64"})
	return r
}

func (r *Registry) intern(t *Type) *Type {
	if existing, ok := r.byName[t.canonical]; ok {
		return existing
	}
	r.byName[t.canonical] = t
	return t
}

// Lookup returns a previously interned type by canonical name, if any.
func (r *Registry) Lookup(canonical string) (*Type, bool) {
	t, ok := r.byName[canonical]
	return t, ok
}

// Void, Bool, Int, Float return the built-in primitives. Int panics on
// an invalid width; Float returns f64 for WidthF64 and f32 for any other
// width.
func (r *Registry) Void() *Type { t, _ := r.Lookup("void"); return t }
func (r *Registry) Bool() *Type { t, _ := r.Lookup("bool"); return t }

func (r *Registry) Int(width IntWidth, signed bool) *Type {
	prefix := "u"
	if signed {
		prefix = "i"
	}
	t, ok := r.Lookup(fmt.Sprintf("%s%d", prefix, width))
	if !ok {
		panic(fmt.Sprintf("types: invalid integer width %d", width))
	}
	return t
}

func (r *Registry) Float(width FloatWidth) *Type {
	name := "f32"
	if width == WidthF64 {
		name = "f64"
	}
	t, _ := r.Lookup(name)
	return t
}

// PointerTo interns (or returns the existing) pointer-to-elem type.
func (r *Registry) PointerTo(elem *Type) *Type {
	return r.intern(&Type{Kind: KindPointer, Elem: elem, canonical: "*" + elem.CanonicalName()})
}

// ReferenceTo interns (or returns the existing) reference-to-elem type.
func (r *Registry) ReferenceTo(elem *Type) *Type {
	return r.intern(&Type{Kind: KindReference, Elem: elem, canonical: "&" + elem.CanonicalName()})
}

// ArrayOf interns (or returns the existing) array-of-elem,N type.
func (r *Registry) ArrayOf(elem *Type, n uint64) *Type {
	name := fmt.Sprintf("[%s;%d]", elem.CanonicalName(), n)
	return r.intern(&Type{Kind: KindArray, Elem: elem, ArrayLen: n, canonical: name})
}

// FunctionPointer interns (or returns the existing) function-pointer
// type for the given signature.
func (r *Registry) FunctionPointer(params []*Type, result *Type, isUnsafe bool) *Type {
	name := "fn("
	for i, p := range params {
		if i > 0 {
			name += ","
		}
		name += p.CanonicalName()
	}
	name += ")->" + result.CanonicalName()
	if isUnsafe {
		name = "unsafe " + name
	}
	return r.intern(&Type{Kind: KindFunctionPointer, Params: params, Result: result, IsUnsafe: isUnsafe, canonical: name})
}

// MethodCall interns the pairing of a composite receiver with a
// function-pointer, used as the type of a `obj.method` expression before
// it is called (spec §4.3 Dot/GetMethod).
func (r *Registry) MethodCall(receiver, fn *Type) *Type {
	name := receiver.CanonicalName() + "::" + fn.CanonicalName()
	return r.intern(&Type{Kind: KindMethodCall, Receiver: receiver, Func: fn, canonical: name})
}

// Composite interns a named class/struct type. The caller (the type
// resolver collaborator, or the core synthesizing a built-in) supplies
// fields and methods; composites are identified purely by canonical name
// so re-declaring the same name returns the first definition — callers
// needing to detect redefinition must check Lookup before calling this.
func (r *Registry) Composite(canonicalName string, fields []Field, methods []Method) *Type {
	return r.intern(&Type{Kind: KindComposite, Fields: fields, Methods: methods, canonical: canonicalName})
}

// SameCanonical reports whether two types are identical by canonical
// name — the comparison the spec mandates for call-argument matching,
// switch-case matching, and comparison-operator operands.
func SameCanonical(a, b *Type) bool {
	return a != nil && b != nil && a.CanonicalName() == b.CanonicalName()
}
