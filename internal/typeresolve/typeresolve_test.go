package typeresolve

import (
	"testing"

	"jlangc/internal/nsresolve"
	"jlangc/internal/syntax"
	"jlangc/internal/types"
)

func TestExtractWrapsPointerReferenceAndArray(t *testing.T) {
	reg := types.NewRegistry()
	r := NewResolver(reg)
	ns := nsresolve.NewContext()

	got, ok := r.Extract(&syntax.TypeSpecifier{Name: "u32", PointerDepth: 2}, ns)
	if !ok {
		t.Fatalf("expected u32** to resolve")
	}
	if !got.IsPointer() || !got.Elem.IsPointer() || !got.Elem.Elem.IsInteger() {
		t.Fatalf("expected a pointer-to-pointer-to-u32, got %s", got.CanonicalName())
	}

	arr, ok := r.Extract(&syntax.TypeSpecifier{Name: "f64", IsArray: true, ArrayLen: 4}, ns)
	if !ok || !arr.IsArray() {
		t.Fatalf("expected f64[4] to resolve to an array type")
	}
}

func TestExtractResolvesRegisteredComposite(t *testing.T) {
	reg := types.NewRegistry()
	r := NewResolver(reg)
	ns := nsresolve.NewContext()
	ns.NewChild("Widget", nsresolve.KindClass, nsresolve.Public)

	composite := reg.Composite("Widget", nil, nil)
	r.RegisterComposite("Widget", composite)

	got, ok := r.Extract(&syntax.TypeSpecifier{Name: "Widget"}, ns)
	if !ok {
		t.Fatalf("expected Widget to resolve as a registered composite")
	}
	if !types.SameCanonical(got, composite) {
		t.Fatalf("expected the registered composite type back, got %s", got.CanonicalName())
	}
}

func TestExtractFailsForUnknownName(t *testing.T) {
	reg := types.NewRegistry()
	r := NewResolver(reg)
	ns := nsresolve.NewContext()

	if _, ok := r.Extract(&syntax.TypeSpecifier{Name: "Nonexistent"}, ns); ok {
		t.Fatalf("expected an unresolvable base name to fail")
	}
}
