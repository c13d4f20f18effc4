package nsresolve

import "testing"

func TestLookupFindsNestedPublicNamespace(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("outer", KindNamespace, Public)
	ctx.Push("outer")
	ctx.NewChild("inner", KindNamespace, Public)
	ctx.Pop()

	res := ctx.Lookup("outer::inner")
	if res.Reason != ReasonFound {
		t.Fatalf("expected ReasonFound, got %v", res.Reason)
	}
	if res.Node.Name != "inner" {
		t.Fatalf("expected node %q, got %q", "inner", res.Node.Name)
	}
}

func TestLookupAbsolutePathFromRoot(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("a", KindNamespace, Public)
	ctx.Push("a")
	ctx.NewChild("b", KindNamespace, Public)
	ctx.Push("b")

	res := ctx.Lookup("::a::b")
	if res.Reason != ReasonFound {
		t.Fatalf("expected ReasonFound, got %v", res.Reason)
	}
	if res.Node.QualifiedPath() != "::a::b" {
		t.Fatalf("expected qualified path ::a::b, got %s", res.Node.QualifiedPath())
	}
}

func TestLookupPrivateMemberVisibleOnlyFromOwnScope(t *testing.T) {
	tests := []struct {
		name       string
		searchFrom func(ctx *Context)
		want       Reason
	}{
		{
			name: "from inside the declaring class",
			searchFrom: func(ctx *Context) {
				ctx.Push("widgets")
				ctx.Push("Gadget")
			},
			want: ReasonFound,
		},
		{
			name: "from a sibling namespace",
			searchFrom: func(ctx *Context) {
				ctx.NewChild("other", KindNamespace, Public)
				ctx.Push("other")
			},
			want: ReasonNotFoundPrivate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := NewContext()
			ctx.NewChild("widgets", KindNamespace, Public)
			ctx.Push("widgets")
			ctx.NewChild("Gadget", KindClass, Public)
			ctx.Push("Gadget")
			ctx.NewChild("secretField", KindTypedef, Private)
			ctx.Pop() // back to widgets
			ctx.Pop() // back to root

			tc.searchFrom(ctx)
			res := ctx.Lookup("widgets::Gadget::secretField")
			if res.Reason != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, res.Reason)
			}
		})
	}
}

func TestLookupProtectedVisibleFromParentNamespace(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("lib", KindNamespace, Public)
	ctx.Push("lib")
	ctx.NewChild("helper", KindTypedef, Protected)

	res := ctx.Lookup("lib::helper")
	if res.Reason != ReasonFound {
		t.Fatalf("expected protected member visible from its own parent namespace, got %v", res.Reason)
	}
}

func TestEffectiveVisibilityTakesMostRestrictiveToRoot(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("outer", KindNamespace, Private)
	ctx.Push("outer")
	inner, _ := ctx.NewChild("inner", KindNamespace, Public)

	if got := inner.EffectiveVisibility(); got != Private {
		t.Fatalf("expected effective visibility Private (most restrictive to root), got %v", got)
	}
}

func TestNamedUsingAliasResolvesThroughTarget(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("long", KindNamespace, Public)
	ctx.Push("long")
	ctx.NewChild("path", KindNamespace, Public)
	ctx.Push("path")
	ctx.NewChild("marker", KindTypedef, Public)
	pathScope := ctx.Current()
	ctx.Pop()
	ctx.Pop()

	ctx.AddUsing("lp", pathScope)

	if res := ctx.Lookup("lp::nonexistent"); res.Reason != ReasonNotFound {
		t.Fatalf("expected NotFound for a nonexistent member, got %v", res.Reason)
	}
	if res := ctx.Lookup("lp::marker"); res.Reason != ReasonFound {
		t.Fatalf("expected alias lp::marker to resolve, got %v", res.Reason)
	}
}

func TestAnonymousUsingFlattensTargetChildren(t *testing.T) {
	ctx := NewContext()
	ctx.NewChild("detail", KindNamespace, Public)
	ctx.Push("detail")
	ctx.NewChild("Impl", KindClass, Public)
	detail := ctx.Current()
	ctx.Pop()

	ctx.AddUsing("", detail)

	res := ctx.Lookup("Impl")
	if res.Reason != ReasonFound {
		t.Fatalf("expected anonymous using to flatten detail::Impl into current scope, got %v", res.Reason)
	}
}
