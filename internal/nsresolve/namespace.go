// Package nsresolve implements the L1 namespace resolver: a tree of
// scopes with using-aliases and visibility, ported from the original
// compiler's frontend/namespace.cpp (JLang::frontend::namespaces).
package nsresolve

import "strings"

// Kind discriminates what a Scope node represents.
type Kind int

const (
	KindNamespace Kind = iota
	KindTypedef
	KindClass
)

// Visibility orders from least to most restrictive, matching the
// original's VISIBILITY_PUBLIC=0 < VISIBILITY_PROTECTED=1 <
// VISIBILITY_PRIVATE=2 so "effective visibility" can be computed by a
// simple max() walk to the root.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// Scope is one node of the namespace tree: a namespace, typedef, or
// class. Children are owned by their parent; Parent is a non-owning
// back-reference used only to compute canonical paths and visibility.
type Scope struct {
	Name       string
	Kind       Kind
	Visibility Visibility
	Parent     *Scope
	Children   map[string]*Scope
	// Aliases preserves insertion order (the original's std::map iterates
	// in key order, but the spec requires "using aliases within a frame
	// are tried in insertion order", so we keep an explicit slice rather
	// than relying on Go map iteration order, which is randomized).
	aliasOrder []string
	Aliases    map[string]*Scope
}

func newScope(name string, kind Kind, visibility Visibility, parent *Scope) *Scope {
	return &Scope{
		Name:       name,
		Kind:       kind,
		Visibility: visibility,
		Parent:     parent,
		Children:   make(map[string]*Scope),
		Aliases:    make(map[string]*Scope),
	}
}

// EffectiveVisibility walks up to the root and returns the maximum
// (most restrictive) visibility among this node and all its ancestors,
// per namespace.cpp's Namespace::effective_visibility.
func (s *Scope) EffectiveVisibility() Visibility {
	max := s.Visibility
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if cur.Visibility > max {
			max = cur.Visibility
		}
	}
	return max
}

// QualifiedParentPath is the "::"-joined path of this node's parent
// chain, excluding this node's own name — namespace.cpp's
// fully_qualified_ns. Protected-visibility checks compare against this,
// not QualifiedPath, because protection is scoped to the *containing*
// namespace, not the declaration itself.
func (s *Scope) QualifiedParentPath() string {
	if s.Parent == nil {
		return ""
	}
	var parts []string
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		if cur.Name != "" {
			parts = append([]string{cur.Name}, parts...)
		}
	}
	return "::" + strings.Join(parts, "::")
}

// QualifiedPath is this node's own fully qualified name — namespace.cpp's
// fully_qualified.
func (s *Scope) QualifiedPath() string {
	return strings.TrimSuffix(s.QualifiedParentPath(), "::") + "::" + s.Name
}

// Reason tags why a lookup did or didn't resolve.
type Reason int

const (
	ReasonFound Reason = iota
	ReasonNotFoundPrivate
	ReasonNotFoundProtected
	ReasonNotFound
)

// LookupResult is the tagged outcome of Context.Lookup.
type LookupResult struct {
	Reason Reason
	Node   *Scope // non-nil only when Reason == ReasonFound
}

// Context is the scope stack threaded through parsing: an ordered list
// of scopes from root to current, mirroring NamespaceContext.
type Context struct {
	Root  *Scope
	stack []*Scope
}

// NewContext creates a context whose root scope is empty-named, public,
// and has no parent, per the spec's Scope invariant.
func NewContext() *Context {
	root := newScope("", KindNamespace, Public, nil)
	return &Context{Root: root, stack: []*Scope{root}}
}

// Current returns the innermost scope frame.
func (c *Context) Current() *Scope {
	return c.stack[len(c.stack)-1]
}

// NewChild adds (or returns the existing) child of the current scope
// without changing the stack — namespace_new. Returns false if a child
// with that name already exists with a different kind, since "child
// names unique per parent" is a Scope invariant.
func (c *Context) NewChild(name string, kind Kind, visibility Visibility) (*Scope, bool) {
	cur := c.Current()
	if existing, ok := cur.Children[name]; ok {
		return existing, existing.Kind == kind
	}
	child := newScope(name, kind, visibility, cur)
	cur.Children[name] = child
	return child, true
}

// Push moves the resolution context into the named child of the current
// scope. It is a no-op (returns false) if no such child exists.
func (c *Context) Push(name string) bool {
	cur := c.Current()
	child, ok := cur.Children[name]
	if !ok {
		return false
	}
	c.stack = append(c.stack, child)
	return true
}

// Pop ends definition of the current namespace/class, returning to the
// parent frame.
func (c *Context) Pop() {
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// AddUsing records a `using alias = target;` in the current frame. An
// empty alias name flattens target's children into the current
// namespace (an anonymous using-directive), per spec §4.1.
func (c *Context) AddUsing(alias string, target *Scope) {
	cur := c.Current()
	if _, exists := cur.Aliases[alias]; !exists {
		cur.aliasOrder = append(cur.aliasOrder, alias)
	}
	cur.Aliases[alias] = target
}

// QualifiedPath is the "::"-joined path of the current scope stack,
// namespace_fully_qualified.
func (c *Context) QualifiedPath() string {
	var parts []string
	for _, s := range c.stack {
		if s.Name != "" {
			parts = append(parts, s.Name)
		}
	}
	return "::" + strings.Join(parts, "::")
}

// CurrentPath returns the scope names from root down to the current
// frame, excluding the unnamed root itself — the segments a caller
// would need to Push, in order, to return to this exact context from
// root. Used to re-enter a declaration's namespace when its body is
// lowered on a later pass (see lower.pendingFunction).
func (c *Context) CurrentPath() []string {
	var parts []string
	for _, s := range c.stack {
		if s.Name != "" {
			parts = append(parts, s.Name)
		}
	}
	return parts
}

func splitPath(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, "::")
}

// lookupQualified walks successive path segments through children maps
// starting at root, returning nil if any segment is missing.
func lookupQualified(segments []string, root *Scope) *Scope {
	cur := root
	for _, seg := range segments {
		next, ok := cur.Children[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// checkVisibility converts a resolved node (or nil) plus the requesting
// context's qualified path into a LookupResult, per
// NamespaceContext::namespace_lookup_visibility.
func checkVisibility(searchContext string, found *Scope) LookupResult {
	if found == nil {
		return LookupResult{Reason: ReasonNotFound}
	}
	switch found.EffectiveVisibility() {
	case Public:
		return LookupResult{Reason: ReasonFound, Node: found}
	case Protected:
		// Matches the original's namespace_lookup_visibility: compares
		// against found->parent->fully_qualified_ns() (the *grandparent*
		// path, excluding the parent's own name), not the parent's full
		// path — ported faithfully rather than the spec prose's looser
		// "resolved node's parent path" phrasing.
		foundContext := found.Parent.QualifiedParentPath()
		if strings.HasPrefix(searchContext, foundContext) {
			return LookupResult{Reason: ReasonFound, Node: found}
		}
		return LookupResult{Reason: ReasonNotFoundProtected}
	case Private:
		// Matches found->fully_qualified_ns(): the node's own parent
		// path, excluding the node's own name.
		foundContext := found.QualifiedParentPath()
		if strings.HasPrefix(searchContext, foundContext) {
			return LookupResult{Reason: ReasonFound, Node: found}
		}
		return LookupResult{Reason: ReasonNotFoundPrivate}
	default:
		return LookupResult{Reason: ReasonNotFound}
	}
}

// Lookup parses name as a "::"-separated path and resolves it under the
// rules of spec §4.1: a leading "::" forces an absolute, alias-free
// lookup from the root; otherwise the stack is walked from the current
// frame outward to the root, trying that frame's children and then each
// of its using-aliases (in insertion order) before moving to the parent
// frame. The first successful match's visibility is then checked.
func (c *Context) Lookup(name string) LookupResult {
	if name == "" {
		return LookupResult{Reason: ReasonNotFound}
	}

	searchContext := c.QualifiedPath()

	if strings.HasPrefix(name, "::") {
		segments := splitPath(name[2:])
		found := lookupQualified(segments, c.Root)
		return checkVisibility(searchContext, found)
	}

	segments := splitPath(name)
	for i := len(c.stack) - 1; i >= 0; i-- {
		frame := c.stack[i]
		if found := lookupQualified(segments, frame); found != nil {
			return checkVisibility(searchContext, found)
		}
		for _, aliasName := range frame.aliasOrder {
			aliasTarget := frame.Aliases[aliasName]
			var aliasSegments []string
			if aliasName == "" {
				// Anonymous using: flattens aliasTarget's children
				// directly into this namespace.
				aliasSegments = segments
			} else if rest, ok := stripPrefixSegments(segments, aliasName); ok {
				aliasSegments = rest
			} else {
				continue
			}
			if found := lookupQualified(aliasSegments, aliasTarget); found != nil {
				return checkVisibility(searchContext, found)
			}
		}
	}
	return LookupResult{Reason: ReasonNotFound}
}

// stripPrefixSegments removes a single leading "alias::" qualifier,
// mirroring the original's string_replace_start(name, alias + "::", "").
// It reports false when segments do not start with alias.
func stripPrefixSegments(segments []string, alias string) ([]string, bool) {
	if len(segments) > 0 && segments[0] == alias {
		return segments[1:], true
	}
	return segments, false
}
