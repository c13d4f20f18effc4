package mir

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders the function as the textual debug format described in
// spec §6: one "BB<id>:" header per block, one Operation.Describe() line
// per operation, in block-id order. No compatibility is promised across
// versions — this exists for humans reading compiler output, not for
// machine consumption.
func (f *Function) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %s", f.Name)
	if f.IsUnsafe {
		sb.WriteString(" unsafe")
	}
	sb.WriteString(" (")
	for i, a := range f.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", a.Name, a.Type.CanonicalName())
	}
	fmt.Fprintf(&sb, ") -> %s\n", f.ReturnType.CanonicalName())

	ids := make([]int, 0, len(f.Blocks))
	for id := range f.Blocks {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		b := f.Blocks[BlockID(id)]
		fmt.Fprintf(&sb, "BB%d:\n", id)
		for i := range b.Ops {
			fmt.Fprintf(&sb, "  %s\n", b.Ops[i].Describe())
		}
	}
	return sb.String()
}

// Dump renders every function in the module, in registration order.
func (m *Module) Dump() string {
	var sb strings.Builder
	for i, f := range m.Functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.Dump())
	}
	return sb.String()
}
