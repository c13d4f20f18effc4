// Package diagnostics implements the compiler's error taxonomy and the
// fail-soft collector threaded through namespace resolution, scope
// tracking, and function lowering.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind classifies a Diagnostic the way the spec's error taxonomy does.
type Kind string

const (
	KindResolution   Kind = "resolution"
	KindType         Kind = "type"
	KindSafety       Kind = "safety"
	KindControlFlow  Kind = "control-flow"
	KindLiteral      Kind = "literal"
	KindCompilerBug  Kind = "compiler-bug"
)

// SourceReference pinpoints a span in a translation unit's source text.
// Collaborators (the lexer/parser) attach one to every terminal; the
// core copies them onto MIR operations and diagnostics verbatim.
type SourceReference struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int
	EndCol     int
}

func (r SourceReference) String() string {
	return fmt.Sprintf("%s:%d:%d", r.File, r.StartLine, r.StartCol)
}

// Message pairs a source location with an explanatory note. A Diagnostic
// carries one or more of these so multi-site errors (e.g. a goto that
// skips initialization, which cites the goto, the label, and the skipped
// declaration) can be rendered with full context.
type Message struct {
	Ref  SourceReference
	Text string
}

// Diagnostic is one recorded compiler error. It is never fatal by
// itself; lowering continues so later errors are also surfaced.
type Diagnostic struct {
	Kind     Kind
	Title    string
	Messages []Message
}

// NewDiagnostic starts a Diagnostic with its first message.
func NewDiagnostic(kind Kind, title string, ref SourceReference, text string) *Diagnostic {
	d := &Diagnostic{Kind: kind, Title: title}
	return d.With(ref, text)
}

// With appends another (location, message) pair and returns the receiver,
// so call sites can chain multi-site diagnostics fluently.
func (d *Diagnostic) With(ref SourceReference, text string) *Diagnostic {
	d.Messages = append(d.Messages, Message{Ref: ref, Text: text})
	return d
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", d.Kind, d.Title)
	for _, m := range d.Messages {
		fmt.Fprintf(&sb, "\n  at %s: %s", m.Ref, m.Text)
	}
	return sb.String()
}

// Collector accumulates diagnostics for one translation unit. The
// pipeline is fail-soft: individual errors never abort lowering, but a
// translation unit whose Collector has Failed() must not be handed to
// code generation.
type Collector struct {
	// ID uniquely identifies the translation unit this collector was
	// created for, so multi-file diagnostic batches (see cmd/jlangc,
	// which lowers one unit per goroutine) can be correlated without
	// relying on file path uniqueness alone.
	ID   uuid.UUID
	diags []*Diagnostic
}

// NewCollector creates a Collector stamped with a fresh translation-unit
// identity.
func NewCollector() *Collector {
	return &Collector{ID: uuid.New()}
}

// Add records a diagnostic. Lowering keeps going regardless.
func (c *Collector) Add(d *Diagnostic) {
	c.diags = append(c.diags, d)
}

// Addf is a convenience for single-site diagnostics.
func (c *Collector) Addf(kind Kind, ref SourceReference, title, format string, args ...interface{}) *Diagnostic {
	d := NewDiagnostic(kind, title, ref, fmt.Sprintf(format, args...))
	c.Add(d)
	return d
}

// Bug records an internal invariant violation. It wraps the message with
// github.com/pkg/errors under a "compiler bug" prefix and stores only the
// resulting text in the Diagnostic; no stack trace is kept.
func (c *Collector) Bug(ref SourceReference, format string, args ...interface{}) *Diagnostic {
	wrapped := errors.Wrap(fmt.Errorf(format, args...), "compiler bug")
	d := NewDiagnostic(KindCompilerBug, "Internal invariant violation", ref, wrapped.Error())
	c.Add(d)
	return d
}

// Diagnostics returns all diagnostics recorded so far, in emission order.
func (c *Collector) Diagnostics() []*Diagnostic {
	return c.diags
}

// Failed reports whether any diagnostic was recorded. MIR produced under
// a failed Collector must not be forwarded to a code generator.
func (c *Collector) Failed() bool {
	return len(c.diags) > 0
}
