package diag

import (
	"jopa/internal/source"
)

// NoteKind tells a plain note from a pointer at an overload the resolver
// weighed for the call.
type NoteKind uint8

const (
	NoteInfo NoteKind = iota
	NoteCandidate
)

// Label is the word renderers print in front of the note.
func (k NoteKind) Label() string {
	if k == NoteCandidate {
		return "candidate"
	}
	return "note"
}

// Note is a secondary location, usually a declaration in the fixture.
type Note struct {
	Span source.Span
	Msg  string
	Kind NoteKind
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a suggested rewrite, e.g. a corrected method name.
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is one finding about a call site or a fixture document.
// Primary points at the call site step or the offending declaration.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
