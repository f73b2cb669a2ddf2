package diag

import "jopa/internal/source"

// New builds a diagnostic without notes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithCandidate points at the declaration of an overload that took part in
// resolving the call. Callables without a source location, such as the
// java.lang prelude, add nothing.
func (d Diagnostic) WithCandidate(decl source.Span, header string) Diagnostic {
	if decl.Empty() {
		return d
	}
	d.Notes = append(d.Notes, Note{Span: decl, Msg: header, Kind: NoteCandidate})
	return d
}

// Candidates returns the headers of the candidate notes in order.
func (d Diagnostic) Candidates() []string {
	var out []string
	for _, n := range d.Notes {
		if n.Kind == NoteCandidate {
			out = append(out, n.Msg)
		}
	}
	return out
}

func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{Title: title, Edits: edits})
	return d
}
