package diag

import (
	"testing"

	"jopa/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	builtin := fs.AddVirtual(BuiltinPath, []byte("class Object\n"))
	userFile := fs.Add("/workspace/testdata/calls.yaml", []byte("a\nb\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     ResMethodOverloadNotFound,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: builtin, Start: 0, End: 0}, Msg: "skip me"},
				{Span: source.Span{File: userFile, Start: 2, End: 3}, Msg: "candidate here"},
			},
		},
		{
			Severity: SevWarning,
			Code:     ResDeprecatedMethod,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
	}

	expected := "error RES3002 testdata/calls.yaml:1:1 first line second\n" +
		"note RES3002 testdata/calls.yaml:2:1 candidate here\n" +
		"warning RES3020 testdata/calls.yaml:2:1 another"

	if got := FormatGoldenDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatShortDiagnostics(diags[:1], fs, true); got == "" {
		t.Fatalf("short output must not be empty")
	}
}

func TestCodeIDRoundTrip(t *testing.T) {
	for _, code := range []Code{ResMethodNotFound, ResAmbiguousConstructor, PrjUnknownType, IOLoadFileError} {
		got, ok := ParseCode(code.ID())
		if !ok || got != code {
			t.Fatalf("ParseCode(%q) = %v, %v", code.ID(), got, ok)
		}
	}
	if ResMethodNotFound.ID() != "RES3001" {
		t.Fatalf("unexpected id %s", ResMethodNotFound.ID())
	}
}

func TestDedupReporterDropsRepeats(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 0, Start: 1, End: 2}
	ReportError(r, ResMethodNotFound, sp, "m").Emit()
	ReportError(r, ResMethodNotFound, sp, "m").Emit()
	ReportWarning(r, ResDeprecatedMethod, sp, "m").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 1 {
		t.Fatalf("expected 1 suppressed repeat, got %d", r.Suppressed())
	}
	// Another span is another site.
	ReportError(r, ResMethodNotFound, source.Span{File: 0, Start: 5, End: 6}, "m").Emit()
	if bag.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", bag.Len())
	}
}

func TestCandidateNotes(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	file := fs.Add("/workspace/calls.yaml", []byte("f(int)\nf(long)\n"), 0)
	d := New(SevError, ResAmbiguousMethod, source.Span{File: file, Start: 0, End: 1}, "ambiguous").
		WithCandidate(source.Span{File: file, Start: 0, End: 1}, "p.A.f(int)").
		WithCandidate(source.Span{}, "java.lang.Object.equals(java.lang.Object)").
		WithCandidate(source.Span{File: file, Start: 7, End: 8}, "p.A.f(long)").
		WithNote(source.Span{File: file, Start: 7, End: 8}, "plain")

	if got := d.Candidates(); len(got) != 2 || got[0] != "p.A.f(int)" || got[1] != "p.A.f(long)" {
		t.Fatalf("unexpected candidates %v", got)
	}
	if d.Notes[2].Kind != NoteInfo || d.Notes[2].Kind.Label() != "note" {
		t.Fatalf("plain note mislabelled: %+v", d.Notes[2])
	}

	expected := "candidate RES3009 calls.yaml:1:1 p.A.f(int)\n" +
		"error RES3009 calls.yaml:1:1 ambiguous\n" +
		"candidate RES3009 calls.yaml:2:1 p.A.f(long)\n" +
		"note RES3009 calls.yaml:2:1 plain"
	if got := FormatGoldenDiagnostics([]*Diagnostic{&d}, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagSortAndLimit(t *testing.T) {
	bag := NewBag(3)
	bag.Add(New(SevError, ResMethodNotFound, source.Span{Start: 9, End: 10}, "late"))
	bag.Add(New(SevWarning, ResDeprecatedMethod, source.Span{Start: 1, End: 2}, "warn"))
	bag.Add(New(SevError, ResAmbiguousMethod, source.Span{Start: 1, End: 2}, "err"))
	if bag.Add(New(SevError, ResMethodNotFound, source.Span{}, "dropped")) {
		t.Fatalf("expected limit to reject fourth diagnostic")
	}
	bag.Sort()
	items := bag.Items()
	if items[0].Code != ResAmbiguousMethod || items[1].Code != ResDeprecatedMethod || items[2].Message != "late" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !bag.HasErrors() || bag.Filter(SevError).Len() != 2 {
		t.Fatalf("unexpected error filtering")
	}
}
