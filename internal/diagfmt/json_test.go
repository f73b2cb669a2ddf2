package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"jopa/internal/diag"
	"jopa/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := notFoundBag(t, fs, "calls.yaml")

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "RES3001" {
		t.Errorf("Expected code=RES3001, got %s", d.Code)
	}
	if d.Title != diag.ResMethodNotFound.Title() {
		t.Errorf("Expected title %q, got %q", diag.ResMethodNotFound.Title(), d.Title)
	}
	if d.Location.File != "calls.yaml" {
		t.Errorf("Expected file=calls.yaml, got %s", d.Location.File)
	}
	if d.Location.StartByte != 36 || d.Location.EndByte != 39 {
		t.Errorf("Expected bytes 36..39, got %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 28 || d.Location.EndCol != 31 {
		t.Errorf("Unexpected position %+v", d.Location)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := notFoundBag(t, fs, "calls.yaml")

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions should be omitted, got %+v", loc)
	}
}

func TestJSONMaxTruncatesOutput(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("calls.yaml", []byte(programDoc))
	bag := diag.NewBag(10)
	for range 5 {
		bag.Add(diag.New(diag.SevWarning, diag.ResDeprecatedMethod, source.Span{File: fileID, Start: 36, End: 39}, "deprecated"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", out.Count)
	}
	if bag.Len() != 5 {
		t.Fatalf("Max must not touch the bag, len=%d", bag.Len())
	}
}

func TestJSONNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("calls.yaml", []byte(programDoc))
	primary := source.Span{File: fileID, Start: 36, End: 39}
	d := diag.New(diag.SevError, diag.ResMethodNameMisspelled, primary, "did you mean size()?").
		WithNote(primary, "candidate size()").
		WithCandidate(primary, "p.A.size()").
		WithFix("rename to size", diag.FixEdit{Span: primary, NewText: "size"})
	bag := diag.NewBag(1)
	bag.Add(d)

	bare := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(bare.Diagnostics[0].Notes) != 0 || len(bare.Diagnostics[0].Fixes) != 0 {
		t.Fatalf("notes and fixes should be opt-in: %+v", bare.Diagnostics[0])
	}

	full := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true, IncludeFixes: true, IncludePreviews: true})
	got := full.Diagnostics[0]
	if len(got.Notes) != 2 || got.Notes[0].Message != "candidate size()" || got.Notes[0].Kind != "note" {
		t.Fatalf("unexpected notes: %+v", got.Notes)
	}
	if got.Notes[1].Kind != "candidate" || got.Notes[1].Message != "p.A.size()" {
		t.Fatalf("unexpected candidate note: %+v", got.Notes[1])
	}
	if len(got.Fixes) != 1 || len(got.Fixes[0].Edits) != 1 {
		t.Fatalf("unexpected fixes: %+v", got.Fixes)
	}
	edit := got.Fixes[0].Edits[0]
	if edit.NewText != "size" || len(edit.AfterLines) != 1 || edit.AfterLines[0] != "  - {id: m, in: p.A, call: size}" {
		t.Fatalf("unexpected edit: %+v", edit)
	}
}

func TestJSONAlwaysCarriesTimingNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("calls.yaml", []byte(programDoc))
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: fileID}, "timings").
		WithNote(source.Span{File: fileID}, `{"total_ms":1}`))

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timing notes should always be included: %+v", out.Diagnostics[0])
	}
}
