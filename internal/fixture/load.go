package fixture

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/sema"
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// ErrNoFile is returned when the file id is unknown to the file set.
var ErrNoFile = errors.New("fixture file not found in file set")

// Options are the per-file overrides of the configured resolver options.
type Options struct {
	Source      *sema.SourceLevel
	Deprecation *bool
	Pedantic    *bool
}

// Apply returns base with the overrides of o applied.
func (o Options) Apply(base sema.Options) sema.Options {
	if o.Source != nil {
		base.Source = *o.Source
	}
	if o.Deprecation != nil {
		base.Deprecation = *o.Deprecation
	}
	if o.Pedantic != nil {
		base.Pedantic = *o.Pedantic
	}
	return base
}

// Fixture is one loaded file: its own universe plus the program to resolve
// against it.
type Fixture struct {
	File    source.FileID
	Path    string
	Types   *types.Interner
	Table   *symbols.Table
	Unit    *ast.Unit
	Options Options
	// Classes are the declared classes in declaration order.
	Classes []types.TypeID
}

// Load reads path into fs and builds its fixture. Problems inside the
// document are reported to r; the returned error covers I/O and YAML
// syntax only.
func Load(fs *source.FileSet, path string, r diag.Reporter) (*Fixture, error) {
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return Parse(fs, id, r)
}

// Parse builds the fixture for a file already present in fs.
func Parse(fs *source.FileSet, file source.FileID, r diag.Reporter) (*Fixture, error) {
	f := fs.Get(file)
	if f == nil {
		return nil, ErrNoFile
	}
	doc, err := decodeDocument(f.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	in := types.NewInterner()
	l := &loader{
		fs:       fs,
		file:     file,
		types:    in,
		builtins: in.Builtins(),
		table:    symbols.NewTable(in),
		reporter: r,
	}
	l.table.SetResolver(&signatureResolver{l: l})
	fx := &Fixture{
		File:  file,
		Path:  f.Path,
		Types: in,
		Table: l.table,
		Unit:  ast.NewUnit(file, f.Path),
	}
	fx.Options = l.options(doc.Options)
	l.buildUniverse(doc.Classes)
	for _, c := range l.classes {
		fx.Classes = append(fx.Classes, c.id)
	}
	l.buildImports(fx.Unit, &doc.Imports)
	l.buildProgram(fx.Unit, doc.Program)
	return fx, nil
}

// loader carries the state shared by every build pass of one file.
type loader struct {
	fs       *source.FileSet
	file     source.FileID
	types    *types.Interner
	builtins types.Builtins
	table    *symbols.Table
	reporter diag.Reporter
	classes  []*declared
}

// declared pairs a registered class with the document entry declaring it.
type declared struct {
	id     types.TypeID
	doc    *classDoc
	params []typeParamDecl
}

func (l *loader) span(p position, n int) source.Span {
	line, lerr := safecast.Conv[uint32](p.Line)
	col, cerr := safecast.Conv[uint32](p.Column)
	if line == 0 || lerr != nil || cerr != nil {
		return source.Span{File: l.file}
	}
	width, err := safecast.Conv[uint32](n)
	if err != nil || width == 0 {
		width = 1
	}
	return l.fs.SpanAt(l.file, source.LineCol{Line: line, Col: col}, width)
}

func (l *loader) errorf(code diag.Code, p position, n int, format string, args ...any) {
	diag.ReportError(l.reporter, code, l.span(p, n), fmt.Sprintf(format, args...)).Emit()
}

func (l *loader) options(doc *optionsDoc) Options {
	var o Options
	if doc == nil {
		return o
	}
	if doc.Source != nil {
		level, err := sema.ParseSourceLevel(*doc.Source)
		if err != nil {
			l.errorf(diag.PrjBadOption, doc.Pos, len(*doc.Source), "%v", err)
		} else {
			o.Source = &level
		}
	}
	o.Deprecation = doc.Deprecation
	o.Pedantic = doc.Pedantic
	return o
}
