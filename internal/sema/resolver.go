package sema

import (
	"fmt"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/trace"
	"jopa/internal/types"
)

// SourceLevel is the language level call sites are resolved at.
type SourceLevel uint8

const (
	// Source14 resolves with the strict phase only.
	Source14 SourceLevel = iota
	// Source15 adds boxing and variable-arity phases.
	Source15
)

func (l SourceLevel) String() string {
	if l == Source14 {
		return "1.4"
	}
	return "1.5"
}

// ParseSourceLevel accepts "1.3".."1.8" and "5".."8".
func ParseSourceLevel(s string) (SourceLevel, error) {
	switch s {
	case "1.3", "1.4":
		return Source14, nil
	case "1.5", "1.6", "1.7", "1.8", "5", "6", "7", "8", "":
		return Source15, nil
	}
	return Source15, fmt.Errorf("unsupported source level %q", s)
}

// Options are the switches consulted while resolving.
type Options struct {
	Source      SourceLevel
	Deprecation bool
	// Pedantic enables warnings about legal but confusing lookups.
	Pedantic bool
}

// DefaultOptions resolves at 1.5 with deprecation warnings on.
func DefaultOptions() Options {
	return Options{Source: Source15, Deprecation: true}
}

// Resolver holds everything resolution of one unit needs: the symbol
// graph, the diagnostic sink, the options and the unit's import tables.
// It is not safe for concurrent use; units of one universe are resolved
// one after another.
type Resolver struct {
	table    *symbols.Table
	types    *types.Interner
	builtins types.Builtins
	reporter diag.Reporter
	opts     Options
	unit     *ast.Unit

	// pending holds constructor calls waiting for their local class body.
	pending map[types.TypeID][]pendingSite
	// span is the trace span of the site being resolved.
	span *trace.Span
}

// NewResolver binds a resolver to a table and a unit. unit may be nil when
// sites are resolved one by one without imports.
func NewResolver(table *symbols.Table, unit *ast.Unit, reporter diag.Reporter, opts Options) *Resolver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Resolver{
		table:    table,
		types:    table.Types,
		builtins: table.Types.Builtins(),
		reporter: reporter,
		opts:     opts,
		unit:     unit,
		pending:  make(map[types.TypeID][]pendingSite),
	}
}

// Options returns the options the resolver runs with.
func (r *Resolver) Options() Options { return r.opts }

// phases lists the applicability phases enabled by the source level.
func (r *Resolver) phases() []Phase {
	if r.opts.Source < Source15 {
		return []Phase{PhaseStrict}
	}
	return []Phase{PhaseStrict, PhaseLoose, PhaseVariableArity}
}

func (r *Resolver) report(code diag.Code, site *ast.CallSite, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(r.reporter, code, site.Span, fmt.Sprintf(format, args...))
}

func (r *Resolver) warn(code diag.Code, site *ast.CallSite, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportWarning(r.reporter, code, site.Span, fmt.Sprintf(format, args...))
}

// exprType is the static type of an argument or receiver. Call-valued
// expressions take the type their site resolved to.
func (r *Resolver) exprType(e *ast.Expr) types.TypeID {
	if e == nil {
		return types.NoTypeID
	}
	switch e.Kind {
	case ast.ExprNull, ast.ExprNullPlaceholder:
		return r.builtins.Null
	case ast.ExprCall:
		if r.unit == nil || !e.Site.IsValid() {
			return e.Type
		}
		s := r.unit.Site(e.Site)
		if s == nil || s.Result.State == ast.Unresolved || s.Result.State == ast.Failed {
			return r.builtins.Bad
		}
		return s.Result.Type
	}
	if !e.Type.IsValid() {
		return r.builtins.Bad
	}
	return e.Type
}

// argTypes returns the argument types. A bad argument fails the site
// silently since its own site already reported; a void one is reported here.
func (r *Resolver) argTypes(site *ast.CallSite) ([]types.TypeID, error) {
	out := make([]types.TypeID, len(site.Args))
	for i, a := range site.Args {
		out[i] = r.exprType(a)
		if r.types.IsBad(out[i]) {
			return nil, r.fail(site, FailureBadArgument, diag.UnknownCode, nil)
		}
	}
	for i, t := range out {
		if r.types.Kind(t) == types.KindVoid {
			r.report(diag.ResVoidArgument, site, "argument %d of %s has type void", i+1, r.callName(site)).Emit()
			return nil, r.fail(site, FailureBadArgument, diag.ResVoidArgument, nil)
		}
	}
	return out, nil
}

// callHeader renders name(argType, ...) for diagnostics.
func (r *Resolver) callHeader(name string, args []types.TypeID) string {
	return r.table.HeaderOf(name, args, false)
}

func (r *Resolver) className(t types.TypeID) string {
	return r.types.QualifiedName(r.types.ClassOf(t))
}

func (r *Resolver) simpleName(t types.TypeID) string {
	if info, ok := r.types.ClassInfo(t); ok {
		return info.Name
	}
	return r.types.Name(t)
}
