package driver

import (
	"fmt"
	"strings"

	"jopa/internal/ast"
	"jopa/internal/fixture"
	"jopa/internal/sema"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// SiteReport is the printable outcome of one call site. It carries names
// only so it survives the result cache.
type SiteReport struct {
	Label string `json:"label" msgpack:"label"`
	// Call is "m", "new p.A", "this" or "super".
	Call     string `json:"call" msgpack:"call"`
	State    string `json:"state" msgpack:"state"`
	Callable string `json:"callable,omitempty" msgpack:"callable,omitempty"`
	Type     string `json:"type,omitempty" msgpack:"type,omitempty"`
	Phase    string `json:"phase,omitempty" msgpack:"phase,omitempty"`
	Wrapped  bool   `json:"wrapped,omitempty" msgpack:"wrapped,omitempty"`
	// Rewrite is the accessor that replaces the call, if any.
	Rewrite   string   `json:"rewrite,omitempty" msgpack:"rewrite,omitempty"`
	Anonymous string   `json:"anonymous,omitempty" msgpack:"anonymous,omitempty"`
	Super     string   `json:"super,omitempty" msgpack:"super,omitempty"`
	LocalArgs []string `json:"local_args,omitempty" msgpack:"local_args,omitempty"`
	Throws    []string `json:"throws,omitempty" msgpack:"throws,omitempty"`
}

// String renders the report on one line.
func (s SiteReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s -> %s", s.Label, s.Call, s.State)
	if s.Callable != "" {
		fmt.Fprintf(&sb, " %s", s.Callable)
	}
	if s.Type != "" {
		fmt.Fprintf(&sb, " : %s", s.Type)
	}
	if s.Phase != "" {
		fmt.Fprintf(&sb, " [%s]", s.Phase)
	}
	if s.Wrapped {
		sb.WriteString(" wrapped")
	}
	if s.Rewrite != "" {
		fmt.Fprintf(&sb, " via %s", s.Rewrite)
	}
	if s.Anonymous != "" {
		fmt.Fprintf(&sb, " anonymous %s", s.Anonymous)
	}
	if s.Super != "" {
		fmt.Fprintf(&sb, " super %s", s.Super)
	}
	if len(s.LocalArgs) > 0 {
		fmt.Fprintf(&sb, " captures(%s)", strings.Join(s.LocalArgs, ", "))
	}
	if len(s.Throws) > 0 {
		fmt.Fprintf(&sb, " throws %s", strings.Join(s.Throws, ", "))
	}
	return sb.String()
}

// siteReports lists the sites of fx in program order.
func siteReports(fx *fixture.Fixture) []SiteReport {
	in := fx.Types
	sites := fx.Unit.Sites.Slice()
	out := make([]SiteReport, 0, len(sites))
	for i := range sites {
		s := &sites[i]
		res := &s.Result
		rep := SiteReport{
			Label: s.Label,
			Call:  callText(in, s),
			State: res.State.String(),
		}
		if rep.Label == "" {
			rep.Label = fmt.Sprintf("#%d", s.ID)
		}
		if res.Callable.IsValid() {
			rep.Callable = qualifiedHeader(fx.Table, res.Callable)
			rep.Phase = sema.Phase(res.Phase).String()
			rep.Wrapped = res.Wrapped
		}
		if res.Type.IsValid() && res.State != ast.Unresolved {
			rep.Type = in.Name(res.Type)
		}
		if res.Rewrite != nil {
			rep.Rewrite = qualifiedHeader(fx.Table, res.Rewrite.Callable)
		}
		if res.Anonymous.IsValid() {
			rep.Anonymous = in.QualifiedName(res.Anonymous)
		}
		if si := res.SuperInvocation; si != nil {
			rep.Super = qualifiedHeader(fx.Table, si.Callable)
		}
		for _, a := range res.LocalArgs {
			rep.LocalArgs = append(rep.LocalArgs, exprText(in, a))
		}
		for _, t := range res.Throws {
			rep.Throws = append(rep.Throws, in.Name(t))
		}
		out = append(out, rep)
	}
	return out
}

func callText(in *types.Interner, s *ast.CallSite) string {
	switch k := s.Kind.(type) {
	case ast.MethodCall:
		return k.Name
	case ast.New:
		return "new " + in.Name(k.Class)
	case ast.ThisCall:
		return "this"
	case ast.SuperCall:
		return "super"
	}
	return "?"
}

func qualifiedHeader(t *symbols.Table, id symbols.MethodID) string {
	m := t.Method(id)
	if m == nil {
		return "<none>"
	}
	return t.Types.QualifiedName(m.Owner) + "." + t.Header(id)
}

func exprText(in *types.Interner, e *ast.Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprLocal:
		return e.Name
	case ast.ExprThis:
		return in.Name(e.Type) + ".this"
	case ast.ExprNull, ast.ExprNullPlaceholder:
		return "null"
	}
	return e.Kind.String() + ":" + in.Name(e.Type)
}
