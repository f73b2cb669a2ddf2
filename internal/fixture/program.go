package fixture

import (
	"strings"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/source"
	"jopa/internal/types"
)

func (l *loader) buildImports(u *ast.Unit, doc *importsDoc) {
	for _, src := range doc.SingleStatic {
		i := strings.LastIndexByte(src, '.')
		if i <= 0 || i == len(src)-1 {
			l.errorf(diag.PrjBadStep, doc.Pos, len(src), "single static import %q must name Type.member", src)
			continue
		}
		if id, ok := l.classOf(src[:i], scope{}, doc.Pos); ok {
			u.Single = append(u.Single, ast.StaticImport{Type: id, Name: src[i+1:]})
		}
	}
	for _, src := range doc.OnDemandStatic {
		name := strings.TrimSuffix(src, ".*")
		if id, ok := l.classOf(name, scope{}, doc.Pos); ok {
			u.OnDemand = append(u.OnDemand, ast.StaticImport{Type: id})
		}
	}
}

// buildProgram turns the program entries into call sites and completion
// steps, in document order.
func (l *loader) buildProgram(u *ast.Unit, steps []stepDoc) {
	for i := range steps {
		st := &steps[i]
		if st.Complete != "" {
			l.completeStep(u, st)
			continue
		}
		l.callStep(u, st)
	}
}

func (l *loader) completeStep(u *ast.Unit, st *stepDoc) {
	class, ok := l.classOf(st.Complete, scope{}, st.Pos)
	if !ok {
		return
	}
	if info, _ := l.types.ClassInfo(class); !info.Is(types.ClassLocal) {
		l.errorf(diag.PrjBadStep, st.Pos, len(st.Complete), "%s is not a local class", st.Complete)
		return
	}
	u.AddComplete(class, l.span(st.Pos, len(st.Complete)))
}

// callName is the text a step's diagnostics point at.
func (st *stepDoc) callName() string {
	switch {
	case st.Call != "":
		return st.Call
	case st.New != "":
		return "new " + st.New
	case st.This:
		return "this"
	case st.Super:
		return "super"
	}
	return st.ID
}

func (st *stepDoc) shapes() int {
	n := 0
	for _, set := range []bool{st.Call != "", st.New != "", st.This, st.Super} {
		if set {
			n++
		}
	}
	return n
}

func (l *loader) callStep(u *ast.Unit, st *stepDoc) {
	name := st.callName()
	if st.shapes() != 1 {
		l.errorf(diag.PrjBadStep, st.Pos, len(name), "step %q needs exactly one of call, new, this, super or complete", st.ID)
		return
	}
	if st.ID != "" {
		if _, dup := u.SiteByLabel(st.ID); dup {
			l.errorf(diag.PrjBadStep, st.Pos, len(name), "step id %q is used twice", st.ID)
			return
		}
	}
	env, ok := l.buildEnv(st)
	if !ok {
		return
	}
	if st.Receiver != nil && st.Call == "" {
		l.errorf(diag.PrjBadStep, st.Pos, len(name), "only method calls take a receiver")
		return
	}
	if st.Outer != nil && (st.Call != "" || st.This) {
		l.errorf(diag.PrjBadStep, st.Pos, len(name), "only new and super take an enclosing instance")
		return
	}
	if st.Body != nil && st.New == "" {
		l.errorf(diag.PrjBadStep, st.Pos, len(name), "only new takes a class body")
		return
	}

	sc := scope{class: env.This()}
	span := l.span(st.Pos, len(name))
	site := ast.CallSite{
		Label:    st.ID,
		Span:     span,
		NameSpan: span,
	}
	for _, src := range st.TypeArgs {
		t := l.typeOf(src, sc, st.Pos)
		if !l.types.IsBad(t) && !l.types.IsReference(t) {
			l.errorf(diag.PrjBadTypeExpr, st.Pos, len(src), "type argument %s is not a reference type", src)
			t = l.builtins.Bad
		}
		site.TypeArgs = append(site.TypeArgs, t)
	}
	for i := range st.Args {
		site.Args = append(site.Args, l.expr(u, env, &st.Args[i]))
	}

	switch {
	case st.Call != "":
		mc := ast.MethodCall{Name: st.Call}
		if st.Receiver != nil {
			mc.Receiver = l.expr(u, env, st.Receiver)
		}
		site.Kind = mc
	case st.New != "":
		n := ast.New{Class: l.typeOf(st.New, sc, st.Pos)}
		if st.Outer != nil {
			n.Outer = l.expr(u, env, st.Outer)
		}
		if st.Body != nil {
			n.Body = &ast.AnonymousBody{
				Span:     l.span(st.Body.Pos, 1),
				Captures: append([]string(nil), st.Body.Captures...),
			}
		}
		site.Kind = n
	case st.This:
		site.Kind = ast.ThisCall{}
	case st.Super:
		call := ast.SuperCall{}
		if st.Outer != nil {
			call.Outer = l.expr(u, env, st.Outer)
		}
		site.Kind = call
	}
	u.AddSite(site, env)
}

// buildEnv creates the frame chain of a step: the innermost class named by
// in, then its enclosing classes outwards.
func (l *loader) buildEnv(st *stepDoc) (*ast.Env, bool) {
	name := st.callName()
	if st.In == "" {
		l.errorf(diag.PrjBadStep, st.Pos, len(name), "step %q needs in: naming its enclosing class", st.ID)
		return nil, false
	}
	inner, ok := l.classOf(st.In, scope{}, st.Pos)
	if !ok {
		return nil, false
	}
	inner = l.types.ClassOf(inner)
	env := &ast.Env{}
	for c := inner; c.IsValid(); {
		env.Frames = append(env.Frames, ast.Frame{Type: c})
		info, ok := l.types.ClassInfo(c)
		if !ok {
			break
		}
		c = info.Outer
	}
	f := &env.Frames[0]
	f.Static = st.Static
	f.ExplicitCtor = st.ExplicitCtor
	f.Deprecated = st.DeprecatedContext
	sc := scope{class: inner}
	for _, src := range st.Handled {
		exc := l.typeOf(src, sc, st.Pos)
		if !l.types.IsBad(exc) {
			f.Handled = append(f.Handled, exc)
		}
	}
	f.Locals = l.locals(st.Locals.Innermost, sc, st.Pos)
	for _, fl := range st.Locals.ByFrame {
		frame, ok := l.classOf(fl.Frame, sc, fl.Pos)
		if !ok {
			continue
		}
		frame = l.types.ClassOf(frame)
		idx := frameIndex(env, frame)
		if idx < 0 {
			l.errorf(diag.PrjBadStep, fl.Pos, len(fl.Frame), "%s does not enclose %s", fl.Frame, st.In)
			continue
		}
		env.Frames[idx].Locals = append(env.Frames[idx].Locals, l.locals(fl.Decls, scope{class: frame}, fl.Pos)...)
	}
	return env, true
}

func frameIndex(env *ast.Env, t types.TypeID) int {
	for i := range env.Frames {
		if env.Frames[i].Type == t {
			return i
		}
	}
	return -1
}

func (l *loader) locals(decls []string, sc scope, p position) []ast.Local {
	out := make([]ast.Local, 0, len(decls))
	for _, src := range decls {
		te, name, err := parseLocalDecl(src)
		if err != nil {
			l.typeError(err, src, p)
			continue
		}
		typ, err := l.resolveType(te, sc)
		if err != nil {
			l.typeError(err, src, p)
			typ = l.builtins.Bad
		}
		out = append(out, ast.Local{Name: name, Type: typ})
	}
	return out
}

func (d *exprDoc) shapes() int {
	n := 0
	for _, set := range []bool{d.Type != "", d.Null, d.ClassLiteral != "", d.New != "", d.Call != "", d.TypeName != "", d.Local != "", d.This, d.Super} {
		if set {
			n++
		}
	}
	return n
}

// expr builds an argument, receiver or enclosing instance. Problems are
// reported and yield an expression of the bad type.
func (l *loader) expr(u *ast.Unit, env *ast.Env, d *exprDoc) *ast.Expr {
	span := l.span(d.Pos, 1)
	inner := env.This()
	sc := scope{class: inner}
	bad := &ast.Expr{Kind: ast.ExprValue, Type: l.builtins.Bad, Span: span}
	if d.shapes() != 1 {
		l.errorf(diag.PrjBadStep, d.Pos, 1, "expression needs exactly one of type, null, class_literal, new, call, type_name, local, this or super")
		return bad
	}
	switch {
	case d.Null:
		return &ast.Expr{Kind: ast.ExprNull, Type: l.builtins.Null, Span: span}
	case d.Type != "":
		e := &ast.Expr{Kind: ast.ExprValue, Type: l.typeOf(d.Type, sc, d.Pos), Span: l.span(d.Pos, len(d.Type))}
		if d.Const {
			e.Kind, e.Const = ast.ExprLiteral, true
		}
		return e
	case d.ClassLiteral != "":
		return l.classLiteral(d, sc)
	case d.New != "":
		t := l.typeOf(d.New, sc, d.Pos)
		return &ast.Expr{Kind: ast.ExprClassCreation, Type: t, Denoted: l.types.ClassOf(t), Span: l.span(d.Pos, len(d.New))}
	case d.Call != "":
		id, ok := u.SiteByLabel(d.Call)
		if !ok {
			l.errorf(diag.PrjUnknownSite, d.Pos, len(d.Call), "no earlier step has id %q", d.Call)
			return bad
		}
		return &ast.Expr{Kind: ast.ExprCall, Site: id, Span: l.span(d.Pos, len(d.Call))}
	case d.TypeName != "":
		t, ok := l.classOf(d.TypeName, sc, d.Pos)
		if !ok {
			return bad
		}
		return &ast.Expr{Kind: ast.ExprTypeName, Type: t, Denoted: t, Span: l.span(d.Pos, len(d.TypeName))}
	case d.Local != "":
		return l.localExpr(env, d, span)
	case d.This:
		return &ast.Expr{Kind: ast.ExprThis, Type: inner, Span: span, Via: []types.TypeID{inner}}
	default:
		info, ok := l.types.ClassInfo(inner)
		if !ok || !info.Super.IsValid() {
			l.errorf(diag.PrjBadStep, d.Pos, 1, "%s has no superclass", l.types.QualifiedName(inner))
			return bad
		}
		return &ast.Expr{Kind: ast.ExprSuper, Type: info.Super, Span: span}
	}
}

func (l *loader) classLiteral(d *exprDoc, sc scope) *ast.Expr {
	span := l.span(d.Pos, len(d.ClassLiteral))
	t := l.typeOf(d.ClassLiteral, sc, d.Pos)
	if l.types.IsBad(t) {
		return &ast.Expr{Kind: ast.ExprClassLiteral, Type: t, Span: span}
	}
	arg := types.TypeArg{Wildcard: types.WildcardUnbounded}
	switch {
	case t == l.builtins.Void:
		if void, ok := l.types.ClassByName("java.lang.Void"); ok {
			arg = types.Exact(void)
		}
	case l.types.IsPrimitive(t):
		arg = types.Exact(l.types.Box(t))
	case l.types.IsReference(t):
		arg = types.Exact(l.types.Erasure(t))
	}
	return &ast.Expr{
		Kind:    ast.ExprClassLiteral,
		Type:    l.types.Parameterized(l.builtins.Class, []types.TypeArg{arg}),
		Denoted: t,
		Span:    span,
	}
}

// localExpr reads a local of the nearest frame declaring it.
func (l *loader) localExpr(env *ast.Env, d *exprDoc, span source.Span) *ast.Expr {
	for j := range env.Frames {
		for _, loc := range env.Frames[j].Locals {
			if loc.Name != d.Local {
				continue
			}
			via := make([]types.TypeID, 0, j+1)
			for k := 0; k <= j; k++ {
				via = append(via, env.Frames[k].Type)
			}
			return &ast.Expr{Kind: ast.ExprLocal, Name: loc.Name, Type: loc.Type, Span: span, Via: via}
		}
	}
	l.errorf(diag.PrjBadStep, d.Pos, len(d.Local), "no local %s is visible here", d.Local)
	return &ast.Expr{Kind: ast.ExprLocal, Name: d.Local, Type: l.builtins.Bad, Span: span}
}
