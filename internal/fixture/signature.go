package fixture

import (
	"errors"
	"fmt"

	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// errBrokenSignature marks a signature whose text could not be resolved;
// the reason has already been reported.
var errBrokenSignature = errors.New("broken signature")

// signatureResolver completes declared callables lazily, the first time
// resolution looks at them.
type signatureResolver struct {
	l *loader
}

func (r *signatureResolver) ResolveSignature(t *symbols.Table, id symbols.MethodID) error {
	m := t.Method(id)
	raw, ok := m.Raw.(*rawSignature)
	if !ok {
		return nil
	}
	l := r.l
	doc := raw.doc
	sc := scope{class: raw.owner, params: make(map[string]types.TypeID, len(doc.TypeParams))}

	var problems []error
	fail := func(src string, err error) {
		problems = append(problems, fmt.Errorf("%s: %w", src, err))
	}

	decls := make([]typeParamDecl, 0, len(doc.TypeParams))
	tps := make([]types.TypeID, 0, len(doc.TypeParams))
	for i, src := range doc.TypeParams {
		decl, err := parseTypeParamDecl(src)
		if err != nil {
			fail(src, err)
			continue
		}
		idx := uint32(i) // #nosec G115 -- bounded by document size
		tp := l.types.RegisterTypeParam(types.TypeParamInfo{
			Name:   decl.Name,
			Index:  idx,
			Owner:  raw.owner,
			Method: uint32(id),
		})
		sc.params[decl.Name] = tp
		decls = append(decls, decl)
		tps = append(tps, tp)
	}
	for i, decl := range decls {
		bounds := make([]types.TypeID, 0, len(decl.Bounds))
		for _, b := range decl.Bounds {
			bound, err := l.resolveType(b, sc)
			if err != nil {
				fail(b.String(), err)
				continue
			}
			bounds = append(bounds, bound)
		}
		l.types.SetTypeParamBounds(tps[i], bounds)
	}

	params := make([]types.TypeID, 0, len(doc.Params))
	for i, src := range doc.Params {
		te, err := parseTypeExpr(src)
		if err != nil {
			fail(src, err)
			continue
		}
		if te.Varargs && i != len(doc.Params)-1 {
			fail(src, errors.New("only the last parameter can be variable arity"))
			continue
		}
		p, err := l.resolveType(te, sc)
		if err != nil {
			fail(src, err)
			continue
		}
		if p == l.builtins.Void {
			fail(src, errors.New("void is not a parameter type"))
			continue
		}
		params = append(params, p)
	}

	ret := l.builtins.Void
	if doc.Returns != "" && m.Kind != symbols.MethodConstructor {
		te, err := parseTypeExpr(doc.Returns)
		if err == nil {
			ret, err = l.resolveType(te, sc)
		}
		if err != nil {
			fail(doc.Returns, err)
		}
	}

	throws := make([]types.TypeID, 0, len(doc.Throws))
	for _, src := range doc.Throws {
		te, err := parseTypeExpr(src)
		if err != nil {
			fail(src, err)
			continue
		}
		exc, err := l.resolveType(te, sc)
		if err != nil {
			fail(src, err)
			continue
		}
		if !l.types.IsSubtype(exc, l.builtins.Throwable) {
			fail(src, errors.New("not a subclass of java.lang.Throwable"))
			continue
		}
		throws = append(throws, exc)
	}

	if len(problems) > 0 {
		name := doc.Name
		if m.Kind == symbols.MethodConstructor {
			if info, ok := l.types.ClassInfo(raw.owner); ok {
				name = "constructor " + info.Name
			}
		}
		b := diag.ReportError(l.reporter, diag.ResUnresolvedSignature, m.Decl,
			fmt.Sprintf("cannot resolve the signature of %s in %s", name, l.types.QualifiedName(raw.owner)))
		for _, p := range problems {
			b.WithNote(m.Decl, p.Error())
		}
		b.Emit()
		return errBrokenSignature
	}

	m = t.Method(id)
	m.TypeParams = tps
	m.Params = params
	m.Return = ret
	m.Throws = throws
	return nil
}
