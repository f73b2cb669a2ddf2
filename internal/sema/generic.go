package sema

import (
	"jopa/internal/ast"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

const maxSupertypeDepth = 32

// returnType computes the static type of a call of id on a receiver of
// static type recv. qualified is false for calls found lexically.
func (r *Resolver) returnType(id symbols.MethodID, recv types.TypeID, qualified bool, site *ast.CallSite, args []types.TypeID) types.TypeID {
	m := r.table.Method(id)
	if m.IsConstructor() {
		return r.builtins.Void
	}
	if r.table.IsArrayClone(id) && r.types.IsArray(recv) {
		return recv
	}
	if m.Name == "getClass" && len(m.Params) == 0 && m.Owner == r.builtins.Object {
		erased := r.types.Erasure(recv)
		if r.types.Kind(erased) == types.KindTypeParam || !erased.IsValid() {
			erased = r.builtins.Object
		}
		return r.types.Parameterized(r.builtins.Class, []types.TypeArg{{Wildcard: types.WildcardExtends, Type: erased}})
	}

	ret := m.Return
	if m.IsGeneric() {
		ret = r.substMethodParams(m, site, args)
	}
	return r.substOwnerParam(ret, m.Owner, recv, qualified)
}

// substMethodParams replaces the method's own type variables in its return
// type with explicit type arguments or with types inferred from the
// arguments; uninferred variables erase.
func (r *Resolver) substMethodParams(m *symbols.Method, site *ast.CallSite, args []types.TypeID) types.TypeID {
	ret := m.Return
	mentioned := false
	for _, tp := range m.TypeParams {
		if r.types.MentionsParam(ret, tp) {
			mentioned = true
			break
		}
	}
	if !mentioned {
		return ret
	}
	actual := make([]types.TypeArg, len(m.TypeParams))
	explicit := len(site.TypeArgs) == len(m.TypeParams)
	for i, tp := range m.TypeParams {
		switch {
		case explicit:
			actual[i] = types.Exact(site.TypeArgs[i])
		default:
			if t, ok := r.inferParam(m, tp, site, args); ok {
				actual[i] = types.Exact(t)
			} else {
				actual[i] = types.Exact(r.types.Erasure(tp))
			}
		}
	}
	return r.types.Subst(ret, m.TypeParams, actual)
}

// inferParam looks for the type an argument contributes to tp. Class
// literals win, then instantiated classes, then the plain argument type,
// then a supertype walk of the argument type.
func (r *Resolver) inferParam(m *symbols.Method, tp types.TypeID, site *ast.CallSite, args []types.TypeID) (types.TypeID, bool) {
	type slot struct {
		formal types.TypeID
		expr   *ast.Expr
		typ    types.TypeID
	}
	var slots []slot
	for k, a := range args {
		formal, ok := r.formalAt(m, k, len(args))
		if !ok || !r.types.MentionsParam(formal, tp) {
			continue
		}
		var expr *ast.Expr
		if k < len(site.Args) {
			expr = site.Args[k]
		}
		slots = append(slots, slot{formal: formal, expr: expr, typ: a})
	}

	for _, s := range slots {
		if s.expr == nil || s.expr.Kind != ast.ExprClassLiteral || !s.expr.Denoted.IsValid() {
			continue
		}
		if t, ok := r.matchArg(s.formal, r.types.Parameterized(r.builtins.Class, []types.TypeArg{types.Exact(r.boxed(s.expr.Denoted))}), tp); ok {
			return t, true
		}
	}
	for _, s := range slots {
		if s.expr == nil || s.expr.Kind != ast.ExprClassCreation || !s.expr.Denoted.IsValid() {
			continue
		}
		if t, ok := r.matchArg(s.formal, s.expr.Denoted, tp); ok {
			return t, true
		}
	}
	for _, s := range slots {
		if t, ok := r.matchDirect(s.formal, s.typ, tp); ok {
			return t, true
		}
	}
	for _, s := range slots {
		if t, ok := r.matchArg(s.formal, s.typ, tp); ok {
			return t, true
		}
	}
	return types.NoTypeID, false
}

// formalAt is the declared type bound to argument k of a call with argc
// arguments: the varargs component for wrapped trailing arguments.
func (r *Resolver) formalAt(m *symbols.Method, k, argc int) (types.TypeID, bool) {
	n := len(m.Params)
	if m.IsVarargs() && n > 0 && k >= n-1 {
		last := m.Params[n-1]
		if argc == n && k == n-1 {
			return last, true
		}
		return r.types.Component(last), true
	}
	if k < n {
		return m.Params[k], true
	}
	return types.NoTypeID, false
}

// matchDirect handles formals that are tp itself, possibly with array
// dimensions stripped from the argument.
func (r *Resolver) matchDirect(formal, arg, tp types.TypeID) (types.TypeID, bool) {
	if r.types.BaseElem(formal) != tp {
		return types.NoTypeID, false
	}
	t := arg
	if dims := r.types.Dims(formal); dims > 0 {
		var ok bool
		if t, ok = r.types.StripDims(arg, dims); !ok {
			return types.NoTypeID, false
		}
	}
	if r.types.IsNull(t) || r.types.IsBad(t) {
		return types.NoTypeID, false
	}
	return r.boxed(t), true
}

// matchArg finds the parameterization of formal's generic class reachable
// from arg and reads the argument standing at tp's position.
func (r *Resolver) matchArg(formal, arg, tp types.TypeID) (types.TypeID, bool) {
	if r.types.Kind(formal) != types.KindParameterized {
		return types.NoTypeID, false
	}
	p, ok := r.parameterizationOf(arg, r.types.ClassOf(formal), 0)
	if !ok {
		return types.NoTypeID, false
	}
	want, got := r.types.TypeArgs(formal), r.types.TypeArgs(p)
	for i, w := range want {
		if i >= len(got) || w.Wildcard != types.WildcardNone && w.Wildcard != types.WildcardExtends {
			continue
		}
		if w.Type == tp {
			g := got[i]
			if g.Wildcard == types.WildcardUnbounded || g.Wildcard == types.WildcardSuper || !g.Type.IsValid() {
				continue
			}
			return g.Type, true
		}
		if r.types.MentionsParam(w.Type, tp) && got[i].Type.IsValid() {
			if t, ok := r.matchArg(w.Type, got[i].Type, tp); ok {
				return t, true
			}
		}
	}
	return types.NoTypeID, false
}

// parameterizationOf walks t and its supertypes to the parameterization of
// owner, substituting type arguments along the way. A raw occurrence of
// owner is reported as not found.
func (r *Resolver) parameterizationOf(t, owner types.TypeID, depth int) (types.TypeID, bool) {
	if depth > maxSupertypeDepth || !t.IsValid() {
		return types.NoTypeID, false
	}
	if r.types.Kind(t) == types.KindTypeParam {
		info, ok := r.types.TypeParamInfo(t)
		if !ok || len(info.Bounds) == 0 {
			return types.NoTypeID, false
		}
		return r.parameterizationOf(info.Bounds[0], owner, depth+1)
	}
	class := r.types.ClassOf(t)
	if !class.IsValid() {
		return types.NoTypeID, false
	}
	if class == owner {
		return t, r.types.Kind(t) == types.KindParameterized
	}
	info, _ := r.types.ClassInfo(class)
	targs := r.types.TypeArgs(t)
	for _, st := range r.types.DirectSupertypes(class) {
		if len(targs) > 0 {
			st = r.types.Subst(st, info.TypeParams, targs)
		}
		if p, ok := r.parameterizationOf(st, owner, depth+1); ok {
			return p, true
		}
	}
	return types.NoTypeID, false
}

// substOwnerParam replaces a return type that is one of the declaring
// class's own type variables, possibly with array dimensions, by the
// argument the receiver's view of that class supplies. Other return types
// pass through unchanged.
func (r *Resolver) substOwnerParam(ret, owner, recv types.TypeID, qualified bool) types.TypeID {
	base := r.types.BaseElem(ret)
	info, ok := r.types.TypeParamInfo(base)
	if !ok || info.MethodOwned() || info.Owner != owner {
		return ret
	}
	dims := r.types.Dims(ret)
	p, found := r.parameterizationOf(recv, owner, 0)
	if !found {
		if qualified {
			return r.types.Erasure(ret)
		}
		return ret
	}
	args := r.types.TypeArgs(p)
	idx := int(info.Index)
	if idx >= len(args) {
		return r.types.Erasure(ret)
	}
	arg := args[idx]
	t := arg.Type
	switch {
	case arg.Wildcard == types.WildcardUnbounded || arg.Wildcard == types.WildcardSuper || !t.IsValid():
		t = r.types.Erasure(base)
	case r.types.Kind(t) == types.KindTypeParam:
		t = r.types.Erasure(t)
	}
	if dims > 0 {
		return r.types.Array(t, dims)
	}
	return t
}

func (r *Resolver) boxed(t types.TypeID) types.TypeID {
	if r.types.IsPrimitive(t) {
		if b := r.types.Box(t); b.IsValid() {
			return b
		}
	}
	return t
}
