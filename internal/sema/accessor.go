package sema

import (
	"jopa/internal/ast"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// via lists the frame types from the innermost frame up to frame i.
func via(env *ast.Env, i int) []types.TypeID {
	out := make([]types.TypeID, 0, i+1)
	for j := 0; j <= i && j < len(env.Frames); j++ {
		out = append(out, env.Frames[j].Type)
	}
	return out
}

// unqualifiedAccessor rewrites a call of a member found in enclosing frame
// i whose access needs a forwarder. It returns nil when the call is direct.
func (r *Resolver) unqualifiedAccessor(env *ast.Env, site *ast.CallSite, id symbols.MethodID, frame int) *ast.Rewrite {
	if frame == 0 {
		return nil
	}
	m := r.table.Method(id)
	switch m.Access {
	case types.AccessPrivate:
	case types.AccessProtected:
		if r.protectedAccessCheck(env.This(), m.Owner) {
			return nil
		}
	default:
		return nil
	}
	host := env.Frames[frame].Type
	key := symbols.AccessorKey{Host: host, Member: id, Kind: symbols.AccessorMethod}
	var args []*ast.Expr
	if !m.IsStatic() {
		key.Base = host
		args = append(args, &ast.Expr{Kind: ast.ExprThis, Type: host, Span: site.Span, Via: via(env, frame)})
	}
	return r.accessorRewrite(key, append(args, site.Args...))
}

// qualifiedAccessor rewrites recv.m(...) when m is private to another
// class of the same outermost type, or protected and reachable only
// through an enclosing subclass.
func (r *Resolver) qualifiedAccessor(env *ast.Env, site *ast.CallSite, id symbols.MethodID, recv *ast.Expr, recvType types.TypeID) *ast.Rewrite {
	m := r.table.Method(id)
	this := r.types.ClassOf(env.This())
	if this == m.Owner || recv.Kind == ast.ExprSuper {
		return nil
	}
	var host types.TypeID
	switch m.Access {
	case types.AccessPrivate:
		host = m.Owner
	case types.AccessProtected:
		if r.protectedAccessCheck(this, m.Owner) {
			return nil
		}
		for i := range env.Frames {
			if r.types.IsSubclass(env.Frames[i].Type, m.Owner) {
				host = env.Frames[i].Type
				break
			}
		}
	}
	if !host.IsValid() {
		return nil
	}
	key := symbols.AccessorKey{Host: host, Member: id, Kind: symbols.AccessorMethod}
	var args []*ast.Expr
	if !m.IsStatic() {
		key.Base = r.types.Erasure(recvType)
		args = append(args, recv)
	}
	return r.accessorRewrite(key, append(args, site.Args...))
}

func (r *Resolver) accessorRewrite(key symbols.AccessorKey, args []*ast.Expr) *ast.Rewrite {
	acc, _ := r.table.Accessor(key)
	if !acc.IsValid() {
		return nil
	}
	return &ast.Rewrite{Callable: acc, Args: args}
}

// ctorAccessor substitutes the placeholder-tagged accessor constructor for
// a private constructor invoked from class from.
func (r *Resolver) ctorAccessor(from types.TypeID, id symbols.MethodID, args []*ast.Expr) *ast.Rewrite {
	m := r.table.Method(id)
	if m.Access != types.AccessPrivate || r.types.ClassOf(from) == m.Owner {
		return nil
	}
	rw := r.accessorRewrite(symbols.AccessorKey{Host: m.Owner, Member: id, Kind: symbols.AccessorConstructor}, nil)
	if rw == nil {
		return nil
	}
	rw.Args = append(append(rw.Args, args...), &ast.Expr{
		Kind: ast.ExprNullPlaceholder,
		Type: r.table.Placeholder(m.Owner),
	})
	return rw
}
