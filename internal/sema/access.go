package sema

import (
	"jopa/internal/ast"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// memberAccessible decides whether m, found by searching searchType, may
// be invoked from the innermost frame of env. base is the explicit
// receiver or nil.
func (r *Resolver) memberAccessible(env *ast.Env, m *symbols.Method, searchType types.TypeID, base *ast.Expr) bool {
	this := env.This()
	if r.types.Outermost(this) == r.types.Outermost(m.Owner) {
		return true
	}
	switch m.Access {
	case types.AccessPrivate:
		return false
	case types.AccessPackage:
		return r.types.SamePackage(this, m.Owner)
	case types.AccessProtected:
		if base != nil && r.isInterface(r.exprType(base)) {
			return false
		}
		if r.types.SamePackage(this, m.Owner) || (base != nil && base.Kind == ast.ExprSuper) {
			return true
		}
		if !r.hasProtectedAccessTo(env, m.Owner) {
			return false
		}
		if m.IsStatic() {
			return true
		}
		for i := range env.Frames {
			if r.types.IsSubclass(searchType, env.Frames[i].Type) {
				return true
			}
		}
		return false
	}
	return true
}

// ctorAccessible applies constructor visibility. explicit is set for
// this(...)/super(...) and anonymous class creation, where a protected
// constructor of another package is reachable.
func (r *Resolver) ctorAccessible(env *ast.Env, m *symbols.Method, explicit bool) bool {
	this := env.This()
	if r.types.Outermost(this) == r.types.Outermost(m.Owner) {
		return true
	}
	if m.Access == types.AccessPrivate {
		return false
	}
	if !r.types.SamePackage(this, m.Owner) && m.Access != types.AccessPublic {
		return m.Access == types.AccessProtected && explicit
	}
	return true
}

// hasProtectedAccessTo reports whether some enclosing type inherits from owner.
func (r *Resolver) hasProtectedAccessTo(env *ast.Env, owner types.TypeID) bool {
	for i := range env.Frames {
		if r.types.IsSubclass(env.Frames[i].Type, owner) {
			return true
		}
	}
	return false
}

// protectedAccessCheck is the direct protected rule for code in from.
func (r *Resolver) protectedAccessCheck(from, owner types.TypeID) bool {
	return r.types.IsSubclass(from, owner) || r.types.SamePackage(from, owner)
}

func (r *Resolver) isInterface(t types.TypeID) bool {
	if r.types.Kind(t) == types.KindTypeParam {
		t = r.types.Erasure(t)
	}
	info, ok := r.types.ClassInfo(t)
	return ok && info.IsInterface()
}
