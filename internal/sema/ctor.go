package sema

import (
	"slices"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// resolveNew handles new T(args), o.new T(args) and anonymous creation.
func (r *Resolver) resolveNew(env *ast.Env, site *ast.CallSite, n ast.New) error {
	args, err := r.argTypes(site)
	if err != nil {
		return err
	}
	if r.types.IsBad(n.Class) {
		return r.fail(site, FailureBadReceiver, diag.UnknownCode, nil)
	}
	info, ok := r.types.ClassInfo(n.Class)
	if !ok || r.types.Kind(n.Class) == types.KindTypeParam {
		r.report(diag.ResPrimitiveInstantiation, site, "%s cannot be instantiated", r.types.Name(n.Class)).Emit()
		return r.fail(site, FailureRejected, diag.ResPrimitiveInstantiation, nil)
	}
	if n.Outer != nil && r.types.IsBad(r.exprType(n.Outer)) {
		return r.fail(site, FailureBadReceiver, diag.UnknownCode, nil)
	}
	if n.Body != nil {
		return r.resolveAnonymous(env, site, n, args)
	}
	if info.IsInterface() || info.Is(types.ClassAbstract) {
		r.report(diag.ResAbstractInstantiation, site, "%s is abstract; cannot be instantiated", r.className(n.Class)).Emit()
		return r.fail(site, FailureRejected, diag.ResAbstractInstantiation, nil)
	}
	if info.IsInner() && n.Outer == nil && !r.enclosingInstance(env, info.Outer, 0) {
		r.report(diag.ResMissingEnclosingInstance, site,
			"an enclosing instance of %s is required to create %s", r.className(info.Outer), r.className(n.Class)).Emit()
		return r.fail(site, FailureRejected, diag.ResMissingEnclosingInstance, nil)
	}

	sel := r.selectCtor(env, n.Class, args, false)
	if !sel.found() {
		code := r.ctorNotFound(env, site, n.Class, args, false)
		return r.fail(site, FailureNotFound, code, nil)
	}
	id := r.pick(site, sel, diag.ResAmbiguousConstructor)
	r.checkCallable(env, site, id)
	site.Result = ast.Resolution{
		State:    ast.Resolved,
		Callable: id,
		Type:     n.Class,
		Phase:    uint8(sel.phase),
		Wrapped:  sel.wrapped,
		Rewrite:  r.ctorAccessor(env.This(), id, site.Args),
	}
	site.Result.Throws = r.callThrows(env, site, nil, id, args)
	if info.Is(types.ClassLocal) {
		r.attachLocalArgs(env, site, r.types.ClassOf(n.Class))
	}
	return nil
}

// resolveThisCall handles this(args) inside a constructor.
func (r *Resolver) resolveThisCall(env *ast.Env, site *ast.CallSite) error {
	class := r.types.ClassOf(env.This())
	return r.resolveExplicitCtor(env, site, class, class)
}

// resolveSuperCall handles super(args) and outer.super(args).
func (r *Resolver) resolveSuperCall(env *ast.Env, site *ast.CallSite, sc ast.SuperCall) error {
	this := r.types.ClassOf(env.This())
	info, ok := r.types.ClassInfo(this)
	if !ok {
		return r.fail(site, FailureBadReceiver, diag.UnknownCode, nil)
	}
	if info.IsInterface() {
		r.report(diag.ResInterfaceSuperCall, site, "interface %s has no constructor to invoke super from", r.className(this)).Emit()
		return r.fail(site, FailureRejected, diag.ResInterfaceSuperCall, nil)
	}
	if !info.Super.IsValid() {
		r.report(diag.ResObjectSuperCall, site, "%s has no superclass constructor to invoke", r.className(this)).Emit()
		return r.fail(site, FailureRejected, diag.ResObjectSuperCall, nil)
	}
	if sc.Outer != nil && r.types.IsBad(r.exprType(sc.Outer)) {
		return r.fail(site, FailureBadReceiver, diag.UnknownCode, nil)
	}
	super := info.Super
	if si, ok := r.types.ClassInfo(super); ok && si.IsInner() && sc.Outer == nil && !r.enclosingInstance(env, si.Outer, 1) {
		r.report(diag.ResMissingEnclosingInstance, site,
			"an enclosing instance of %s is required to invoke the constructor of %s", r.className(si.Outer), r.className(super)).Emit()
		return r.fail(site, FailureRejected, diag.ResMissingEnclosingInstance, nil)
	}
	return r.resolveExplicitCtor(env, site, super, this)
}

func (r *Resolver) resolveExplicitCtor(env *ast.Env, site *ast.CallSite, class, from types.TypeID) error {
	args, err := r.argTypes(site)
	if err != nil {
		return err
	}
	sel := r.selectCtor(env, class, args, true)
	if !sel.found() {
		code := r.ctorNotFound(env, site, class, args, true)
		return r.fail(site, FailureNotFound, code, nil)
	}
	id := r.pick(site, sel, diag.ResAmbiguousConstructor)
	r.checkCallable(env, site, id)
	site.Result = ast.Resolution{
		State:    ast.Resolved,
		Callable: id,
		Type:     r.builtins.Void,
		Phase:    uint8(sel.phase),
		Wrapped:  sel.wrapped,
		Rewrite:  r.ctorAccessor(from, id, site.Args),
	}
	site.Result.Throws = r.callThrows(env, site, nil, id, args)
	if info, ok := r.types.ClassInfo(class); ok && info.Is(types.ClassLocal) {
		r.attachLocalArgs(env, site, r.types.ClassOf(class))
	}
	return nil
}

// enclosingInstance reports whether an instance of outer (or a subclass)
// is reachable from frame from outward without crossing a static region.
func (r *Resolver) enclosingInstance(env *ast.Env, outer types.TypeID, from int) bool {
	for j := from; j < len(env.Frames); j++ {
		f := &env.Frames[j]
		if f.Static {
			return false
		}
		if r.types.IsSubclass(f.Type, outer) {
			return true
		}
		info, ok := r.types.ClassInfo(f.Type)
		if !ok || !info.IsInner() {
			return false
		}
	}
	return false
}

// ctorParamsFor builds the parameter list of a synthesized constructor
// that accepts args and forwards them to target: declared types at fixed
// positions, actual types at wrapped varargs positions.
func (r *Resolver) ctorParamsFor(target *symbols.Method, args []types.TypeID, wrapped bool) []types.TypeID {
	params := make([]types.TypeID, 0, len(args))
	fixed := len(target.Params)
	if wrapped {
		fixed--
	}
	for k, a := range args {
		if k < fixed {
			params = append(params, target.Params[k])
			continue
		}
		if r.types.IsNull(a) {
			a = r.types.Component(target.Params[len(target.Params)-1])
		}
		params = append(params, a)
	}
	return slices.Clip(params)
}
