package sema

import (
	"slices"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

func (r *Resolver) resolveMethod(env *ast.Env, site *ast.CallSite, mc ast.MethodCall) error {
	args, err := r.argTypes(site)
	if err != nil {
		return err
	}
	if mc.Receiver == nil {
		return r.resolveUnqualified(env, site, mc.Name, args)
	}
	return r.resolveQualified(env, site, mc, args)
}

// resolveUnqualified searches the enclosing frames outward. The first
// frame that sees the name at all decides the call, applicable or not.
func (r *Resolver) resolveUnqualified(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID) error {
	sel, frame, err := r.lexicalFrom(env, site, name, args, 0)
	if err != nil {
		return r.fail(site, FailureCycle, diag.UnknownCode, err)
	}
	if frame < 0 {
		return r.resolveStaticImport(env, site, name, args)
	}
	if !sel.found() {
		code := r.methodNotFound(env, site, name, args, nil, types.NoTypeID)
		return r.fail(site, FailureNotFound, code, nil)
	}

	id := r.pick(site, sel, diag.ResAmbiguousMethod)
	searchType := env.Frames[frame].Type
	if m := r.table.Method(id); !m.IsStatic() {
		if frame == 0 && env.Frames[0].ExplicitCtor {
			r.report(diag.ResInstanceMethodInExplicitCtor, site,
				"cannot invoke instance method %s of the object under construction in an explicit constructor invocation",
				r.table.Header(id)).Emit()
			return r.fail(site, FailureRejected, diag.ResInstanceMethodInExplicitCtor, nil)
		}
		if !r.instanceReachable(env, frame) {
			r.report(diag.ResInstanceMethodInStatic, site,
				"cannot invoke instance method %s from a static context", r.table.Header(id)).Emit()
			return r.fail(site, FailureRejected, diag.ResInstanceMethodInStatic, nil)
		}
	}
	r.checkScopingConflict(env, site, name, id, frame)

	target := r.bindTarget(env, sel, id, searchType, nil)
	r.checkCallable(env, site, target)
	site.Result = ast.Resolution{
		State:    ast.Resolved,
		Callable: target,
		Type:     r.returnType(target, searchType, false, site, args),
		Phase:    uint8(sel.phase),
		Wrapped:  sel.wrapped,
		Rewrite:  r.unqualifiedAccessor(env, site, target, frame),
	}
	site.Result.Throws = r.callThrows(env, site, sel.shadowOf(id), target, args)
	return nil
}

// lexicalFrom searches frames from index from outward and runs the phases
// in the first frame whose type sees the name. frame is -1 when none does.
func (r *Resolver) lexicalFrom(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID, from int) (selection, int, error) {
	for i := from; i < len(env.Frames); i++ {
		table, err := r.table.ExpandedTable(env.Frames[i].Type)
		if err != nil {
			return selection{}, -1, err
		}
		shadows := table.Lookup(name)
		if len(shadows) == 0 {
			continue
		}
		return r.selectMethod(env, site, env.Frames[i].Type, shadows, args, nil), i, nil
	}
	return selection{}, -1, nil
}

// instanceReachable reports whether an instance of frame i's type is
// available: no static region up to it and every crossed class is inner.
func (r *Resolver) instanceReachable(env *ast.Env, i int) bool {
	for j := 0; j <= i; j++ {
		if env.Frames[j].Static {
			return false
		}
		if j < i {
			info, ok := r.types.ClassInfo(env.Frames[j].Type)
			if !ok || !info.IsInner() {
				return false
			}
		}
	}
	return true
}

// checkScopingConflict warns when the method was inherited into frame i
// while an outer frame declares the same name.
func (r *Resolver) checkScopingConflict(env *ast.Env, site *ast.CallSite, name string, id symbols.MethodID, frame int) {
	if !r.opts.Pedantic {
		return
	}
	m := r.table.Method(id)
	if m.Owner == r.types.ClassOf(env.Frames[frame].Type) {
		return
	}
	for j := frame + 1; j < len(env.Frames); j++ {
		if len(r.table.Overloads(env.Frames[j].Type, name)) > 0 {
			r.warn(diag.ResInheritanceScopingConflict, site,
				"method %s is inherited from %s and hides the method %s declared in enclosing %s",
				r.table.Header(id), r.className(m.Owner), name, r.className(env.Frames[j].Type)).Emit()
			return
		}
	}
}

// importCandidate is the entry one static import contributes for a name.
type importCandidate struct {
	shadow *symbols.Shadow
	owner  types.TypeID
}

// importCandidates takes, from each import in order, its first static member
// named name that accepts argc arguments. Single imports are searched first;
// on-demand imports only when no single import contributed. named is the
// first import type declaring a static member of that name at all.
func (r *Resolver) importCandidates(name string, argc int) (found []importCandidate, named types.TypeID) {
	if r.unit == nil {
		return nil, types.NoTypeID
	}
	collect := func(imports []ast.StaticImport, single bool) {
		for _, imp := range imports {
			if single && imp.Name != name {
				continue
			}
			table, err := r.table.ExpandedTable(imp.Type)
			if err != nil {
				continue
			}
			for _, s := range table.Lookup(name) {
				m, ok := r.table.Signature(s.Method)
				if !ok || !m.IsStatic() {
					continue
				}
				if !named.IsValid() {
					named = imp.Type
				}
				if !arityCompatible(m, argc) {
					continue
				}
				dup := slices.ContainsFunc(found, func(c importCandidate) bool { return c.shadow.Method == s.Method })
				if !dup {
					found = append(found, importCandidate{shadow: s, owner: imp.Type})
				}
				break
			}
		}
	}
	collect(r.unit.Single, true)
	if len(found) == 0 {
		collect(r.unit.OnDemand, false)
	}
	return found, named
}

// resolveStaticImport binds the first import candidate without letting the
// candidates compete. Once it binds, every further candidate is reported as
// ambiguous.
func (r *Resolver) resolveStaticImport(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID) error {
	found, named := r.importCandidates(name, len(args))
	if len(found) == 0 {
		code := r.methodNotFound(env, site, name, args, nil, named)
		return r.fail(site, FailureNotFound, code, nil)
	}
	first := found[0]
	id := first.shadow.Method
	m := r.table.Method(id)
	if r.memberAccessible(env, m, first.owner, nil) {
		for _, phase := range r.phases() {
			ok, wrapped := r.applicable(r.formals(m, site.TypeArgs), m.IsVarargs(), args, phase)
			if !ok {
				continue
			}
			for _, other := range found[1:] {
				r.report(diag.ResAmbiguousMethod, site, "reference to %s is ambiguous: both %s in %s and %s in %s match",
					name, r.table.Header(id), r.className(first.owner),
					r.table.Header(other.shadow.Method), r.className(other.owner)).
					WithCandidate(r.table.Method(other.shadow.Method).Decl, r.table.Header(other.shadow.Method)).Emit()
			}
			r.checkCallable(env, site, id)
			site.Result = ast.Resolution{
				State:    ast.Resolved,
				Callable: id,
				Type:     r.returnType(id, first.owner, true, site, args),
				Phase:    uint8(phase),
				Wrapped:  wrapped,
			}
			site.Result.Throws = r.callThrows(env, site, first.shadow, id, args)
			return nil
		}
	}
	code := r.methodNotFound(env, site, name, args, nil, first.owner)
	return r.fail(site, FailureNotFound, code, nil)
}

func arityCompatible(m *symbols.Method, argc int) bool {
	if m.IsVarargs() {
		return argc >= len(m.Params)-1
	}
	return argc == len(m.Params)
}

// receiverType is the static type a qualified call searches.
func (r *Resolver) receiverType(recv *ast.Expr) types.TypeID {
	if recv.Kind == ast.ExprTypeName && recv.Denoted.IsValid() {
		return recv.Denoted
	}
	return r.exprType(recv)
}

func (r *Resolver) resolveQualified(env *ast.Env, site *ast.CallSite, mc ast.MethodCall, args []types.TypeID) error {
	recv := mc.Receiver
	rt := r.receiverType(recv)
	switch kind := r.types.Kind(rt); {
	case kind == types.KindBad || kind == types.KindInvalid:
		return r.fail(site, FailureBadReceiver, diag.UnknownCode, nil)
	case kind == types.KindNull:
		r.report(diag.ResTypeNotReference, site,
			"cannot invoke method %s on the null type", mc.Name).Emit()
		return r.fail(site, FailureBadReceiver, diag.ResTypeNotReference, nil)
	case kind.IsPrimitive() || kind == types.KindVoid:
		r.report(diag.ResTypeNotReference, site,
			"cannot invoke method %s on a value of primitive type %s", mc.Name, r.types.Name(rt)).Emit()
		return r.fail(site, FailureBadReceiver, diag.ResTypeNotReference, nil)
	}
	searchType := rt
	if r.types.Kind(rt) == types.KindTypeParam {
		searchType = r.types.Erasure(rt)
	}
	table, err := r.table.ExpandedTable(searchType)
	if err != nil {
		return r.fail(site, FailureCycle, diag.UnknownCode, err)
	}
	sel := r.selectMethod(env, site, searchType, table.Lookup(mc.Name), args, recv)
	if !sel.found() {
		code := r.methodNotFound(env, site, mc.Name, args, recv, searchType)
		return r.fail(site, FailureNotFound, code, nil)
	}

	id := r.pick(site, sel, diag.ResAmbiguousMethod)
	m := r.table.Method(id)
	switch {
	case recv.Kind == ast.ExprTypeName && !m.IsStatic():
		r.report(diag.ResInstanceMethodViaType, site,
			"instance method %s cannot be invoked through the type name %s",
			r.table.Header(id), r.types.Name(rt)).Emit()
		return r.fail(site, FailureRejected, diag.ResInstanceMethodViaType, nil)
	case recv.Kind == ast.ExprSuper && m.IsAbstract():
		r.report(diag.ResAbstractMethodViaSuper, site,
			"abstract method %s in %s cannot be invoked through super",
			r.table.Header(id), r.className(m.Owner)).Emit()
	case recv.Kind != ast.ExprTypeName && m.IsStatic():
		r.warn(diag.ResStaticMethodViaInstance, site,
			"static method %s should be invoked through the type %s, not an instance",
			r.table.Header(id), r.className(m.Owner)).Emit()
	}

	target := r.bindTarget(env, sel, id, searchType, recv)
	r.checkCallable(env, site, target)
	site.Result = ast.Resolution{
		State:    ast.Resolved,
		Callable: target,
		Type:     r.returnType(target, rt, true, site, args),
		Phase:    uint8(sel.phase),
		Wrapped:  sel.wrapped,
		Rewrite:  r.qualifiedAccessor(env, site, target, recv, rt),
	}
	site.Result.Throws = r.callThrows(env, site, sel.shadowOf(id), target, args)
	return nil
}

// checkCallable flags direct calls of synthetic members and deprecated
// callables of other outermost types.
func (r *Resolver) checkCallable(env *ast.Env, site *ast.CallSite, id symbols.MethodID) {
	m := r.table.Method(id)
	ctor := m.IsConstructor()
	if m.IsSyntheticCall() && !m.Is(symbols.MethodEnumSupport) && !m.Is(symbols.MethodAccessor) {
		code := diag.ResSyntheticMethodInvocation
		if ctor {
			code = diag.ResSyntheticConstructorInvoke
		}
		r.report(code, site, "%s in %s is compiler-generated and cannot be invoked directly",
			r.table.Header(id), r.className(m.Owner)).Emit()
	}
	if !r.opts.Deprecation || !m.Is(symbols.MethodDeprecated) || env.Deprecated() {
		return
	}
	if r.types.Outermost(m.Owner) == r.types.Outermost(env.This()) {
		return
	}
	code := diag.ResDeprecatedMethod
	if ctor {
		code = diag.ResDeprecatedConstructor
	}
	r.warn(code, site, "%s in %s has been deprecated", r.table.Header(id), r.className(m.Owner)).Emit()
}
