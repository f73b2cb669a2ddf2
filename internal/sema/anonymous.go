package sema

import (
	"fmt"
	"slices"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// resolveAnonymous synthesizes the class of new T(args) {...}: its
// constructor, the super(...) forwarding the constructor's parameters, and
// the captured locals. The creation binds to the synthesized constructor
// without running the phases again.
func (r *Resolver) resolveAnonymous(env *ast.Env, site *ast.CallSite, n ast.New, args []types.TypeID) error {
	info, _ := r.types.ClassInfo(n.Class)
	superClass := n.Class
	var ifaces []types.TypeID
	if info.IsInterface() {
		if len(args) > 0 {
			r.report(diag.ResAnonymousInterfaceArgs, site,
				"an anonymous implementation of interface %s cannot take constructor arguments", r.className(n.Class)).Emit()
			return r.fail(site, FailureRejected, diag.ResAnonymousInterfaceArgs, nil)
		}
		superClass = r.builtins.Object
		ifaces = []types.TypeID{n.Class}
	}
	superInfo, _ := r.types.ClassInfo(superClass)
	if superInfo.IsInner() && n.Outer == nil && !r.enclosingInstance(env, superInfo.Outer, 0) {
		r.report(diag.ResMissingEnclosingInstance, site,
			"an enclosing instance of %s is required to create %s", r.className(superInfo.Outer), r.className(superClass)).Emit()
		return r.fail(site, FailureRejected, diag.ResMissingEnclosingInstance, nil)
	}

	sel := r.selectCtor(env, superClass, args, true)
	if !sel.found() {
		code := r.ctorNotFound(env, site, superClass, args, true)
		return r.fail(site, FailureNotFound, code, nil)
	}
	superCtor := r.pick(site, sel, diag.ResAmbiguousConstructor)
	r.checkCallable(env, site, superCtor)

	span := site.Span
	if n.Body != nil && !n.Body.Span.Empty() {
		span = n.Body.Span
	}
	anon := r.types.RegisterAnonymous(env.This(), types.ClassInfo{
		Flags:      types.ClassLocal,
		Access:     types.AccessPackage,
		Super:      superClass,
		Interfaces: ifaces,
		Decl:       span,
	})

	sm := r.table.Method(superCtor)
	superThrows := slices.Clone(sm.Throws)
	var params []types.TypeID
	var forward []*ast.Expr
	var creation []*ast.Expr
	if superInfo.IsInner() {
		params = append(params, superInfo.Outer)
		forward = append(forward, &ast.Expr{Kind: ast.ExprLocal, Name: "this$0", Type: superInfo.Outer, Span: span})
		outer := n.Outer
		if outer == nil {
			outer = r.implicitOuter(env, superInfo.Outer, site)
		}
		creation = append(creation, outer)
	}
	for k, p := range r.ctorParamsFor(sm, args, sel.wrapped) {
		params = append(params, p)
		forward = append(forward, &ast.Expr{Kind: ast.ExprLocal, Name: fmt.Sprintf("arg%d", k), Type: p, Span: span})
	}
	creation = append(creation, site.Args...)

	ctor := r.table.AddMethod(symbols.Method{
		Kind:   symbols.MethodConstructor,
		Owner:  anon,
		Access: types.AccessPackage,
		Params: params,
		Return: r.builtins.Void,
		Throws: superThrows,
		Decl:   span,
		Sig:    symbols.SigResolved,
	})

	super := &ast.Rewrite{Callable: superCtor, Args: forward}
	if rw := r.ctorAccessor(anon, superCtor, forward); rw != nil {
		super = rw
	}

	site.Result = ast.Resolution{
		State:           ast.Resolved,
		Callable:        ctor,
		Type:            anon,
		Phase:           uint8(sel.phase),
		Wrapped:         sel.wrapped,
		Anonymous:       anon,
		SuperInvocation: super,
	}
	if superInfo.IsInner() {
		site.Result.Rewrite = &ast.Rewrite{Callable: ctor, Args: creation}
	}
	if superInfo.Is(types.ClassLocal) {
		r.forwardSuperCaptures(env, site, anon, r.types.ClassOf(superClass))
	}

	if n.Body != nil {
		for _, name := range n.Body.Captures {
			typ, ok := r.localType(env, name)
			if !ok {
				r.report(diag.ResUnknownLocal, site, "local variable %s captured by %s is not in scope", name, r.className(anon)).Emit()
				return r.fail(site, FailureRejected, diag.ResUnknownLocal, nil)
			}
			if _, err := r.table.AddCapture(anon, name, typ); err != nil {
				return r.fail(site, FailureRejected, diag.UnknownCode, fmt.Errorf("capture %s: %w", name, err))
			}
		}
	}
	r.table.CompleteLocalClass(anon)
	site.Result.LocalArgs = r.captureArgs(env, site, anon)
	site.Result.Throws = r.callThrows(env, site, nil, ctor, args)
	return nil
}

// forwardSuperCaptures passes the captures of a local superclass through
// the anonymous class: each becomes a capture of anon too, read from its
// own field. A superclass whose body is still open is finished later.
func (r *Resolver) forwardSuperCaptures(env *ast.Env, site *ast.CallSite, anon, super types.TypeID) {
	if !r.table.IsComplete(super) {
		r.pending[super] = append(r.pending[super], pendingSite{site: site, env: env.Clone(), super: true})
		return
	}
	for _, c := range r.table.Captures(super) {
		captured, err := r.table.AddCapture(anon, c.Name, c.Type)
		if err != nil {
			continue
		}
		site.Result.SuperInvocation.Args = append(site.Result.SuperInvocation.Args, &ast.Expr{
			Kind:  ast.ExprField,
			Name:  symbols.CaptureFieldName(c.Name),
			Type:  c.Type,
			Field: captured.Field,
			Span:  site.Span,
			Via:   []types.TypeID{anon},
		})
	}
}

// implicitOuter is the enclosing instance picked for a creation without
// an explicit qualifier.
func (r *Resolver) implicitOuter(env *ast.Env, outer types.TypeID, site *ast.CallSite) *ast.Expr {
	for j := range env.Frames {
		if r.types.IsSubclass(env.Frames[j].Type, outer) {
			return &ast.Expr{Kind: ast.ExprThis, Type: env.Frames[j].Type, Span: site.Span, Via: via(env, j)}
		}
	}
	return ast.This(env.This(), site.Span)
}
