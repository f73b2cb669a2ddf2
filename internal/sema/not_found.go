package sema

import (
	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/spell"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// methodNotFound emits the single diagnostic of a method call nothing
// matched and returns its code. The checks run in a fixed order and the
// first one that applies wins. searchType is NoTypeID for calls searched
// lexically.
func (r *Resolver) methodNotFound(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID, base *ast.Expr, searchType types.TypeID) diag.Code {
	qualified := searchType.IsValid()
	var scopes []types.TypeID
	if qualified {
		scopes = []types.TypeID{searchType}
	} else {
		for i := range env.Frames {
			scopes = append(scopes, env.Frames[i].Type)
		}
	}
	header := r.callHeader(name, args)

	if !qualified {
		if code, ok := r.reportHidden(env, site, name, args); ok {
			return code
		}
	}

	for _, st := range scopes {
		table, err := r.table.ExpandedTable(st)
		if err != nil {
			continue
		}
		best, bestDiff := symbols.NoMethodID, -1
		for _, s := range table.Lookup(name) {
			m, ok := r.table.Signature(s.Method)
			if !ok || (!r.memberAccessible(env, m, st, base) && len(s.Conflicts) == 0) {
				continue
			}
			if d := absDiff(len(args), len(m.Params)); bestDiff < 0 || d < bestDiff {
				best, bestDiff = s.Method, d
			}
		}
		if best.IsValid() {
			r.report(diag.ResMethodOverloadNotFound, site,
				"method %s in %s cannot be applied to %s",
				r.table.Header(best), r.className(r.table.Method(best).Owner), header).
				WithCandidate(r.table.Method(best).Decl, r.table.Header(best)).Emit()
			return diag.ResMethodOverloadNotFound
		}
	}

	if len(args) == 0 {
		for _, st := range scopes {
			table, err := r.table.ExpandedTable(st)
			if err != nil {
				continue
			}
			if id, ok := table.Field(name); ok && r.fieldAccessible(env, r.table.Field(id)) {
				r.report(diag.ResFieldNotMethod, site,
					"%s is a field of %s, not a method", name, r.className(r.table.Field(id).Owner)).Emit()
				return diag.ResFieldNotMethod
			}
		}
	}

	for _, st := range scopes {
		if code, ok := r.reportInaccessible(env, site, name, args, base, st); ok {
			return code
		}
	}

	for _, st := range scopes {
		if cand, ok := r.misspelling(env, name, args, base, st); ok {
			r.report(diag.ResMethodNameMisspelled, site,
				"method %s was not found in %s; did you mean %s?",
				header, r.types.Name(st), r.table.Header(cand)).Emit()
			return diag.ResMethodNameMisspelled
		}
	}

	if t, ok := r.typeInScope(env, name); ok {
		r.report(diag.ResTypeNotMethod, site, "%s is a type, not a method", r.types.Name(t)).Emit()
		return diag.ResTypeNotMethod
	}

	where := env.This()
	if qualified {
		where = searchType
	}
	r.report(diag.ResMethodNotFound, site, "no method named %s was found in type %s", header, r.types.Name(where)).Emit()
	return diag.ResMethodNotFound
}

// reportHidden restarts the lexical search at each outer frame; a hit
// means an inner scope masked an applicable method.
func (r *Resolver) reportHidden(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID) (diag.Code, bool) {
	inner := -1
	for i := range env.Frames {
		if len(r.lookupIn(env.Frames[i].Type, name)) > 0 {
			inner = i
			break
		}
	}
	if inner < 0 {
		return diag.UnknownCode, false
	}
	for k := inner + 1; k < len(env.Frames); k++ {
		sel, frame, err := r.lexicalFrom(env, site, name, args, k)
		if err != nil || frame < 0 || !sel.found() {
			continue
		}
		r.report(diag.ResHiddenByEnclosing, site,
			"method %s of the enclosing type %s is hidden by the method %s declared in %s",
			r.table.Header(sel.set[0]), r.className(env.Frames[frame].Type), name,
			r.className(env.Frames[inner].Type)).Emit()
		return diag.ResHiddenByEnclosing, true
	}
	return diag.UnknownCode, false
}

// reportInaccessible walks st and its superclasses for an exact-arity
// method the arguments convert to and explains why it is out of reach.
func (r *Resolver) reportInaccessible(env *ast.Env, site *ast.CallSite, name string, args []types.TypeID, base *ast.Expr, st types.TypeID) (diag.Code, bool) {
	for t, depth := st, 0; t.IsValid() && depth < maxSupertypeDepth; t, depth = r.types.SuperClass(t), depth+1 {
		for _, s := range r.lookupIn(t, name) {
			m, ok := r.table.Signature(s.Method)
			if !ok || !r.convertsAll(args, m.Params) {
				continue
			}
			m = r.table.Method(s.Method)
			switch {
			case base != nil && m.Access == types.AccessProtected && r.isInterface(r.receiverType(base)):
				r.report(diag.ResProtectedInterfaceMethod, site,
					"protected method %s of %s cannot be invoked through the interface %s",
					r.table.Header(s.Method), r.className(m.Owner), r.types.Name(r.receiverType(base))).Emit()
				return diag.ResProtectedInterfaceMethod, true
			case m.Access == types.AccessProtected && !m.IsStatic() && r.hasProtectedAccessTo(env, m.Owner):
				r.report(diag.ResProtectedWrongQualifier, site,
					"protected method %s of %s cannot be invoked through a qualifier of type %s",
					r.table.Header(s.Method), r.className(m.Owner), r.types.Name(st)).Emit()
				return diag.ResProtectedWrongQualifier, true
			}
			r.report(diag.ResMethodNotAccessible, site,
				"method %s in %s is %s and not accessible from %s",
				r.table.Header(s.Method), r.className(m.Owner), m.Access, r.className(env.This())).Emit()
			return diag.ResMethodNotAccessible, true
		}
		if r.types.IsArray(t) {
			break
		}
	}
	return diag.UnknownCode, false
}

// misspelling finds the closest-named method of st with the call's arity
// that the arguments convert to.
func (r *Resolver) misspelling(env *ast.Env, name string, args []types.TypeID, base *ast.Expr, st types.TypeID) (symbols.MethodID, bool) {
	table, err := r.table.ExpandedTable(st)
	if err != nil {
		return symbols.NoMethodID, false
	}
	best, bestScore := symbols.NoMethodID, 0
	for _, cand := range table.Names {
		for _, s := range table.Lookup(cand) {
			m, ok := r.table.Signature(s.Method)
			if !ok || len(m.Params) != len(args) {
				continue
			}
			if !r.memberAccessible(env, m, st, base) && len(s.Conflicts) == 0 {
				continue
			}
			if !r.convertsAll(args, m.Params) {
				continue
			}
			if score := spell.Index(name, cand); score > bestScore {
				best, bestScore = s.Method, score
			}
		}
	}
	if !best.IsValid() || !spell.Misspelled(name, bestScore, len(args)) {
		return symbols.NoMethodID, false
	}
	return best, true
}

// typeInScope finds a type simple-named name: enclosing types and their
// member types, then the current package, then java.lang.
func (r *Resolver) typeInScope(env *ast.Env, name string) (types.TypeID, bool) {
	classes := r.types.Classes()
	for i := range env.Frames {
		ft := r.types.ClassOf(env.Frames[i].Type)
		if r.simpleName(ft) == name {
			return ft, true
		}
		for _, c := range classes {
			info, _ := r.types.ClassInfo(c)
			if info.Name == name && info.Outer.IsValid() && !info.Is(types.ClassAnonymous) && r.types.IsSubclass(ft, info.Outer) {
				return c, true
			}
		}
	}
	qualified := name
	if pkg := r.types.Package(env.This()); pkg != "" {
		qualified = pkg + "." + name
	}
	if t, ok := r.types.ClassByName(qualified); ok {
		return t, true
	}
	return r.types.ClassByName("java.lang." + name)
}

// ctorNotFound is the constructor counterpart of methodNotFound.
func (r *Resolver) ctorNotFound(env *ast.Env, site *ast.CallSite, class types.TypeID, args []types.TypeID, explicit bool) diag.Code {
	simple := r.simpleName(class)
	header := r.callHeader(simple, args)
	ctors := r.table.Constructors(r.types.ClassOf(class))

	best, bestDiff := symbols.NoMethodID, -1
	for _, id := range ctors {
		m, ok := r.table.Signature(id)
		if !ok || !r.ctorAccessible(env, m, explicit) {
			continue
		}
		if d := absDiff(len(args), len(m.Params)); bestDiff < 0 || d < bestDiff {
			best, bestDiff = id, d
		}
	}
	if best.IsValid() {
		r.report(diag.ResConstructorOverloadNotFound, site,
			"constructor %s in %s cannot be applied to %s",
			r.table.Header(best), r.className(class), header).
			WithCandidate(r.table.Method(best).Decl, r.table.Header(best)).Emit()
		return diag.ResConstructorOverloadNotFound
	}

	for _, id := range ctors {
		m, ok := r.table.Signature(id)
		if !ok || !r.convertsAll(args, m.Params) {
			continue
		}
		m = r.table.Method(id)
		r.report(diag.ResConstructorNotAccessible, site,
			"constructor %s in %s is %s and not accessible from %s",
			r.table.Header(id), r.className(class), m.Access, r.className(env.This())).Emit()
		return diag.ResConstructorNotAccessible
	}

	for _, id := range r.table.Overloads(r.types.ClassOf(class), simple) {
		m, ok := r.table.Signature(id)
		if !ok || !r.convertsAll(args, m.Params) {
			continue
		}
		r.report(diag.ResMethodFoundForConstructor, site,
			"%s in %s is a method, not a constructor", r.table.Header(id), r.className(class)).Emit()
		return diag.ResMethodFoundForConstructor
	}

	r.report(diag.ResConstructorNotFound, site, "no constructor %s was found in type %s", header, r.className(class)).Emit()
	return diag.ResConstructorNotFound
}

// convertsAll is exact arity plus method invocation conversion per
// argument.
func (r *Resolver) convertsAll(args, params []types.TypeID) bool {
	if len(args) != len(params) {
		return false
	}
	for i, a := range args {
		if !r.invocationConvert(a, params[i]) {
			return false
		}
	}
	return true
}

func (r *Resolver) fieldAccessible(env *ast.Env, f *symbols.Field) bool {
	if f == nil {
		return false
	}
	this := env.This()
	if r.types.Outermost(this) == r.types.Outermost(f.Owner) {
		return true
	}
	switch f.Access {
	case types.AccessPrivate:
		return false
	case types.AccessPackage:
		return r.types.SamePackage(this, f.Owner)
	case types.AccessProtected:
		return r.types.SamePackage(this, f.Owner) || r.hasProtectedAccessTo(env, f.Owner)
	}
	return true
}

func (r *Resolver) lookupIn(t types.TypeID, name string) []*symbols.Shadow {
	table, err := r.table.ExpandedTable(t)
	if err != nil {
		return nil
	}
	return table.Lookup(name)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
