package sema

import (
	"fmt"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// selection is the result of running the phases over one scope.
type selection struct {
	set     []symbols.MethodID
	shadows []*symbols.Shadow
	phase   Phase
	wrapped bool
}

func (s *selection) found() bool { return len(s.set) > 0 }

func (s *selection) shadowOf(id symbols.MethodID) *symbols.Shadow {
	for _, sh := range s.shadows {
		if sh.Method == id {
			return sh
		}
	}
	return nil
}

// formals are the parameter types a call sees, with explicit method type
// arguments substituted.
func (r *Resolver) formals(m *symbols.Method, typeArgs []types.TypeID) []types.TypeID {
	if len(typeArgs) == 0 || len(typeArgs) != len(m.TypeParams) {
		return m.Params
	}
	args := make([]types.TypeArg, len(typeArgs))
	for i, t := range typeArgs {
		args[i] = types.Exact(t)
	}
	out := make([]types.TypeID, len(m.Params))
	for i, p := range m.Params {
		out[i] = r.types.Subst(p, m.TypeParams, args)
	}
	return out
}

// selectMethod runs the enabled phases over one overload list and stops at
// the first phase with an applicable candidate. Inaccessible methods only
// compete when they carry conflicts.
func (r *Resolver) selectMethod(env *ast.Env, site *ast.CallSite, searchType types.TypeID, shadows []*symbols.Shadow, args []types.TypeID, base *ast.Expr) selection {
	sel := selection{shadows: shadows}
	for _, phase := range r.phases() {
		var cands []symbols.MethodID
		for _, s := range shadows {
			m, ok := r.table.Signature(s.Method)
			if !ok {
				continue
			}
			if !r.memberAccessible(env, m, searchType, base) && len(s.Conflicts) == 0 {
				continue
			}
			if ok, _ := r.applicable(r.formals(m, site.TypeArgs), m.IsVarargs(), args, phase); ok {
				cands = append(cands, s.Method)
			}
		}
		r.phasePoint(phase, len(cands))
		if len(cands) > 0 {
			sel.set = r.ReduceToMaximallySpecific(cands, len(args))
			sel.phase = phase
			m := r.table.Method(sel.set[0])
			_, sel.wrapped = r.applicable(r.formals(m, site.TypeArgs), m.IsVarargs(), args, phase)
			return sel
		}
	}
	return sel
}

// selectCtor is selectMethod over a constructor chain.
func (r *Resolver) selectCtor(env *ast.Env, class types.TypeID, args []types.TypeID, explicit bool) selection {
	var sel selection
	ctors := r.table.Constructors(r.types.ClassOf(class))
	for _, phase := range r.phases() {
		var cands []symbols.MethodID
		for _, id := range ctors {
			m, ok := r.table.Signature(id)
			if !ok || !r.ctorAccessible(env, m, explicit) {
				continue
			}
			if ok, _ := r.applicable(m.Params, m.IsVarargs(), args, phase); ok {
				cands = append(cands, id)
			}
		}
		r.phasePoint(phase, len(cands))
		if len(cands) > 0 {
			sel.set = r.ReduceToMaximallySpecific(cands, len(args))
			sel.phase = phase
			m := r.table.Method(sel.set[0])
			_, sel.wrapped = r.applicable(m.Params, m.IsVarargs(), args, phase)
			return sel
		}
	}
	return sel
}

// pick reports an ambiguity between the first two members of the set and
// continues with the first.
func (r *Resolver) pick(site *ast.CallSite, sel selection, code diag.Code) symbols.MethodID {
	if len(sel.set) > 1 {
		a, b := sel.set[0], sel.set[1]
		r.report(code, site, "reference to %s is ambiguous: both %s in %s and %s in %s match",
			r.callName(site), r.table.Header(a), r.className(r.table.Method(a).Owner),
			r.table.Header(b), r.className(r.table.Method(b).Owner)).
			WithCandidate(r.table.Method(a).Decl, r.table.Header(a)).
			WithCandidate(r.table.Method(b).Decl, r.table.Header(b)).Emit()
	}
	return sel.set[0]
}

// bindTarget is the callable a call is bound to: an inaccessible method
// admitted through its conflicts is replaced by the first conflict.
func (r *Resolver) bindTarget(env *ast.Env, sel selection, id symbols.MethodID, searchType types.TypeID, base *ast.Expr) symbols.MethodID {
	s := sel.shadowOf(id)
	if s == nil || len(s.Conflicts) == 0 {
		return id
	}
	if r.memberAccessible(env, r.table.Method(id), searchType, base) {
		return id
	}
	return s.Conflicts[0]
}

func (r *Resolver) phasePoint(phase Phase, n int) {
	if r.span != nil {
		r.span.Point("phase:"+phase.String(), fmt.Sprintf("%d applicable", n))
	}
}

func (r *Resolver) callName(site *ast.CallSite) string {
	if mc, ok := site.Kind.(ast.MethodCall); ok {
		return mc.Name
	}
	return "constructor"
}
