package sema

import (
	"github.com/hashicorp/go-set/v3"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// callThrows computes the exceptions a call of target can raise and
// reports the checked ones the innermost frame does not handle. With
// conflicting abstract shadows only the exceptions every conflict allows
// survive.
func (r *Resolver) callThrows(env *ast.Env, site *ast.CallSite, shadow *symbols.Shadow, target symbols.MethodID, args []types.TypeID) []types.TypeID {
	m := r.table.Method(target)
	throws := make([]types.TypeID, 0, len(m.Throws))
	for _, ex := range m.Throws {
		throws = append(throws, r.thrownType(m, ex, site, args))
	}
	if shadow != nil && len(shadow.Conflicts) > 0 {
		throws = r.mergeConflictThrows(throws, shadow.Conflicts)
	}
	r.checkHandled(env, site, throws)
	return throws
}

// thrownType resolves a thrown method type variable from the arguments,
// falling back to its erasure.
func (r *Resolver) thrownType(m *symbols.Method, ex types.TypeID, site *ast.CallSite, args []types.TypeID) types.TypeID {
	info, ok := r.types.TypeParamInfo(ex)
	if !ok {
		return ex
	}
	if info.MethodOwned() {
		if t, ok := r.inferParam(m, ex, site, args); ok {
			return t
		}
	}
	return r.types.Erasure(ex)
}

func (r *Resolver) mergeConflictThrows(throws []types.TypeID, conflicts []symbols.MethodID) []types.TypeID {
	order := append([]types.TypeID(nil), throws...)
	merged := set.New[types.TypeID](len(throws))
	for _, ex := range throws {
		merged.Insert(ex)
	}
	for _, c := range conflicts {
		cm, ok := r.table.Signature(c)
		if !ok {
			continue
		}
		for _, ex := range cm.Throws {
			if merged.Contains(ex) {
				continue
			}
			for _, have := range order {
				if merged.Contains(have) && r.types.IsSubclass(ex, have) {
					merged.Insert(ex)
					order = append(order, ex)
					break
				}
			}
		}
	}
	for _, ex := range order {
		for _, c := range conflicts {
			if !r.coveredBy(ex, r.table.Method(c).Throws) {
				merged.Remove(ex)
				break
			}
		}
	}
	out := make([]types.TypeID, 0, merged.Size())
	for _, ex := range order {
		if merged.Contains(ex) {
			out = append(out, ex)
		}
	}
	return out
}

func (r *Resolver) coveredBy(ex types.TypeID, by []types.TypeID) bool {
	for _, h := range by {
		if r.types.IsSubclass(ex, h) {
			return true
		}
	}
	return false
}

func (r *Resolver) checkHandled(env *ast.Env, site *ast.CallSite, throws []types.TypeID) {
	var handled []types.TypeID
	if f := env.Innermost(); f != nil {
		handled = f.Handled
	}
	for _, ex := range throws {
		if !r.types.IsChecked(ex) || r.coveredBy(ex, handled) {
			continue
		}
		r.report(diag.ResUncaughtCheckedException, site,
			"unreported exception %s; it must be caught or declared to be thrown", r.types.Name(ex)).Emit()
	}
}
