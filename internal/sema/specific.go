package sema

import "jopa/internal/symbols"

// MoreSpecific reports whether every effective parameter of a converts to
// the one of b at the same position, for argc argument positions. The
// declaring types do not take part.
func (r *Resolver) MoreSpecific(a, b symbols.MethodID, argc int) bool {
	if _, ok := r.table.Signature(a); !ok {
		return false
	}
	if _, ok := r.table.Signature(b); !ok {
		return false
	}
	ma, mb := r.table.Method(a), r.table.Method(b)
	for k := range argc {
		pa, ok := r.effectiveParam(ma, k)
		if !ok {
			return false
		}
		pb, ok := r.effectiveParam(mb, k)
		if !ok {
			return false
		}
		if !r.subtypeConvert(pa, pb) {
			return false
		}
	}
	return true
}

// ReduceToMaximallySpecific folds candidates into the set of those no
// other candidate beats, keeping first occurrences on ties.
func (r *Resolver) ReduceToMaximallySpecific(ids []symbols.MethodID, argc int) []symbols.MethodID {
	var set []symbols.MethodID
	for _, c := range ids {
		beatsAll := true
		for _, s := range set {
			if !r.MoreSpecific(c, s, argc) {
				beatsAll = false
				break
			}
		}
		if beatsAll {
			set = append(set[:0], c)
			continue
		}
		beaten := false
		for _, s := range set {
			if r.MoreSpecific(s, c, argc) {
				beaten = true
				break
			}
		}
		if !beaten {
			set = append(set, c)
		}
	}
	return set
}
