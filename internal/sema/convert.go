package sema

import "jopa/internal/types"

// subtypeConvert is identity, primitive widening, or reference widening.
// A bad target never converts; a bad source converts to anything.
func (r *Resolver) subtypeConvert(from, to types.TypeID) bool {
	if r.types.IsBad(to) {
		return false
	}
	if r.types.IsBad(from) {
		return true
	}
	if from == to {
		return true
	}
	fromPrim, toPrim := r.types.IsPrimitive(from), r.types.IsPrimitive(to)
	switch {
	case fromPrim && toPrim:
		return r.types.IsWidening(from, to)
	case fromPrim || toPrim:
		return false
	}
	return r.types.IsSubtype(from, to)
}

// invocationConvert adds boxing and unboxing to subtypeConvert.
func (r *Resolver) invocationConvert(from, to types.TypeID) bool {
	if r.subtypeConvert(from, to) {
		return true
	}
	fromPrim, toPrim := r.types.IsPrimitive(from), r.types.IsPrimitive(to)
	switch {
	case fromPrim && !toPrim:
		boxed := r.types.Box(from)
		return boxed.IsValid() && r.types.IsSubtype(boxed, to)
	case !fromPrim && toPrim && r.types.IsReference(from):
		prim := r.types.Unbox(r.types.Erasure(from))
		return prim.IsValid() && r.types.IsWidening(prim, to)
	}
	return false
}

// convert picks the conversion a phase allows.
func (r *Resolver) convert(phase Phase, from, to types.TypeID) bool {
	if phase == PhaseStrict {
		return r.subtypeConvert(from, to)
	}
	return r.invocationConvert(from, to)
}
