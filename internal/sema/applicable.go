package sema

import (
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// Phase is one round of the applicability test.
type Phase uint8

const (
	PhaseNone Phase = iota
	// PhaseStrict: exact arity, widening only.
	PhaseStrict
	// PhaseLoose: exact arity, boxing and unboxing allowed.
	PhaseLoose
	// PhaseVariableArity: trailing arguments may fill the varargs array.
	PhaseVariableArity
)

var phaseNames = [...]string{
	PhaseNone:          "none",
	PhaseStrict:        "strict",
	PhaseLoose:         "loose",
	PhaseVariableArity: "varargs",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase?"
}

// IsApplicable tests one candidate against argument types. wrapped is set
// when the variable-arity match packs trailing arguments into an array.
// A candidate whose signature cannot be processed is never applicable.
func (r *Resolver) IsApplicable(id symbols.MethodID, args []types.TypeID, phase Phase) (ok, wrapped bool) {
	m, sigOK := r.table.Signature(id)
	if !sigOK {
		return false, false
	}
	return r.applicable(m.Params, m.IsVarargs(), args, phase)
}

func (r *Resolver) applicable(params []types.TypeID, varargs bool, args []types.TypeID, phase Phase) (ok, wrapped bool) {
	n := len(params)
	switch phase {
	case PhaseStrict, PhaseLoose:
		if varargs || len(args) != n {
			return false, false
		}
		for i, a := range args {
			if !r.convert(phase, a, params[i]) {
				return false, false
			}
		}
		return true, false
	case PhaseVariableArity:
		if !varargs || n == 0 || len(args) < n-1 {
			return false, false
		}
		for i := 0; i < n-1; i++ {
			if !r.invocationConvert(args[i], params[i]) {
				return false, false
			}
		}
		last := params[n-1]
		if len(args) == n && r.invocationConvert(args[n-1], last) {
			return true, false
		}
		elem := r.types.Component(last)
		if !elem.IsValid() {
			return false, false
		}
		for _, a := range args[n-1:] {
			if !r.invocationConvert(a, elem) {
				return false, false
			}
		}
		return true, true
	}
	return false, false
}

// effectiveParam is the formal type a candidate offers at argument
// position k: the varargs component past the fixed prefix.
func (r *Resolver) effectiveParam(m *symbols.Method, k int) (types.TypeID, bool) {
	n := len(m.Params)
	if !m.IsVarargs() {
		if k < n {
			return m.Params[k], true
		}
		return types.NoTypeID, false
	}
	if n == 0 {
		return types.NoTypeID, false
	}
	if k < n-1 {
		return m.Params[k], true
	}
	elem := r.types.Component(m.Params[n-1])
	return elem, elem.IsValid()
}
