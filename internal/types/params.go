package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Wildcard classifies a type argument.
type Wildcard uint8

const (
	WildcardNone Wildcard = iota
	WildcardUnbounded
	WildcardExtends
	WildcardSuper
)

// TypeArg is one actual argument of a parameterized type.
type TypeArg struct {
	Wildcard Wildcard
	Type     TypeID // bound for Extends/Super, NoTypeID when Unbounded
}

// Exact wraps a concrete argument.
func Exact(t TypeID) TypeArg { return TypeArg{Type: t} }

// TypeParamInfo stores metadata about a type variable.
type TypeParamInfo struct {
	Name   string
	Index  uint32
	Bounds []TypeID
	// Owner is the declaring class for class type parameters and the
	// class declaring the method for method type parameters.
	Owner TypeID
	// Method is the owning callable id (symbols.MethodID) or 0 for class
	// type parameters.
	Method uint32
}

// MethodOwned reports whether the parameter belongs to a generic method.
func (p *TypeParamInfo) MethodOwned() bool { return p.Method != 0 }

// RegisterTypeParam allocates a fresh type variable.
func (in *Interner) RegisterTypeParam(info TypeParamInfo) TypeID {
	slot := appendSlot(&in.params, info)
	return in.internRaw(Type{Kind: KindTypeParam, Payload: slot})
}

// SetTypeParamBounds records bounds once they can be resolved.
func (in *Interner) SetTypeParamBounds(id TypeID, bounds []TypeID) {
	if info := in.typeParam(id); info != nil {
		info.Bounds = append([]TypeID(nil), bounds...)
	}
}

// TypeParamInfo returns metadata for a type variable.
func (in *Interner) TypeParamInfo(id TypeID) (*TypeParamInfo, bool) {
	info := in.typeParam(id)
	return info, info != nil
}

func (in *Interner) typeParam(id TypeID) *TypeParamInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTypeParam || tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil
	}
	return &in.params[tt.Payload]
}

// Parameterized interns base<args...>. An empty argument list yields base.
func (in *Interner) Parameterized(base TypeID, args []TypeArg) TypeID {
	if len(args) == 0 {
		return base
	}
	key := in.argsKey(base, args)
	if id, ok := in.paramIndex[key]; ok {
		return id
	}
	slot := appendSlot(&in.argLists, append([]TypeArg(nil), args...))
	id := in.internRaw(Type{Kind: KindParameterized, Elem: base, Payload: slot})
	in.paramIndex[key] = id
	return id
}

// TypeArgs returns the arguments of a parameterized type.
func (in *Interner) TypeArgs(id TypeID) []TypeArg {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParameterized {
		return nil
	}
	return in.argLists[tt.Payload]
}

func (in *Interner) argsKey(base TypeID, args []TypeArg) string {
	key := fmt.Sprintf("%d<", base)
	for _, a := range args {
		key += fmt.Sprintf("%d:%d,", a.Wildcard, a.Type)
	}
	return key
}

func appendSlot[T any](slots *[]T, v T) uint32 {
	n, err := safecast.Conv[uint32](len(*slots))
	if err != nil {
		panic(fmt.Errorf("slot overflow: %w", err))
	}
	*slots = append(*slots, v)
	return n
}
