package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs seeded at construction.
type Builtins struct {
	Bad     TypeID
	Null    TypeID
	Void    TypeID
	Boolean TypeID
	Byte    TypeID
	Short   TypeID
	Char    TypeID
	Int     TypeID
	Long    TypeID
	Float   TypeID
	Double  TypeID

	Object            TypeID
	String            TypeID
	Class             TypeID
	Cloneable         TypeID
	Serializable      TypeID
	Comparable        TypeID
	CharSequence      TypeID
	Number            TypeID
	Enum              TypeID
	Throwable         TypeID
	Exception         TypeID
	RuntimeException  TypeID
	Error             TypeID
	CloneNotSupported TypeID
	Interrupted       TypeID
}

// Interner owns every type of one resolution universe. IDs are stable
// and index 0 is reserved.
type Interner struct {
	types      []Type
	index      map[Type]TypeID
	paramIndex map[string]TypeID
	builtins   Builtins

	classes  []ClassInfo
	params   []TypeParamInfo
	argLists [][]TypeArg
	byName   map[string]TypeID
	boxes    map[TypeID]TypeID
	unboxes  map[TypeID]TypeID
	anonSeq  map[TypeID]int
}

// NewInterner constructs an interner seeded with primitives and the
// java.lang core.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[Type]TypeID, 64),
		paramIndex: make(map[string]TypeID),
		byName:     make(map[string]TypeID, 64),
		boxes:      make(map[TypeID]TypeID, 8),
		unboxes:    make(map[TypeID]TypeID, 8),
		anonSeq:    make(map[TypeID]int),
	}
	in.types = append(in.types, Type{})
	in.classes = append(in.classes, ClassInfo{})
	in.params = append(in.params, TypeParamInfo{})
	in.argLists = append(in.argLists, nil)

	b := &in.builtins
	b.Bad = in.Intern(Type{Kind: KindBad})
	b.Null = in.Intern(Type{Kind: KindNull})
	b.Void = in.Intern(Type{Kind: KindVoid})
	b.Boolean = in.Intern(Type{Kind: KindBoolean})
	b.Byte = in.Intern(Type{Kind: KindByte})
	b.Short = in.Intern(Type{Kind: KindShort})
	b.Char = in.Intern(Type{Kind: KindChar})
	b.Int = in.Intern(Type{Kind: KindInt})
	b.Long = in.Intern(Type{Kind: KindLong})
	b.Float = in.Intern(Type{Kind: KindFloat})
	b.Double = in.Intern(Type{Kind: KindDouble})
	in.seedLang()
	return in
}

// Builtins returns the seeded TypeIDs.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern returns the stable id of a structural descriptor. Classes and
// type parameters are nominal and must be registered instead.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	if t.Kind != KindClass && t.Kind != KindTypeParam {
		in.index[t] = id
	}
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("types: invalid TypeID %d", id))
	}
	return tt
}

// Kind is a shortcut for the descriptor kind; unknown ids are KindInvalid.
func (in *Interner) Kind(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

func (in *Interner) IsBad(id TypeID) bool       { return in.Kind(id) == KindBad }
func (in *Interner) IsNull(id TypeID) bool      { return in.Kind(id) == KindNull }
func (in *Interner) IsPrimitive(id TypeID) bool { return in.Kind(id).IsPrimitive() }
func (in *Interner) IsReference(id TypeID) bool { return in.Kind(id).IsReference() }
func (in *Interner) IsArray(id TypeID) bool     { return in.Kind(id) == KindArray }

// Array interns elem[]...[] with dims extra dimensions. An array element
// folds its dimensions into the result.
func (in *Interner) Array(elem TypeID, dims uint32) TypeID {
	if dims == 0 {
		return elem
	}
	if tt, ok := in.Lookup(elem); ok {
		switch tt.Kind {
		case KindBad:
			return elem
		case KindArray:
			elem, dims = tt.Elem, dims+tt.Count
		}
	}
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: dims})
}

// Dims returns the array dimension count (0 for non-arrays).
func (in *Interner) Dims(id TypeID) uint32 {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return 0
	}
	return tt.Count
}

// Component strips one array dimension.
func (in *Interner) Component(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return NoTypeID
	}
	if tt.Count == 1 {
		return tt.Elem
	}
	return in.Array(tt.Elem, tt.Count-1)
}

// StripDims removes n array dimensions. ok is false when id has fewer.
func (in *Interner) StripDims(id TypeID, n uint32) (TypeID, bool) {
	if n == 0 {
		return id, true
	}
	tt, found := in.Lookup(id)
	if !found || tt.Kind != KindArray || tt.Count < n {
		return NoTypeID, false
	}
	if tt.Count == n {
		return tt.Elem, true
	}
	return in.Array(tt.Elem, tt.Count-n), true
}

// BaseElem returns the innermost element of an array or id itself.
func (in *Interner) BaseElem(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if ok && tt.Kind == KindArray {
		return tt.Elem
	}
	return id
}
