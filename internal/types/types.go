package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type (no superclass, no return value yet).
const NoTypeID TypeID = 0

// IsValid reports whether id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindBad is the error sentinel. Every check against it succeeds
	// silently so one failure does not cascade.
	KindBad
	KindNull
	KindVoid
	KindBoolean
	KindByte
	KindShort
	KindChar
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindClass
	KindArray
	KindTypeParam
	KindParameterized
)

var kindNames = [...]string{
	KindInvalid:       "invalid",
	KindBad:           "<bad>",
	KindNull:          "null",
	KindVoid:          "void",
	KindBoolean:       "boolean",
	KindByte:          "byte",
	KindShort:         "short",
	KindChar:          "char",
	KindInt:           "int",
	KindLong:          "long",
	KindFloat:         "float",
	KindDouble:        "double",
	KindClass:         "class",
	KindArray:         "array",
	KindTypeParam:     "type-param",
	KindParameterized: "parameterized",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsPrimitive covers boolean and the numeric kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindDouble
}

// IsNumeric covers every primitive except boolean.
func (k Kind) IsNumeric() bool {
	return k >= KindByte && k <= KindDouble
}

// IsReference covers declared, array, type-parameter and parameterized
// types. The null type is not a reference type in this sense.
func (k Kind) IsReference() bool {
	return k >= KindClass && k <= KindParameterized
}

// Type is a compact descriptor for any supported type.
//
//	Class         Payload = class slot
//	Array         Elem = non-array component, Count = dimensions (>= 1)
//	TypeParam     Payload = parameter slot
//	Parameterized Elem = generic class, Payload = argument list slot
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Payload uint32
}

// Access is a member or type access modifier.
type Access uint8

const (
	AccessPackage Access = iota
	AccessPrivate
	AccessProtected
	AccessPublic
)

func (a Access) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessProtected:
		return "protected"
	case AccessPublic:
		return "public"
	default:
		return "package"
	}
}

// ParseAccess accepts the modifier keyword; "" and "package" mean
// package-private.
func ParseAccess(s string) (Access, bool) {
	switch s {
	case "", "package":
		return AccessPackage, true
	case "private":
		return AccessPrivate, true
	case "protected":
		return AccessProtected, true
	case "public":
		return AccessPublic, true
	}
	return AccessPackage, false
}
