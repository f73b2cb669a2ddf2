package symbols

import (
	"jopa/internal/source"
	"jopa/internal/types"
)

// FieldFlags carry field modifiers.
type FieldFlags uint8

const (
	FieldStatic FieldFlags = 1 << iota
	FieldFinal
	FieldSynthetic
	FieldDeprecated
)

// Field is a member variable. Capture fields of local classes are
// synthetic and named val$<local>.
type Field struct {
	Name   string
	Owner  types.TypeID
	Type   types.TypeID
	Access types.Access
	Flags  FieldFlags
	Decl   source.Span
}

func (f *Field) IsStatic() bool { return f.Flags&FieldStatic != 0 }
