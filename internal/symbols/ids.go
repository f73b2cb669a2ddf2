package symbols

// MethodID identifies a method or constructor inside a Table.
type MethodID uint32

// NoMethodID marks the absence of a callable.
const NoMethodID MethodID = 0

// IsValid reports whether the id refers to an allocated callable.
func (id MethodID) IsValid() bool { return id != NoMethodID }

// FieldID identifies a field inside a Table.
type FieldID uint32

// NoFieldID marks the absence of a field.
const NoFieldID FieldID = 0

// IsValid reports whether the id refers to an allocated field.
func (id FieldID) IsValid() bool { return id != NoFieldID }
