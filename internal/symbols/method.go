package symbols

import (
	"strings"

	"jopa/internal/source"
	"jopa/internal/types"
)

// MethodKind separates ordinary methods from constructors.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodConstructor
)

// ConstructorName is the name every constructor carries.
const ConstructorName = "<init>"

// MethodFlags carry modifiers and compiler-generated markers.
type MethodFlags uint16

const (
	MethodStatic MethodFlags = 1 << iota
	MethodAbstract
	MethodFinal
	MethodVarargs
	MethodSynthetic
	MethodBridge
	MethodDeprecated
	MethodDefault
	// MethodEnumSupport marks the generated values()/valueOf(String).
	MethodEnumSupport
	// MethodAccessor marks a generated forwarding accessor.
	MethodAccessor
)

// SignatureState tracks lazy signature processing.
type SignatureState uint8

const (
	SigPending SignatureState = iota
	SigResolving
	SigResolved
	// SigBroken means the parameter or return types could not be
	// resolved; such a callable is never applicable.
	SigBroken
)

// Method is a method or constructor of exactly one declaring type.
type Method struct {
	Name       string
	Owner      types.TypeID
	Kind       MethodKind
	Access     types.Access
	Flags      MethodFlags
	Params     []types.TypeID
	Return     types.TypeID
	Throws     []types.TypeID
	TypeParams []types.TypeID
	// Next links the next same-named callable declared in Owner.
	Next MethodID
	Decl source.Span
	Sig  SignatureState

	// CaptureParams are the trailing parameters a local class constructor
	// gains once the class body is complete.
	CaptureParams []types.TypeID
	// Target is the member an accessor forwards to.
	Target MethodID
	// Raw is collaborator data consumed by the SignatureResolver.
	Raw any
}

func (m *Method) Is(f MethodFlags) bool { return m.Flags&f != 0 }

func (m *Method) IsStatic() bool        { return m.Is(MethodStatic) }
func (m *Method) IsVarargs() bool       { return m.Is(MethodVarargs) }
func (m *Method) IsConstructor() bool   { return m.Kind == MethodConstructor }
func (m *Method) IsAbstract() bool      { return m.Is(MethodAbstract) }
func (m *Method) IsGeneric() bool       { return len(m.TypeParams) > 0 }
func (m *Method) IsSyntheticCall() bool { return m.Is(MethodSynthetic) && !m.Is(MethodBridge) }

// Header renders name(type, ...) with qualified parameter type names.
func (t *Table) Header(id MethodID) string {
	m := t.Method(id)
	if m == nil {
		return "<none>"
	}
	name := m.Name
	if m.IsConstructor() {
		if info, ok := t.Types.ClassInfo(m.Owner); ok {
			name = info.Name
		}
	}
	return t.HeaderOf(name, m.Params, m.IsVarargs())
}

// HeaderOf renders a call shape for diagnostics.
func (t *Table) HeaderOf(name string, params []types.TypeID, varargs bool) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		if varargs && i == len(params)-1 && t.Types.IsArray(p) {
			b.WriteString(t.Types.Name(t.Types.Component(p)))
			b.WriteString("...")
			continue
		}
		b.WriteString(t.Types.Name(p))
	}
	b.WriteByte(')')
	return b.String()
}
