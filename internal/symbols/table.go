package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"jopa/internal/types"
)

// ErrSignatureCycle is returned when a signature is requested while it is
// being resolved.
var ErrSignatureCycle = errors.New("signature resolution cycle")

// SignatureResolver completes a pending signature on first use: it fills
// Params, Return, Throws and TypeParams from Method.Raw.
type SignatureResolver interface {
	ResolveSignature(t *Table, id MethodID) error
}

// ClassMembers is everything a Table knows about one declared type.
type ClassMembers struct {
	Type    types.TypeID
	Methods []MethodID // declaration order, constructors excluded
	Ctors   []MethodID
	Fields  []FieldID
	// Accessors are generated forwarders; they never compete in overload
	// resolution.
	Accessors []MethodID

	heads    map[string]MethodID
	tails    map[string]MethodID
	fields   map[string]FieldID
	expanded tableCell

	captures []Capture
	complete bool
}

// Table is the symbol graph of one universe: callables and fields in
// arenas addressed by id, members grouped per declaring type.
type Table struct {
	Types *types.Interner

	methods []Method
	fields  []Field
	classes map[types.TypeID]*ClassMembers

	resolver     SignatureResolver
	accessors    map[AccessorKey]MethodID
	placeholders map[types.TypeID]types.TypeID
	arrays       map[types.TypeID]*Expanded
	arrayClone   MethodID
	arrayLength  FieldID
}

// NewTable creates a Table over in and seeds the java.lang members.
func NewTable(in *types.Interner) *Table {
	t := &Table{
		Types:        in,
		methods:      make([]Method, 1, 256),
		fields:       make([]Field, 1, 64),
		classes:      make(map[types.TypeID]*ClassMembers, 64),
		accessors:    make(map[AccessorKey]MethodID),
		placeholders: make(map[types.TypeID]types.TypeID),
		arrays:       make(map[types.TypeID]*Expanded),
	}
	t.seedPrelude()
	return t
}

// SetResolver installs the lazy signature hook.
func (t *Table) SetResolver(r SignatureResolver) {
	t.resolver = r
}

// Members returns (creating on demand) the member record of a class.
func (t *Table) Members(owner types.TypeID) *ClassMembers {
	owner = t.Types.ClassOf(owner)
	if cm, ok := t.classes[owner]; ok {
		return cm
	}
	cm := &ClassMembers{
		Type:   owner,
		heads:  make(map[string]MethodID),
		tails:  make(map[string]MethodID),
		fields: make(map[string]FieldID),
	}
	info, ok := t.Types.ClassInfo(owner)
	cm.complete = !ok || !info.Is(types.ClassLocal)
	t.classes[owner] = cm
	return cm
}

// AddMethod stores m, links it into its owner's overload chain and returns
// its id. Constructors go to the constructor chain.
func (t *Table) AddMethod(m Method) MethodID {
	if m.Kind == MethodConstructor {
		m.Name = ConstructorName
	}
	id := t.alloc(m)
	cm := t.Members(m.Owner)
	if m.Kind == MethodConstructor {
		if k := len(cm.Ctors); k > 0 {
			t.methods[cm.Ctors[k-1]].Next = id
		}
		cm.Ctors = append(cm.Ctors, id)
		return id
	}
	if m.Is(MethodAccessor) {
		cm.Accessors = append(cm.Accessors, id)
		return id
	}
	cm.Methods = append(cm.Methods, id)
	if tail, ok := cm.tails[m.Name]; ok {
		t.methods[tail].Next = id
	} else {
		cm.heads[m.Name] = id
	}
	cm.tails[m.Name] = id
	return id
}

// AddField stores f in its owner and returns its id.
func (t *Table) AddField(f Field) FieldID {
	id := t.allocField(f)
	cm := t.Members(f.Owner)
	cm.Fields = append(cm.Fields, id)
	if _, dup := cm.fields[f.Name]; !dup {
		cm.fields[f.Name] = id
	}
	return id
}

// alloc stores m in the arena without attaching it to its owner.
func (t *Table) alloc(m Method) MethodID {
	n, err := safecast.Conv[uint32](len(t.methods))
	if err != nil {
		panic(fmt.Errorf("methods arena overflow: %w", err))
	}
	m.Next = NoMethodID
	t.methods = append(t.methods, m)
	return MethodID(n)
}

func (t *Table) allocField(f Field) FieldID {
	n, err := safecast.Conv[uint32](len(t.fields))
	if err != nil {
		panic(fmt.Errorf("fields arena overflow: %w", err))
	}
	t.fields = append(t.fields, f)
	return FieldID(n)
}

// Method returns the callable for id, or nil.
func (t *Table) Method(id MethodID) *Method {
	if !id.IsValid() || int(id) >= len(t.methods) {
		return nil
	}
	return &t.methods[id]
}

// Field returns the field for id, or nil.
func (t *Table) Field(id FieldID) *Field {
	if !id.IsValid() || int(id) >= len(t.fields) {
		return nil
	}
	return &t.fields[id]
}

// Overloads walks the declared chain of name in owner.
func (t *Table) Overloads(owner types.TypeID, name string) []MethodID {
	var out []MethodID
	for id := t.Members(owner).heads[name]; id.IsValid(); id = t.methods[id].Next {
		out = append(out, id)
	}
	return out
}

// Constructors returns the constructor chain of owner.
func (t *Table) Constructors(owner types.TypeID) []MethodID {
	return t.Members(owner).Ctors
}

// DeclaredField finds a field declared directly in owner.
func (t *Table) DeclaredField(owner types.TypeID, name string) (FieldID, bool) {
	id, ok := t.Members(owner).fields[name]
	return id, ok
}

// Signature makes sure the callable's signature is processed. It returns
// false when the signature is broken or re-entered.
func (t *Table) Signature(id MethodID) (*Method, bool) {
	m := t.Method(id)
	if m == nil {
		return nil, false
	}
	switch m.Sig {
	case SigResolved:
		return m, true
	case SigResolving, SigBroken:
		return m, false
	}
	if t.resolver == nil {
		m.Sig = SigResolved
		return m, true
	}
	m.Sig = SigResolving
	err := t.resolver.ResolveSignature(t, id)
	// the resolver may have grown the arena
	m = &t.methods[id]
	if err != nil {
		m.Sig = SigBroken
		return m, false
	}
	m.Sig = SigResolved
	return m, true
}
