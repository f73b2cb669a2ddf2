package symbols

import (
	"errors"
	"slices"

	"jopa/internal/types"
)

// ErrTableBuilding is returned when an expanded table is requested while
// it is being built. Callers treat it as the error sentinel.
var ErrTableBuilding = errors.New("expanded member table is being built")

// TableState is the memoization state of an expanded table.
type TableState uint8

const (
	TableUnbuilt TableState = iota
	TableBuilding
	TableBuilt
)

type tableCell struct {
	state TableState
	table *Expanded
}

// Shadow is one inherited-or-declared method as seen from a type, plus
// abstract callables of the same signature reached through other paths
// whose throws clauses must be merged.
type Shadow struct {
	Method    MethodID
	Conflicts []MethodID
}

// Expanded is the closure of a type's members over its supertypes.
type Expanded struct {
	Owner   types.TypeID
	Methods map[string][]*Shadow
	// Names keeps method names in insertion order.
	Names      []string
	Fields     map[string]FieldID
	FieldNames []string
}

func newExpanded(owner types.TypeID) *Expanded {
	return &Expanded{
		Owner:   owner,
		Methods: make(map[string][]*Shadow),
		Fields:  make(map[string]FieldID),
	}
}

// Lookup returns the overload list for name.
func (e *Expanded) Lookup(name string) []*Shadow {
	if e == nil {
		return nil
	}
	return e.Methods[name]
}

// Field returns the visible field named name.
func (e *Expanded) Field(name string) (FieldID, bool) {
	if e == nil {
		return NoFieldID, false
	}
	id, ok := e.Fields[name]
	return id, ok
}

func (e *Expanded) add(name string, s *Shadow) {
	if _, seen := e.Methods[name]; !seen {
		e.Names = append(e.Names, name)
	}
	e.Methods[name] = append(e.Methods[name], s)
}

func (e *Expanded) addField(name string, id FieldID) {
	if _, seen := e.Fields[name]; seen {
		return
	}
	e.Fields[name] = id
	e.FieldNames = append(e.FieldNames, name)
}

// State reports the memoization state of owner's expanded table.
func (t *Table) State(owner types.TypeID) TableState {
	return t.Members(owner).expanded.state
}

// ExpandedTable returns the member closure of a class, interface or array
// type, building it on first use. A request that arrives while the same
// table is being built returns ErrTableBuilding.
func (t *Table) ExpandedTable(owner types.TypeID) (*Expanded, error) {
	if t.Types.IsArray(owner) {
		return t.arrayTable(owner)
	}
	owner = t.Types.ClassOf(owner)
	if !owner.IsValid() {
		return nil, errors.New("expanded table of a non-class type")
	}
	cm := t.Members(owner)
	switch cm.expanded.state {
	case TableBuilt:
		return cm.expanded.table, nil
	case TableBuilding:
		return nil, ErrTableBuilding
	}
	cm.expanded.state = TableBuilding
	table := t.buildTable(owner)
	cm = t.Members(owner)
	cm.expanded = tableCell{state: TableBuilt, table: table}
	return table, nil
}

func (t *Table) buildTable(owner types.TypeID) *Expanded {
	table := newExpanded(owner)
	cm := t.Members(owner)
	for _, id := range slices.Clone(cm.Methods) {
		t.Signature(id)
		table.add(t.methods[id].Name, &Shadow{Method: id})
	}
	for _, id := range cm.Fields {
		table.addField(t.fields[id].Name, id)
	}

	info, _ := t.Types.ClassInfo(owner)
	var supers []types.TypeID
	if info.Super.IsValid() {
		supers = append(supers, t.Types.ClassOf(info.Super))
	}
	for _, iface := range info.Interfaces {
		supers = append(supers, t.Types.ClassOf(iface))
	}
	if info.IsInterface() {
		supers = append(supers, t.Types.Builtins().Object)
	}
	for _, st := range supers {
		if st == owner || !st.IsValid() {
			continue
		}
		inherited, err := t.ExpandedTable(st)
		if err != nil {
			continue
		}
		t.inherit(table, owner, inherited)
	}
	return table
}

// inherit merges a supertype's closure into table.
func (t *Table) inherit(table *Expanded, owner types.TypeID, from *Expanded) {
	for _, name := range from.Names {
		for _, s := range from.Methods[name] {
			m := &t.methods[s.Method]
			if !t.inheritable(m, owner) {
				continue
			}
			existing := t.sameSignature(table.Methods[name], s.Method)
			if existing == nil {
				table.add(name, &Shadow{Method: s.Method, Conflicts: slices.Clone(s.Conflicts)})
				continue
			}
			t.mergeShadow(existing, owner, s)
		}
	}
	for _, name := range from.FieldNames {
		id := from.Fields[name]
		if f := &t.fields[id]; f.Access != types.AccessPrivate {
			table.addField(name, id)
		}
	}
}

func (t *Table) mergeShadow(existing *Shadow, owner types.TypeID, s *Shadow) {
	cur := &t.methods[existing.Method]
	if cur.Owner == owner || existing.Method == s.Method {
		return
	}
	incoming := &t.methods[s.Method]
	if !cur.IsAbstract() {
		return
	}
	if !incoming.IsAbstract() {
		existing.Method = s.Method
		existing.Conflicts = nil
		return
	}
	for _, c := range append([]MethodID{s.Method}, s.Conflicts...) {
		if c != existing.Method && !slices.Contains(existing.Conflicts, c) {
			existing.Conflicts = append(existing.Conflicts, c)
		}
	}
}

// inheritable drops private members and package members of other packages.
func (t *Table) inheritable(m *Method, into types.TypeID) bool {
	switch m.Access {
	case types.AccessPrivate:
		return false
	case types.AccessPackage:
		return t.Types.SamePackage(m.Owner, into)
	}
	return true
}

func (t *Table) sameSignature(list []*Shadow, id MethodID) *Shadow {
	m, ok := t.Signature(id)
	if !ok {
		return nil
	}
	for _, s := range list {
		other, ok := t.Signature(s.Method)
		if !ok || len(other.Params) != len(m.Params) {
			continue
		}
		same := true
		for i := range m.Params {
			if t.Types.Erasure(m.Params[i]) != t.Types.Erasure(other.Params[i]) {
				same = false
				break
			}
		}
		if same {
			return s
		}
	}
	return nil
}

// arrayTable is java.lang.Object's closure with a public clone() and a
// length field, one per array type.
func (t *Table) arrayTable(arr types.TypeID) (*Expanded, error) {
	if table, ok := t.arrays[arr]; ok {
		return table, nil
	}
	object, err := t.ExpandedTable(t.Types.Builtins().Object)
	if err != nil {
		return nil, err
	}
	clone, length := t.arrayMembers()
	table := newExpanded(arr)
	table.add("clone", &Shadow{Method: clone})
	table.addField("length", length)
	for _, name := range object.Names {
		for _, s := range object.Methods[name] {
			if name == "clone" && len(t.methods[s.Method].Params) == 0 {
				continue
			}
			table.add(name, &Shadow{Method: s.Method})
		}
	}
	t.arrays[arr] = table
	return table, nil
}

// IsArrayClone reports whether id is the public clone() of an array type.
func (t *Table) IsArrayClone(id MethodID) bool {
	return id.IsValid() && id == t.arrayClone
}

func (t *Table) arrayMembers() (MethodID, FieldID) {
	if !t.arrayClone.IsValid() {
		b := t.Types.Builtins()
		t.arrayClone = t.alloc(Method{
			Name:   "clone",
			Owner:  b.Object,
			Access: types.AccessPublic,
			Flags:  MethodFinal,
			Return: b.Object,
			Sig:    SigResolved,
		})
		t.arrayLength = t.allocField(Field{
			Name:   "length",
			Owner:  b.Object,
			Type:   b.Int,
			Access: types.AccessPublic,
			Flags:  FieldFinal,
		})
	}
	return t.arrayClone, t.arrayLength
}
