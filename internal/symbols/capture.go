package symbols

import (
	"errors"
	"slices"

	"jopa/internal/types"
)

// ErrClassComplete is returned when a capture is added after the local
// class body was completed.
var ErrClassComplete = errors.New("local class already complete")

// Capture is an enclosing local variable copied into a local class.
type Capture struct {
	Name  string
	Type  types.TypeID
	Field FieldID
}

// CaptureFieldName is the synthetic field holding a captured local.
func CaptureFieldName(local string) string {
	return "val$" + local
}

// AddCapture records that the local class owner captures local. Repeated
// requests return the existing capture.
func (t *Table) AddCapture(owner types.TypeID, local string, typ types.TypeID) (Capture, error) {
	cm := t.Members(owner)
	for _, c := range cm.captures {
		if c.Name == local {
			return c, nil
		}
	}
	if cm.complete {
		return Capture{}, ErrClassComplete
	}
	c := Capture{Name: local, Type: typ}
	c.Field = t.AddField(Field{
		Name:   CaptureFieldName(local),
		Owner:  owner,
		Type:   typ,
		Access: types.AccessPrivate,
		Flags:  FieldSynthetic | FieldFinal,
	})
	cm = t.Members(owner)
	cm.captures = append(cm.captures, c)
	return c, nil
}

// Captures lists the captures of owner in declaration order.
func (t *Table) Captures(owner types.TypeID) []Capture {
	return t.Members(owner).captures
}

// CaptureOf finds a capture by local name.
func (t *Table) CaptureOf(owner types.TypeID, local string) (Capture, bool) {
	for _, c := range t.Members(owner).captures {
		if c.Name == local {
			return c, true
		}
	}
	return Capture{}, false
}

// IsComplete reports whether owner's body is finished. Only local classes
// start incomplete.
func (t *Table) IsComplete(owner types.TypeID) bool {
	return t.Members(owner).complete
}

// CompleteLocalClass marks owner complete and appends one capture
// parameter per captured local to each of its constructors. It returns
// false when owner was already complete.
func (t *Table) CompleteLocalClass(owner types.TypeID) bool {
	cm := t.Members(owner)
	if cm.complete {
		return false
	}
	cm.complete = true
	params := make([]types.TypeID, 0, len(cm.captures))
	for _, c := range cm.captures {
		params = append(params, c.Type)
	}
	for _, id := range cm.Ctors {
		t.methods[id].CaptureParams = slices.Clone(params)
	}
	return true
}
