package ast

import "jopa/internal/types"

// Local is a local variable visible in a frame.
type Local struct {
	Name string
	Type types.TypeID
}

// Frame is one enclosing type of a call site.
type Frame struct {
	Type types.TypeID
	// Static is set when the code sits in a static member or static
	// initializer of Type.
	Static bool
	// ExplicitCtor is set inside the arguments of this(...)/super(...).
	ExplicitCtor bool
	Deprecated   bool
	// Handled are the exception types caught or declared around the call.
	Handled []types.TypeID
	Locals  []Local
}

// Env is the lexical environment chain, innermost frame first.
type Env struct {
	Frames []Frame
}

// Innermost returns the frame the call is written in.
func (e *Env) Innermost() *Frame {
	if e == nil || len(e.Frames) == 0 {
		return nil
	}
	return &e.Frames[0]
}

// This is the type of the innermost frame, or NoTypeID.
func (e *Env) This() types.TypeID {
	if f := e.Innermost(); f != nil {
		return f.Type
	}
	return types.NoTypeID
}

// Contains reports whether t is one of the enclosing types.
func (e *Env) Contains(t types.TypeID) bool {
	if e == nil {
		return false
	}
	for i := range e.Frames {
		if e.Frames[i].Type == t {
			return true
		}
	}
	return false
}

// Deprecated reports whether any frame is a deprecated context.
func (e *Env) Deprecated() bool {
	if e == nil {
		return false
	}
	for i := range e.Frames {
		if e.Frames[i].Deprecated {
			return true
		}
	}
	return false
}

// Clone copies the chain so a deferred site keeps the environment it was
// seen in.
func (e *Env) Clone() *Env {
	if e == nil {
		return nil
	}
	out := &Env{Frames: make([]Frame, len(e.Frames))}
	copy(out.Frames, e.Frames)
	return out
}
