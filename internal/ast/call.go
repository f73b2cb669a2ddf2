package ast

import (
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// SiteID identifies a call site inside a Unit.
type SiteID uint32

// NoSiteID marks the absence of a call site.
const NoSiteID SiteID = 0

func (id SiteID) IsValid() bool { return id != NoSiteID }

// CallKind is the shape of a call: MethodCall, New, ThisCall or SuperCall.
type CallKind interface {
	callKind()
}

// MethodCall is name(args) with an optional receiver. A nil Receiver means
// the name is looked up in the lexical environment.
type MethodCall struct {
	Name     string
	Receiver *Expr
}

// New is a class instance creation. Body is set for anonymous classes.
type New struct {
	Class types.TypeID
	// Outer is the explicit enclosing instance of o.new Inner().
	Outer *Expr
	Body  *AnonymousBody
}

// AnonymousBody carries what the body analysis found out.
type AnonymousBody struct {
	Span     source.Span
	Captures []string
}

// ThisCall is this(args) inside a constructor.
type ThisCall struct{}

// SuperCall is super(args) or outer.super(args) inside a constructor.
type SuperCall struct {
	Outer *Expr
}

func (MethodCall) callKind() {}
func (New) callKind()        {}
func (ThisCall) callKind()   {}
func (SuperCall) callKind()  {}

// CallSite is one call expression and the slot its resolution is written to.
type CallSite struct {
	ID       SiteID
	Label    string
	Kind     CallKind
	TypeArgs []types.TypeID
	Args     []*Expr
	Span     source.Span
	// NameSpan covers the method name for diagnostics.
	NameSpan source.Span
	Result   Resolution
}

// Name returns the method name or the created class name used in
// diagnostics.
func (s *CallSite) Name() string {
	if mc, ok := s.Kind.(MethodCall); ok {
		return mc.Name
	}
	return symbols.ConstructorName
}

// ResolutionState says how far a call site got.
type ResolutionState uint8

const (
	Unresolved ResolutionState = iota
	Resolved
	// Deferred sites await completion of their local class.
	Deferred
	Failed
)

func (s ResolutionState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Deferred:
		return "deferred"
	case Failed:
		return "failed"
	}
	return "unresolved"
}

// Resolution is written onto a CallSite by the resolver.
type Resolution struct {
	State    ResolutionState
	Callable symbols.MethodID
	// Type is the substituted static type of the call, or the bad type.
	Type types.TypeID
	// Phase is the applicability phase that produced the callable.
	Phase uint8
	// Wrapped is set when trailing arguments are packed into an implicit
	// varargs array.
	Wrapped bool
	Rewrite *Rewrite
	// Anonymous is the class synthesized for new T() {...}.
	Anonymous types.TypeID
	// SuperInvocation is the forwarding super(...) of an anonymous
	// constructor.
	SuperInvocation *Rewrite
	// LocalArgs are the capture arguments appended to a local class
	// constructor call.
	LocalArgs []*Expr
	// Throws are the checked exceptions the call can raise.
	Throws []types.TypeID
}

// Rewrite replaces a call by an invocation of Callable with Args.
type Rewrite struct {
	Callable symbols.MethodID
	Args     []*Expr
}

// IsBad reports whether the site ended with the error sentinel.
func (r *Resolution) IsBad(in *types.Interner) bool {
	return r.State == Failed || in.IsBad(r.Type)
}
