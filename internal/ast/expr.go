package ast

import (
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// ExprKind tags the argument and receiver shapes the resolver cares about.
type ExprKind uint8

const (
	// ExprValue is any already-typed expression.
	ExprValue ExprKind = iota
	ExprLiteral
	ExprNull
	// ExprClassLiteral is T.class; Denoted holds T.
	ExprClassLiteral
	// ExprClassCreation is new T(...); Denoted holds the created class.
	ExprClassCreation
	ExprThis
	ExprSuper
	// ExprTypeName is a type used as a qualifier (T.m()).
	ExprTypeName
	// ExprLocal reads a local variable or parameter.
	ExprLocal
	// ExprField reads a field; Via is the enclosing-instance path.
	ExprField
	// ExprCall is the value of another call site.
	ExprCall
	// ExprNullPlaceholder is the trailing null passed to accessor
	// constructors.
	ExprNullPlaceholder
)

var exprKindNames = [...]string{
	ExprValue:           "value",
	ExprLiteral:         "literal",
	ExprNull:            "null",
	ExprClassLiteral:    "class-literal",
	ExprClassCreation:   "new",
	ExprThis:            "this",
	ExprSuper:           "super",
	ExprTypeName:        "type",
	ExprLocal:           "local",
	ExprField:           "field",
	ExprCall:            "call",
	ExprNullPlaceholder: "null-placeholder",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "expr?"
}

// Expr is an argument or receiver. Its static type is already computed.
type Expr struct {
	Kind  ExprKind
	Type  types.TypeID
	Const bool
	Span  source.Span

	Denoted types.TypeID
	Name    string
	Field   symbols.FieldID
	// Via lists the enclosing types crossed, innermost first, to reach the
	// instance a local, field or this refers to.
	Via  []types.TypeID
	Site SiteID
}

// Value builds a plain typed expression.
func Value(t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprValue, Type: t, Span: span}
}

// This builds the implicit receiver of type t.
func This(t types.TypeID, span source.Span) *Expr {
	return &Expr{Kind: ExprThis, Type: t, Span: span}
}
