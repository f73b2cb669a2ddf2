package fixture

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"jopa/internal/types"
)

// typeExpr is a parsed but unresolved type expression such as
// "java.util.Map<String, ? extends p.Box<T>>[]".
type typeExpr struct {
	Name    string
	Args    []typeArgExpr
	HasArgs bool
	Dims    uint32
	Varargs bool
}

type typeArgExpr struct {
	Wildcard types.Wildcard
	Bound    *typeExpr
}

func (t *typeExpr) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *typeExpr) write(b *strings.Builder) {
	b.WriteString(t.Name)
	if t.HasArgs {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			switch a.Wildcard {
			case types.WildcardUnbounded:
				b.WriteByte('?')
			case types.WildcardExtends:
				b.WriteString("? extends ")
			case types.WildcardSuper:
				b.WriteString("? super ")
			}
			if a.Bound != nil {
				a.Bound.write(b)
			}
		}
		b.WriteByte('>')
	}
	for range t.Dims {
		b.WriteString("[]")
	}
	if t.Varargs {
		b.WriteString("...")
	}
}

// typeParamDecl is "T" or "T extends A & B".
type typeParamDecl struct {
	Name   string
	Bounds []*typeExpr
}

// cursor walks a type expression byte by byte.
type cursor struct {
	src string
	off uint32
	end uint32
}

func newCursor(src string) (cursor, error) {
	n, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return cursor{}, fmt.Errorf("type expression too long: %w", err)
	}
	return cursor{src: src, end: n}, nil
}

func (c *cursor) eof() bool { return c.off >= c.end }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

func (c *cursor) skipSpace() {
	for !c.eof() {
		switch c.src[c.off] {
		case ' ', '\t', '\n', '\r':
			c.off++
		default:
			return
		}
	}
}

func (c *cursor) eat(s string) bool {
	c.skipSpace()
	if strings.HasPrefix(c.src[c.off:], s) {
		c.off += uint32(len(s)) // #nosec G115 -- literal tokens are tiny
		return true
	}
	return false
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func (c *cursor) ident() (string, bool) {
	c.skipSpace()
	start := c.off
	if !isIdentStart(c.peek()) {
		return "", false
	}
	for !c.eof() && isIdentPart(c.peek()) {
		c.bump()
	}
	return c.src[start:c.off], true
}

// keyword consumes word only when it is a whole identifier.
func (c *cursor) keyword(word string) bool {
	save := c.off
	if id, ok := c.ident(); ok && id == word {
		return true
	}
	c.off = save
	return false
}

func (c *cursor) errorf(format string, args ...any) error {
	return fmt.Errorf("%q at offset %d: %s", c.src, c.off, fmt.Sprintf(format, args...))
}

func (c *cursor) expectEnd() error {
	c.skipSpace()
	if !c.eof() {
		return c.errorf("unexpected %q", c.src[c.off:])
	}
	return nil
}

// parseTypeExpr parses a complete type expression; a trailing "..." is
// accepted and recorded for the last parameter of a varargs method.
func parseTypeExpr(src string) (*typeExpr, error) {
	c, err := newCursor(src)
	if err != nil {
		return nil, err
	}
	t, err := c.typ(0)
	if err != nil {
		return nil, err
	}
	if c.eat("...") {
		t.Varargs = true
	}
	if err := c.expectEnd(); err != nil {
		return nil, err
	}
	return t, nil
}

const maxTypeDepth = 32

func (c *cursor) typ(depth int) (*typeExpr, error) {
	if depth > maxTypeDepth {
		return nil, c.errorf("type nested too deeply")
	}
	first, ok := c.ident()
	if !ok {
		return nil, c.errorf("expected a type name")
	}
	t := &typeExpr{Name: first}
	for {
		save := c.off
		if !c.eat(".") || c.eat("..") {
			c.off = save
			break
		}
		part, ok := c.ident()
		if !ok {
			return nil, c.errorf("expected an identifier after '.'")
		}
		t.Name += "." + part
	}
	if c.eat("<") {
		t.HasArgs = true
		if !c.eat(">") {
			for {
				arg, err := c.typeArg(depth + 1)
				if err != nil {
					return nil, err
				}
				t.Args = append(t.Args, arg)
				if c.eat(",") {
					continue
				}
				if !c.eat(">") {
					return nil, c.errorf("expected ',' or '>'")
				}
				break
			}
		}
	}
	for c.eat("[") {
		if !c.eat("]") {
			return nil, c.errorf("expected ']'")
		}
		t.Dims++
	}
	return t, nil
}

func (c *cursor) typeArg(depth int) (typeArgExpr, error) {
	if !c.eat("?") {
		t, err := c.typ(depth)
		return typeArgExpr{Wildcard: types.WildcardNone, Bound: t}, err
	}
	kind := types.WildcardUnbounded
	switch {
	case c.keyword("extends"):
		kind = types.WildcardExtends
	case c.keyword("super"):
		kind = types.WildcardSuper
	default:
		return typeArgExpr{Wildcard: kind}, nil
	}
	t, err := c.typ(depth)
	return typeArgExpr{Wildcard: kind, Bound: t}, err
}

// parseTypeParamDecl parses "T" or "T extends A & B".
func parseTypeParamDecl(src string) (typeParamDecl, error) {
	c, err := newCursor(src)
	if err != nil {
		return typeParamDecl{}, err
	}
	name, ok := c.ident()
	if !ok {
		return typeParamDecl{}, c.errorf("expected a type parameter name")
	}
	decl := typeParamDecl{Name: name}
	if c.keyword("extends") {
		for {
			b, err := c.typ(0)
			if err != nil {
				return typeParamDecl{}, err
			}
			decl.Bounds = append(decl.Bounds, b)
			if !c.eat("&") {
				break
			}
		}
	}
	return decl, c.expectEnd()
}

// parseLocalDecl parses "int x" as used by locals and captures.
func parseLocalDecl(src string) (*typeExpr, string, error) {
	c, err := newCursor(src)
	if err != nil {
		return nil, "", err
	}
	t, err := c.typ(0)
	if err != nil {
		return nil, "", err
	}
	name, ok := c.ident()
	if !ok {
		return nil, "", c.errorf("expected a variable name")
	}
	return t, name, c.expectEnd()
}
