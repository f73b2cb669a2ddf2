package fixture

import (
	"errors"
	"fmt"
	"strings"

	"jopa/internal/diag"
	"jopa/internal/types"
)

// scope is where a type expression is resolved: the enclosing class for
// its type parameters, member types and package, plus the type parameters
// of the method being declared.
type scope struct {
	class  types.TypeID
	params map[string]types.TypeID
}

// unknownTypeError names a type that matched nothing in scope.
type unknownTypeError struct {
	Name string
}

func (e *unknownTypeError) Error() string {
	return "cannot find type " + e.Name
}

func (l *loader) primitive(name string) (types.TypeID, bool) {
	b := l.builtins
	switch name {
	case "boolean":
		return b.Boolean, true
	case "byte":
		return b.Byte, true
	case "short":
		return b.Short, true
	case "char":
		return b.Char, true
	case "int":
		return b.Int, true
	case "long":
		return b.Long, true
	case "float":
		return b.Float, true
	case "double":
		return b.Double, true
	case "void":
		return b.Void, true
	}
	return types.NoTypeID, false
}

// lookupName finds the class or type variable a name denotes. Simple names
// try method type parameters, class type parameters of the enclosing
// chain, member types of the enclosing chain, the enclosing package and
// java.lang, in that order. Dotted names are tried as qualified names
// first and then as member types of their resolved first segment.
func (l *loader) lookupName(name string, sc scope) (types.TypeID, bool) {
	if !strings.Contains(name, ".") {
		return l.lookupSimple(name, sc)
	}
	if id, ok := l.types.ClassByName(name); ok {
		return id, true
	}
	first, rest, _ := strings.Cut(name, ".")
	head, ok := l.lookupSimple(first, sc)
	if !ok || l.types.Kind(head) != types.KindClass {
		return types.NoTypeID, false
	}
	return l.types.ClassByName(l.types.QualifiedName(head) + "." + rest)
}

func (l *loader) lookupSimple(name string, sc scope) (types.TypeID, bool) {
	if tp, ok := sc.params[name]; ok {
		return tp, true
	}
	for c := sc.class; c.IsValid(); {
		info, ok := l.types.ClassInfo(c)
		if !ok {
			break
		}
		for _, tp := range info.TypeParams {
			if p, ok := l.types.TypeParamInfo(tp); ok && p.Name == name {
				return tp, true
			}
		}
		c = info.Outer
	}
	for c := sc.class; c.IsValid(); {
		if id, ok := l.types.ClassByName(l.types.QualifiedName(c) + "." + name); ok {
			return id, true
		}
		info, ok := l.types.ClassInfo(c)
		if !ok {
			break
		}
		c = info.Outer
	}
	if sc.class.IsValid() {
		if pkg := l.types.Package(sc.class); pkg != "" {
			if id, ok := l.types.ClassByName(pkg + "." + name); ok {
				return id, true
			}
		}
	}
	if id, ok := l.types.ClassByName(name); ok {
		return id, true
	}
	return l.types.ClassByName("java.lang." + name)
}

// resolveType turns a parsed expression into a type id. A varargs marker
// adds one array dimension.
func (l *loader) resolveType(t *typeExpr, sc scope) (types.TypeID, error) {
	base, ok := l.primitive(t.Name)
	if ok {
		if t.HasArgs {
			return types.NoTypeID, fmt.Errorf("primitive type %s cannot take type arguments", t.Name)
		}
		if base == l.builtins.Void && (t.Dims > 0 || t.Varargs) {
			return types.NoTypeID, fmt.Errorf("void cannot be an array element")
		}
	} else {
		base, ok = l.lookupName(t.Name, sc)
		if !ok {
			return types.NoTypeID, &unknownTypeError{Name: t.Name}
		}
	}
	if t.HasArgs {
		param, err := l.parameterize(base, t, sc)
		if err != nil {
			return types.NoTypeID, err
		}
		base = param
	}
	dims := t.Dims
	if t.Varargs {
		dims++
	}
	if dims > 0 {
		return l.types.Array(base, dims), nil
	}
	return base, nil
}

func (l *loader) parameterize(base types.TypeID, t *typeExpr, sc scope) (types.TypeID, error) {
	info, ok := l.types.ClassInfo(base)
	if !ok || l.types.Kind(base) != types.KindClass {
		return types.NoTypeID, fmt.Errorf("%s cannot take type arguments", t.Name)
	}
	if len(info.TypeParams) != len(t.Args) {
		return types.NoTypeID, fmt.Errorf("%s takes %d type arguments, got %d", l.types.QualifiedName(base), len(info.TypeParams), len(t.Args))
	}
	args := make([]types.TypeArg, len(t.Args))
	for i, a := range t.Args {
		args[i].Wildcard = a.Wildcard
		if a.Bound == nil {
			continue
		}
		bound, err := l.resolveType(a.Bound, sc)
		if err != nil {
			return types.NoTypeID, err
		}
		if !l.types.IsReference(bound) {
			return types.NoTypeID, fmt.Errorf("type argument %s is not a reference type", a.Bound)
		}
		args[i].Type = bound
	}
	return l.types.Parameterized(base, args), nil
}

// typeOf parses and resolves src, reporting problems at p. It returns the
// bad type on failure so callers can carry on.
func (l *loader) typeOf(src string, sc scope, p position) types.TypeID {
	te, err := parseTypeExpr(src)
	if err == nil {
		var id types.TypeID
		if id, err = l.resolveType(te, sc); err == nil {
			return id
		}
	}
	l.typeError(err, src, p)
	return l.builtins.Bad
}

func (l *loader) typeError(err error, src string, p position) {
	code := diag.PrjBadTypeExpr
	var unknown *unknownTypeError
	if errors.As(err, &unknown) {
		code = diag.PrjUnknownType
	}
	l.errorf(code, p, len(src), "%v", err)
}

// classOf resolves src and requires a declared class.
func (l *loader) classOf(src string, sc scope, p position) (types.TypeID, bool) {
	id := l.typeOf(src, sc, p)
	if l.types.IsBad(id) {
		return id, false
	}
	if _, ok := l.types.ClassInfo(id); !ok {
		l.errorf(diag.PrjBadTypeExpr, p, len(src), "%s is not a class or interface type", src)
		return l.builtins.Bad, false
	}
	return id, true
}
