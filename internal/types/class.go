package types

import (
	"fmt"
	"strings"

	"jopa/internal/source"
)

// ClassFlags describe a declared type.
type ClassFlags uint16

const (
	ClassInterface ClassFlags = 1 << iota
	ClassAbstract
	ClassFinal
	ClassStatic
	ClassEnum
	ClassAnonymous
	ClassLocal
	ClassSynthetic
	ClassDeprecated
)

// ClassInfo stores metadata for a class or interface.
type ClassInfo struct {
	Name    string // simple name; "1" for anonymous, "1Local" for local classes
	Package string
	Outer   TypeID // lexically enclosing type
	Flags   ClassFlags
	Access  Access
	// Super and Interfaces may be parameterized; Super is NoTypeID for
	// java.lang.Object and for interfaces.
	Super      TypeID
	Interfaces []TypeID
	TypeParams []TypeID
	Decl       source.Span
}

func (c *ClassInfo) Is(f ClassFlags) bool { return c.Flags&f != 0 }

// IsInterface reports whether the class is an interface.
func (c *ClassInfo) IsInterface() bool { return c.Is(ClassInterface) }

// IsInner reports whether instances carry an enclosing instance.
func (c *ClassInfo) IsInner() bool {
	return c.Outer.IsValid() && !c.Is(ClassStatic) && !c.Is(ClassInterface) && !c.Is(ClassEnum)
}

// RegisterClass allocates a nominal class type. The qualified name must be
// unique within the interner.
func (in *Interner) RegisterClass(info ClassInfo) (TypeID, error) {
	name := in.qualifiedFromInfo(&info)
	if prev, dup := in.byName[name]; dup {
		return prev, fmt.Errorf("class %s already declared", name)
	}
	slot := appendSlot(&in.classes, info)
	id := in.internRaw(Type{Kind: KindClass, Payload: slot})
	in.byName[name] = id
	return id, nil
}

// RegisterAnonymous allocates the next anonymous class of the outermost
// type enclosing outer, named Outermost$N.
func (in *Interner) RegisterAnonymous(outer TypeID, info ClassInfo) TypeID {
	top := in.Outermost(outer)
	in.anonSeq[top]++
	info.Name = fmt.Sprintf("%d", in.anonSeq[top])
	info.Outer = outer
	info.Flags |= ClassAnonymous | ClassFinal
	if oi, ok := in.ClassInfo(top); ok {
		info.Package = oi.Package
	}
	slot := appendSlot(&in.classes, info)
	id := in.internRaw(Type{Kind: KindClass, Payload: slot})
	in.byName[in.QualifiedName(id)] = id
	return id
}

// ClassInfo returns metadata for a class id, or for the generic class of a
// parameterized id.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	if tt.Kind == KindParameterized {
		tt, ok = in.Lookup(tt.Elem)
		if !ok {
			return nil, false
		}
	}
	if tt.Kind != KindClass || tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil, false
	}
	return &in.classes[tt.Payload], true
}

// ClassByName finds a class by qualified name ("java.lang.String",
// "p.Outer.Inner", "p.Outer$1").
func (in *Interner) ClassByName(name string) (TypeID, bool) {
	id, ok := in.byName[name]
	return id, ok
}

// Classes returns every registered class id in registration order.
func (in *Interner) Classes() []TypeID {
	out := make([]TypeID, 0, len(in.classes))
	for id := range in.types {
		if in.types[id].Kind == KindClass {
			out = append(out, TypeID(id)) // #nosec G115 -- bounded by internRaw
		}
	}
	return out
}

// ClassOf returns the declared class behind a class or parameterized type.
func (in *Interner) ClassOf(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch tt.Kind {
	case KindClass:
		return id
	case KindParameterized:
		return tt.Elem
	}
	return NoTypeID
}

// Outermost follows Outer links to the top-level type.
func (in *Interner) Outermost(id TypeID) TypeID {
	id = in.ClassOf(id)
	for guard := 0; guard < 256; guard++ {
		info, ok := in.ClassInfo(id)
		if !ok || !info.Outer.IsValid() {
			return id
		}
		id = info.Outer
	}
	return id
}

// Package returns the package of a declared type ("" for the default
// package or non-class types).
func (in *Interner) Package(id TypeID) string {
	if info, ok := in.ClassInfo(in.BaseElem(id)); ok {
		return info.Package
	}
	return ""
}

// SamePackage compares the packages of two declared types.
func (in *Interner) SamePackage(a, b TypeID) bool {
	return in.Package(a) == in.Package(b)
}

// Encloses reports whether outer lexically encloses (or is) inner.
func (in *Interner) Encloses(outer, inner TypeID) bool {
	outer, inner = in.ClassOf(outer), in.ClassOf(inner)
	for guard := 0; inner.IsValid() && guard < 256; guard++ {
		if inner == outer {
			return true
		}
		info, ok := in.ClassInfo(inner)
		if !ok {
			return false
		}
		inner = info.Outer
	}
	return false
}

// QualifiedName renders the declared name of a class type.
func (in *Interner) QualifiedName(id TypeID) string {
	info, ok := in.ClassInfo(id)
	if !ok {
		return in.Name(id)
	}
	return in.qualifiedFromInfo(info)
}

func (in *Interner) qualifiedFromInfo(info *ClassInfo) string {
	if info.Outer.IsValid() {
		sep := "."
		if info.Is(ClassAnonymous) || info.Is(ClassLocal) {
			sep = "$"
		}
		return in.QualifiedName(info.Outer) + sep + info.Name
	}
	if info.Package == "" {
		return info.Name
	}
	return info.Package + "." + info.Name
}

// Name renders any type for diagnostics: qualified class names, type
// arguments, array brackets.
func (in *Interner) Name(id TypeID) string {
	var b strings.Builder
	in.writeName(&b, id, 0)
	return b.String()
}

func (in *Interner) writeName(b *strings.Builder, id TypeID, depth int) {
	tt, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<none>")
		return
	}
	if depth > 32 {
		b.WriteString("...")
		return
	}
	switch tt.Kind {
	case KindClass:
		b.WriteString(in.QualifiedName(id))
	case KindArray:
		in.writeName(b, tt.Elem, depth+1)
		for range tt.Count {
			b.WriteString("[]")
		}
	case KindTypeParam:
		if info, ok := in.TypeParamInfo(id); ok {
			b.WriteString(info.Name)
		}
	case KindParameterized:
		in.writeName(b, tt.Elem, depth+1)
		b.WriteByte('<')
		for i, a := range in.argLists[tt.Payload] {
			if i > 0 {
				b.WriteByte(',')
			}
			in.writeArg(b, a, depth+1)
		}
		b.WriteByte('>')
	default:
		b.WriteString(tt.Kind.String())
	}
}

func (in *Interner) writeArg(b *strings.Builder, a TypeArg, depth int) {
	switch a.Wildcard {
	case WildcardUnbounded:
		b.WriteByte('?')
	case WildcardExtends:
		b.WriteString("? extends ")
		in.writeName(b, a.Type, depth)
	case WildcardSuper:
		b.WriteString("? super ")
		in.writeName(b, a.Type, depth)
	default:
		in.writeName(b, a.Type, depth)
	}
}

// ArgName renders a single type argument.
func (in *Interner) ArgName(a TypeArg) string {
	var b strings.Builder
	in.writeArg(&b, a, 0)
	return b.String()
}
