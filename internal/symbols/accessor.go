package symbols

import (
	"fmt"
	"slices"

	"jopa/internal/types"
)

// AccessorKind says what an accessor forwards to.
type AccessorKind uint8

const (
	AccessorMethod AccessorKind = iota
	AccessorConstructor
)

// AccessorKey identifies one generated accessor. Base is the static type
// the forwarded instance member is invoked on; it is NoTypeID for static
// members and constructors.
type AccessorKey struct {
	Host   types.TypeID
	Member MethodID
	Base   types.TypeID
	Kind   AccessorKind
}

// Accessor returns the accessor for key, creating it on first request.
// created is true only for the request that generated it.
//
// Method accessors are static, package-visible and named access$NNN with a
// per-host counter; their parameters are the receiver (instance members
// only) followed by the member's parameters. Constructor accessors keep
// the constructor's parameters and add a trailing parameter of the
// outermost type's placeholder class.
func (t *Table) Accessor(key AccessorKey) (id MethodID, created bool) {
	if id, ok := t.accessors[key]; ok {
		return id, false
	}
	member, ok := t.Signature(key.Member)
	if !ok {
		return NoMethodID, false
	}
	member = &t.methods[key.Member]
	host := t.Members(key.Host)

	acc := Method{
		Owner:  key.Host,
		Access: types.AccessPackage,
		Flags:  MethodSynthetic | MethodAccessor,
		Return: member.Return,
		Throws: slices.Clone(member.Throws),
		Target: key.Member,
		Decl:   member.Decl,
		Sig:    SigResolved,
	}
	switch key.Kind {
	case AccessorConstructor:
		acc.Kind = MethodConstructor
		acc.Name = ConstructorName
		acc.Owner = member.Owner
		acc.Params = append(slices.Clone(member.Params), t.Placeholder(member.Owner))
		acc.Flags |= member.Flags & MethodVarargs
		host = t.Members(member.Owner)
	default:
		acc.Name = fmt.Sprintf("access$%03d", len(host.Accessors))
		acc.Flags |= MethodStatic
		if !member.IsStatic() {
			acc.Params = append(acc.Params, key.Base)
		}
		acc.Params = append(acc.Params, member.Params...)
	}
	id = t.alloc(acc)
	host.Accessors = append(host.Accessors, id)
	t.accessors[key] = id
	return id, true
}

// AccessorCount reports how many accessors were generated.
func (t *Table) AccessorCount() int {
	return len(t.accessors)
}

// Placeholder returns the synthetic class Outermost$ used to tell accessor
// constructors apart from the constructors they forward to.
func (t *Table) Placeholder(of types.TypeID) types.TypeID {
	top := t.Types.Outermost(of)
	if id, ok := t.placeholders[top]; ok {
		return id
	}
	info, _ := t.Types.ClassInfo(top)
	name := "$"
	pkg := ""
	if info != nil {
		name = info.Name + "$"
		pkg = info.Package
	}
	id, err := t.Types.RegisterClass(types.ClassInfo{
		Name:    name,
		Package: pkg,
		Flags:   types.ClassSynthetic | types.ClassFinal,
		Access:  types.AccessPackage,
		Super:   t.Types.Builtins().Object,
	})
	if err != nil {
		// a fixture declared a class with the placeholder's name; reuse it
		id, _ = t.Types.ClassByName(t.Types.QualifiedName(top) + "$")
	}
	t.placeholders[top] = id
	return id
}
