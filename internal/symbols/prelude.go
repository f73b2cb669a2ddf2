package symbols

import (
	"jopa/internal/types"
)

// preludeBuilder declares fully resolved members of seeded classes.
type preludeBuilder struct {
	t     *Table
	owner types.TypeID
}

func (p preludeBuilder) method(name string, ret types.TypeID, flags MethodFlags, params ...types.TypeID) MethodID {
	return p.t.AddMethod(Method{
		Name:   name,
		Owner:  p.owner,
		Access: types.AccessPublic,
		Flags:  flags,
		Params: params,
		Return: ret,
		Sig:    SigResolved,
	})
}

func (p preludeBuilder) ctor(access types.Access, params ...types.TypeID) MethodID {
	return p.t.AddMethod(Method{
		Owner:  p.owner,
		Kind:   MethodConstructor,
		Access: access,
		Params: params,
		Return: p.t.Types.Builtins().Void,
		Sig:    SigResolved,
	})
}

func (t *Table) classParam(owner types.TypeID) types.TypeID {
	info, _ := t.Types.ClassInfo(owner)
	return info.TypeParams[0]
}

func (t *Table) seedPrelude() {
	in := t.Types
	b := in.Builtins()
	at := func(owner types.TypeID) preludeBuilder { return preludeBuilder{t: t, owner: owner} }
	strArr := in.Array(b.String, 1)
	objArr := in.Array(b.Object, 1)
	unknownClass := in.Parameterized(b.Class, []types.TypeArg{{Wildcard: types.WildcardUnbounded}})

	obj := at(b.Object)
	obj.ctor(types.AccessPublic)
	obj.method("equals", b.Boolean, 0, b.Object)
	obj.method("hashCode", b.Int, 0)
	obj.method("toString", b.String, 0)
	obj.method("getClass", unknownClass, MethodFinal)
	clone := obj.method("clone", b.Object, 0)
	t.methods[clone].Access = types.AccessProtected
	t.methods[clone].Throws = []types.TypeID{b.CloneNotSupported}
	finalize := obj.method("finalize", b.Void, 0)
	t.methods[finalize].Access = types.AccessProtected
	t.methods[finalize].Throws = []types.TypeID{b.Throwable}
	obj.method("notify", b.Void, MethodFinal)
	obj.method("notifyAll", b.Void, MethodFinal)
	for _, params := range [][]types.TypeID{nil, {b.Long}} {
		wait := obj.method("wait", b.Void, MethodFinal, params...)
		t.methods[wait].Throws = []types.TypeID{b.Interrupted}
	}

	cs := at(b.CharSequence)
	cs.method("length", b.Int, MethodAbstract)
	cs.method("charAt", b.Char, MethodAbstract, b.Int)

	cmp := at(b.Comparable)
	cmp.method("compareTo", b.Int, MethodAbstract, t.classParam(b.Comparable))

	str := at(b.String)
	str.ctor(types.AccessPublic)
	str.ctor(types.AccessPublic, b.String)
	str.ctor(types.AccessPublic, in.Array(b.Char, 1))
	str.method("length", b.Int, 0)
	str.method("charAt", b.Char, 0, b.Int)
	str.method("concat", b.String, 0, b.String)
	str.method("substring", b.String, 0, b.Int)
	str.method("substring", b.String, 0, b.Int, b.Int)
	str.method("indexOf", b.Int, 0, b.Int)
	str.method("indexOf", b.Int, 0, b.String)
	str.method("compareTo", b.Int, 0, b.String)
	str.method("split", strArr, 0, b.String)
	for _, p := range []types.TypeID{b.Object, b.Boolean, b.Char, b.Int, b.Long, b.Float, b.Double} {
		str.method("valueOf", b.String, MethodStatic, p)
	}
	str.method("format", b.String, MethodStatic|MethodVarargs, b.String, objArr)

	num := at(b.Number)
	num.ctor(types.AccessPublic)
	num.method("intValue", b.Int, MethodAbstract)
	num.method("longValue", b.Long, MethodAbstract)
	num.method("doubleValue", b.Double, MethodAbstract)

	for _, prim := range []types.TypeID{b.Boolean, b.Char, b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double} {
		boxed := in.Box(prim)
		bx := at(boxed)
		bx.ctor(types.AccessPublic, prim)
		bx.method("valueOf", boxed, MethodStatic, prim)
		bx.method(in.Name(prim)+"Value", prim, 0)
		bx.method("compareTo", b.Int, 0, boxed)
		bx.method("toString", b.String, MethodStatic, prim)
	}
	integer := at(in.Box(b.Int))
	integer.method("valueOf", in.Box(b.Int), MethodStatic, b.String)
	integer.method("parseInt", b.Int, MethodStatic, b.String)

	class := at(b.Class)
	classT := t.classParam(b.Class)
	class.method("getName", b.String, 0)
	class.method("newInstance", classT, 0)
	class.method("cast", classT, 0, b.Object)
	class.method("isInstance", b.Boolean, 0, b.Object)

	enum := at(b.Enum)
	enum.ctor(types.AccessProtected, b.String, b.Int)
	enum.method("name", b.String, MethodFinal)
	enum.method("ordinal", b.Int, MethodFinal)
	enum.method("compareTo", b.Int, MethodFinal, t.classParam(b.Enum))
	t.seedEnumValueOf()

	for _, exc := range []types.TypeID{b.Throwable, b.Exception, b.RuntimeException, b.Error} {
		e := at(exc)
		e.ctor(types.AccessPublic)
		e.ctor(types.AccessPublic, b.String)
	}
	at(b.Throwable).method("getMessage", b.String, 0)
	at(b.CloneNotSupported).ctor(types.AccessPublic)
	at(b.Interrupted).ctor(types.AccessPublic)
}

// seedEnumValueOf declares static <T extends Enum<T>> T valueOf(Class<T>, String).
func (t *Table) seedEnumValueOf() {
	in := t.Types
	b := in.Builtins()
	id := t.AddMethod(Method{
		Name:   "valueOf",
		Owner:  b.Enum,
		Access: types.AccessPublic,
		Flags:  MethodStatic,
		Sig:    SigResolved,
	})
	tp := in.RegisterTypeParam(types.TypeParamInfo{Name: "T", Owner: b.Enum, Method: uint32(id)})
	in.SetTypeParamBounds(tp, []types.TypeID{in.Parameterized(b.Enum, []types.TypeArg{types.Exact(tp)})})
	m := &t.methods[id]
	m.TypeParams = []types.TypeID{tp}
	m.Params = []types.TypeID{in.Parameterized(b.Class, []types.TypeArg{types.Exact(tp)}), b.String}
	m.Return = tp
}

// AddEnumSupport declares the generated values() and valueOf(String) of an
// enum type.
func (t *Table) AddEnumSupport(enum types.TypeID) {
	flags := MethodStatic | MethodSynthetic | MethodEnumSupport
	t.AddMethod(Method{
		Name:   "values",
		Owner:  enum,
		Access: types.AccessPublic,
		Flags:  flags,
		Return: t.Types.Array(enum, 1),
		Sig:    SigResolved,
	})
	t.AddMethod(Method{
		Name:   "valueOf",
		Owner:  enum,
		Access: types.AccessPublic,
		Flags:  flags,
		Params: []types.TypeID{t.Types.Builtins().String},
		Return: enum,
		Sig:    SigResolved,
	})
}
