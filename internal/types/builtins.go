package types

import "fmt"

const langPackage = "java.lang"

func (in *Interner) mustClass(pkg, name string, flags ClassFlags, super TypeID, ifaces ...TypeID) TypeID {
	id, err := in.RegisterClass(ClassInfo{
		Name:       name,
		Package:    pkg,
		Flags:      flags,
		Access:     AccessPublic,
		Super:      super,
		Interfaces: ifaces,
	})
	if err != nil {
		panic(fmt.Errorf("seed %s.%s: %w", pkg, name, err))
	}
	return id
}

// withTypeParam declares a single unbounded class type parameter.
func (in *Interner) withTypeParam(owner TypeID, name string, bound TypeID) TypeID {
	p := in.RegisterTypeParam(TypeParamInfo{Name: name, Owner: owner})
	if bound.IsValid() {
		in.SetTypeParamBounds(p, []TypeID{bound})
	}
	info, _ := in.ClassInfo(owner)
	info.TypeParams = append(info.TypeParams, p)
	return p
}

func (in *Interner) seedLang() {
	b := &in.builtins
	b.Object = in.mustClass(langPackage, "Object", 0, NoTypeID)
	b.Serializable = in.mustClass("java.io", "Serializable", ClassInterface|ClassAbstract, NoTypeID)
	b.Cloneable = in.mustClass(langPackage, "Cloneable", ClassInterface|ClassAbstract, NoTypeID)
	b.CharSequence = in.mustClass(langPackage, "CharSequence", ClassInterface|ClassAbstract, NoTypeID)

	b.Comparable = in.mustClass(langPackage, "Comparable", ClassInterface|ClassAbstract, NoTypeID)
	in.withTypeParam(b.Comparable, "T", NoTypeID)
	comparable := func(t TypeID) TypeID {
		return in.Parameterized(b.Comparable, []TypeArg{Exact(t)})
	}

	b.String = in.mustClass(langPackage, "String", ClassFinal, b.Object, b.Serializable, b.CharSequence)
	str, _ := in.ClassInfo(b.String)
	str.Interfaces = append(str.Interfaces, comparable(b.String))

	b.Class = in.mustClass(langPackage, "Class", ClassFinal, b.Object, b.Serializable)
	in.withTypeParam(b.Class, "T", NoTypeID)

	b.Number = in.mustClass(langPackage, "Number", ClassAbstract, b.Object, b.Serializable)
	box := func(name string, prim, super TypeID) {
		id := in.mustClass(langPackage, name, ClassFinal, super, b.Serializable)
		info, _ := in.ClassInfo(id)
		info.Interfaces = append(info.Interfaces, comparable(id))
		in.boxes[prim] = id
		in.unboxes[id] = prim
	}
	box("Boolean", b.Boolean, b.Object)
	box("Character", b.Char, b.Object)
	box("Byte", b.Byte, b.Number)
	box("Short", b.Short, b.Number)
	box("Integer", b.Int, b.Number)
	box("Long", b.Long, b.Number)
	box("Float", b.Float, b.Number)
	box("Double", b.Double, b.Number)
	in.mustClass(langPackage, "Void", ClassFinal, b.Object)

	b.Enum = in.mustClass(langPackage, "Enum", ClassAbstract, b.Object, b.Serializable)
	e := in.withTypeParam(b.Enum, "E", NoTypeID)
	in.SetTypeParamBounds(e, []TypeID{in.Parameterized(b.Enum, []TypeArg{Exact(e)})})
	enumInfo, _ := in.ClassInfo(b.Enum)
	enumInfo.Interfaces = append(enumInfo.Interfaces, comparable(e))

	b.Throwable = in.mustClass(langPackage, "Throwable", 0, b.Object, b.Serializable)
	b.Exception = in.mustClass(langPackage, "Exception", 0, b.Throwable)
	b.RuntimeException = in.mustClass(langPackage, "RuntimeException", 0, b.Exception)
	b.Error = in.mustClass(langPackage, "Error", 0, b.Throwable)
	b.CloneNotSupported = in.mustClass(langPackage, "CloneNotSupportedException", 0, b.Exception)
	b.Interrupted = in.mustClass(langPackage, "InterruptedException", 0, b.Exception)
}

// Box returns the wrapper class of a primitive, or NoTypeID.
func (in *Interner) Box(prim TypeID) TypeID {
	return in.boxes[prim]
}

// Unbox returns the primitive behind a wrapper class, or NoTypeID.
func (in *Interner) Unbox(ref TypeID) TypeID {
	return in.unboxes[in.ClassOf(ref)]
}

// IsChecked reports whether an exception type must be declared or caught.
func (in *Interner) IsChecked(exc TypeID) bool {
	b := in.builtins
	if in.IsBad(exc) {
		return false
	}
	return !in.IsSubclass(exc, b.RuntimeException) && !in.IsSubclass(exc, b.Error)
}
