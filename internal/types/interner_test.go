package types

import "testing"

func mustRegister(t *testing.T, in *Interner, info ClassInfo) TypeID {
	t.Helper()
	id, err := in.RegisterClass(info)
	if err != nil {
		t.Fatalf("register %s: %v", info.Name, err)
	}
	return id
}

func TestInternerSeedsLang(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !b.Bad.IsValid() || !b.Object.IsValid() || !b.String.IsValid() {
		t.Fatalf("builtins not initialized: %+v", b)
	}
	if id, ok := in.ClassByName("java.lang.Integer"); !ok || in.Unbox(id) != b.Int {
		t.Fatalf("Integer not seeded as the box of int")
	}
	if in.Box(b.Char) == NoTypeID {
		t.Fatalf("char has no box")
	}
	if in.Name(b.String) != "java.lang.String" {
		t.Fatalf("unexpected name %q", in.Name(b.String))
	}
}

func TestArrayInterningFoldsDimensions(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	a1 := in.Array(b.String, 2)
	a2 := in.Array(in.Array(b.String, 1), 1)
	if a1 != a2 {
		t.Fatalf("String[][] interned twice")
	}
	if in.Dims(a1) != 2 || in.BaseElem(a1) != b.String {
		t.Fatalf("unexpected array shape")
	}
	if in.Component(a1) != in.Array(b.String, 1) {
		t.Fatalf("component of String[][] must be String[]")
	}
	if got, ok := in.StripDims(a1, 2); !ok || got != b.String {
		t.Fatalf("StripDims(2) = %v, %v", got, ok)
	}
	if _, ok := in.StripDims(b.String, 1); ok {
		t.Fatalf("StripDims on a non-array must fail")
	}
	if in.Name(a1) != "java.lang.String[][]" {
		t.Fatalf("unexpected name %q", in.Name(a1))
	}
}

func TestSubtyping(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	integer, _ := in.ClassByName("java.lang.Integer")

	cases := []struct {
		name string
		s, t TypeID
		want bool
	}{
		{"class to super", integer, b.Number, true},
		{"class to object", integer, b.Object, true},
		{"class to interface", b.String, b.CharSequence, true},
		{"class to generic interface", b.String, b.Comparable, true},
		{"unrelated", b.String, b.Number, false},
		{"interface to object", b.CharSequence, b.Object, true},
		{"null to reference", b.Null, b.String, true},
		{"null to primitive", b.Null, b.Int, false},
		{"primitive identity", b.Int, b.Int, true},
		{"primitive not subtype", b.Int, b.Long, false},
		{"array covariance", in.Array(b.String, 1), in.Array(b.Object, 1), true},
		{"array to cloneable", in.Array(b.Int, 1), b.Cloneable, true},
		{"primitive arrays invariant", in.Array(b.Int, 1), in.Array(b.Long, 1), false},
		{"nested array to object array", in.Array(b.Int, 2), in.Array(b.Object, 1), true},
		{"object array to string array", in.Array(b.Object, 1), in.Array(b.String, 1), false},
		{"bad is inert", b.Bad, b.String, true},
	}
	for _, tc := range cases {
		if got := in.IsSubtype(tc.s, tc.t); got != tc.want {
			t.Fatalf("%s: IsSubtype(%s, %s) = %v", tc.name, in.Name(tc.s), in.Name(tc.t), got)
		}
	}
}

func TestCyclicHierarchyTerminates(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	a := mustRegister(t, in, ClassInfo{Name: "A", Package: "p", Super: b.Object})
	c := mustRegister(t, in, ClassInfo{Name: "C", Package: "p", Super: a})
	info, _ := in.ClassInfo(a)
	info.Super = c
	if in.IsSubclass(a, b.String) {
		t.Fatalf("cycle must not make A a String")
	}
	if !in.IsSubclass(a, c) {
		t.Fatalf("A reaches C through the cycle")
	}
}

func TestWidening(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if !in.IsWidening(b.Byte, b.Double) || !in.IsWidening(b.Char, b.Int) {
		t.Fatalf("expected widening")
	}
	if in.IsWidening(b.Char, b.Short) || in.IsWidening(b.Long, b.Int) || in.IsWidening(b.Boolean, b.Int) {
		t.Fatalf("unexpected widening")
	}
}

func TestParameterizedAndSubst(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	box := mustRegister(t, in, ClassInfo{Name: "Box", Package: "p", Super: b.Object})
	tp := in.withTypeParam(box, "T", b.Number)
	integer, _ := in.ClassByName("java.lang.Integer")

	boxInt := in.Parameterized(box, []TypeArg{Exact(integer)})
	if boxInt != in.Parameterized(box, []TypeArg{Exact(integer)}) {
		t.Fatalf("parameterized types must intern")
	}
	if in.Name(boxInt) != "p.Box<java.lang.Integer>" {
		t.Fatalf("unexpected name %q", in.Name(boxInt))
	}
	if in.Erasure(boxInt) != box || in.Erasure(tp) != b.Number {
		t.Fatalf("unexpected erasure")
	}

	arr := in.Array(tp, 1)
	if got := in.Subst(arr, []TypeID{tp}, []TypeArg{Exact(integer)}); got != in.Array(integer, 1) {
		t.Fatalf("T[] -> %s", in.Name(got))
	}
	nested := in.Parameterized(box, []TypeArg{Exact(tp)})
	if got := in.Subst(nested, []TypeID{tp}, []TypeArg{Exact(b.String)}); got != in.Parameterized(box, []TypeArg{Exact(b.String)}) {
		t.Fatalf("Box<T> -> %s", in.Name(got))
	}
	if got := in.Subst(tp, []TypeID{tp}, []TypeArg{{Wildcard: WildcardSuper, Type: integer}}); got != b.Number {
		t.Fatalf("? super binds to the erasure, got %s", in.Name(got))
	}
	if !in.MentionsParam(nested, tp) || in.MentionsParam(boxInt, tp) {
		t.Fatalf("MentionsParam mismatch")
	}
}

func TestAnonymousNaming(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	outer := mustRegister(t, in, ClassInfo{Name: "Outer", Package: "p", Super: b.Object})
	inner := mustRegister(t, in, ClassInfo{Name: "Inner", Package: "p", Outer: outer, Super: b.Object})
	a1 := in.RegisterAnonymous(inner, ClassInfo{Super: b.Object})
	a2 := in.RegisterAnonymous(outer, ClassInfo{Super: b.Object})
	if in.QualifiedName(a1) != "p.Outer.Inner$1" || in.QualifiedName(a2) != "p.Outer$2" {
		t.Fatalf("unexpected anonymous names %q %q", in.QualifiedName(a1), in.QualifiedName(a2))
	}
	if in.Outermost(a1) != outer || !in.Encloses(outer, a1) {
		t.Fatalf("anonymous class must be enclosed by Outer")
	}
	if _, err := in.RegisterClass(ClassInfo{Name: "Inner", Package: "p", Outer: outer}); err == nil {
		t.Fatalf("duplicate registration must fail")
	}
}
