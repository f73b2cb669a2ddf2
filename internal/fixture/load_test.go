package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/sema"
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

func parse(t *testing.T, src string) (*Fixture, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.yaml", []byte(src))
	bag := diag.NewBag(64)
	fx, err := Parse(fs, id, diag.BagReporter{Bag: bag})
	require.NoError(t, err)
	return fx, bag
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func class(t *testing.T, fx *Fixture, name string) types.TypeID {
	t.Helper()
	id, ok := fx.Types.ClassByName(name)
	require.True(t, ok, "class %s", name)
	return id
}

func method(t *testing.T, fx *Fixture, owner types.TypeID, name string) *symbols.Method {
	t.Helper()
	ids := fx.Table.Overloads(owner, name)
	require.NotEmpty(t, ids, "method %s", name)
	m, ok := fx.Table.Signature(ids[0])
	require.True(t, ok, "signature of %s", name)
	return m
}

const universeDoc = `
classes:
  - name: p.Base
    kind: class
    access: public
    flags: [abstract]
    type_params: ["T extends Number"]
    methods:
      - {name: get, returns: T}
      - {name: all, params: ["T..."], returns: "java.util.List<T>", access: protected}
  - name: p.Outer
    super: "p.Base<Integer>"
    interfaces: [p.Shape]
    fields:
      - {name: count, type: int, access: private, static: true}
    classes:
      - name: Inner
        constructors: [{params: [String], access: private}]
      - name: Nested
        flags: [static]
  - name: p.Outer$1Local
    captures: ["int n", "String s"]
  - name: p.Shape
    kind: interface
    fields: [{name: SIDES, type: int}]
    methods: [{name: area, returns: double}]
  - name: p.Color
    kind: enum
  - name: java.util.List
    kind: interface
    type_params: [E]
`

func TestUniverse(t *testing.T) {
	fx, bag := parse(t, universeDoc)
	require.Empty(t, bag.Items())
	in := fx.Types
	b := in.Builtins()

	base := class(t, fx, "p.Base")
	outer := class(t, fx, "p.Outer")
	inner := class(t, fx, "p.Outer.Inner")
	nested := class(t, fx, "p.Outer.Nested")
	local := class(t, fx, "p.Outer$1Local")
	shape := class(t, fx, "p.Shape")
	color := class(t, fx, "p.Color")
	assert.Len(t, fx.Classes, 8)

	bi, _ := in.ClassInfo(base)
	assert.True(t, bi.Is(types.ClassAbstract))
	assert.Equal(t, types.AccessPublic, bi.Access)
	require.Len(t, bi.TypeParams, 1)
	tp, _ := in.TypeParamInfo(bi.TypeParams[0])
	assert.Equal(t, []types.TypeID{b.Number}, tp.Bounds)
	assert.Equal(t, b.Object, bi.Super)

	oi, _ := in.ClassInfo(outer)
	assert.Equal(t, "p.Base<java.lang.Integer>", in.Name(oi.Super))
	assert.Equal(t, []types.TypeID{shape}, oi.Interfaces)

	ii, _ := in.ClassInfo(inner)
	assert.Equal(t, outer, ii.Outer)
	assert.True(t, ii.IsInner())
	ni, _ := in.ClassInfo(nested)
	assert.False(t, ni.IsInner())
	li, _ := in.ClassInfo(local)
	assert.True(t, li.Is(types.ClassLocal))
	assert.Equal(t, "1Local", li.Name)
	assert.Equal(t, outer, li.Outer)

	si, _ := in.ClassInfo(shape)
	assert.True(t, si.IsInterface())
	assert.False(t, si.Super.IsValid())
	area := method(t, fx, shape, "area")
	assert.True(t, area.IsAbstract())
	assert.Equal(t, types.AccessPublic, area.Access)
	assert.Equal(t, b.Double, area.Return)
	sides, ok := fx.Table.DeclaredField(shape, "SIDES")
	require.True(t, ok)
	assert.True(t, fx.Table.Field(sides).IsStatic())
	assert.Empty(t, fx.Table.Constructors(shape))

	ci, _ := in.ClassInfo(color)
	assert.Equal(t, "java.lang.Enum<p.Color>", in.Name(ci.Super))
	values := method(t, fx, color, "values")
	assert.True(t, values.Is(symbols.MethodEnumSupport))
	ctors := fx.Table.Constructors(color)
	require.Len(t, ctors, 1)
	assert.Equal(t, types.AccessPrivate, fx.Table.Method(ctors[0]).Access)

	ctors = fx.Table.Constructors(outer)
	require.Len(t, ctors, 1, "default constructor")
	assert.Equal(t, types.AccessPackage, fx.Table.Method(ctors[0]).Access)
	assert.Empty(t, fx.Table.Method(ctors[0]).Params)

	ctors = fx.Table.Constructors(inner)
	require.Len(t, ctors, 1)
	ctor, ok := fx.Table.Signature(ctors[0])
	require.True(t, ok)
	assert.Equal(t, []types.TypeID{b.String}, ctor.Params)
	assert.Equal(t, types.AccessPrivate, ctor.Access)

	caps := fx.Table.Captures(local)
	require.Len(t, caps, 2)
	assert.Equal(t, "n", caps[0].Name)
	assert.Equal(t, b.String, caps[1].Type)
	assert.False(t, fx.Table.IsComplete(local))
}

func TestSignaturesResolveLazily(t *testing.T) {
	fx, bag := parse(t, universeDoc)
	base := class(t, fx, "p.Base")
	ids := fx.Table.Overloads(base, "all")
	require.Len(t, ids, 1)
	assert.Equal(t, symbols.SigPending, fx.Table.Method(ids[0]).Sig)
	assert.True(t, fx.Table.Method(ids[0]).IsVarargs())

	all, ok := fx.Table.Signature(ids[0])
	require.True(t, ok)
	bi, _ := fx.Types.ClassInfo(base)
	assert.Equal(t, []types.TypeID{fx.Types.Array(bi.TypeParams[0], 1)}, all.Params)
	assert.Equal(t, "java.util.List<T>", fx.Types.Name(all.Return))
	assert.Equal(t, "all(T...)", fx.Table.Header(ids[0]))
	assert.Empty(t, bag.Items())
}

func TestGenericMethodSignature(t *testing.T) {
	fx, bag := parse(t, `
classes:
  - name: p.Util
    methods:
      - name: max
        flags: [static]
        type_params: ["T extends Comparable<T>"]
        params: [T, T]
        returns: T
        throws: [java.lang.Exception]
`)
	util := class(t, fx, "p.Util")
	m := method(t, fx, util, "max")
	require.Len(t, m.TypeParams, 1)
	info, ok := fx.Types.TypeParamInfo(m.TypeParams[0])
	require.True(t, ok)
	assert.True(t, info.MethodOwned())
	assert.Equal(t, "java.lang.Comparable<T>", fx.Types.Name(info.Bounds[0]))
	assert.Equal(t, []types.TypeID{m.TypeParams[0], m.TypeParams[0]}, m.Params)
	assert.Equal(t, m.TypeParams[0], m.Return)
	assert.Equal(t, []types.TypeID{fx.Types.Builtins().Exception}, m.Throws)
	assert.True(t, m.IsStatic())
	assert.Empty(t, bag.Items())
}

func TestBrokenSignature(t *testing.T) {
	fx, bag := parse(t, `
classes:
  - name: p.A
    methods:
      - {name: f, params: [Missing]}
      - {name: g, params: ["int...", int]}
      - {name: h, throws: [String]}
`)
	a := class(t, fx, "p.A")
	for _, name := range []string{"f", "g", "h"} {
		ids := fx.Table.Overloads(a, name)
		require.Len(t, ids, 1)
		_, ok := fx.Table.Signature(ids[0])
		assert.False(t, ok, name)
		assert.Equal(t, symbols.SigBroken, fx.Table.Method(ids[0]).Sig)
	}
	assert.Equal(t, []diag.Code{diag.ResUnresolvedSignature, diag.ResUnresolvedSignature, diag.ResUnresolvedSignature}, codes(bag))
	items := bag.Items()
	assert.Equal(t, "cannot resolve the signature of f in p.A", items[0].Message)
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, "Missing: cannot find type Missing", items[0].Notes[0].Msg)
}

func TestDeclarationProblems(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want []diag.Code
	}{
		{"duplicate class", `
classes:
  - name: p.A
  - name: p.A
`, []diag.Code{diag.PrjDuplicateClass}},
		{"unknown super", `
classes:
  - {name: p.A, super: p.Nope}
`, []diag.Code{diag.PrjUnknownType}},
		{"cyclic", `
classes:
  - {name: p.A, super: p.B}
  - {name: p.B, super: p.A}
`, []diag.Code{diag.PrjCyclicHierarchy, diag.PrjCyclicHierarchy}},
		{"extends interface", `
classes:
  - {name: p.I, kind: interface}
  - {name: p.A, super: p.I}
`, []diag.Code{diag.PrjBadMember}},
		{"final super", `
classes:
  - {name: p.F, flags: [final]}
  - {name: p.A, super: p.F}
`, []diag.Code{diag.PrjBadMember}},
		{"bad flag", `
classes:
  - {name: p.A, flags: [sealed]}
`, []diag.Code{diag.PrjBadMember}},
		{"type argument count", `
classes:
  - {name: p.Box, type_params: [T]}
  - {name: p.A, super: "p.Box<String, String>"}
`, []diag.Code{diag.PrjBadTypeExpr}},
		{"primitive type argument", `
classes:
  - {name: p.Box, type_params: [T]}
  - {name: p.A, super: "p.Box<int>"}
`, []diag.Code{diag.PrjBadTypeExpr}},
		{"duplicate capture", `
classes:
  - name: p.A
  - {name: p.A$1L, captures: ["int x", "int x"]}
`, []diag.Code{diag.ResDuplicateCapture}},
		{"capture outside local class", `
classes:
  - {name: p.A, captures: ["int x"]}
`, []diag.Code{diag.PrjBadMember}},
		{"missing host", `
classes:
  - {name: p.A$1L}
`, []diag.Code{diag.PrjUnknownType}},
		{"interface constructor", `
classes:
  - {name: p.I, kind: interface, constructors: [{params: []}]}
`, []diag.Code{diag.PrjBadMember}},
		{"bad source option", `
options: {source: "0.9"}
`, []diag.Code{diag.PrjBadOption}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, bag := parse(t, tc.doc)
			assert.Equal(t, tc.want, codes(bag))
		})
	}
}

func TestOptions(t *testing.T) {
	fx, bag := parse(t, `options: {source: "1.4", pedantic: true}`)
	require.Empty(t, bag.Items())
	opts := fx.Options.Apply(sema.DefaultOptions())
	assert.Equal(t, sema.Source14, opts.Source)
	assert.True(t, opts.Pedantic)
	assert.True(t, opts.Deprecation, "not overridden")
}

func TestProgram(t *testing.T) {
	fx, bag := parse(t, `
classes:
  - name: p.Util
    methods: [{name: max, flags: [static], params: [int, int], returns: int}]
  - name: p.A
    methods: [{name: f, params: [int]}]
    classes:
      - name: Inner
imports:
  single_static: [p.Util.max]
  on_demand_static: [p.Util.*]
program:
  - id: c0
    in: p.A
    call: max
    args: [{type: int, const: true}, {type: int}]
  - id: c1
    in: p.A.Inner
    static: true
    handled: [java.io.IOException]
    locals: {p.A: ["int n"], p.A.Inner: ["String s"]}
    call: f
    receiver: {this: true}
    args: [{call: c0}, {null: true}, {class_literal: int}, {new: p.A}, {type_name: p.Util}, {local: n}]
  - id: c2
    in: p.A
    call: f
    args: [{call: nope}]
`)
	assert.Equal(t, []diag.Code{diag.PrjUnknownType, diag.PrjUnknownSite}, codes(bag))
	u := fx.Unit
	util := class(t, fx, "p.Util")
	a := class(t, fx, "p.A")
	inner := class(t, fx, "p.A.Inner")
	b := fx.Types.Builtins()

	assert.Equal(t, []ast.StaticImport{{Type: util, Name: "max"}}, u.Single)
	assert.Equal(t, []ast.StaticImport{{Type: util}}, u.OnDemand)
	require.Len(t, u.Steps, 3)

	id, ok := u.SiteByLabel("c1")
	require.True(t, ok)
	env := u.Steps[1].Env
	require.Len(t, env.Frames, 2)
	assert.Equal(t, inner, env.Frames[0].Type)
	assert.True(t, env.Frames[0].Static)
	assert.Empty(t, env.Frames[0].Handled, "java.io.IOException is not declared")
	assert.Equal(t, []ast.Local{{Name: "s", Type: b.String}}, env.Frames[0].Locals)
	assert.Equal(t, []ast.Local{{Name: "n", Type: b.Int}}, env.Frames[1].Locals)

	site := u.Site(id)
	mc, ok := site.Kind.(ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "f", mc.Name)
	assert.Equal(t, ast.ExprThis, mc.Receiver.Kind)
	require.Len(t, site.Args, 6)
	assert.Equal(t, ast.ExprCall, site.Args[0].Kind)
	assert.Equal(t, ast.ExprNull, site.Args[1].Kind)
	assert.Equal(t, ast.ExprClassLiteral, site.Args[2].Kind)
	assert.Equal(t, "java.lang.Class<java.lang.Integer>", fx.Types.Name(site.Args[2].Type))
	assert.Equal(t, b.Int, site.Args[2].Denoted)
	assert.Equal(t, a, site.Args[3].Denoted)
	assert.Equal(t, util, site.Args[4].Denoted)
	assert.Equal(t, []types.TypeID{inner, a}, site.Args[5].Via)

	c2, _ := u.SiteByLabel("c2")
	assert.True(t, fx.Types.IsBad(u.Site(c2).Args[0].Type))
}

func TestNullExpressions(t *testing.T) {
	fx, bag := parse(t, `
classes:
  - name: p.A
    methods: [{name: f, params: [String]}]
program:
  - {id: arg, in: p.A, call: f, args: [{null: true}]}
  - {id: recv, in: p.A, call: f, receiver: {null: true}, args: [{type: String}]}
`)
	require.Empty(t, bag.Items())
	u := fx.Unit
	null := fx.Types.Builtins().Null

	id, ok := u.SiteByLabel("arg")
	require.True(t, ok)
	arg := u.Site(id).Args[0]
	assert.Equal(t, ast.ExprNull, arg.Kind)
	assert.Equal(t, null, arg.Type)

	id, ok = u.SiteByLabel("recv")
	require.True(t, ok)
	mc, ok := u.Site(id).Kind.(ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, ast.ExprNull, mc.Receiver.Kind)
	assert.Equal(t, null, mc.Receiver.Type)
}

func TestMalformedSteps(t *testing.T) {
	cases := []struct {
		name string
		step string
		want diag.Code
	}{
		{"no shape", `{id: s, in: p.A}`, diag.PrjBadStep},
		{"two shapes", `{id: s, in: p.A, call: f, this: true}`, diag.PrjBadStep},
		{"no frame", `{id: s, call: f}`, diag.PrjBadStep},
		{"receiver on new", `{id: s, in: p.A, new: p.A, receiver: {this: true}}`, diag.PrjBadStep},
		{"body on call", `{id: s, in: p.A, call: f, body: {captures: []}}`, diag.PrjBadStep},
		{"empty argument", `{id: s, in: p.A, call: f, args: [{}]}`, diag.PrjBadStep},
		{"unknown local", `{id: s, in: p.A, call: f, args: [{local: q}]}`, diag.PrjBadStep},
		{"complete non-local", `{complete: p.A}`, diag.PrjBadStep},
		{"primitive type argument", `{id: s, in: p.A, call: f, type_args: [int]}`, diag.PrjBadTypeExpr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, bag := parse(t, "classes: [{name: p.A}]\nprogram:\n  - "+tc.step+"\n")
			assert.Equal(t, []diag.Code{tc.want}, codes(bag))
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classes: [{name: p.A}]\n"), 0o600))
	fs := source.NewFileSet()
	fx, err := Load(fs, path, nil)
	require.NoError(t, err)
	assert.Len(t, fx.Classes, 1)
	assert.Equal(t, fx.File, fx.Unit.File)

	_, err = Load(fs, filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)

	id := fs.AddVirtual("broken.yaml", []byte("classes: [\n"))
	_, err = Parse(fs, id, nil)
	assert.Error(t, err)
}

func TestResolveLoadedProgram(t *testing.T) {
	fx, bag := parse(t, `
classes:
  - name: p.A
    methods:
      - {name: f, params: [int], returns: int}
      - {name: f, params: [long], returns: long}
      - {name: g, params: ["Object..."]}
  - name: p.A$1L
    captures: ["int n"]
program:
  - {id: small, in: p.A, call: f, args: [{type: int}]}
  - {id: wide, in: p.A, call: f, args: [{type: long}]}
  - {id: nested, in: p.A, call: f, args: [{call: small}]}
  - {id: spread, in: p.A, call: g, args: [{type: String}, {type: int}]}
  - {id: missing, in: p.A, call: zzz}
  - {id: local, in: p.A, locals: ["int n"], new: p.A$1L}
  - complete: p.A$1L
`)
	require.Empty(t, bag.Items())
	r := sema.NewResolver(fx.Table, fx.Unit, diag.BagReporter{Bag: bag}, fx.Options.Apply(sema.DefaultOptions()))
	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sema.Stats{Sites: 6, Resolved: 5, Failed: 1}, stats)
	assert.Equal(t, []diag.Code{diag.ResMethodNotFound}, codes(bag))

	header := func(label string) string {
		id, ok := fx.Unit.SiteByLabel(label)
		require.True(t, ok)
		return fx.Table.Header(fx.Unit.Site(id).Result.Callable)
	}
	assert.Equal(t, "f(int)", header("small"))
	assert.Equal(t, "f(long)", header("wide"))
	assert.Equal(t, "f(int)", header("nested"))
	assert.Equal(t, "g(java.lang.Object...)", header("spread"))

	id, _ := fx.Unit.SiteByLabel("spread")
	assert.True(t, fx.Unit.Site(id).Result.Wrapped)
	id, _ = fx.Unit.SiteByLabel("local")
	res := fx.Unit.Site(id).Result
	assert.Equal(t, ast.Resolved, res.State)
	require.Len(t, res.LocalArgs, 1)
	assert.Equal(t, "n", res.LocalArgs[0].Name)
}
