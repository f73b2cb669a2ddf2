package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

func TestPrivateOuterMethodSharesOneAccessor(t *testing.T) {
	w := newWorld(t)
	outer := w.class(classDef{name: "Outer"})
	inner := w.class(classDef{name: "Inner", outer: outer})
	secret := w.private(outer, "secret", w.b.Int)
	env := envOf(inner, outer)

	first := call("secret", val(w.b.Int))
	second := call("secret", val(w.b.Int))
	qualified := callOn(val(outer), "secret", val(w.b.Int))
	for _, site := range []*ast.CallSite{first, second, qualified} {
		require.NoError(t, w.resolve(env, site))
		assert.Equal(t, secret, site.Result.Callable)
		require.NotNil(t, site.Result.Rewrite)
	}
	assert.Empty(t, w.bag.Items())
	assert.Equal(t, 1, w.tab.AccessorCount())

	acc := first.Result.Rewrite.Callable
	assert.Equal(t, acc, second.Result.Rewrite.Callable)
	assert.Equal(t, acc, qualified.Result.Rewrite.Callable)

	m := w.tab.Method(acc)
	assert.Equal(t, "access$000", m.Name)
	assert.Equal(t, outer, m.Owner)
	assert.True(t, m.IsStatic())
	assert.Equal(t, []types.TypeID{outer, w.b.Int}, m.Params)
	assert.Equal(t, secret, m.Target)

	this := first.Result.Rewrite.Args[0]
	assert.Equal(t, ast.ExprThis, this.Kind)
	assert.Equal(t, []types.TypeID{inner, outer}, this.Via)
	assert.Len(t, first.Result.Rewrite.Args, 2)
	assert.Same(t, qualified.Kind.(ast.MethodCall).Receiver, qualified.Result.Rewrite.Args[0])
}

func TestDirectCallsNeedNoAccessor(t *testing.T) {
	w := newWorld(t)
	outer := w.class(classDef{name: "Outer"})
	inner := w.class(classDef{name: "Inner", outer: outer})
	w.private(outer, "secret")
	w.def(outer, "open", w.b.Void)
	own := w.private(inner, "mine")

	for _, site := range []*ast.CallSite{call("open"), call("mine")} {
		require.NoError(t, w.resolve(envOf(inner, outer), site))
		assert.Nil(t, site.Result.Rewrite)
	}
	inOuter := call("secret")
	require.NoError(t, w.resolve(envOf(outer), inOuter))
	assert.Nil(t, inOuter.Result.Rewrite)

	fromOuter := callOn(val(inner), "mine")
	require.NoError(t, w.resolve(envOf(outer), fromOuter))
	require.NotNil(t, fromOuter.Result.Rewrite)
	assert.Equal(t, inner, w.tab.Method(fromOuter.Result.Rewrite.Callable).Owner)
	assert.Equal(t, own, w.tab.Method(fromOuter.Result.Rewrite.Callable).Target)
	assert.Equal(t, 1, w.tab.AccessorCount())
}

func TestStaticPrivateAccessorTakesNoReceiver(t *testing.T) {
	w := newWorld(t)
	outer := w.class(classDef{name: "Outer"})
	inner := w.class(classDef{name: "Inner", outer: outer, flags: types.ClassStatic})
	id := w.add(symbols.Method{Name: "util", Owner: outer, Flags: symbols.MethodStatic, Params: []types.TypeID{w.b.String}})
	w.tab.Method(id).Access = types.AccessPrivate

	site := call("util", val(w.b.String))
	require.NoError(t, w.resolve(envOf(inner, outer), site))
	require.NotNil(t, site.Result.Rewrite)
	assert.Equal(t, []types.TypeID{w.b.String}, w.tab.Method(site.Result.Rewrite.Callable).Params)
	assert.Len(t, site.Result.Rewrite.Args, 1)
}

func TestProtectedMemberReachedThroughEnclosingSubclass(t *testing.T) {
	w := newWorld(t)
	base := w.class(classDef{name: "Base", pkg: "q"})
	prot := w.add(symbols.Method{Name: "prot", Owner: base})
	w.tab.Method(prot).Access = types.AccessProtected
	sub := w.class(classDef{name: "Sub", super: base})
	inner := w.class(classDef{name: "Inner", outer: sub})

	site := call("prot")
	require.NoError(t, w.resolve(envOf(inner, sub), site))
	require.NotNil(t, site.Result.Rewrite)
	acc := w.tab.Method(site.Result.Rewrite.Callable)
	assert.Equal(t, sub, acc.Owner)
	assert.Equal(t, []types.TypeID{sub}, acc.Params)

	direct := call("prot")
	require.NoError(t, w.resolve(envOf(sub), direct))
	assert.Nil(t, direct.Result.Rewrite)
}
