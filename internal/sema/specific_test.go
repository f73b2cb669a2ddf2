package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

func TestMostSpecificNumericHierarchy(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	w.def(a, "f", w.b.Void, w.b.Object)
	fNumber := w.def(a, "f", w.b.Void, w.b.Number)
	fInteger := w.def(a, "f", w.b.Void, w.integer())

	site := call("f", val(w.integer()))
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, fInteger, site.Result.Callable)

	site = call("f", val(w.b.Number))
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, fNumber, site.Result.Callable)
	assert.Empty(t, w.bag.Items())
}

func TestReduceKeepsOnlyMaximal(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	fObject := w.def(a, "f", w.b.Void, w.b.Object)
	fNumber := w.def(a, "f", w.b.Void, w.b.Number)
	fInteger := w.def(a, "f", w.b.Void, w.integer())

	assert.Equal(t, []symbols.MethodID{fInteger}, w.res.ReduceToMaximallySpecific([]symbols.MethodID{fObject, fNumber, fInteger}, 1))
	assert.Equal(t, []symbols.MethodID{fInteger}, w.res.ReduceToMaximallySpecific([]symbols.MethodID{fInteger, fObject}, 1))
	assert.True(t, w.res.MoreSpecific(fNumber, fObject, 1))
	assert.False(t, w.res.MoreSpecific(fObject, fNumber, 1))
	assert.Empty(t, w.res.ReduceToMaximallySpecific(nil, 1))
}

func TestIncomparableOverloadsAreAmbiguous(t *testing.T) {
	w := newWorld(t)
	x := w.class(classDef{name: "X"})
	y := w.class(classDef{name: "Y", flags: types.ClassInterface})
	both := w.class(classDef{name: "Both", super: x, ifaces: []types.TypeID{y}})
	a := w.class(classDef{name: "A"})
	fXY := w.def(a, "f", w.b.Void, x, y)
	fYX := w.def(a, "f", w.b.Void, y, x)

	assert.Equal(t, []symbols.MethodID{fXY, fYX}, w.res.ReduceToMaximallySpecific([]symbols.MethodID{fXY, fYX}, 2))

	site := call("f", val(both), val(both))
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, ast.Resolved, site.Result.State)
	assert.Equal(t, fXY, site.Result.Callable)
	assert.Equal(t, []diag.Code{diag.ResAmbiguousMethod}, w.codes())
	assert.Contains(t, w.messages()[0], "f(p.X, p.Y)")
	assert.Contains(t, w.messages()[0], "f(p.Y, p.X)")
}

func TestAmbiguityListsDeclaredCandidates(t *testing.T) {
	w := newWorld(t)
	x := w.class(classDef{name: "X"})
	y := w.class(classDef{name: "Y", flags: types.ClassInterface})
	both := w.class(classDef{name: "Both", super: x, ifaces: []types.TypeID{y}})
	a := w.class(classDef{name: "A"})
	fXY := w.def(a, "f", w.b.Void, x, y)
	fYX := w.def(a, "f", w.b.Void, y, x)
	w.tab.Method(fXY).Decl = source.Span{File: 1, Start: 10, End: 20}
	w.tab.Method(fYX).Decl = source.Span{File: 1, Start: 30, End: 40}

	site := call("f", val(both), val(both))
	require.NoError(t, w.resolve(envOf(a), site))
	require.Len(t, w.bag.Items(), 1)
	got := w.bag.Items()[0].Candidates()
	require.Len(t, got, 2)
	assert.Contains(t, got[0], "f(p.X, p.Y)")
	assert.Contains(t, got[1], "f(p.Y, p.X)")
	assert.Equal(t, source.Span{File: 1, Start: 10, End: 20}, w.bag.Items()[0].Notes[0].Span)
}

func TestOverloadNotFoundPointsAtClosestCandidate(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	g := w.def(a, "g", w.b.Void, w.b.String)
	w.tab.Method(g).Decl = source.Span{File: 1, Start: 5, End: 9}

	site := call("g", val(w.b.Int))
	var f *Failure
	require.ErrorAs(t, w.resolve(envOf(a), site), &f)
	assert.Equal(t, []diag.Code{diag.ResMethodOverloadNotFound}, w.codes())
	assert.Len(t, w.bag.Items()[0].Candidates(), 1)
}

func TestVarargsComparedByComponent(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	fObjects := w.add(symbols.Method{Name: "f", Owner: a, Flags: symbols.MethodVarargs, Params: []types.TypeID{w.in.Array(w.b.Object, 1)}})
	fStrings := w.add(symbols.Method{Name: "f", Owner: a, Flags: symbols.MethodVarargs, Params: []types.TypeID{w.in.Array(w.b.String, 1)}})

	assert.True(t, w.res.MoreSpecific(fStrings, fObjects, 2))
	assert.False(t, w.res.MoreSpecific(fObjects, fStrings, 2))

	site := call("f", val(w.b.String), val(w.b.String))
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, fStrings, site.Result.Callable)
}
