package sema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/trace"
	"jopa/internal/types"
)

type resolverFunc func(t *symbols.Table, id symbols.MethodID) error

func (f resolverFunc) ResolveSignature(t *symbols.Table, id symbols.MethodID) error { return f(t, id) }

func TestResolveEmitsSiteSpanAndPhasePoints(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	w.def(a, "f", w.b.Void, w.integer())

	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	site := call("f", val(w.b.Int))
	site.Label = "boxed"
	site.ID = 7
	require.NoError(t, w.res.Resolve(ctx, envOf(a), site))

	events := ring.Snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, trace.KindSpanBegin, events[0].Kind)
	assert.Equal(t, "site:boxed", events[0].Name)
	assert.Equal(t, "phase:strict", events[1].Name)
	assert.Equal(t, "0 applicable", events[1].Detail)
	assert.Equal(t, "phase:loose", events[2].Name)
	assert.Equal(t, "1 applicable", events[2].Detail)

	end := events[3]
	assert.Equal(t, trace.KindSpanEnd, end.Kind)
	assert.Equal(t, "f(java.lang.Integer)", end.Detail)
	assert.Equal(t, map[string]string{"site": "boxed", "phase": "loose", "outcome": "resolved"}, end.Extra)
}

func TestDetailLevelSkipsPhasePoints(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	w.def(a, "f", w.b.Void)

	ring := trace.NewRingTracer(16, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	require.NoError(t, w.res.Resolve(ctx, envOf(a), call("f")))
	assert.Len(t, ring.Snapshot(), 2)
}

func TestResolveRejectsMalformedInput(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	require.Error(t, w.res.Resolve(context.Background(), envOf(a), nil))
	require.Error(t, w.res.Resolve(context.Background(), &ast.Env{}, call("f")))
	require.Error(t, w.resolve(envOf(a), &ast.CallSite{}))
	assert.Empty(t, w.bag.Items())
}

func TestLazySignatures(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	f := w.tab.AddMethod(symbols.Method{Name: "f", Owner: a, Access: types.AccessPublic, Return: w.b.Void, Raw: "int"})
	g := w.tab.AddMethod(symbols.Method{Name: "g", Owner: a, Access: types.AccessPublic, Return: w.b.Void, Raw: "broken"})
	h := w.tab.AddMethod(symbols.Method{Name: "h", Owner: a, Access: types.AccessPublic, Return: w.b.Void, Raw: "reentrant"})

	var seen []error
	w.tab.SetResolver(resolverFunc(func(tab *symbols.Table, id symbols.MethodID) error {
		m := tab.Method(id)
		switch m.Raw {
		case "int":
			m.Params = []types.TypeID{w.b.Int}
			return nil
		case "reentrant":
			if _, ok := tab.Signature(id); !ok {
				seen = append(seen, symbols.ErrSignatureCycle)
			}
			_, err := tab.ExpandedTable(m.Owner)
			seen = append(seen, err)
			return err
		}
		return errors.New("unparsable signature")
	}))

	site := call("f", val(w.b.Int))
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, f, site.Result.Callable)

	_, ok := w.tab.Signature(g)
	assert.False(t, ok)
	_, ok = w.tab.Signature(h)
	assert.False(t, ok)
	require.Len(t, seen, 2)
	assert.ErrorIs(t, seen[0], symbols.ErrSignatureCycle)
	assert.ErrorIs(t, seen[1], symbols.ErrTableBuilding)

	ok, _ = w.res.IsApplicable(g, nil, PhaseStrict)
	assert.False(t, ok)
	var fail *Failure
	require.ErrorAs(t, w.resolve(envOf(a), call("h")), &fail)
	assert.Equal(t, diag.ResMethodNotFound, fail.Code)
}

func TestRunStopsOnCancellation(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	w.def(a, "f", w.b.Void)
	unit := ast.NewUnit(1, "cancel.yaml")
	w.withUnit(unit)
	unit.AddSite(ast.CallSite{Kind: ast.MethodCall{Name: "f"}}, envOf(a))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := w.res.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Sites)
}

func TestRunCountsOutcomes(t *testing.T) {
	w := newWorld(t)
	a := w.class(classDef{name: "A"})
	w.def(a, "f", w.b.Void)
	unit := ast.NewUnit(1, "count.yaml")
	w.withUnit(unit)
	env := envOf(a)
	unit.AddSite(ast.CallSite{Label: "ok", Kind: ast.MethodCall{Name: "f"}}, env)
	unit.AddSite(ast.CallSite{Label: "missing", Kind: ast.MethodCall{Name: "nope"}}, env)

	ring := trace.NewRingTracer(64, trace.LevelPhase)
	stats, err := w.res.Run(trace.WithTracer(context.Background(), ring))
	require.NoError(t, err)
	assert.Equal(t, Stats{Sites: 2, Resolved: 1, Failed: 1}, stats)
	assert.Equal(t, []diag.Code{diag.ResMethodNotFound}, w.codes())

	events := ring.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "unit:count.yaml", events[0].Name)
	assert.Equal(t, "2", events[1].Extra["sites"])
	assert.Equal(t, "1", events[1].Extra["failed"])
}

func TestRunWithoutUnit(t *testing.T) {
	w := newWorld(t)
	_, err := w.res.Run(context.Background())
	require.Error(t, err)
}
