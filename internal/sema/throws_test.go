package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

func (w *world) exceptions() (io, notFound types.TypeID) {
	io = w.class(classDef{name: "IOException", pkg: "java.io", super: w.b.Exception})
	notFound = w.class(classDef{name: "FileNotFoundException", pkg: "java.io", super: io})
	return io, notFound
}

func (w *world) throwing(owner types.TypeID, name string, flags symbols.MethodFlags, throws ...types.TypeID) symbols.MethodID {
	return w.add(symbols.Method{Name: name, Owner: owner, Flags: flags, Throws: throws})
}

func TestUncheckedAndHandledExceptions(t *testing.T) {
	w := newWorld(t)
	io, _ := w.exceptions()
	a := w.class(classDef{name: "A"})
	w.throwing(a, "read", 0, io)
	w.throwing(a, "check", 0, w.b.RuntimeException)

	site := call("read")
	require.NoError(t, w.resolve(envOf(a), site))
	assert.Equal(t, []types.TypeID{io}, site.Result.Throws)
	assert.Equal(t, []diag.Code{diag.ResUncaughtCheckedException}, w.codes())
	assert.Equal(t, "unreported exception java.io.IOException; it must be caught or declared to be thrown", w.messages()[0])

	handled := &ast.Env{Frames: []ast.Frame{{Type: a, Handled: []types.TypeID{w.b.Exception}}}}
	require.NoError(t, w.resolve(handled, call("read")))
	require.NoError(t, w.resolve(envOf(a), call("check")))
	assert.Len(t, w.bag.Items(), 1)
}

func TestConflictingAbstractMethodsIntersectThrows(t *testing.T) {
	w := newWorld(t)
	io, notFound := w.exceptions()
	i1 := w.class(classDef{name: "I1", flags: types.ClassInterface})
	i2 := w.class(classDef{name: "I2", flags: types.ClassInterface})
	i3 := w.class(classDef{name: "I3", flags: types.ClassInterface})
	w.throwing(i1, "m", symbols.MethodAbstract, io)
	w.throwing(i2, "m", symbols.MethodAbstract, notFound)
	w.throwing(i3, "m", symbols.MethodAbstract, w.b.Exception)
	c := w.class(classDef{name: "C", flags: types.ClassAbstract, ifaces: []types.TypeID{i1, i2, i3}})
	env := &ast.Env{Frames: []ast.Frame{{Type: w.class(classDef{name: "A"}), Handled: []types.TypeID{io}}}}

	site := callOn(val(c), "m")
	require.NoError(t, w.resolve(env, site))
	assert.Equal(t, []types.TypeID{notFound}, site.Result.Throws)
	assert.Empty(t, w.bag.Items())
}

func TestConflictWithoutThrowsClearsAll(t *testing.T) {
	w := newWorld(t)
	io, _ := w.exceptions()
	i1 := w.class(classDef{name: "I1", flags: types.ClassInterface})
	i2 := w.class(classDef{name: "I2", flags: types.ClassInterface})
	w.throwing(i1, "m", symbols.MethodAbstract, io)
	w.throwing(i2, "m", symbols.MethodAbstract)
	c := w.class(classDef{name: "C", flags: types.ClassAbstract, ifaces: []types.TypeID{i1, i2}})

	site := callOn(val(c), "m")
	require.NoError(t, w.resolve(envOf(w.class(classDef{name: "A"})), site))
	assert.Empty(t, site.Result.Throws)
	assert.Empty(t, w.bag.Items())
}

func TestThrownTypeVariableIsInferred(t *testing.T) {
	w := newWorld(t)
	io, _ := w.exceptions()
	util := w.class(classDef{name: "Util"})
	id := w.generic(util, "raise", []string{"E"}, func(tp []types.TypeID) (types.TypeID, []types.TypeID) {
		return w.b.Void, []types.TypeID{tp[0]}
	})
	m := w.tab.Method(id)
	m.Throws = []types.TypeID{m.TypeParams[0]}

	site := callOn(typeName(util), "raise", val(io))
	require.NoError(t, w.resolve(envOf(util), site))
	assert.Equal(t, []types.TypeID{io}, site.Result.Throws)
	assert.Equal(t, []diag.Code{diag.ResUncaughtCheckedException}, w.codes())
}
