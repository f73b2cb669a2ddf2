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

// expectOne resolves site and checks that it failed with exactly one
// diagnostic of the given code.
func (w *world) expectOne(env *ast.Env, site *ast.CallSite, code diag.Code) string {
	w.t.Helper()
	err := w.resolve(env, site)
	var f *Failure
	require.ErrorAs(w.t, err, &f)
	assert.Equal(w.t, FailureNotFound, f.Kind)
	assert.Equal(w.t, code, f.Code)
	require.Equal(w.t, []diag.Code{code}, w.codes())
	assert.True(w.t, site.Result.IsBad(w.in))
	return w.messages()[0]
}

func TestMethodNotFoundDiagnostics(t *testing.T) {
	t.Run("overload", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		w.def(a, "f", w.b.Void, w.b.Int)
		w.def(a, "f", w.b.Void, w.b.Int, w.b.Int, w.b.Int)
		msg := w.expectOne(envOf(a), call("f", val(w.b.String)), diag.ResMethodOverloadNotFound)
		assert.Equal(t, "method f(int) in p.A cannot be applied to f(java.lang.String)", msg)
	})

	t.Run("field", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		w.tab.AddField(symbols.Field{Name: "size", Owner: a, Type: w.b.Int, Access: types.AccessPublic})
		msg := w.expectOne(envOf(a), call("size"), diag.ResFieldNotMethod)
		assert.Equal(t, "size is a field of p.A, not a method", msg)
	})

	t.Run("private", func(t *testing.T) {
		w := newWorld(t)
		lib := w.class(classDef{name: "Lib", pkg: "q"})
		w.private(lib, "hidden", w.b.Int)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), callOn(val(lib), "hidden", val(w.b.Int)), diag.ResMethodNotAccessible)
		assert.Contains(t, msg, "hidden(int) in q.Lib is private")
	})

	t.Run("private in superclass", func(t *testing.T) {
		w := newWorld(t)
		base := w.class(classDef{name: "Base", pkg: "q"})
		w.private(base, "hidden")
		sub := w.class(classDef{name: "Sub", pkg: "q", super: base})
		a := w.class(classDef{name: "A"})
		w.expectOne(envOf(a), callOn(val(sub), "hidden"), diag.ResMethodNotAccessible)
	})

	t.Run("protected wrong qualifier", func(t *testing.T) {
		w := newWorld(t)
		base := w.class(classDef{name: "Base", pkg: "q"})
		prot := w.add(symbols.Method{Name: "prot", Owner: base})
		w.tab.Method(prot).Access = types.AccessProtected
		sub := w.class(classDef{name: "Sub", super: base})
		w.expectOne(envOf(sub), callOn(val(base), "prot"), diag.ResProtectedWrongQualifier)
	})

	t.Run("protected through interface", func(t *testing.T) {
		w := newWorld(t)
		iface := w.class(classDef{name: "Shape", pkg: "q", flags: types.ClassInterface})
		a := w.class(classDef{name: "A"})
		w.expectOne(envOf(a), callOn(val(iface), "clone"), diag.ResProtectedInterfaceMethod)
	})

	t.Run("misspelled", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		w.def(a, "length", w.b.Int)
		msg := w.expectOne(envOf(a), call("lenght"), diag.ResMethodNameMisspelled)
		assert.Equal(t, "method lenght() was not found in p.A; did you mean length()?", msg)
	})

	t.Run("type", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		w.class(classDef{name: "Helper"})
		msg := w.expectOne(envOf(a), call("Helper"), diag.ResTypeNotMethod)
		assert.Equal(t, "p.Helper is a type, not a method", msg)
	})

	t.Run("member type of an enclosing class", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		w.class(classDef{name: "Entry", outer: a, flags: types.ClassStatic})
		w.expectOne(envOf(a), call("Entry", val(w.b.Int)), diag.ResTypeNotMethod)
	})

	t.Run("nothing", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), call("zzz", val(w.b.Int)), diag.ResMethodNotFound)
		assert.Equal(t, "no method named zzz(int) was found in type p.A", msg)
	})

	t.Run("nothing on receiver", func(t *testing.T) {
		w := newWorld(t)
		a := w.class(classDef{name: "A"})
		b := w.class(classDef{name: "B"})
		msg := w.expectOne(envOf(a), callOn(val(b), "zzz"), diag.ResMethodNotFound)
		assert.Equal(t, "no method named zzz() was found in type p.B", msg)
	})
}

func TestHiddenMethodBeatsOtherExplanations(t *testing.T) {
	w := newWorld(t)
	outer := w.class(classDef{name: "Outer"})
	inner := w.class(classDef{name: "Inner", outer: outer})
	w.def(outer, "g", w.b.Void, w.b.String)
	w.def(inner, "g", w.b.Void, w.b.Int)
	msg := w.expectOne(envOf(inner, outer), call("g", val(w.b.String)), diag.ResHiddenByEnclosing)
	assert.Contains(t, msg, "g(java.lang.String)")
}

func TestConstructorNotFoundDiagnostics(t *testing.T) {
	t.Run("overload", func(t *testing.T) {
		w := newWorld(t)
		c := w.class(classDef{name: "C"})
		w.ctor(c, types.AccessPublic, w.b.Int)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), newOf(c, val(w.b.String)), diag.ResConstructorOverloadNotFound)
		assert.Equal(t, "constructor C(int) in p.C cannot be applied to C(java.lang.String)", msg)
	})

	t.Run("private", func(t *testing.T) {
		w := newWorld(t)
		lib := w.class(classDef{name: "Lib", pkg: "q"})
		w.ctor(lib, types.AccessPrivate, w.b.Int)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), newOf(lib, val(w.b.Int)), diag.ResConstructorNotAccessible)
		assert.Contains(t, msg, "is private")
	})

	t.Run("protected outside explicit invocation", func(t *testing.T) {
		w := newWorld(t)
		lib := w.class(classDef{name: "Lib", pkg: "q"})
		w.ctor(lib, types.AccessProtected)
		a := w.class(classDef{name: "A"})
		w.expectOne(envOf(a), newOf(lib), diag.ResConstructorNotAccessible)
	})

	t.Run("method named like the class", func(t *testing.T) {
		w := newWorld(t)
		d := w.class(classDef{name: "D", pkg: "q"})
		w.ctor(d, types.AccessPrivate, w.b.String)
		w.def(d, "D", w.b.Void, w.b.Int)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), newOf(d, val(w.b.Int)), diag.ResMethodFoundForConstructor)
		assert.Equal(t, "D(int) in q.D is a method, not a constructor", msg)
	})

	t.Run("nothing", func(t *testing.T) {
		w := newWorld(t)
		e := w.class(classDef{name: "E", pkg: "q"})
		w.ctor(e, types.AccessPrivate, w.b.String)
		a := w.class(classDef{name: "A"})
		msg := w.expectOne(envOf(a), newOf(e, val(w.b.Int), val(w.b.Int)), diag.ResConstructorNotFound)
		assert.Equal(t, "no constructor E(int, int) was found in type q.E", msg)
	})
}
