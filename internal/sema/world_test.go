package sema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/source"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// world is a small universe built by hand for resolver tests.
type world struct {
	t   *testing.T
	in  *types.Interner
	tab *symbols.Table
	b   types.Builtins
	bag *diag.Bag
	res *Resolver
}

func newWorld(t *testing.T, opts ...func(*Options)) *world {
	t.Helper()
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	o := DefaultOptions()
	for _, f := range opts {
		f(&o)
	}
	w := &world{t: t, in: in, tab: tab, b: in.Builtins(), bag: diag.NewBag(64)}
	w.res = NewResolver(tab, nil, diag.BagReporter{Bag: w.bag}, o)
	return w
}

func (w *world) withUnit(u *ast.Unit) {
	w.res = NewResolver(w.tab, u, diag.BagReporter{Bag: w.bag}, w.res.Options())
}

type classDef struct {
	name   string
	pkg    string
	outer  types.TypeID
	super  types.TypeID
	ifaces []types.TypeID
	flags  types.ClassFlags
	params []string
}

func (w *world) class(c classDef) types.TypeID {
	w.t.Helper()
	pkg := c.pkg
	if pkg == "" {
		pkg = "p"
	}
	super := c.super
	if !super.IsValid() && c.flags&types.ClassInterface == 0 {
		super = w.b.Object
	}
	id, err := w.in.RegisterClass(types.ClassInfo{
		Name: c.name, Package: pkg, Outer: c.outer, Super: super,
		Interfaces: c.ifaces, Flags: c.flags, Access: types.AccessPublic,
	})
	require.NoError(w.t, err)
	if len(c.params) > 0 {
		info, _ := w.in.ClassInfo(id)
		for i, name := range c.params {
			info.TypeParams = append(info.TypeParams, w.in.RegisterTypeParam(types.TypeParamInfo{
				Name: name, Index: uint32(i), Owner: id, // #nosec G115 -- test fixture
			}))
		}
	}
	return id
}

func (w *world) param(class types.TypeID, i int) types.TypeID {
	info, _ := w.in.ClassInfo(class)
	return info.TypeParams[i]
}

func (w *world) add(m symbols.Method) symbols.MethodID {
	if !m.Return.IsValid() {
		m.Return = w.b.Void
	}
	if m.Access == types.AccessPackage && m.Flags&symbols.MethodAccessor == 0 {
		m.Access = types.AccessPublic
	}
	m.Sig = symbols.SigResolved
	return w.tab.AddMethod(m)
}

// def declares a public method.
func (w *world) def(owner types.TypeID, name string, ret types.TypeID, params ...types.TypeID) symbols.MethodID {
	return w.add(symbols.Method{Name: name, Owner: owner, Return: ret, Params: params})
}

// private declares a private method.
func (w *world) private(owner types.TypeID, name string, params ...types.TypeID) symbols.MethodID {
	id := w.add(symbols.Method{Name: name, Owner: owner, Params: params})
	w.tab.Method(id).Access = types.AccessPrivate
	return id
}

func (w *world) ctor(owner types.TypeID, access types.Access, params ...types.TypeID) symbols.MethodID {
	id := w.add(symbols.Method{Kind: symbols.MethodConstructor, Owner: owner, Params: params})
	w.tab.Method(id).Access = access
	return id
}

// generic declares a static method with its own type variables; build
// receives them and fills params and return type.
func (w *world) generic(owner types.TypeID, name string, tparams []string, build func(tp []types.TypeID) (ret types.TypeID, params []types.TypeID)) symbols.MethodID {
	id := w.add(symbols.Method{Name: name, Owner: owner, Flags: symbols.MethodStatic})
	tps := make([]types.TypeID, len(tparams))
	for i, n := range tparams {
		tps[i] = w.in.RegisterTypeParam(types.TypeParamInfo{
			Name: n, Index: uint32(i), Owner: owner, Method: uint32(id), // #nosec G115 -- test fixture
		})
	}
	ret, params := build(tps)
	m := w.tab.Method(id)
	m.TypeParams, m.Return, m.Params = tps, ret, params
	return id
}

func (w *world) integer() types.TypeID { return w.in.Box(w.b.Int) }

func (w *world) codes() []diag.Code {
	var out []diag.Code
	for _, d := range w.bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func (w *world) messages() []string {
	var out []string
	for _, d := range w.bag.Items() {
		out = append(out, d.Message)
	}
	return out
}

func (w *world) resolve(env *ast.Env, site *ast.CallSite) error {
	if site.ID == 0 {
		site.ID = 1
	}
	return w.res.Resolve(context.Background(), env, site)
}

func val(t types.TypeID) *ast.Expr { return ast.Value(t, source.Span{}) }

func call(name string, args ...*ast.Expr) *ast.CallSite {
	return &ast.CallSite{Kind: ast.MethodCall{Name: name}, Args: args}
}

func callOn(recv *ast.Expr, name string, args ...*ast.Expr) *ast.CallSite {
	return &ast.CallSite{Kind: ast.MethodCall{Name: name, Receiver: recv}, Args: args}
}

func newOf(class types.TypeID, args ...*ast.Expr) *ast.CallSite {
	return &ast.CallSite{Kind: ast.New{Class: class}, Args: args}
}

func typeName(t types.TypeID) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprTypeName, Type: t, Denoted: t}
}

func envOf(frames ...types.TypeID) *ast.Env {
	env := &ast.Env{}
	for _, f := range frames {
		env.Frames = append(env.Frames, ast.Frame{Type: f})
	}
	return env
}
