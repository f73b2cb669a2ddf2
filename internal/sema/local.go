package sema

import (
	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/symbols"
	"jopa/internal/types"
)

// pendingSite is a constructor call of a local class whose body was still
// open when the call was resolved. super marks the forwarding super(...)
// of an anonymous subclass.
type pendingSite struct {
	site  *ast.CallSite
	env   *ast.Env
	super bool
}

// attachLocalArgs appends the capture arguments of a local class to a
// resolved constructor call, or parks the call until the class is
// complete.
func (r *Resolver) attachLocalArgs(env *ast.Env, site *ast.CallSite, class types.TypeID) {
	if r.table.IsComplete(class) {
		site.Result.LocalArgs = r.captureArgs(env, site, class)
		return
	}
	r.pending[class] = append(r.pending[class], pendingSite{site: site, env: env.Clone()})
	site.Result.State = ast.Deferred
}

// captureArgs builds one argument per capture of class, as seen from env.
func (r *Resolver) captureArgs(env *ast.Env, site *ast.CallSite, class types.TypeID) []*ast.Expr {
	caps := r.table.Captures(class)
	if len(caps) == 0 {
		return nil
	}
	out := make([]*ast.Expr, 0, len(caps))
	for _, c := range caps {
		out = append(out, r.captureExpr(env, site, c))
	}
	return out
}

// captureExpr reads a captured local from env: directly when the innermost
// frame declares it, otherwise through the capture field of the nearest
// local class crossed. Open local classes crossed on the way gain the
// capture themselves.
func (r *Resolver) captureExpr(env *ast.Env, site *ast.CallSite, c symbols.Capture) *ast.Expr {
	for j := range env.Frames {
		if !hasLocal(&env.Frames[j], c.Name) {
			continue
		}
		if j == 0 {
			return &ast.Expr{Kind: ast.ExprLocal, Name: c.Name, Type: c.Type, Span: site.Span}
		}
		var field *ast.Expr
		for k := 0; k < j; k++ {
			if !r.isLocalClass(env.Frames[k].Type) {
				continue
			}
			captured, err := r.table.AddCapture(env.Frames[k].Type, c.Name, c.Type)
			if err != nil {
				continue
			}
			if field == nil {
				field = &ast.Expr{
					Kind:  ast.ExprField,
					Name:  symbols.CaptureFieldName(c.Name),
					Type:  c.Type,
					Field: captured.Field,
					Span:  site.Span,
					Via:   via(env, k),
				}
			}
		}
		if field != nil {
			return field
		}
		return &ast.Expr{Kind: ast.ExprLocal, Name: c.Name, Type: c.Type, Span: site.Span, Via: via(env, j-1)}
	}
	for k := range env.Frames {
		if captured, ok := r.table.CaptureOf(env.Frames[k].Type, c.Name); ok {
			return &ast.Expr{
				Kind:  ast.ExprField,
				Name:  symbols.CaptureFieldName(c.Name),
				Type:  c.Type,
				Field: captured.Field,
				Span:  site.Span,
				Via:   via(env, k),
			}
		}
	}
	r.report(diag.ResUnknownLocal, site, "local variable %s captured by the constructor call is not in scope", c.Name).Emit()
	return &ast.Expr{Kind: ast.ExprLocal, Name: c.Name, Type: r.builtins.Bad, Span: site.Span}
}

// localType finds the type of a local visible from env, including locals
// already captured by an enclosing local class.
func (r *Resolver) localType(env *ast.Env, name string) (types.TypeID, bool) {
	for j := range env.Frames {
		for _, l := range env.Frames[j].Locals {
			if l.Name == name {
				return l.Type, true
			}
		}
		if c, ok := r.table.CaptureOf(env.Frames[j].Type, name); ok {
			return c.Type, true
		}
	}
	return types.NoTypeID, false
}

func (r *Resolver) isLocalClass(t types.TypeID) bool {
	info, ok := r.types.ClassInfo(t)
	return ok && info.Is(types.ClassLocal)
}

func hasLocal(f *ast.Frame, name string) bool {
	for _, l := range f.Locals {
		if l.Name == name {
			return true
		}
	}
	return false
}
