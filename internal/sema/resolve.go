package sema

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/trace"
	"jopa/internal/types"
)

// Resolve binds one call site seen in env and writes the outcome to
// site.Result. A failed site carries the bad type and the returned error
// is a *Failure.
func (r *Resolver) Resolve(ctx context.Context, env *ast.Env, site *ast.CallSite) error {
	if site == nil {
		return errors.New("resolve: nil call site")
	}
	if env == nil || len(env.Frames) == 0 {
		return fmt.Errorf("call site %d: empty lexical environment", site.ID)
	}
	label := siteLabel(site)
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSite, "site:"+label, trace.ParentFromContext(ctx))
	prev := r.span
	r.span = span
	defer func() { r.span = prev }()

	var err error
	switch k := site.Kind.(type) {
	case ast.MethodCall:
		err = r.resolveMethod(env, site, k)
	case ast.New:
		err = r.resolveNew(env, site, k)
	case ast.ThisCall:
		err = r.resolveThisCall(env, site)
	case ast.SuperCall:
		err = r.resolveSuperCall(env, site, k)
	default:
		err = fmt.Errorf("call site %d: unsupported call kind %T", site.ID, site.Kind)
	}

	detail := ""
	if site.Result.Callable.IsValid() {
		detail = r.table.Header(site.Result.Callable)
	}
	span.WithExtra("site", label).
		WithExtra("phase", Phase(site.Result.Phase).String()).
		WithExtra("outcome", site.Result.State.String()).
		End(detail)
	return err
}

// Complete marks the body of a local class finished and hands the capture
// arguments to every constructor call that waited for it.
func (r *Resolver) Complete(ctx context.Context, class types.TypeID) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSite, "complete:"+r.className(class), trace.ParentFromContext(ctx))
	r.table.CompleteLocalClass(class)
	waiting := r.pending[class]
	delete(r.pending, class)
	for _, p := range waiting {
		args := r.captureArgs(p.env, p.site, class)
		if p.super {
			if si := p.site.Result.SuperInvocation; si != nil {
				si.Args = append(si.Args, args...)
			}
			continue
		}
		p.site.Result.LocalArgs = args
		if p.site.Result.State == ast.Deferred {
			p.site.Result.State = ast.Resolved
		}
	}
	span.WithExtra("released", strconv.Itoa(len(waiting))).End("")
}

// Stats summarizes one Run.
type Stats struct {
	Sites    int
	Resolved int
	Failed   int
	Deferred int
}

// Run processes the unit's steps in program order. Failures of individual
// sites are reported through diagnostics and counted; only structural
// errors and cancellation stop the run.
func (r *Resolver) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	if r.unit == nil {
		return stats, errors.New("run: resolver has no unit")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "unit:"+r.unit.Path, trace.ParentFromContext(ctx))
	ctx = trace.WithParent(ctx, span)
	defer func() {
		span.WithExtra("sites", strconv.Itoa(stats.Sites)).
			WithExtra("failed", strconv.Itoa(stats.Failed)).
			End("")
	}()

	for _, step := range r.unit.Steps {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		switch step.Kind {
		case ast.StepCall:
			site := r.unit.Site(step.Site)
			if site == nil {
				return stats, fmt.Errorf("run %s: unknown call site %d", r.unit.Path, step.Site)
			}
			stats.Sites++
			if err := r.Resolve(ctx, step.Env, site); err != nil {
				var f *Failure
				if !errors.As(err, &f) {
					return stats, err
				}
			}
		case ast.StepComplete:
			r.Complete(ctx, step.Class)
		}
	}
	r.reportPending()

	for _, s := range r.unit.Sites.Slice() {
		switch s.Result.State {
		case ast.Resolved:
			stats.Resolved++
		case ast.Failed:
			stats.Failed++
		case ast.Deferred:
			stats.Deferred++
		}
	}
	return stats, nil
}

// reportPending warns about constructor calls whose local class never
// completed.
func (r *Resolver) reportPending() {
	for _, class := range slices.Sorted(maps.Keys(r.pending)) {
		for _, p := range r.pending[class] {
			r.warn(diag.ResPendingLocalConstructor, p.site,
				"the body of local class %s was never completed; capture arguments are missing",
				r.className(class)).Emit()
		}
	}
}

func siteLabel(site *ast.CallSite) string {
	if site.Label != "" {
		return site.Label
	}
	return strconv.FormatUint(uint64(site.ID), 10)
}
