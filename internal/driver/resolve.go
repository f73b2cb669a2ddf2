package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jopa/internal/ast"
	"jopa/internal/diag"
	"jopa/internal/fixture"
	"jopa/internal/observ"
	"jopa/internal/project"
	"jopa/internal/sema"
	"jopa/internal/source"
	"jopa/internal/trace"
)

// ResolveFile builds the fixture already loaded as file and resolves its
// program. Only cancellation and structural resolver errors are returned;
// anything wrong with the document ends up in the result.
func ResolveFile(ctx context.Context, fs *source.FileSet, file source.FileID, opts *Options) (*FileResult, error) {
	f := fs.Get(file)
	res := &FileResult{Path: f.Path, File: file, Bag: diag.NewBag(opts.maxDiagnostics())}
	started := time.Now()
	defer func() { opts.Metrics.ObserveFixture(time.Since(started)) }()

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "file:"+f.Path, trace.ParentFromContext(ctx))
	ctx = trace.WithParent(ctx, span)
	defer func() {
		span.WithExtra("cached", strconv.FormatBool(res.Cached)).
			WithExtra("sites", strconv.Itoa(res.Stats.Sites)).
			End("")
	}()

	key := CacheKey(project.Digest(f.Hash), opts.Fingerprint)
	if ok := restoreCached(opts, key, res); ok {
		return res, nil
	}

	timer := observ.NewTimer()
	reporter := diag.NewDedupReporter(opts.Metrics.Reporter(diag.BagReporter{Bag: res.Bag}))

	load := timer.Begin("load")
	fx, err := fixture.Parse(fs, file, reporter)
	timer.End(load, "")
	if err != nil {
		res.Err = err
		return res, nil
	}

	resolve := timer.Begin("resolve")
	r := sema.NewResolver(fx.Table, fx.Unit, reporter, fx.Options.Apply(opts.Resolve))
	stats, err := r.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", f.Path, err)
	}
	timer.End(resolve, fmt.Sprintf("%d sites", stats.Sites))
	if n := reporter.Suppressed(); n > 0 {
		span.Point("dedup", fmt.Sprintf("%d repeated diagnostics dropped", n))
	}

	res.Stats = stats
	res.Sites = siteReports(fx)
	accessors := fx.Table.AccessorCount()
	opts.Metrics.AddAccessors(accessors)
	observeSites(opts, res.Sites)
	if opts.KeepFixtures {
		res.Fixture = fx
	}

	if opts.Cache != nil {
		payload := toPayload(f.Path, stats, res.Sites, res.Bag.Items())
		payload.Accessors = accessors
		if err := opts.Cache.Put(key, payload); err != nil {
			span.Point("cache", "store failed: "+err.Error())
		}
	}
	if opts.Timings {
		report := timer.Report()
		appendTimingDiagnostic(res.Bag, file, timingPayload{
			Path:    f.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}
	return res, nil
}

// restoreCached fills res from the cache. Unreadable entries are misses.
func restoreCached(opts *Options, key project.Digest, res *FileResult) bool {
	if opts.Cache == nil || opts.KeepFixtures {
		return false
	}
	var payload DiskPayload
	ok, err := opts.Cache.Get(key, &payload)
	if err != nil || !ok {
		return false
	}
	res.Cached = true
	res.Stats = payload.Stats
	res.Sites = payload.Sites
	for _, d := range payload.diagnostics(res.File) {
		res.Bag.Add(d)
		opts.Metrics.ObserveDiagnostic(d.Code)
	}
	opts.Metrics.AddAccessors(payload.Accessors)
	observeSites(opts, res.Sites)
	return true
}

func observeSites(opts *Options, sites []SiteReport) {
	if opts.Metrics == nil {
		return
	}
	for _, s := range sites {
		phase := ""
		if s.State == ast.Resolved.String() {
			phase = s.Phase
		}
		opts.Metrics.ObserveSite(s.State, phase)
	}
}
