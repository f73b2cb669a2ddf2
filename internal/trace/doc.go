// Package trace records what the resolver did while it ran.
//
// Spans nest at three scopes: a whole driver run, one fixture unit, and one
// call site. At debug level every applicability phase tried on a site is a
// point event under the site span.
//
//	t, _ := trace.New(trace.Config{Level: trace.LevelDetail, Mode: trace.ModeStream})
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeSite, "site:s1", parent)
//	defer span.End("")
//
// StreamTracer writes text or NDJSON, RingTracer keeps the last events in
// memory, MultiTracer fans out, and OTelTracer forwards spans to an
// OpenTelemetry SDK tracer.
package trace
