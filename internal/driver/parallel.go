package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jopa/internal/observ"
	"jopa/internal/source"
	"jopa/internal/trace"
)

// ResolveFiles loads every path into one FileSet, then resolves the files
// in parallel. Each file is its own universe, so files share nothing but
// the FileSet, which is read-only once loading is done. Results keep the
// order of paths.
func ResolveFiles(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	timer := observ.NewTimer()
	result := &Result{RunID: opts.RunID, FileSet: source.NewFileSet()}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "resolve", trace.ParentFromContext(ctx))
	ctx = trace.WithParent(ctx, span)
	defer func() {
		span.WithExtra("run", opts.RunID).
			WithExtra("files", strconv.Itoa(len(paths))).
			End("")
	}()

	// Loading appends to the FileSet and stays sequential.
	loadStart := time.Now()
	opts.Observer.emit("load", PhaseStart, 0)
	load := timer.Begin("load")
	ids := make([]source.FileID, len(paths))
	for i, path := range paths {
		id, err := result.FileSet.Load(path)
		if err != nil {
			timer.End(load, "")
			return nil, err
		}
		ids[i] = id
	}
	timer.End(load, fmt.Sprintf("%d files", len(paths)))
	opts.Observer.emit("load", PhaseEnd, time.Since(loadStart))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	resolveStart := time.Now()
	opts.Observer.emit("resolve", PhaseStart, 0)
	resolve := timer.Begin("resolve")

	// Indices are unique per goroutine, no mutex needed.
	result.Files = make([]*FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			opts.Observer.emitEvent(PhaseEvent{Name: "resolve", File: paths[i], Status: PhaseStart})
			fileStart := time.Now()
			res, err := ResolveFile(gctx, result.FileSet, id, &opts)
			if err != nil {
				opts.Observer.emitEvent(PhaseEvent{Name: "resolve", File: paths[i], Status: PhaseEnd, Elapsed: time.Since(fileStart), Errors: true})
				return err
			}
			opts.Observer.emitEvent(PhaseEvent{
				Name:    "resolve",
				File:    paths[i],
				Status:  PhaseEnd,
				Elapsed: time.Since(fileStart),
				Cached:  res.Cached,
				Errors:  res.HasErrors(),
			})
			result.Files[i] = res
			return nil
		})
	}
	err := g.Wait()
	timer.End(resolve, fmt.Sprintf("%d jobs", jobs))
	opts.Observer.emit("resolve", PhaseEnd, time.Since(resolveStart))
	if err != nil {
		return nil, err
	}
	result.Timing = timer.Report()
	return result, nil
}
