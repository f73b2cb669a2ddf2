package driver

import (
	"jopa/internal/diag"
	"jopa/internal/fixture"
	"jopa/internal/metrics"
	"jopa/internal/observ"
	"jopa/internal/project"
	"jopa/internal/sema"
	"jopa/internal/source"
)

// DefaultMaxDiagnostics bounds the diagnostics kept per fixture file.
const DefaultMaxDiagnostics = 512

// Options configure a run over fixture files.
type Options struct {
	// Resolve are the base resolver options; a fixture's own options
	// section overrides them.
	Resolve sema.Options
	// Fingerprint folds Resolve into cache keys.
	Fingerprint    project.Digest
	Jobs           int
	MaxDiagnostics int
	// Cache is consulted before resolving a file when non-nil.
	Cache   *DiskCache
	Metrics *metrics.Recorder
	// Observer receives load and resolve phase events.
	Observer PhaseObserver
	// Timings appends a timing diagnostic to every fresh file result.
	Timings bool
	// KeepFixtures retains the loaded universes on the results, for dumps.
	KeepFixtures bool
	// RunID stamps the run; a random one is generated when empty.
	RunID string
}

// OptionsFromConfig derives run options from a validated configuration.
// The cache is not opened here.
func OptionsFromConfig(cfg *project.Config) Options {
	return Options{
		Resolve:        cfg.ResolverOptions(),
		Fingerprint:    cfg.Fingerprint(),
		Jobs:           cfg.Run.Jobs,
		MaxDiagnostics: DefaultMaxDiagnostics,
	}
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return o.MaxDiagnostics
}

// FileResult is the outcome of one fixture file.
type FileResult struct {
	Path  string
	File  source.FileID
	Stats sema.Stats
	Sites []SiteReport
	Bag   *diag.Bag
	// Cached is set when the result came from the disk cache.
	Cached bool
	// Err is a failure that stopped the file before resolution finished,
	// such as malformed YAML.
	Err error
	// Fixture is kept only with Options.KeepFixtures and fresh results.
	Fixture *fixture.Fixture
}

// HasErrors reports whether the file failed or carries an error diagnostic.
func (r *FileResult) HasErrors() bool {
	return r.Err != nil || (r.Bag != nil && r.Bag.HasErrors())
}

// Result collects the files of one run in argument order.
type Result struct {
	RunID   string
	FileSet *source.FileSet
	Files   []*FileResult
	Timing  observ.Report
}

// HasErrors reports whether any file has errors.
func (r *Result) HasErrors() bool {
	for _, f := range r.Files {
		if f.HasErrors() {
			return true
		}
	}
	return false
}

// Totals sums the per-file statistics.
func (r *Result) Totals() sema.Stats {
	var total sema.Stats
	for _, f := range r.Files {
		total.Sites += f.Stats.Sites
		total.Resolved += f.Stats.Resolved
		total.Failed += f.Stats.Failed
		total.Deferred += f.Stats.Deferred
	}
	return total
}

// Cached counts files served from the cache.
func (r *Result) Cached() int {
	n := 0
	for _, f := range r.Files {
		if f.Cached {
			n++
		}
	}
	return n
}

// Diagnostics returns every diagnostic of the run, file by file.
func (r *Result) Diagnostics() []*diag.Diagnostic {
	var out []*diag.Diagnostic
	for _, f := range r.Files {
		if f.Bag != nil {
			out = append(out, f.Bag.Pointers()...)
		}
	}
	return out
}
