package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"jopa/internal/diagfmt"
	"jopa/internal/driver"
	"jopa/internal/metrics"
	"jopa/internal/project"
	"jopa/internal/sema"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <fixture.yaml|dir>...",
	Short: "Resolve every call site of the given fixtures",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	resolveCmd.Flags().String("ui", "auto", "live progress view (auto|on|off)")
	resolveCmd.Flags().Bool("timings", false, "append a timing diagnostic per fixture")
	resolveCmd.Flags().Bool("notes", false, "show diagnostic notes")
	resolveCmd.Flags().Bool("fixes", false, "show suggested fixes with previews")
	resolveCmd.Flags().Int("max-diagnostics", driver.DefaultMaxDiagnostics, "maximum diagnostics kept per fixture")
}

type resolveFlags struct {
	ui             uiMode
	timings        bool
	notes          bool
	fixes          bool
	maxDiagnostics int
}

func readResolveFlags(cmd *cobra.Command) (resolveFlags, error) {
	var out resolveFlags
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return out, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if out.ui, err = readUIMode(uiValue); err != nil {
		return out, err
	}
	if out.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return out, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if out.notes, err = cmd.Flags().GetBool("notes"); err != nil {
		return out, fmt.Errorf("failed to get notes flag: %w", err)
	}
	if out.fixes, err = cmd.Flags().GetBool("fixes"); err != nil {
		return out, fmt.Errorf("failed to get fixes flag: %w", err)
	}
	if out.maxDiagnostics, err = cmd.Flags().GetInt("max-diagnostics"); err != nil {
		return out, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return out, nil
}

// runOptions turns the configuration into driver options, opening the
// result cache when one is configured.
func runOptions(cfg *project.Config, rec *metrics.Recorder) (driver.Options, error) {
	opts := driver.OptionsFromConfig(cfg)
	opts.Metrics = rec
	if cfg.Run.CacheDir != "" {
		cache, err := driver.OpenDiskCache(cfg.Run.CacheDir)
		if err != nil {
			return opts, fmt.Errorf("failed to open cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rflags, err := readResolveFlags(cmd)
	if err != nil {
		return err
	}
	mode, err := readColorMode(cfg.Output.Color)
	if err != nil {
		return err
	}

	tracing, cleanup, err := setupTracing(cmd, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	paths, err := project.ExpandFixtures(args)
	if err != nil {
		return err
	}

	rec := metrics.New()
	opts, err := runOptions(&cfg, rec)
	if err != nil {
		return err
	}
	opts.Timings = rflags.timings
	opts.MaxDiagnostics = rflags.maxDiagnostics

	color := shouldColor(mode, os.Stdout)
	useTUI := shouldUseTUI(rflags.ui, cfg.Output.Format, os.Stdout)
	fancy := color && isTerminal(os.Stdout)

	start := time.Now()
	var res *driver.Result
	if useTUI {
		res, err = runResolveWithUI(cmd.Context(), "jopa resolve", paths, opts,
			func(r *driver.Result, elapsed time.Duration) string { return summaryBlock(r, elapsed, fancy) },
			tea.WithOutput(os.Stdout))
	} else {
		res, err = driver.ResolveFiles(cmd.Context(), paths, opts)
	}
	if err != nil {
		tracing.dumpRing(cmd.ErrOrStderr())
		return err
	}

	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "json":
		err = renderJSON(out, res, rflags)
	case "short":
		renderShort(out, res, rflags)
	default:
		renderPretty(out, res, rflags, color)
		if !useTUI {
			renderSummary(out, res, time.Since(start), fancy)
		}
	}
	if err != nil {
		return err
	}

	if cfg.Run.MetricsOut != "" {
		if err := rec.WriteTextfile(cfg.Run.MetricsOut); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if res.HasErrors() {
		tracing.dumpRing(cmd.ErrOrStderr())
		return errDiagnostics
	}
	return nil
}

func renderPretty(w io.Writer, res *driver.Result, rflags resolveFlags, color bool) {
	opts := diagfmt.PrettyOpts{
		Color:       color,
		Context:     1,
		PathMode:    diagfmt.PathModeAuto,
		ShowNotes:   rflags.notes,
		ShowFixes:   rflags.fixes,
		ShowPreview: rflags.fixes,
	}
	for i, f := range res.Files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := "== " + f.Path
		if f.Cached {
			header += " (cached)"
		}
		fmt.Fprintln(w, header)
		if f.Err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", f.Path, f.Err)
			continue
		}
		for _, s := range f.Sites {
			fmt.Fprintf(w, "  %s\n", s)
		}
		if f.Bag != nil && f.Bag.Len() > 0 {
			fmt.Fprintln(w)
			diagfmt.Pretty(w, f.Bag, res.FileSet, opts)
		}
	}
}

func renderShort(w io.Writer, res *driver.Result, rflags resolveFlags) {
	opts := diagfmt.ShortOpts{PathMode: diagfmt.PathModeAuto, IncludeNotes: rflags.notes}
	for _, f := range res.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", f.Path, f.Err)
			continue
		}
		for _, s := range f.Sites {
			fmt.Fprintf(w, "%s: %s\n", f.Path, s)
		}
		if f.Bag != nil {
			diagfmt.Short(w, f.Bag, res.FileSet, opts)
		}
	}
}

type statsJSON struct {
	Sites    int `json:"sites"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
	Deferred int `json:"deferred"`
}

func toStatsJSON(s sema.Stats) statsJSON {
	return statsJSON{Sites: s.Sites, Resolved: s.Resolved, Failed: s.Failed, Deferred: s.Deferred}
}

type fileJSON struct {
	Path        string                    `json:"path"`
	Cached      bool                      `json:"cached,omitempty"`
	Error       string                    `json:"error,omitempty"`
	Stats       statsJSON                 `json:"stats"`
	Sites       []driver.SiteReport       `json:"sites"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

type runJSON struct {
	RunID  string     `json:"run_id"`
	Totals statsJSON  `json:"totals"`
	Files  []fileJSON `json:"files"`
}

func buildRunJSON(res *driver.Result, rflags resolveFlags) runJSON {
	opts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         diagfmt.PathModeAuto,
		IncludeNotes:     rflags.notes,
		IncludeFixes:     rflags.fixes,
		IncludePreviews:  rflags.fixes,
	}
	out := runJSON{RunID: res.RunID, Totals: toStatsJSON(res.Totals()), Files: make([]fileJSON, 0, len(res.Files))}
	for _, f := range res.Files {
		fj := fileJSON{
			Path:   f.Path,
			Cached: f.Cached,
			Stats:  toStatsJSON(f.Stats),
			Sites:  f.Sites,
		}
		if fj.Sites == nil {
			fj.Sites = []driver.SiteReport{}
		}
		if f.Err != nil {
			fj.Error = f.Err.Error()
		}
		if f.Bag != nil {
			fj.Diagnostics = diagfmt.BuildDiagnosticsOutput(f.Bag, res.FileSet, opts)
		} else {
			fj.Diagnostics = diagfmt.DiagnosticsOutput{Diagnostics: []diagfmt.DiagnosticJSON{}}
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

func renderJSON(w io.Writer, res *driver.Result, rflags resolveFlags) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buildRunJSON(res, rflags)); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
