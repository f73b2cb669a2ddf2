package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jopa/internal/version"
)

// errDiagnostics makes the process exit 1 after the diagnostics have
// already been printed.
var errDiagnostics = errors.New("resolution reported errors")

var rootCmd = &cobra.Command{
	Use:           "jopa",
	Short:         "Overload and constructor resolution for Java-like programs",
	Long:          `jopa resolves method calls and instance creations described in YAML fixtures`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to jopa.toml (default: discovered from the working directory)")
	pf.String("source", "", "source level (1.3 .. 1.8)")
	pf.Bool("deprecation", false, "warn on calls to deprecated methods")
	pf.Bool("pedantic", false, "enable pedantic warnings")
	pf.Int("jobs", 0, "max parallel fixture files (0=auto)")
	pf.String("cache", "", "result cache directory")
	pf.Bool("no-cache", false, "disable the result cache")
	pf.String("metrics-out", "", "write Prometheus metrics to this text file")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 0, "ring buffer capacity in events")
	pf.Bool("trace-otel", false, "also forward spans to the global OpenTelemetry tracer")
}

// main executes the root command. Any error exits with status 1; errors
// other than reported diagnostics are printed first.
func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "jopa: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
