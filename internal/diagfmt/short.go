package diagfmt

import (
	"fmt"
	"io"

	"jopa/internal/diag"
	"jopa/internal/source"
)

// Short writes one line per diagnostic:
//
//	<path>:<line>:<col>: <sev> <CODE>: <Message>
//
// Notes follow on indented lines when requested.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts ShortOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n", location(fs, d.Primary, opts.PathMode), d.Severity.Label(), d.Code.ID(), d.Message)
		if !opts.IncludeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: %s: %s\n", n.Kind.Label(), location(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
}
