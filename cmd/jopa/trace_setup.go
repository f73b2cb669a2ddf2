package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"jopa/internal/project"
	"jopa/internal/trace"
)

// tracing is the tracer attached to the command context plus the ring
// buffer kept for failure dumps, if any.
type tracing struct {
	tracer trace.Tracer
	ring   *trace.RingTracer
}

// dumpRing writes the buffered events; it is a no-op without a ring.
func (t *tracing) dumpRing(w io.Writer) {
	if t == nil || t.ring == nil {
		return
	}
	fmt.Fprintln(w, "trace: last events before failure:")
	if err := t.ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// setupTracing builds the tracer from the [trace] configuration and the
// trace flags and attaches it to the command context. It returns a cleanup
// function that flushes and closes the tracer.
func setupTracing(cmd *cobra.Command, cfg *project.Config) (*tracing, func(), error) {
	root := cmd.Root()

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	useOTel, err := root.PersistentFlags().GetBool("trace-otel")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-otel flag: %w", err)
	}

	level, err := trace.ParseLevel(cfg.Trace.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return &tracing{tracer: trace.Nop}, func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(cfg.Trace.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace format: %w", err)
	}

	out := &tracing{}
	var tracers []trace.Tracer
	if mode == trace.ModeStream || mode == trace.ModeBoth {
		stream, err := trace.New(trace.Config{
			Level:      level,
			Mode:       trace.ModeStream,
			Format:     format,
			OutputPath: cfg.Trace.Output,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		tracers = append(tracers, stream)
	}
	if mode == trace.ModeRing || mode == trace.ModeBoth {
		if ringSize <= 0 {
			ringSize = 4096
		}
		out.ring = trace.NewRingTracer(ringSize, level)
		tracers = append(tracers, out.ring)
	}
	if useOTel {
		tracers = append(tracers, trace.NewOTelTracer(otel.Tracer("jopa"), level))
	}

	if len(tracers) == 1 {
		out.tracer = tracers[0]
	} else {
		out.tracer = trace.NewMultiTracer(level, tracers...)
	}

	ctx := trace.WithTracer(cmd.Context(), out.tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	cleanup := func() {
		if err := out.tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := out.tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return out, cleanup, nil
}
