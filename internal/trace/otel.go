package trace

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// OTelTracer forwards span events to an OpenTelemetry tracer.
// Begin/end pairs become OTel spans; points become span events.
type OTelTracer struct {
	mu     sync.Mutex
	tracer oteltrace.Tracer
	level  Level
	live   map[uint64]oteltrace.Span
}

// NewOTelTracer wraps t.
func NewOTelTracer(t oteltrace.Tracer, level Level) *OTelTracer {
	return &OTelTracer{tracer: t, level: level, live: make(map[uint64]oteltrace.Span)}
}

// Emit implements Tracer.
func (o *OTelTracer) Emit(ev *Event) {
	if !o.level.ShouldEmit(ev.Scope, ev.Kind) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	switch ev.Kind {
	case KindSpanBegin:
		ctx := context.Background()
		if parent, ok := o.live[ev.ParentID]; ok {
			ctx = oteltrace.ContextWithSpan(ctx, parent)
		}
		_, span := o.tracer.Start(ctx, ev.Name,
			oteltrace.WithTimestamp(ev.Time),
			oteltrace.WithAttributes(attribute.String("jopa.scope", ev.Scope.String())))
		o.live[ev.SpanID] = span
	case KindSpanEnd:
		span, ok := o.live[ev.SpanID]
		if !ok {
			return
		}
		delete(o.live, ev.SpanID)
		span.SetAttributes(extraAttributes(ev)...)
		if ev.Extra["outcome"] == "failed" {
			span.SetStatus(codes.Error, ev.Detail)
		}
		span.End(oteltrace.WithTimestamp(ev.Time))
	case KindPoint:
		if span, ok := o.live[ev.ParentID]; ok {
			span.AddEvent(ev.Name,
				oteltrace.WithTimestamp(ev.Time),
				oteltrace.WithAttributes(attribute.String("jopa.detail", ev.Detail)))
		}
	}
}

func extraAttributes(ev *Event) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(ev.Extra)+1)
	if ev.Detail != "" {
		attrs = append(attrs, attribute.String("jopa.detail", ev.Detail))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, attribute.String("jopa."+k, ev.Extra[k]))
	}
	return attrs
}

// Flush is a no-op; the span processor owns buffering.
func (o *OTelTracer) Flush() error { return nil }

// Close ends spans that never saw their end event.
func (o *OTelTracer) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for id, span := range o.live {
		span.SetStatus(codes.Error, "unterminated")
		span.End(oteltrace.WithTimestamp(now))
		delete(o.live, id)
	}
	return nil
}

func (o *OTelTracer) Level() Level  { return o.level }
func (o *OTelTracer) Enabled() bool { return o.level > LevelOff }
