// Package telemetry carries trace context between components of the turn
// pipeline. It never configures exporters or providers: spans are created
// through the process-global otel tracer, which is a no-op until the host
// application installs a provider.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pbridger/turnwire"

// contentLimit caps span attribute content so traces stay storable.
const contentLimit = 64 * 1024

// TruncateContent limits s to a size suitable for a telemetry attribute.
func TruncateContent(s string) string {
	if len(s) <= contentLimit {
		return s
	}
	runes := []rune(s)
	if len(runes) > contentLimit {
		runes = runes[:contentLimit]
	}
	return string(runes)
}

// The fixed span vocabulary of the turn pipeline. Anything else is
// normalized to a generic span name.
var spanVocabulary = map[string]struct{}{
	"user_message":         {},
	"llm_request":          {},
	"assistant_msg":        {},
	"tool_call":            {},
	"exec_cmd":             {},
	"function_call_output": {},
}

func spanName(name string) string {
	if _, ok := spanVocabulary[name]; ok {
		return name
	}
	return "span"
}

// TraceContext is a serializable carrier for trace propagation across
// process boundaries. A zero TraceContext propagates nothing and simply
// starts root spans.
type TraceContext struct {
	carrier map[string]string
}

// CaptureCurrent snapshots the trace context active in ctx. With no
// propagator or no active trace the result is an empty context, which is
// valid and simply carries nothing.
func CaptureCurrent(ctx context.Context) TraceContext {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if len(carrier) == 0 {
		return TraceContext{}
	}
	return TraceContext{carrier: carrier}
}

// FromContextMap recreates a TraceContext from a previously captured map,
// typically after crossing a process boundary.
func FromContextMap(m map[string]string) TraceContext {
	if len(m) == 0 {
		return TraceContext{}
	}
	return TraceContext{carrier: m}
}

// ContextMap exposes the carrier for serialization. Nil when nothing was
// captured.
func (tc TraceContext) ContextMap() map[string]string {
	return tc.carrier
}

// StartSpan creates a child span of the carried context, restricted to the
// pipeline's span vocabulary. When telemetry is disabled (no provider
// installed) the returned span is a no-op.
func (tc TraceContext) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if tc.carrier != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(tc.carrier))
	}
	return otel.Tracer(tracerName).Start(ctx, spanName(name))
}
