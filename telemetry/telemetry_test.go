package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTruncateContent_ShortUnchanged(t *testing.T) {
	assert.Equal(t, "hello", TruncateContent("hello"))
	assert.Equal(t, "", TruncateContent(""))
}

func TestTruncateContent_LongCapped(t *testing.T) {
	long := strings.Repeat("x", contentLimit+100)
	got := TruncateContent(long)
	assert.Len(t, got, contentLimit)
}

func TestSpanName_Vocabulary(t *testing.T) {
	for _, name := range []string{
		"user_message", "llm_request", "assistant_msg",
		"tool_call", "exec_cmd", "function_call_output",
	} {
		assert.Equal(t, name, spanName(name))
	}
	assert.Equal(t, "span", spanName("something_else"))
	assert.Equal(t, "span", spanName(""))
}

func TestCaptureCurrent_NoActiveTrace(t *testing.T) {
	tc := CaptureCurrent(context.Background())
	assert.Nil(t, tc.ContextMap())
}

func TestTraceContext_PropagationRoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	tc := CaptureCurrent(ctx)
	carrier := tc.ContextMap()
	require.NotNil(t, carrier)
	assert.Contains(t, carrier, "traceparent")

	// Recreate on the "other side" and start a child of the carried trace.
	restored := FromContextMap(carrier)
	childCtx, span := restored.StartSpan(context.Background(), "llm_request")
	defer span.End()
	assert.Equal(t, sc.TraceID(), trace.SpanContextFromContext(childCtx).TraceID())
}

func TestStartSpan_NoopWithoutProvider(t *testing.T) {
	tc := TraceContext{}
	ctx, span := tc.StartSpan(context.Background(), "tool_call")
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestFromContextMap_Empty(t *testing.T) {
	assert.Nil(t, FromContextMap(nil).ContextMap())
	assert.Nil(t, FromContextMap(map[string]string{}).ContextMap())
}
