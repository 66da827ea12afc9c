package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMessageHeaderCarrier(t *testing.T) {
	c := &MessageHeaderCarrier{}
	c.Set("traceparent", "00-abc")
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent"}, c.Keys())

	c.Headers["x-count"] = int32(3)
	assert.Equal(t, "", c.Get("x-count"))
}

func TestInjectHeadersRoundTrip(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	p := propagation.TraceContext{}
	original := amqp.Table{"x-origin": "api"}
	headers := InjectHeaders(parent, p, original)

	assert.Equal(t, "api", headers["x-origin"])
	assert.NotContains(t, original, "traceparent")

	got := trace.SpanContextFromContext(p.Extract(context.Background(), &MessageHeaderCarrier{Headers: headers}))
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}
