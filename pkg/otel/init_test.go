package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(Config{OTLPEndpoint: "http://collector:4317", SampleRatio: 0.2})
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 1.0, cfg.SampleRatio)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)

	cfg = withDefaults(Config{Environment: "production", OTLPEndpoint: "https://otel.fintrack.io:4317"})
	assert.Equal(t, 0.1, cfg.SampleRatio)
	assert.Equal(t, "otel.fintrack.io:4317", cfg.OTLPEndpoint)
}
