package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), DefaultConfig("storefront"))
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := DefaultConfig("storefront")
	cfg.Enabled = true
	cfg.OTLPEndpoint = "127.0.0.1:0"

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
	}
	if err := shutdown(context.Background()); err != nil {
		t.Logf("shutdown returned (expected due to unreachable endpoint): %v", err)
	}
}

func TestConfig_Sampler(t *testing.T) {
	cases := map[float64]string{
		1.0:  "AlwaysOnSampler",
		2.0:  "AlwaysOnSampler",
		0.0:  "AlwaysOffSampler",
		-1.0: "AlwaysOffSampler",
		0.25: "TraceIDRatioBased",
	}
	for rate, want := range cases {
		cfg := Config{SampleRate: rate}
		if got := cfg.Sampler().Description(); !strings.Contains(got, want) {
			t.Errorf("rate %v: sampler = %q, want it to mention %q", rate, got, want)
		}
	}
}

func TestTracer_NotNil(t *testing.T) {
	_, span := Tracer("storefront").Start(context.Background(), "op")
	defer span.End()
}
