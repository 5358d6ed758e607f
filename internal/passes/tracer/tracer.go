// Package tracer is the tracing seam for pass issuance.
//
// The client and service depend on the small Tracer interface below rather than
// on OpenTelemetry directly. NoopTracer is used in tests; OTelTracer adapts the
// global OpenTelemetry provider in production.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	// It must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanCreateOrGet = "passes.create_or_get"
	SpanLookup      = "passes.lookup"
	SpanCreate      = "passes.create"
)

// Attribute keys.
const (
	AttrExternalID    = "external_id_hash"
	AttrLookupOutcome = "lookup.outcome"
	AttrStatusCode    = "http.status_code"
	AttrHasEmail      = "has_email"
	AttrCreated       = "created"
	AttrShape         = "response.shape"
)
