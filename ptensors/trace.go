// SPDX-License-Identifier: MIT

package ptensors

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/katalvlaran/ptens/ptensors")

// startSpan opens a span for one pack operator.
func startSpan(ctx context.Context, op string, c *core, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	base := []attribute.KeyValue{
		attribute.Int("ptens.items", c.data.Size()),
		attribute.Int("ptens.channels", c.data.Channels()),
		attribute.String("ptens.device", c.data.Device().String()),
	}
	return tracer.Start(ctx, "ptensors."+op, trace.WithAttributes(append(base, attrs...)...))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
