package provider

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func startSpan(ctx context.Context, ins instrument.Instrumentation, name, channel string) (context.Context, trace.Span) {
	return ins.Tracer("otp.outbound.provider").Start(ctx, name,
		trace.WithAttributes(attribute.String("otp.channel", channel)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
