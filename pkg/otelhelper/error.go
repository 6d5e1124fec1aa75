package otelhelper

import (
	"errors"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span failed and tags it with the error kind.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	attrs = append(attrs, attribute.String(ErrorKindKey, string(models.KindOf(err))))

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attrs...)
}

// SetFailure marks the span failed from an unsuccessful publish result.
func SetFailure(span trace.Span, result *models.PublishResult) {
	if result == nil || result.Success {
		return
	}

	SetError(span, models.NewError(result.ErrorKind, string(result.DeliveryMethod), errors.New(result.ErrorDetail)))
}
