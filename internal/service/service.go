package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/loja1/projectohibrido/internal/events"
	"github.com/loja1/projectohibrido/internal/repository"
	"github.com/loja1/projectohibrido/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/loja1/projectohibrido/internal/service")

// Deps are the collaborators shared by every service. Only Store is
// required; the rest default to slog.Default, no metrics and a no-op
// publisher.
type Deps struct {
	Store     repository.Store
	Logger    *slog.Logger
	Metrics   *telemetry.BusinessMetrics
	Publisher events.Publisher
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	return d
}

// publish sends an event after commit. Failures are logged and counted only.
func (d Deps) publish(ctx context.Context, eventType string, key int64, payload any) {
	err := d.Publisher.Publish(ctx, eventType, strconv.FormatInt(key, 10), payload)
	d.Metrics.EventPublished(eventType, err)
	if err != nil {
		d.Logger.WarnContext(ctx, "Failed to publish event",
			"type", eventType,
			"key", key,
			"error", err,
		)
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
