package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// normalizeEmail trims and lower-cases an address so lookups and the unique
// constraint agree.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeName maps a blank name to nil.
func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// storeError translates repository failures into domain errors.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errorutil.ErrNotFound
	case errors.Is(err, repository.ErrEmailTaken):
		return errorutil.ErrEmailExists
	case errors.Is(err, repository.ErrLastAdmin):
		return errorutil.ErrLastAdmin
	}
	var de *errorutil.DomainError
	if errors.As(err, &de) {
		return err
	}
	return errorutil.NewInternalError(err)
}

// hashError maps a hasher rejection of the plaintext to a validation failure.
func hashError(err error) error {
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return errorutil.NewValidationError(map[string]any{"password": "passwordMaxLength"})
	case errors.Is(err, auth.ErrEmptyPassword):
		return errorutil.NewValidationError(map[string]any{"password": "fieldRequired"})
	}
	return errorutil.NewInternalError(err)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name)
}

// endSpan marks the span failed for unexpected errors only.
func endSpan(span trace.Span, err error) {
	if err != nil {
		if de := errorutil.ToDomainError(err); de.HTTPStatus >= 500 {
			span.RecordError(err)
			span.SetStatus(codes.Error, de.Code)
		}
	}
	span.End()
}

// publisher emits lifecycle events. Handler failures are logged and never
// fail the operation that produced the event.
type publisher struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	p.metrics.RecordEvent(string(event.Type))
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}
