package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
)

func TestNotificationServiceLogsLifecycleEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "http://hooks.test/users",
	})
	svc.RegisterHandlers()

	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	require.NoError(t, dispatcher.Publish(context.Background(),
		events.NewEvent(events.EventUserCreated, 5, events.ActorFromUser(admin), events.UserAccountPayload{Email: "n@example.com"})))

	audit := logs.FilterMessage("user lifecycle event").All()
	require.Len(t, audit, 1)
	assert.Equal(t, int64(5), audit[0].ContextMap()["user_id"])
	assert.Equal(t, int64(1), audit[0].ContextMap()["actor_id"])

	assert.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestNotificationStubsSkipWhenUnconfigured(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()

	NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{}).RegisterHandlers()
	require.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventUserDeactivated, 2, nil, nil)))

	assert.Equal(t, 1, logs.FilterMessage("user lifecycle event").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
