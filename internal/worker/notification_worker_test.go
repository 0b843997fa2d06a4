package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/service"
)

func TestWorkerDeliversQueuedEvents(t *testing.T) {
	delivery := events.NewInMemoryDispatcher()
	w := StartNotificationWorker(Config{Concurrency: 2, Buffer: 16}, nil, delivery, nil)

	var delivered atomic.Int32
	w.Subscribe(events.EventUserCreated, func(context.Context, events.Event) error {
		delivered.Add(1)
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Publish(context.Background(), events.NewEvent(events.EventUserCreated, int64(i+1), nil, nil)))
	}
	w.Stop()

	assert.Equal(t, int32(5), delivered.Load())
	assert.ErrorIs(t, w.Publish(context.Background(), events.NewEvent(events.EventUserCreated, 9, nil, nil)), ErrStopped)
	w.Stop()
}

func TestWorkerRejectsWhenBacklogFull(t *testing.T) {
	delivery := events.NewInMemoryDispatcher()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	delivery.Subscribe(events.EventUserDeleted, func(context.Context, events.Event) error {
		started <- struct{}{}
		<-release
		return nil
	})
	w := StartNotificationWorker(Config{Concurrency: 1, Buffer: 1, ShutdownGrace: time.Second}, nil, delivery, nil)

	require.NoError(t, w.Publish(context.Background(), events.NewEvent(events.EventUserDeleted, 1, nil, nil)))
	<-started
	require.NoError(t, w.Publish(context.Background(), events.NewEvent(events.EventUserDeleted, 2, nil, nil)))
	assert.ErrorIs(t, w.Publish(context.Background(), events.NewEvent(events.EventUserDeleted, 3, nil, nil)), ErrQueueFull)

	close(release)
	w.Stop()
}

func TestWorkerRunsNotificationHandlers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	delivery := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(delivery, logger, config.NotificationConfig{})

	w := StartNotificationWorker(Config{}, notifications, delivery, logger)
	require.NoError(t, w.Publish(context.Background(), events.NewEvent(events.EventUserActivated, 7, nil, nil)))
	w.Stop()

	entries := logs.FilterMessage("user lifecycle event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])
}
