package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/service"
)

// ErrQueueFull is returned by Publish when the backlog is at capacity.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("notification worker stopped")

// Config tunes the notification worker.
type Config struct {
	Concurrency   int
	Buffer        int
	ShutdownGrace time.Duration
}

// NotificationWorker is an events.Dispatcher that queues events and delivers
// them to the subscribed handlers on background goroutines.
type NotificationWorker struct {
	cfg      Config
	delivery events.Dispatcher
	logger   *zap.Logger

	queue chan events.Event
	wg    sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// StartNotificationWorker registers the notification handlers on delivery and
// starts the workers. Services publish to the returned worker.
func StartNotificationWorker(cfg Config, notifications *service.NotificationService, delivery events.Dispatcher, logger *zap.Logger) *NotificationWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}

	w := &NotificationWorker{
		cfg:      cfg,
		delivery: delivery,
		logger:   logger,
		queue:    make(chan events.Event, cfg.Buffer),
	}
	for i := 0; i < cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

// Publish enqueues the event without waiting for delivery.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers handler on the delivery dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.delivery.Subscribe(eventType, handler)
}

// Stop stops accepting events and drains the backlog, giving up after the
// shutdown grace period.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownGrace):
		w.logger.Warn("notification worker shutdown grace exceeded", zap.Int("pending", len(w.queue)))
	}
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.ShutdownGrace)
		if err := w.delivery.Publish(ctx, event); err != nil {
			w.logger.Warn("notification delivery failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
		cancel()
	}
}
