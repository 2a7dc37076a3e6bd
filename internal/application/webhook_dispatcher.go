package application

import (
	"context"
	"errors"
	"fmt"

	"shopbridge-core/internal/domain"

	"github.com/rs/zerolog"
)

// ErrUnhandledTopic is returned by Dispatch when no registered handler
// claims the event's topic. The router acknowledges and drops these.
var ErrUnhandledTopic = errors.New("no handler registered for topic")

// TopicHandler processes webhook events for the topics it claims. Adding a
// topic means registering a handler, not editing the dispatch path.
type TopicHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes authenticated webhook events to the first
// registered handler that claims the topic.
type WebhookDispatcher struct {
	handlers []TopicHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates an empty dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch table.
func (d *WebhookDispatcher) RegisterHandler(handler TopicHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch hands the event to its topic handler. Handler failures are
// returned to the caller for audit recording; they never reach the platform.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Topic) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			return fmt.Errorf("handler failed for topic %s: %w", event.Topic, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnhandledTopic, event.Topic)
}
