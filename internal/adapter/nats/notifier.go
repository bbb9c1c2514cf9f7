package nats

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
	"github.com/google/uuid"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type notifier struct {
	publisher MessagePublisher
	subject   string
	log       logger.Logger
}

// NewNotifier publishes user-facing error toasts on subject. Publish failures
// are logged only: a notification must never fail a cart operation. Toasts are
// sent even when the request context is already cancelled.
func NewNotifier(publisher MessagePublisher, subject string, log logger.Logger) repository.Notifier {
	return &notifier{publisher: publisher, subject: subject, log: log}
}

func (n *notifier) Error(ctx context.Context, message string) {
	msg := Notification{ID: uuid.NewString(), Level: "error", Message: message, Timestamp: time.Now().UTC()}
	if err := n.publisher.Publish(context.WithoutCancel(ctx), n.subject, msg); err != nil {
		n.log.Errorf("Failed to publish notification %q: %v", message, err)
	}
}

type CartChangedEvent struct {
	EventID    string             `json:"eventId"`
	OccurredAt time.Time          `json:"occurredAt"`
	Items      entity.Cart        `json:"items"`
	Summary    entity.CartSummary `json:"summary"`
}

type cartEventPublisher struct {
	publisher MessagePublisher
	subject   string
	now       func() time.Time
}

func NewCartEventPublisher(publisher MessagePublisher, subject string) repository.CartEventPublisher {
	return &cartEventPublisher{publisher: publisher, subject: subject, now: time.Now}
}

func (p *cartEventPublisher) PublishCartChanged(ctx context.Context, cart entity.Cart) error {
	if cart == nil {
		cart = entity.NewCart()
	}
	event := CartChangedEvent{
		EventID:    uuid.NewString(),
		OccurredAt: p.now().UTC(),
		Items:      cart,
		Summary:    cart.Summary(),
	}
	return p.publisher.Publish(context.WithoutCancel(ctx), p.subject, event)
}
