package repository

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
)

// Notifier surfaces user-facing messages, the way a toast would in a browser.
type Notifier interface {
	Error(ctx context.Context, message string)
}

type CartEventPublisher interface {
	PublishCartChanged(ctx context.Context, cart entity.Cart) error
}
