package notifier

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

type logNotifier struct {
	log logger.Logger
}

// NewLogNotifier writes user-facing messages to the structured log. Used
// when no toast channel is configured.
func NewLogNotifier(log logger.Logger) repository.Notifier {
	return &logNotifier{log: log.With("channel", "notification")}
}

func (n *logNotifier) Error(_ context.Context, message string) {
	n.log.Warnf("user notification: %s", message)
}
