package notify

import (
	"context"

	"olxradar/internal/domain"
)

// Transport delivers one notification payload. Implementations own their
// framing: how the subject line and chunks map onto outbound messages.
type Transport interface {
	Name() string
	Send(ctx context.Context, payload domain.NotificationPayload) error
}
