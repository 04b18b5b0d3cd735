package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
)

// ErrWebhookStatus is wrapped by Notifier implementations when the webhook
// answers with a non-2xx status.
var ErrWebhookStatus = errors.New("webhook returned non-success status")

// Notifier defines the driven port for delivering a message to a webhook.
type Notifier interface {
	Post(ctx context.Context, webhookURL string, msg model.Message) error
}
