package ports

import (
	"context"

	"github.com/layer-3/sigil/core"
)

// EventPublisher publishes events to notify other services
type EventPublisher interface {
	PublishVerified(ctx context.Context, event core.Verified) error
}
