package port

import (
	"context"
	"fitmask/internal/core/domain"
)

type EventPublisher interface {
	// Publish fans an execution event out to all subscribed host sessions.
	// Delivery is best-effort; a dropped session never fails the invocation.
	Publish(ctx context.Context, event domain.ExecutionEvent)
}
