package amqp

import (
	"context"
	"time"

	"taxiledger/internal/domain"
	"taxiledger/internal/domain/accountmovement"
)

// EventPublisher publishes movement events.
type EventPublisher interface {
	PublishMovementEvent(ctx context.Context, event *MovementEvent) error
}

// NewMovementEvent describes the balance change of a posting or its reversal.
// Amount carries the signed delta applied to the account.
func NewMovementEvent(eventType EventType, m *accountmovement.AccountMovement) *MovementEvent {
	delta := m.Delta()
	if eventType == EventMovementUnposted {
		delta = delta.Neg()
	}
	return &MovementEvent{
		Type:       eventType,
		MovementID: m.ID,
		Account:    m.Account,
		Amount:     delta,
		Period:     m.Period,
		Timestamp:  time.Now().UTC(),
	}
}

// PublishMovementEvents registers hooks that publish an event for every posting
// and reversal. The hooks run after commit; a failed publish is logged by the
// movement service and does not undo the posting.
func PublishMovementEvents(hooks *domain.HookRegistry[*accountmovement.AccountMovement], pub EventPublisher) {
	hooks.OnAfterPost(func(ctx context.Context, m *accountmovement.AccountMovement) error {
		return pub.PublishMovementEvent(ctx, NewMovementEvent(EventMovementPosted, m))
	})
	hooks.OnAfterUnpost(func(ctx context.Context, m *accountmovement.AccountMovement) error {
		return pub.PublishMovementEvent(ctx, NewMovementEvent(EventMovementUnposted, m))
	})
}
