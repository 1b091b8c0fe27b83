package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain"
	"taxiledger/internal/domain/accountmovement"
)

type recordedEvents struct {
	events []*MovementEvent
	err    error
}

func (r *recordedEvents) PublishMovementEvent(_ context.Context, event *MovementEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func expense(amount string) *accountmovement.AccountMovement {
	m := &accountmovement.AccountMovement{
		Account: entity.AccountRef{Kind: entity.AccountMember, ID: id.New()},
		Kind:    accountmovement.KindMonthlyExpense,
		Amount:  types.MustMoney(amount),
		Period:  types.MustPeriod("2025-03"),
	}
	m.ID = id.New()
	return m
}

func TestPublishMovementEvents(t *testing.T) {
	ctx := context.Background()
	hooks := domain.NewHookRegistry[*accountmovement.AccountMovement]()
	rec := &recordedEvents{}
	PublishMovementEvents(hooks, rec)

	m := expense("300")
	require.NoError(t, hooks.Run(ctx, domain.AfterPost, m))
	require.NoError(t, hooks.Run(ctx, domain.AfterUnpost, m))
	require.Len(t, rec.events, 2)

	posted, unposted := rec.events[0], rec.events[1]
	assert.Equal(t, EventMovementPosted, posted.Type)
	assert.Equal(t, m.ID, posted.MovementID)
	assert.Equal(t, m.Account, posted.Account)
	assert.True(t, posted.Amount.Equal(types.MustMoney("-300")), "got %s", posted.Amount)
	assert.Equal(t, EventMovementUnposted, unposted.Type)
	assert.True(t, unposted.Amount.Equal(types.MustMoney("300")), "got %s", unposted.Amount)

	data, err := posted.ToJSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "account_movement.posted", decoded["type"])
	assert.Equal(t, "2025-03", decoded["period"])
	assert.Equal(t, "-300", decoded["amount"])
}

func TestPublishMovementEventsPropagatesError(t *testing.T) {
	hooks := domain.NewHookRegistry[*accountmovement.AccountMovement]()
	rec := &recordedEvents{err: errors.New("amqp channel is closed")}
	PublishMovementEvents(hooks, rec)

	err := hooks.Run(context.Background(), domain.AfterPost, expense("10"))
	assert.EqualError(t, err, "amqp channel is closed")
}
