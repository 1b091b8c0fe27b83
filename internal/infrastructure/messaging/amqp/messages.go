package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"taxiledger/internal/core/entity"
	"taxiledger/internal/core/id"
	"taxiledger/internal/core/types"
	"taxiledger/internal/domain/jobs"
)

// DecodeJob parses and validates a trigger message:
// {"job": "close-month", "period": "YYYY-MM", "date": "dd/MM/yyyy"}.
func DecodeJob(data []byte) (jobs.Job, error) {
	var job jobs.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return jobs.Job{}, fmt.Errorf("decode job message: %w", err)
	}
	if err := job.Validate(); err != nil {
		return jobs.Job{}, err
	}
	return job, nil
}

// EncodeJob marshals a trigger message.
func EncodeJob(job jobs.Job) ([]byte, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(job)
}

// EventType names a ledger event.
type EventType string

const (
	EventMovementPosted   EventType = "account_movement.posted"
	EventMovementUnposted EventType = "account_movement.unposted"
)

// MovementEvent announces that an account movement changed an account balance.
// Consumers fetch the movement for details.
type MovementEvent struct {
	Type       EventType         `json:"type"`
	MovementID id.ID             `json:"movementId"`
	Account    entity.AccountRef `json:"account"`
	Amount     types.Money       `json:"amount"`
	Period     types.Period      `json:"period"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ToJSON converts the event to JSON bytes.
func (e *MovementEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
