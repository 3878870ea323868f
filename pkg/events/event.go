package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is anything published on the events.<type> subjects. ID doubles as the
// JetStream message id, so a retried publish is stored once.
type Event interface {
	ID() string
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Envelope is the only Event implementation; constructors per event type fill it.
type Envelope struct {
	Id         uuid.UUID
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e Envelope) ID() string { return e.Id.String() }
func (e Envelope) EventType() string { return e.Type }
func (e Envelope) Timestamp() time.Time { return e.OccurredAt }

func (e Envelope) Payload() map[string]interface{} {
	if e.Data == nil {
		return map[string]interface{}{}
	}
	return e.Data
}

type wireEvent struct {
	Id         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// Encode is the message body consumers receive.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(wireEvent{
		Id:         e.ID(),
		Type:       e.EventType(),
		OccurredAt: e.Timestamp().UTC(),
		Data:       e.Payload(),
	})
}
