package events

import (
	"time"

	"github.com/google/uuid"
)

const ChatTurnCompletedType = "CHAT_TURN_COMPLETED"

// ChatTurn summarises one answered turn. Message text is deliberately absent:
// conversations are not persisted anywhere.
type ChatTurn struct {
	TurnId     uuid.UUID
	Mode       string
	Persona    string
	Outcome    string
	Candidates int
	Duration   time.Duration
}

// NewChatTurnCompleted keys the event by turn id.
func NewChatTurnCompleted(turn ChatTurn) Envelope {
	return Envelope{
		Id:   turn.TurnId,
		Type: ChatTurnCompletedType,
		Data: map[string]interface{}{
			"turn_id":     turn.TurnId.String(),
			"mode":        turn.Mode,
			"persona":     turn.Persona,
			"outcome":     turn.Outcome,
			"candidates":  turn.Candidates,
			"duration_ms": turn.Duration.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
}
