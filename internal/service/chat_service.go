package service

import (
	"context"
	"errors"
	"iter"
	"time"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/pkg/events"
	pktNats "tigaraksa-chat-be/pkg/nats"
	"tigaraksa-chat-be/pkg/rag/persona"
	"tigaraksa-chat-be/pkg/rag/pipeline"

	"github.com/google/uuid"
)

// ErrChatDisabled means the completion provider has no credential configured.
var ErrChatDisabled = errors.New("chat is disabled: completion provider credential missing")

const (
	chatModule     = "ChatService"
	publishTimeout = 2 * time.Second
)

type IChatService interface {
	Enabled() bool
	// Chat validates the request and resolves the turn. The returned sequence
	// is single-use; fully or partially consuming it completes the turn.
	Chat(ctx context.Context, req *dto.ChatRequest) (iter.Seq[string], error)
}

type chatService struct {
	engine    *pipeline.Engine
	publisher pktNats.EventPublisher
	enabled   bool
	logger    logger.ILogger
}

func NewChatService(engine *pipeline.Engine, publisher pktNats.EventPublisher, enabled bool, log logger.ILogger) IChatService {
	if publisher == nil {
		publisher = pktNats.NoopPublisher{}
	}
	return &chatService{
		engine:    engine,
		publisher: publisher,
		enabled:   enabled,
		logger:    log,
	}
}

func (s *chatService) Enabled() bool {
	return s.enabled
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (iter.Seq[string], error) {
	if !s.enabled {
		return nil, ErrChatDisabled
	}

	p, err := persona.FromRole(req.Role)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	turnId := uuid.New()

	outcome := s.engine.Resolve(ctx, pipeline.Request{
		Persona:  p,
		UserName: req.UserName,
		Message:  req.Message,
		Selected: req.Selection(),
	})

	s.logger.Info(chatModule, "Turn resolved", map[string]interface{}{
		"turn_id": turnId.String(),
		"mode":    string(outcome.Mode()),
		"outcome": string(outcome.Kind()),
		"persona": string(p),
	})

	fragments := s.engine.Render(outcome)
	return func(yield func(string) bool) {
		defer s.publishTurn(turnId, p, outcome, start)
		for f := range fragments {
			if !yield(f) {
				return
			}
		}
	}, nil
}

func (s *chatService) publishTurn(turnId uuid.UUID, p persona.Persona, outcome pipeline.Outcome, start time.Time) {
	candidates := 0
	if images, ok := outcome.(*pipeline.Images); ok {
		candidates = len(images.Candidates)
	}

	event := events.NewChatTurnCompleted(events.ChatTurn{
		TurnId:     turnId,
		Mode:       string(outcome.Mode()),
		Persona:    string(p),
		Outcome:    string(outcome.Kind()),
		Candidates: candidates,
		Duration:   time.Since(start),
	})

	// The request context may already be gone once the stream ends.
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(chatModule, "Failed to publish turn event", map[string]interface{}{
			"turn_id": turnId.String(),
			"error":   err.Error(),
		})
	}
}
