package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/repository/contract"
	"tigaraksa-chat-be/internal/repository/specification"
	"tigaraksa-chat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
)

// IndexImageTopic carries dto.IndexImageMessage payloads.
const IndexImageTopic = "INDEX_IMAGE_EMBEDDING"

const (
	indexerModule     = "Indexer"
	maxIndexAttempts  = 3
	defaultRetryDelay = 2 * time.Second
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	repo       contract.ImageRepository
	embedder   embedding.Embedder
	logger     logger.ILogger
	retryDelay time.Duration

	mu       sync.Mutex
	attempts map[string]int
}

// NewConsumerService builds the catalogue indexer. embedder should bypass the
// query cache.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.ImageRepository,
	embedder embedding.Embedder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		repo:       repo,
		embedder:   embedder,
		logger:     log,
		retryDelay: defaultRetryDelay,
		attempts:   make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexImageMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(indexerModule, "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, a retry cannot fix it
		return
	}

	fields := map[string]interface{}{"image_id": payload.ImageId}

	images, err := cs.repo.FindAll(ctx, specification.ByID{ID: payload.ImageId})
	if err != nil {
		cs.retry(ctx, msg, "Failed to load image", err, fields)
		return
	}
	if len(images) == 0 {
		cs.logger.Warn(indexerModule, "Image not found, skipping", fields)
		cs.done(msg)
		return
	}

	vector, err := cs.embedder.Embed(ctx, documentText(images[0]))
	if errors.Is(err, embedding.ErrEmptyInput) {
		cs.logger.Warn(indexerModule, "Image has no text to embed, skipping", fields)
		cs.done(msg)
		return
	}
	if err != nil {
		cs.retry(ctx, msg, "Failed to embed image text", err, fields)
		return
	}

	if err := cs.repo.UpdateEmbedding(ctx, payload.ImageId, vector); err != nil {
		cs.retry(ctx, msg, "Failed to store embedding", err, fields)
		return
	}

	cs.logger.Info(indexerModule, "Image indexed", map[string]interface{}{
		"image_id":   payload.ImageId,
		"dimensions": len(vector),
	})
	cs.done(msg)
}

// retry Nacks for redelivery until maxIndexAttempts, then gives up with an Ack.
func (cs *consumerService) retry(ctx context.Context, msg *message.Message, reason string, err error, fields map[string]interface{}) {
	cs.mu.Lock()
	cs.attempts[msg.UUID]++
	attempt := cs.attempts[msg.UUID]
	cs.mu.Unlock()

	fields["error"] = err.Error()
	fields["attempt"] = attempt

	if attempt >= maxIndexAttempts {
		cs.logger.Error(indexerModule, reason+", giving up", fields)
		cs.done(msg)
		return
	}

	cs.logger.Warn(indexerModule, reason+", will retry", fields)
	select {
	case <-time.After(cs.retryDelay):
	case <-ctx.Done():
	}
	msg.Nack()
}

func (cs *consumerService) done(msg *message.Message) {
	cs.mu.Lock()
	delete(cs.attempts, msg.UUID)
	cs.mu.Unlock()
	msg.Ack()
}

// documentText is what the catalogue is indexed on: prompt, caption and OCR text.
func documentText(img *entity.ImageCandidate) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{img.Prompt, img.Caption} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if img.OcrText != nil {
		if s := strings.TrimSpace(*img.OcrText); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}
