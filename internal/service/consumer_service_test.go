package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startIndexer(t *testing.T, repo *fakeImageRepo, emb embedding.Embedder) IPublisherService {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	consumer := NewConsumerService(pubSub, IndexImageTopic, repo, emb, logger.NewNopLogger()).(*consumerService)
	consumer.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))

	return NewPublisherService(IndexImageTopic, pubSub)
}

func publishIndex(t *testing.T, pub IPublisherService, id int64) {
	t.Helper()
	payload, err := json.Marshal(dto.IndexImageMessage{ImageId: id})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))
}

func TestConsumer_IndexesImageText(t *testing.T) {
	ocr := "AYAM"
	repo := newFakeImageRepo(&entity.ImageCandidate{Id: 5, Prompt: "ayam jantan", Caption: "di kandang", OcrText: &ocr})
	emb := &stubEmbedder{}
	pub := startIndexer(t, repo, emb)

	publishIndex(t, pub, 5)

	assert.Eventually(t, func() bool { return repo.updated(5) }, time.Second, 5*time.Millisecond)
	emb.mu.Lock()
	defer emb.mu.Unlock()
	assert.Equal(t, []string{"ayam jantan. di kandang. AYAM"}, emb.texts)
}

func TestConsumer_GivesUpAfterMaxAttempts(t *testing.T) {
	repo := newFakeImageRepo(&entity.ImageCandidate{Id: 9, Prompt: "sapi"})
	emb := &stubEmbedder{err: embedding.ErrUnavailable}
	pub := startIndexer(t, repo, emb)

	publishIndex(t, pub, 9)

	assert.Eventually(t, func() bool {
		emb.mu.Lock()
		defer emb.mu.Unlock()
		return len(emb.texts) == maxIndexAttempts
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	emb.mu.Lock()
	assert.Len(t, emb.texts, maxIndexAttempts)
	emb.mu.Unlock()
	assert.False(t, repo.updated(9))
}

func TestConsumer_SkipsMalformedAndMissing(t *testing.T) {
	repo := newFakeImageRepo(&entity.ImageCandidate{Id: 1, Prompt: "kucing"})
	emb := &stubEmbedder{}
	pub := startIndexer(t, repo, emb)

	require.NoError(t, pub.Publish(context.Background(), []byte("{not json")))
	publishIndex(t, pub, 404)
	publishIndex(t, pub, 1)

	assert.Eventually(t, func() bool { return repo.updated(1) }, time.Second, 5*time.Millisecond)
	emb.mu.Lock()
	defer emb.mu.Unlock()
	assert.Equal(t, []string{"kucing"}, emb.texts)
}

func TestDocumentText(t *testing.T) {
	blank := "  "
	assert.Equal(t, "a. b", documentText(&entity.ImageCandidate{Prompt: " a ", Caption: "b", OcrText: &blank}))
	assert.Equal(t, "", documentText(&entity.ImageCandidate{}))
}
