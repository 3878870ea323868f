package service

import (
	"context"
	"encoding/json"
	"testing"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageService_SearchRejectsBlankQuery(t *testing.T) {
	svc := NewImageService(newFakeImageRepo(), &recordingPublisher{}, logger.NewNopLogger())
	_, err := svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestImageService_SearchUsesAllTermsAndCaches(t *testing.T) {
	repo := newFakeImageRepo()
	repo.keywordResult = []*entity.ImageCandidate{{Id: 1, Prompt: "ayam jago", URL: "u", Similarity: 0.9}}
	svc := NewImageService(repo, &recordingPublisher{}, logger.NewNopLogger())

	res, err := svc.Search(context.Background(), "ayam jago")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "u", res.Results[0].ImageURL)
	assert.Equal(t, []string{"ayam", "jago"}, repo.lastTerms)

	_, err = svc.Search(context.Background(), "ayam jago")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.keywordCalls)
}

func TestImageService_SearchExpandsCategory(t *testing.T) {
	repo := newFakeImageRepo()
	svc := NewImageService(repo, &recordingPublisher{}, logger.NewNopLogger())

	_, err := svc.Search(context.Background(), "Hewan Ternak")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.anyCalls)
	assert.Equal(t, 0, repo.keywordCalls)
	assert.Contains(t, repo.lastTerms, "sapi")
	assert.Contains(t, repo.lastTerms, "hewan")
}

func TestImageService_ListAllRoundsSimilarity(t *testing.T) {
	repo := newFakeImageRepo(&entity.ImageCandidate{Id: 3, URL: "u", Similarity: 0.12345})
	svc := NewImageService(repo, &recordingPublisher{}, logger.NewNopLogger())

	res, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "all_images", res.Query)
	assert.Equal(t, 0.123, res.Results[0].Similarity)
}

func TestImageService_EnqueueMissingEmbeddings(t *testing.T) {
	repo := newFakeImageRepo(&entity.ImageCandidate{Id: 1}, &entity.ImageCandidate{Id: 2})
	pub := &recordingPublisher{}
	svc := NewImageService(repo, pub, logger.NewNopLogger())

	n, err := svc.EnqueueMissingEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids := map[int64]bool{}
	for _, raw := range pub.payloads {
		var msg dto.IndexImageMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		ids[msg.ImageId] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true}, ids)

	pub.err = errBoom
	_, err = svc.EnqueueMissingEmbeddings(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
