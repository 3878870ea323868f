package contract

import (
	"context"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/repository/specification"
)

type ImageRepository interface {
	// SearchSimilar returns the k rows nearest to vector by cosine distance,
	// with Similarity = 1 - distance, most similar first.
	SearchSimilar(ctx context.Context, vector []float32, k int) ([]*entity.ImageCandidate, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImageCandidate, error)
	// SearchByKeyword matches every term against the prompt, phrase hits first.
	// It falls back to phrase-only matching when the AND query finds nothing.
	SearchByKeyword(ctx context.Context, phrase string, terms []string, limit int) ([]*entity.ImageCandidate, error)
	// SearchByAnyKeyword matches rows whose prompt contains at least one term.
	SearchByAnyKeyword(ctx context.Context, terms []string, limit int) ([]*entity.ImageCandidate, error)
	FindMissingEmbeddings(ctx context.Context, limit int) ([]*entity.ImageCandidate, error)
	UpdateEmbedding(ctx context.Context, id int64, vector []float32) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
