package implementation

import (
	"context"
	"fmt"

	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/mapper"
	"tigaraksa-chat-be/internal/model"
	"tigaraksa-chat-be/internal/repository/contract"
	"tigaraksa-chat-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const (
	phraseHitSimilarity = 1.0
	termHitSimilarity   = 0.9
)

type ImageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ImageMapper
}

func NewImageRepository(db *gorm.DB) contract.ImageRepository {
	return &ImageRepositoryImpl{
		db:     db,
		mapper: mapper.NewImageMapper(),
	}
}

func (r *ImageRepositoryImpl) SearchSimilar(ctx context.Context, vector []float32, k int) ([]*entity.ImageCandidate, error) {
	if k <= 0 {
		k = 10
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	queryVector := pgvector.NewVector(vector)
	var rows []*model.ScoredVisionImage

	err := r.db.WithContext(ctx).
		Model(&model.VisionImage{}).
		Select("visionimages.*, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return r.mapper.ScoredToEntities(rows), nil
}

func (r *ImageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImageCandidate, error) {
	var models []*model.VisionImage
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models, 0), nil
}

func (r *ImageRepositoryImpl) SearchByKeyword(ctx context.Context, phrase string, terms []string, limit int) ([]*entity.ImageCandidate, error) {
	if len(terms) == 0 {
		return []*entity.ImageCandidate{}, nil
	}

	var rows []*model.ScoredVisionImage
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.VisionImage{}),
		specification.HasImageURL{},
		specification.PromptContainsAll{Terms: terms},
		specification.PhraseFirst{Phrase: phrase},
	).
		Select("visionimages.*, CASE WHEN prompt ILIKE ? THEN ? ELSE ? END AS similarity",
			specification.LikePattern(phrase), phraseHitSimilarity, termHitSimilarity).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	if len(rows) > 0 {
		return r.mapper.ScoredToEntities(rows), nil
	}

	var models []*model.VisionImage
	err = specification.Apply(r.db.WithContext(ctx),
		specification.HasImageURL{},
		specification.PromptContains{Phrase: phrase},
		specification.OrderBy{Field: "prompt"},
		specification.Pagination{Limit: limit},
	).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("phrase search: %w", err)
	}
	return r.mapper.ToEntities(models, phraseHitSimilarity), nil
}

func (r *ImageRepositoryImpl) SearchByAnyKeyword(ctx context.Context, terms []string, limit int) ([]*entity.ImageCandidate, error) {
	if len(terms) == 0 {
		return []*entity.ImageCandidate{}, nil
	}

	var models []*model.VisionImage
	err := specification.Apply(r.db.WithContext(ctx),
		specification.HasImageURL{},
		specification.PromptContainsAny{Terms: terms},
		specification.OrderBy{Field: "prompt"},
		specification.Pagination{Limit: limit},
	).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("category search: %w", err)
	}
	return r.mapper.ToEntities(models, termHitSimilarity), nil
}

func (r *ImageRepositoryImpl) FindMissingEmbeddings(ctx context.Context, limit int) ([]*entity.ImageCandidate, error) {
	return r.FindAll(ctx,
		specification.MissingEmbedding{},
		specification.OrderBy{Field: "id"},
		specification.Pagination{Limit: limit},
	)
}

func (r *ImageRepositoryImpl) UpdateEmbedding(ctx context.Context, id int64, vector []float32) error {
	res := r.db.WithContext(ctx).
		Model(&model.VisionImage{}).
		Where("id = ?", id).
		Update("embedding", pgvector.NewVector(vector))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ImageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.VisionImage{}).Count(&count).Error
	return count, err
}
