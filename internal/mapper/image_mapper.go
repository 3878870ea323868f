package mapper

import (
	"tigaraksa-chat-be/internal/entity"
	"tigaraksa-chat-be/internal/model"
)

type ImageMapper struct{}

func NewImageMapper() *ImageMapper {
	return &ImageMapper{}
}

func (m *ImageMapper) ToEntity(e *model.VisionImage, similarity float64) *entity.ImageCandidate {
	if e == nil {
		return nil
	}

	var clipScore float64
	if e.ClipScore != nil {
		clipScore = *e.ClipScore
	}

	return &entity.ImageCandidate{
		Id:         e.Id,
		URL:        e.ImageURL,
		Prompt:     e.Prompt,
		Caption:    e.Caption,
		OcrText:    e.OcrText,
		ClipScore:  clipScore,
		Similarity: similarity,
	}
}

func (m *ImageMapper) ToEntities(images []*model.VisionImage, similarity float64) []*entity.ImageCandidate {
	entities := make([]*entity.ImageCandidate, len(images))
	for i, e := range images {
		entities[i] = m.ToEntity(e, similarity)
	}
	return entities
}

func (m *ImageMapper) ScoredToEntities(rows []*model.ScoredVisionImage) []*entity.ImageCandidate {
	entities := make([]*entity.ImageCandidate, len(rows))
	for i, r := range rows {
		entities[i] = m.ToEntity(&r.VisionImage, r.Similarity)
	}
	return entities
}
