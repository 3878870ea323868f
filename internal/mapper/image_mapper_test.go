package mapper

import (
	"testing"

	"tigaraksa-chat-be/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestImageMapper_ToEntity(t *testing.T) {
	m := NewImageMapper()
	score := 31.5
	ocr := "AYAM"

	got := m.ToEntity(&model.VisionImage{Id: 7, ImageURL: "u", Prompt: "p", Caption: "c", OcrText: &ocr, ClipScore: &score}, 0.8)
	assert.Equal(t, int64(7), got.Id)
	assert.Equal(t, "u", got.URL)
	assert.Equal(t, 31.5, got.ClipScore)
	assert.Equal(t, 0.8, got.Similarity)
	assert.Equal(t, "AYAM", *got.OcrText)

	assert.Nil(t, m.ToEntity(nil, 0))
	assert.Zero(t, m.ToEntity(&model.VisionImage{Id: 1}, 0).ClipScore)
}

func TestImageMapper_ScoredToEntities(t *testing.T) {
	m := NewImageMapper()
	rows := []*model.ScoredVisionImage{
		{VisionImage: model.VisionImage{Id: 1}, Similarity: 0.9},
		{VisionImage: model.VisionImage{Id: 2}, Similarity: 0.4},
	}
	got := m.ScoredToEntities(rows)
	assert.Len(t, got, 2)
	assert.Equal(t, 0.4, got[1].Similarity)
}
