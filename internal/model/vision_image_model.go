package model

import (
	"github.com/pgvector/pgvector-go"
)

// VisionImage is one row of the image catalogue. Embedding is nil until the
// indexer has processed the row.
type VisionImage struct {
	Id        int64            `gorm:"primaryKey;autoIncrement"`
	ImageURL  string           `gorm:"column:image_url;type:text"`
	Prompt    string           `gorm:"type:text"`
	Caption   string           `gorm:"type:text"`
	OcrText   *string          `gorm:"column:ocr_text;type:text"`
	ClipScore *float64         `gorm:"column:clipscore"`
	Embedding *pgvector.Vector `gorm:"type:vector(384)"` // all-MiniLM-L6-v2
}

func (VisionImage) TableName() string {
	return "visionimages"
}

// ScoredVisionImage is a row joined with its cosine similarity to a query.
type ScoredVisionImage struct {
	VisionImage
	Similarity float64
}
