package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate enables pgvector, creates the given tables and the ANN index on
// visionimages.embedding. Every statement is idempotent.
func Migrate(db *gorm.DB, models ...interface{}) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_visionimages_embedding_hnsw
		ON visionimages USING hnsw (embedding vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}
