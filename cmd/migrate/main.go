package main

import (
	"log"
	"os"

	"tigaraksa-chat-be/internal/model"
	"tigaraksa-chat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Migrating visionimages (pgvector extension, table, HNSW index)...")

	if err := database.Migrate(db, &model.VisionImage{}); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	var missing int64
	db.Model(&model.VisionImage{}).Where("embedding IS NULL").Count(&missing)
	if missing > 0 {
		log.Printf("Info: %d images have no embedding yet; start the server with RAG_INDEX_ON_STARTUP=true to index them", missing)
	}

	log.Println("✅ Success: Database migration completed.")
}
