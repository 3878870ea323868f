// Command debug_rag prints the relevance verdict of every retrieved candidate
// for a set of queries, so thresholds can be tuned against the live catalogue.
//
//	go run ./cmd/debug_rag "sawah di pagi hari" "pasar"
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"tigaraksa-chat-be/internal/bootstrap"
	"tigaraksa-chat-be/internal/config"
	"tigaraksa-chat-be/internal/repository/implementation"
	"tigaraksa-chat-be/pkg/database"
	"tigaraksa-chat-be/pkg/rag/relevance"

	"github.com/fatih/color"
)

const retrieveK = 10

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	embedder := bootstrap.NewEmbedder(cfg)
	repo := implementation.NewImageRepository(db)
	validator := relevance.NewValidator(relevance.Config{
		Threshold:         cfg.Rag.SimilarityThreshold,
		OverrideThreshold: cfg.Rag.OverrideThreshold,
		DisplayLimit:      cfg.Rag.DisplayLimit,
		OverFetchFactor:   cfg.Rag.OverFetchFactor,
	})

	queries := os.Args[1:]
	if len(queries) == 0 {
		queries = []string{"sawah", "pasar tradisional", "anak sekolah", "jalan"}
	}

	ctx := context.Background()

	color.Cyan("RAG RETRIEVAL DIAGNOSTIC (model=%s, τ=%.2f, override=%.2f)",
		embedder.Model(), cfg.Rag.SimilarityThreshold, cfg.Rag.OverrideThreshold)

	for _, query := range queries {
		fmt.Println(strings.Repeat("=", 80))
		color.Yellow("Query: %q (main term %q)", query, relevance.MainTerm(query))

		vector, err := embedder.Embed(ctx, query)
		if err != nil {
			color.Red("  embed failed: %v", err)
			continue
		}

		candidates, err := repo.SearchSimilar(ctx, vector, retrieveK)
		if err != nil {
			color.Red("  retrieval failed: %v", err)
			continue
		}
		if len(candidates) == 0 {
			color.Red("  no candidates (are embeddings indexed?)")
			continue
		}

		passed := 0
		for i, verdict := range validator.Explain(query, candidates) {
			line := fmt.Sprintf("  %2d. [%.3f] #%d %-20s %s",
				i+1, verdict.Candidate.Similarity, verdict.Candidate.Id, verdict.Reason, truncate(verdict.Candidate.Prompt, 60))
			if verdict.Passed {
				passed++
				color.Green("PASS%s", line)
			} else {
				color.Red("FAIL%s", line)
			}
		}

		shown := len(validator.Validate(query, candidates))
		fmt.Printf("  passed %d/%d, displayed %d\n", passed, len(candidates), shown)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
