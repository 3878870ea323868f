package specification

import (
	"strings"

	"gorm.io/gorm"
)

// HasImageURL keeps rows that can be displayed.
type HasImageURL struct{}

func (s HasImageURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("image_url IS NOT NULL AND image_url <> ''")
}

// MissingEmbedding selects rows the indexer has not processed yet.
type MissingEmbedding struct{}

func (s MissingEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NULL")
}

// PromptContainsAll requires every term to occur in the prompt (case-insensitive).
type PromptContainsAll struct {
	Terms []string
}

func (s PromptContainsAll) Apply(db *gorm.DB) *gorm.DB {
	for _, term := range s.Terms {
		db = db.Where("prompt ILIKE ?", LikePattern(term))
	}
	return db
}

// PromptContainsAny requires at least one term to occur in the prompt.
type PromptContainsAny struct {
	Terms []string
}

func (s PromptContainsAny) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Terms) == 0 {
		return db
	}
	clauses := make([]string, len(s.Terms))
	args := make([]interface{}, len(s.Terms))
	for i, term := range s.Terms {
		clauses[i] = "prompt ILIKE ?"
		args[i] = LikePattern(term)
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// PromptContains matches the whole phrase anywhere in the prompt.
type PromptContains struct {
	Phrase string
}

func (s PromptContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("prompt ILIKE ?", LikePattern(s.Phrase))
}

// PhraseFirst orders exact phrase hits before the rest, then by prompt.
type PhraseFirst struct {
	Phrase string
}

func (s PhraseFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(gorm.Expr("CASE WHEN prompt ILIKE ? THEN 1 ELSE 2 END, prompt", LikePattern(s.Phrase)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern escapes LIKE wildcards in term and wraps it for a contains match.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
