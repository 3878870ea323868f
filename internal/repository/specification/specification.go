package specification

import (
	"gorm.io/gorm"
)

// Specification narrows, orders or pages a visionimages query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// Apply folds specs over db in order.
func Apply(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		if spec != nil {
			db = spec.Apply(db)
		}
	}
	return db
}

type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// sortableColumns are the visionimages columns OrderBy accepts.
var sortableColumns = map[string]string{
	"id":        "id",
	"prompt":    "prompt",
	"clipscore": "clipscore",
	"image_url": "image_url",
}

// OrderColumn resolves a caller-supplied sort field to a column name.
func OrderColumn(field string) (string, bool) {
	column, ok := sortableColumns[field]
	return column, ok
}

// OrderBy sorts on one whitelisted column; unknown fields leave the query unsorted.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	column, ok := OrderColumn(s.Field)
	if !ok {
		return db
	}
	if s.Desc {
		return db.Order(column + " DESC")
	}
	return db.Order(column + " ASC")
}

// Pagination with Limit <= 0 returns every row from Offset on.
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	return db
}
