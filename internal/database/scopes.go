package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/assessment-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Ordered sorts sibling rows by their dense position.
func Ordered(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("id ASC")
}
