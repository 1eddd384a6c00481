package store

import (
	"gorm.io/gorm"
)

// Gorm is the database-backed Store used in production and in tests that
// run against in-memory sqlite.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

// NewGorm wraps a connected *gorm.DB in a Store.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
