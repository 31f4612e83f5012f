package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trueamperror/rift-otc-api/internal/types"
)

// NewDatabase initializes and returns a new GORM DB connection
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&types.Deal{}); err != nil {
		return nil, err
	}

	return db, nil
}
