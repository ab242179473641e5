// Package migrations holds the raw-SQL schema changes that AutoMigrate
// cannot express, run through gormigrate with recorded IDs.
package migrations

import (
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// migrationsList is populated by each migration file's init, in ID order.
var migrationsList []*gormigrate.Migration

// RunMigrations applies all pending migrations.
func RunMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrationsList)

	if err := m.Migrate(); err != nil {
		return err
	}
	log.Printf("Migrations ran successfully")
	return nil
}
