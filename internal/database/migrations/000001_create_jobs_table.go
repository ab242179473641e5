package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createJobsTableMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_jobs_table",
		Migrate: func(tx *gorm.DB) error {
			// Create jobs table for the queue system
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS jobs (
					id UUID PRIMARY KEY,
					type VARCHAR(100) NOT NULL,
					payload JSONB,
					status VARCHAR(50) NOT NULL DEFAULT 'pending',
					retry_count INT NOT NULL DEFAULT 0,
					max_retries INT NOT NULL DEFAULT 3,
					retry_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
					error TEXT,
					result JSONB
				)
			`).Error; err != nil {
				return err
			}

			// The poll loop scans pending jobs oldest first; the retry
			// processor scans retry_scheduled jobs by retry_at.
			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_jobs_status_created_at ON jobs (status, created_at);
				CREATE INDEX IF NOT EXISTS idx_jobs_status_retry_at ON jobs (status, retry_at)
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS jobs").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, createJobsTableMigration())
}
