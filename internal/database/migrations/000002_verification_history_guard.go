package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func verificationHistoryGuardMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_verification_history_guard",
		Migrate: func(tx *gorm.DB) error {
			// The verification history is append-only. Reject updates and
			// deletes at the database level so no code path can rewrite it.
			if err := tx.Exec(`
				CREATE OR REPLACE FUNCTION reject_history_mutation() RETURNS trigger AS $$
				BEGIN
					RAISE EXCEPTION 'verification_history_entries is append-only';
				END;
				$$ LANGUAGE plpgsql;
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				DROP TRIGGER IF EXISTS verification_history_append_only ON verification_history_entries;
				CREATE TRIGGER verification_history_append_only
					BEFORE UPDATE OR DELETE ON verification_history_entries
					FOR EACH ROW EXECUTE FUNCTION reject_history_mutation();
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_verification_history_partner_created
					ON verification_history_entries(partner_id, created_at);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TRIGGER IF EXISTS verification_history_append_only ON verification_history_entries").Error; err != nil {
				return err
			}
			return tx.Exec("DROP FUNCTION IF EXISTS reject_history_mutation").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, verificationHistoryGuardMigration())
}
