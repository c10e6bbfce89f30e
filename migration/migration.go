package migration

import (
	"strings"

	"github.com/alpacahq/gofilings/models"
	"github.com/jinzhu/gorm"
	gormigrate "gopkg.in/gormigrate.v1"
)

// Migration contains the incremental migrations that keep the database
// schema in step with the model structs.
func Migration(db *gorm.DB) *gormigrate.Gormigrate {
	return gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// initial schema
		{
			ID: "202508181200",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.CorporateActionRow{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.SourceRow{}).Error; err != nil {
					return err
				}
				if err := tx.AutoMigrate(&models.ConsiderationLegRow{}).Error; err != nil {
					return err
				}
				return tx.AutoMigrate(&models.ProvenanceRow{}).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return nil
			},
		},
		// updated_at maintained by the database so concurrent writers
		// cannot race it backwards
		{
			ID: "202508181201",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`
					CREATE OR REPLACE FUNCTION set_updated_at()
					RETURNS TRIGGER AS $$
					BEGIN
						NEW.updated_at = NOW();
						RETURN NEW;
					END;
					$$ LANGUAGE plpgsql`).Error; err != nil {
					return err
				}
				if err := tx.Exec(`
					DROP TRIGGER IF EXISTS trg_corporate_actions_updated_at ON corporate_actions`).Error; err != nil {
					return err
				}
				return tx.Exec(`
					CREATE TRIGGER trg_corporate_actions_updated_at
					BEFORE UPDATE ON corporate_actions
					FOR EACH ROW EXECUTE PROCEDURE set_updated_at()`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP TRIGGER IF EXISTS trg_corporate_actions_updated_at ON corporate_actions`).Error
			},
		},
		// citation natural keys: one index per key shape, so a row keyed
		// by reference id and a row keyed by url never collide
		{
			ID: "202508181202",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`
					CREATE UNIQUE INDEX IF NOT EXISTS uq_cas_event_source_refid
					ON corporate_action_sources (event_id, source, reference_id)
					WHERE reference_id IS NOT NULL`).Error; err != nil {
					return err
				}
				return tx.Exec(`
					CREATE UNIQUE INDEX IF NOT EXISTS uq_cas_event_source_url
					ON corporate_action_sources (event_id, source, source_url)
					WHERE reference_id IS NULL`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec(`DROP INDEX IF EXISTS uq_cas_event_source_refid`).Error; err != nil {
					return err
				}
				return tx.Exec(`DROP INDEX IF EXISTS uq_cas_event_source_url`).Error
			},
		},
		{
			ID: "202508251030",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_ca_issuer_cik
					ON corporate_actions (issuer_cik)`).Error; err != nil {
					return err
				}
				return tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_ca_action_type_status
					ON corporate_actions (action_type, status)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec(`DROP INDEX IF EXISTS idx_ca_issuer_cik`).Error; err != nil {
					return err
				}
				return tx.Exec(`DROP INDEX IF EXISTS idx_ca_action_type_status`).Error
			},
		},
		// supersedes_event_id shipped after the first extraction runs;
		// tolerate databases that already carry it
		{
			ID: "202508271615",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`ALTER TABLE corporate_actions ADD COLUMN supersedes_event_id TEXT`).Error; err != nil && !strings.Contains(err.Error(), "already exists") {
					return err
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Model(&models.CorporateActionRow{}).DropColumn("supersedes_event_id").Error; err != nil && !strings.Contains(err.Error(), "does not exist") {
					return err
				}
				return nil
			},
		},
	})
}
