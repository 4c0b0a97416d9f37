package db

import (
	"licitaradar/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Notice{},
		&models.NoticeItem{},
		&models.NoticeDocument{},
		&models.AlertSubscription{},
		&models.SyncRun{},
	)
}
