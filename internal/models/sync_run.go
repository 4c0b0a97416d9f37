package models

import "time"

// SyncRun is the append-only log of one orchestrator run, written exactly
// once per run regardless of partial failures upstream.
type SyncRun struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Date string `gorm:"type:varchar(10);index;not null"`

	TotalFound       int `gorm:"not null;default:0"`
	TotalSaved       int `gorm:"not null;default:0"`
	TotalSkipped     int `gorm:"not null;default:0"`
	CategoriesOK     int `gorm:"not null;default:0"`
	CategoriesFailed int `gorm:"not null;default:0"`
	AlertsChecked    int `gorm:"not null;default:0"`
	AlertsSent       int `gorm:"not null;default:0"`

	Success      bool    `gorm:"not null;default:false"`
	ErrorMessage *string `gorm:"type:text"`
	DurationMS   int64   `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
