package models

import "time"

// NoticeDocument shares the replace-all lifecycle of NoticeItem.
type NoticeDocument struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	NoticeID uint64 `gorm:"index;not null"`

	Filename    string     `gorm:"type:text"`
	TypeCode    int        `gorm:"not null;default:0"`
	URL         string     `gorm:"type:text"`
	SizeBytes   int64      `gorm:"not null;default:0"`
	PublishedAt *time.Time `gorm:"type:timestamptz"`
}

func (NoticeDocument) TableName() string {
	return "notice_documents"
}
