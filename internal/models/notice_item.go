package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// NoticeItem belongs to exactly one Notice. Child rows are replaced wholesale
// on every enrichment pass, never merged row by row.
type NoticeItem struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	NoticeID uint64 `gorm:"index;not null"`

	Sequence           int             `gorm:"not null"`
	Description        string          `gorm:"type:text"`
	Quantity           decimal.Decimal `gorm:"type:numeric(18,4)"`
	UnitValue          decimal.Decimal `gorm:"type:numeric(18,4)"`
	TotalValue         decimal.Decimal `gorm:"type:numeric(18,4)"`
	ClassificationCode string          `gorm:"type:text"`

	ResultsJSON datatypes.JSON `gorm:"type:jsonb"`
	ImagesJSON  datatypes.JSON `gorm:"type:jsonb"`
}

func (NoticeItem) TableName() string {
	return "notice_items"
}
