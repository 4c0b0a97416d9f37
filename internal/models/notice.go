package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Notice is one licitação as published by the national contracting portal.
// Rows are created on first sighting and updated on every re-sync; the
// pipeline never deletes them.
type Notice struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	ControlNumber string `gorm:"type:text;uniqueIndex;not null"`
	CategoryCode  int    `gorm:"index;not null"`

	EntityName string `gorm:"type:text"`
	EntityCNPJ string `gorm:"type:varchar(14);index"`

	PublishedAt      time.Time  `gorm:"type:timestamptz;index;not null"`
	ProposalOpensAt  *time.Time `gorm:"type:timestamptz"`
	ProposalClosesAt *time.Time `gorm:"type:timestamptz;index"`

	EstimatedValue    *decimal.Decimal `gorm:"type:numeric(18,4)"`
	ObjectDescription string           `gorm:"type:text"`
	State             string           `gorm:"type:varchar(2);index"`
	Municipality      string           `gorm:"type:text"`

	// Complete means item/document enrichment has succeeded at least once;
	// the orchestrator skips re-enriching complete notices.
	Complete    bool           `gorm:"not null;default:false;index"`
	LastSeenAt  time.Time      `gorm:"type:timestamptz;not null"`
	RawJSON     datatypes.JSON `gorm:"type:jsonb"`
	HistoryJSON datatypes.JSON `gorm:"type:jsonb"`
}

func (Notice) TableName() string {
	return "notices"
}
