package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"

	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// AlertSubscription is a saved filter plus delivery preference owned by one
// user. The pipeline reads it and advances LastChecked after a successful
// dispatch; everything else is mutated by the profile UI, which is out of
// this service's hands.
type AlertSubscription struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	OwnerName   string `gorm:"type:text"`
	OwnerEmail  string `gorm:"type:text;not null"`
	CompanyName string `gorm:"type:text"`

	Active    bool   `gorm:"not null;default:true;index"`
	Frequency string `gorm:"type:varchar(10);not null;default:'daily'"`

	States    datatypes.JSON `gorm:"type:jsonb"`
	CNAECodes datatypes.JSON `gorm:"type:jsonb"`
	Keywords  datatypes.JSON `gorm:"type:jsonb"`

	MinValue *decimal.Decimal `gorm:"type:numeric(18,4)"`
	MaxValue *decimal.Decimal `gorm:"type:numeric(18,4)"`

	// CheckTime is the wall-clock "HH:MM" around which the poller fires.
	CheckTime string `gorm:"type:varchar(5);not null;default:'09:00'"`

	Channel    string  `gorm:"type:varchar(10);not null;default:'email'"`
	WebhookURL *string `gorm:"type:text"`

	LastChecked *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AlertSubscription) TableName() string {
	return "alert_subscriptions"
}
