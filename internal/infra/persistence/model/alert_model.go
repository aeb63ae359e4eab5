package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertCooldownModel is the GORM-specific struct for the
// 'alert_cooldowns' table. One row per (user, hazard source) pair; the
// composite primary key is the uniqueness constraint the atomic
// reserve-or-reject upsert relies on.
type AlertCooldownModel struct {
	UserID         string    `gorm:"type:varchar(64);primary_key"`
	HazardSourceID string    `gorm:"type:varchar(128);primary_key"`
	LastSentAt     time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (AlertCooldownModel) TableName() string {
	return "alert_cooldowns"
}

// AlertHistoryModel is the GORM-specific struct for the 'alert_history'
// table. Append-only delivery log, failures included.
type AlertHistoryModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID         string    `gorm:"type:varchar(64);not null;index"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index"`
	HazardSourceID string    `gorm:"type:varchar(128);not null;index"`
	RiskScore      int       `gorm:"not null"`
	RiskLevel      string    `gorm:"type:varchar(16);not null"`
	Status         string    `gorm:"type:varchar(16);not null"`
	ErrorMessage   string    `gorm:"type:text"`
	SentAt         time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (AlertHistoryModel) TableName() string {
	return "alert_history"
}
