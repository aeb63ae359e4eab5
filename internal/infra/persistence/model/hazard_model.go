package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// HazardModel is the GORM-specific struct for the 'hazards' table.
// The unique index on source_id is what makes upserts idempotent.
type HazardModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Kind        string            `gorm:"type:varchar(16);not null;index"`
	Severity    int               `gorm:"not null;check:severity >= 1 AND severity <= 5"`
	Longitude   float64           `gorm:"type:decimal(11,8);not null"`
	Latitude    float64           `gorm:"type:decimal(10,8);not null"`
	Description string            `gorm:"type:text"`
	SourceID    string            `gorm:"type:varchar(128);not null;uniqueIndex"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (HazardModel) TableName() string {
	return "hazards"
}
