package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RouteSubscriptionModel is the GORM-specific struct for the
// 'route_subscriptions' table. Route geometry is stored as a JSONB
// array of [longitude, latitude] pairs.
type RouteSubscriptionModel struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID            string         `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_user_route_name"`
	RouteName         string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_user_route_name"`
	Route             datatypes.JSON `gorm:"type:jsonb;not null"`
	SeverityThreshold int            `gorm:"not null;default:3;check:severity_threshold >= 1 AND severity_threshold <= 5"`
	AlertEnabled      bool           `gorm:"not null;default:true"`
	PushToken         string         `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (RouteSubscriptionModel) TableName() string {
	return "route_subscriptions"
}
