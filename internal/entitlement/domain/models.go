package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Permission is one row of a company's entitlement set. Rows with IsEnabled false are
// kept after a toggle-off so the last write per key stays visible.
type Permission struct {
	CompanyID  snowflake.ID `gorm:"column:company_id;primaryKey;autoIncrement:false"`
	FeatureKey string       `gorm:"column:feature_key;type:varchar(64);primaryKey"`
	IsEnabled  bool         `gorm:"column:is_enabled;not null;default:false"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Permission) TableName() string { return "company_permissions" }
