package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is a tenant of the ERP. The entitlement engine only mutates IsActive,
// TokenDigest and TokenExpiry; everything else belongs to onboarding.
type Company struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	Name             string       `gorm:"type:text;not null"`
	CommercialNumber *string      `gorm:"column:commercial_number;type:text"`
	VATNumber        *string      `gorm:"column:vat_number;type:text"`
	Email            *string      `gorm:"type:text"`
	Phone            *string      `gorm:"type:text"`
	Address          *string      `gorm:"type:text"`
	IsActive         bool         `gorm:"column:is_active;not null;default:true"`
	TokenDigest      *string      `gorm:"column:token_digest;type:varchar(64);uniqueIndex:ux_companies_token_digest"`
	TokenExpiry      *time.Time   `gorm:"column:token_expiry"`
	TokenIssuedAt    *time.Time   `gorm:"column:token_issued_at"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Company) TableName() string { return "companies" }

// HasToken reports whether a subscription token was ever issued.
func (c *Company) HasToken() bool {
	return c.TokenDigest != nil && *c.TokenDigest != ""
}
