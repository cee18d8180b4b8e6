package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists entitlement sets. Writes touch rows, never the whole map.
type Repository interface {
	// GetEntitlements returns the enabled keys of a company.
	GetEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]string, error)
	// ReplaceEntitlements drops every row of the company and inserts keys as enabled.
	ReplaceEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID, keys []string, now time.Time) error
	// SetEntitlement upserts the single (company, key) row.
	SetEntitlement(ctx context.Context, db *gorm.DB, companyID snowflake.ID, key string, enabled bool, now time.Time) error
}
