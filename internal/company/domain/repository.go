package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	// FindByIDForUpdate row-locks the company on dialects that support it.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindByTokenDigest(ctx context.Context, db *gorm.DB, digest string) (*Company, error)
	ExistsTokenDigest(ctx context.Context, db *gorm.DB, digest string) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Company, error)
	UpdateToken(ctx context.Context, db *gorm.DB, id snowflake.ID, digest string, expiry *time.Time, issuedAt time.Time) error
	UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, updatedAt time.Time) error
}

type ListFilter struct {
	Name     string
	IsActive *bool
}
