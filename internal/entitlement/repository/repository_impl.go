package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() entitlementdomain.Repository {
	return &repo{}
}

func (r *repo) GetEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]string, error) {
	var keys []string
	err := db.WithContext(ctx).Raw(
		`SELECT feature_key FROM company_permissions
		 WHERE company_id = ? AND is_enabled = ?
		 ORDER BY feature_key ASC`,
		companyID,
		true,
	).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repo) ReplaceEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID, keys []string, now time.Time) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM company_permissions WHERE company_id = ?`,
		companyID,
	).Error; err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	rows := make([]entitlementdomain.Permission, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, entitlementdomain.Permission{
			CompanyID:  companyID,
			FeatureKey: key,
			IsEnabled:  true,
			UpdatedAt:  now,
		})
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) SetEntitlement(ctx context.Context, db *gorm.DB, companyID snowflake.ID, key string, enabled bool, now time.Time) error {
	row := entitlementdomain.Permission{
		CompanyID:  companyID,
		FeatureKey: key,
		IsEnabled:  enabled,
		UpdatedAt:  now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}, {Name: "feature_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "updated_at"}),
	}).Create(&row).Error
}
