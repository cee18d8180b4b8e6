package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	"gorm.io/gorm"
)

const companyColumns = `id, name, commercial_number, vat_number, email, phone, address, is_active,
	token_digest, token_expiry, token_issued_at, created_at, updated_at`

type repo struct{}

func Provide() companydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *companydomain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (`+companyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		c.CommercialNumber,
		c.VATNumber,
		c.Email,
		c.Phone,
		c.Address,
		c.IsActive,
		c.TokenDigest,
		c.TokenExpiry,
		c.TokenIssuedAt,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	return r.findOne(ctx, db, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = ?`
	// sqlite serializes writers on its own and has no row locks.
	if db.Dialector.Name() != "sqlite" {
		query += ` FOR UPDATE`
	}
	return r.findOne(ctx, db, query, id)
}

func (r *repo) FindByTokenDigest(ctx context.Context, db *gorm.DB, digest string) (*companydomain.Company, error) {
	return r.findOne(ctx, db, `SELECT `+companyColumns+` FROM companies WHERE token_digest = ?`, digest)
}

func (r *repo) ExistsTokenDigest(ctx context.Context, db *gorm.DB, digest string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM companies WHERE token_digest = ?`,
		digest,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter companydomain.ListFilter) ([]companydomain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1 = 1`
	args := make([]any, 0, 2)

	if name := strings.TrimSpace(filter.Name); name != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(name)+"%")
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ?`
		args = append(args, *filter.IsActive)
	}
	query += ` ORDER BY name ASC, id ASC`

	var items []companydomain.Company
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateToken(ctx context.Context, db *gorm.DB, id snowflake.ID, digest string, expiry *time.Time, issuedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies
		 SET token_digest = ?, token_expiry = ?, token_issued_at = ?, updated_at = ?
		 WHERE id = ?`,
		digest,
		expiry,
		issuedAt,
		issuedAt,
		id,
	).Error
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies SET is_active = ?, updated_at = ? WHERE id = ?`,
		active,
		updatedAt,
		id,
	).Error
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*companydomain.Company, error) {
	var c companydomain.Company
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}
