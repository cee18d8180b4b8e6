package domain

import (
	"context"
	"time"

	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Resolve(ctx context.Context, token string) (*Resolution, error)
	Inspect(ctx context.Context, companyID string) (*Resolution, error)
	SetFeature(ctx context.Context, req SetFeatureRequest) error
	SetCompanyActive(ctx context.Context, req SetCompanyActiveRequest) error
}

type GenerateRequest struct {
	CompanyID    string   `json:"company_id"`
	DurationDays int      `json:"days"`
	Features     []string `json:"features"`
}

// GenerateResult carries the only copy of the plain token.
type GenerateResult struct {
	Token  string     `json:"token"`
	Expiry *time.Time `json:"expiry"`
}

type SetFeatureRequest struct {
	CompanyID  string `json:"company_id"`
	FeatureKey string `json:"feature_key"`
	Enabled    bool   `json:"enabled"`
}

type SetCompanyActiveRequest struct {
	CompanyID string `json:"company_id"`
	IsActive  bool   `json:"is_active"`
}

// Resolution is what the admin console renders: the company, every catalog key with its
// grant, and the derived subscription status.
type Resolution struct {
	Company      companydomain.Response `json:"company"`
	Entitlements map[string]bool        `json:"entitlements"`
	Status       Status                 `json:"status"`
}
