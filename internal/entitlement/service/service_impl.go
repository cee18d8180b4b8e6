package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hashicorp/go-set/v2"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	"github.com/smallbiznis/zoolspeed/internal/catalog"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	companyservice "github.com/smallbiznis/zoolspeed/internal/company/service"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	"github.com/smallbiznis/zoolspeed/internal/entitlement/token"
	"github.com/smallbiznis/zoolspeed/internal/lock"
	obscontext "github.com/smallbiznis/zoolspeed/internal/observability/context"
	obslogger "github.com/smallbiznis/zoolspeed/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/zoolspeed/internal/observability/metrics"
	"github.com/smallbiznis/zoolspeed/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxTokenAttempts bounds the digest collision loop. With 256 bits of entropy a second
// attempt is already unheard of.
const maxTokenAttempts = 5

// maxSnapshotAttempts bounds how often Inspect rereads a company whose token keeps rotating.
const maxSnapshotAttempts = 3

const day = 24 * time.Hour

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Catalog     *catalog.Catalog
	Tokens      *token.Generator
	Locker      lock.Locker
	CompanyRepo companydomain.Repository
	Repo        entitlementdomain.Repository
	AuditSvc    auditdomain.Service `optional:"true"`
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	catalog     *catalog.Catalog
	tokens      *token.Generator
	locker      lock.Locker
	companyRepo companydomain.Repository
	repo        entitlementdomain.Repository
	auditSvc    auditdomain.Service
	metrics     *obsmetrics.Metrics
}

func New(p Params) entitlementdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("entitlement.service"),
		clock:       p.Clock,
		catalog:     p.Catalog,
		tokens:      p.Tokens,
		locker:      p.Locker,
		companyRepo: p.CompanyRepo,
		repo:        p.Repo,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
	}
}

// Generate issues a new token for a company and replaces its entitlement set. The previous
// token stops resolving as soon as the transaction commits.
func (s *Service) Generate(ctx context.Context, req entitlementdomain.GenerateRequest) (*entitlementdomain.GenerateResult, error) {
	companyID, err := parseCompanyID(req.CompanyID)
	if err != nil {
		return nil, err
	}
	ctx = obscontext.WithCompanyID(ctx, companyID.String())
	if req.DurationDays < 0 {
		return nil, entitlementdomain.ErrInvalidDuration
	}
	features, err := s.normalizeFeatures(req.Features)
	if err != nil {
		s.metrics.RecordTokenGenerated(ctx, "invalid")
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, companyID.String())
	if err != nil {
		return nil, entitlementdomain.Storage(err)
	}
	defer unlock()

	now := s.clock.Now()
	var expiry *time.Time
	if req.DurationDays > 0 {
		exp := now.Add(time.Duration(req.DurationDays) * day)
		expiry = &exp
	}

	var plain string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company, err := s.companyRepo.FindByIDForUpdate(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if company == nil {
			return entitlementdomain.ErrCompanyNotFound
		}

		var digest string
		plain, digest, err = s.issueToken(ctx, tx)
		if err != nil {
			return err
		}

		if err := s.companyRepo.UpdateToken(ctx, tx, companyID, digest, expiry, now); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return entitlementdomain.ErrTokenSpaceExhausted
			}
			return err
		}
		return s.repo.ReplaceEntitlements(ctx, tx, companyID, features, now)
	})
	if err != nil {
		s.metrics.RecordTokenGenerated(ctx, outcome(err))
		obslogger.WithContext(ctx, s.log).Warn("token generation failed",
			zap.Error(err),
		)
		return nil, entitlementdomain.Storage(err)
	}

	s.metrics.RecordTokenGenerated(ctx, "success")
	obslogger.WithContext(ctx, s.log).Info("token generated",
		zap.Int("features", len(features)),
		zap.Int("days", req.DurationDays),
	)
	s.audit(ctx, companyID, "entitlement.token_generated", map[string]any{
		"features": features,
		"days":     req.DurationDays,
		"expiry":   expiry,
	})

	return &entitlementdomain.GenerateResult{Token: plain, Expiry: expiry}, nil
}

// Resolve looks a company up by its plain token. Malformed input and unknown tokens share
// one response.
func (s *Service) Resolve(ctx context.Context, plain string) (*entitlementdomain.Resolution, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return nil, entitlementdomain.ErrInvalidToken
	}
	if !token.WellFormed(plain) {
		s.metrics.RecordTokenResolved(ctx, "not_found", "")
		return nil, entitlementdomain.ErrTokenNotFound
	}

	digest, err := s.tokens.Digest(plain)
	if err != nil {
		return nil, entitlementdomain.ErrInvalidToken
	}

	company, err := s.companyRepo.FindByTokenDigest(ctx, s.db, digest)
	if err != nil {
		s.metrics.RecordTokenResolved(ctx, "error", "")
		return nil, entitlementdomain.Storage(err)
	}
	if company == nil {
		s.metrics.RecordTokenResolved(ctx, "not_found", "")
		return nil, entitlementdomain.ErrTokenNotFound
	}

	res, err := s.resolution(ctx, company)
	if err != nil {
		s.metrics.RecordTokenResolved(ctx, "error", "")
		return nil, err
	}

	// A Generate committing between the two reads would pair this token with the next
	// feature set. The digest must still be live once the rows are in hand.
	current, err := s.companyRepo.FindByTokenDigest(ctx, s.db, digest)
	if err != nil {
		s.metrics.RecordTokenResolved(ctx, "error", "")
		return nil, entitlementdomain.Storage(err)
	}
	if current == nil || current.ID != company.ID {
		s.metrics.RecordTokenResolved(ctx, "not_found", "")
		return nil, entitlementdomain.ErrTokenNotFound
	}

	s.metrics.RecordTokenResolved(ctx, "success", string(res.Status.State))
	return res, nil
}

// Inspect builds the same view as Resolve for an operator who already knows the company.
func (s *Service) Inspect(ctx context.Context, id string) (*entitlementdomain.Resolution, error) {
	companyID, err := parseCompanyID(id)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return nil, entitlementdomain.Storage(err)
	}
	if company == nil {
		return nil, entitlementdomain.ErrCompanyNotFound
	}

	for attempt := 1; attempt <= maxSnapshotAttempts; attempt++ {
		res, err := s.resolution(ctx, company)
		if err != nil {
			return nil, err
		}
		current, err := s.companyRepo.FindByID(ctx, s.db, companyID)
		if err != nil {
			return nil, entitlementdomain.Storage(err)
		}
		if current == nil {
			return nil, entitlementdomain.ErrCompanyNotFound
		}
		if sameToken(company, current) {
			return res, nil
		}
		company = current
	}
	return nil, entitlementdomain.Storage(errors.New("token rotated while reading entitlements"))
}

// SetFeature flips one key without reading or rewriting the rest of the set.
func (s *Service) SetFeature(ctx context.Context, req entitlementdomain.SetFeatureRequest) error {
	companyID, err := parseCompanyID(req.CompanyID)
	if err != nil {
		return err
	}
	ctx = obscontext.WithCompanyID(ctx, companyID.String())
	key := strings.TrimSpace(req.FeatureKey)
	if !s.catalog.Has(key) {
		return entitlementdomain.ErrUnknownFeature
	}

	company, err := s.companyRepo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return entitlementdomain.Storage(err)
	}
	if company == nil {
		return entitlementdomain.ErrCompanyNotFound
	}

	if err := s.repo.SetEntitlement(ctx, s.db, companyID, key, req.Enabled, s.clock.Now()); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("feature toggle failed",
			zap.String("feature_key", key),
			zap.Error(err),
		)
		return entitlementdomain.Storage(err)
	}

	s.metrics.RecordFeatureToggle(ctx, key, req.Enabled)
	obslogger.WithContext(ctx, s.log).Info("feature toggled",
		zap.String("feature_key", key),
		zap.Bool("enabled", req.Enabled),
	)
	s.audit(ctx, companyID, "entitlement.feature_toggled", map[string]any{
		"feature_key": key,
		"enabled":     req.Enabled,
	})
	return nil
}

// SetCompanyActive freezes or unfreezes a company. Token, expiry and entitlements are left alone.
func (s *Service) SetCompanyActive(ctx context.Context, req entitlementdomain.SetCompanyActiveRequest) error {
	companyID, err := parseCompanyID(req.CompanyID)
	if err != nil {
		return err
	}
	ctx = obscontext.WithCompanyID(ctx, companyID.String())

	company, err := s.companyRepo.FindByID(ctx, s.db, companyID)
	if err != nil {
		return entitlementdomain.Storage(err)
	}
	if company == nil {
		return entitlementdomain.ErrCompanyNotFound
	}
	if company.IsActive == req.IsActive {
		return nil
	}

	if err := s.companyRepo.UpdateActive(ctx, s.db, companyID, req.IsActive, s.clock.Now()); err != nil {
		return entitlementdomain.Storage(err)
	}

	s.metrics.RecordCompanyStatus(ctx, req.IsActive)
	obslogger.WithContext(ctx, s.log).Info("company status changed",
		zap.Bool("is_active", req.IsActive),
	)
	action := "company.frozen"
	if req.IsActive {
		action = "company.unfrozen"
	}
	s.audit(ctx, companyID, action, nil)
	return nil
}

func (s *Service) resolution(ctx context.Context, company *companydomain.Company) (*entitlementdomain.Resolution, error) {
	enabled, err := s.repo.GetEntitlements(ctx, s.db, company.ID)
	if err != nil {
		return nil, entitlementdomain.Storage(err)
	}

	entitlements := make(map[string]bool, s.catalog.Len())
	for _, key := range s.catalog.Keys() {
		entitlements[key] = false
	}
	for _, key := range enabled {
		// rows for keys dropped from the catalog are ignored
		if _, ok := entitlements[key]; ok {
			entitlements[key] = true
		}
	}

	return &entitlementdomain.Resolution{
		Company:      companydomain.ToResponse(company),
		Entitlements: entitlements,
		Status:       entitlementdomain.Evaluate(company.TokenExpiry, s.clock.Now()),
	}, nil
}

func sameToken(a, b *companydomain.Company) bool {
	if a.TokenDigest == nil || b.TokenDigest == nil {
		return a.TokenDigest == nil && b.TokenDigest == nil
	}
	return *a.TokenDigest == *b.TokenDigest
}

func (s *Service) issueToken(ctx context.Context, tx *gorm.DB) (string, string, error) {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		plain, digest, err := s.tokens.New()
		if err != nil {
			return "", "", fmt.Errorf("generate token: %w", err)
		}
		taken, err := s.companyRepo.ExistsTokenDigest(ctx, tx, digest)
		if err != nil {
			return "", "", err
		}
		if !taken {
			return plain, digest, nil
		}
		obslogger.WithContext(ctx, s.log).Warn("token digest collision", zap.Int("attempt", attempt))
	}
	return "", "", entitlementdomain.ErrTokenSpaceExhausted
}

func (s *Service) normalizeFeatures(features []string) ([]string, error) {
	keys := set.New[string](len(features))
	for _, key := range features {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		keys.Insert(key)
	}
	if keys.Empty() {
		return nil, entitlementdomain.ErrInvalidFeatureSet
	}

	out := keys.Slice()
	slices.Sort(out)
	if unknown := s.catalog.Unknown(out); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %s", entitlementdomain.ErrInvalidFeatureSet, strings.Join(unknown, ", "))
	}
	return out, nil
}

func (s *Service) audit(ctx context.Context, companyID snowflake.ID, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := companyID.String()
	if err := s.auditSvc.AuditLog(ctx, &companyID, "", nil, action, "company", &targetID, metadata); err != nil {
		obslogger.WithContext(ctx, s.log).Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func parseCompanyID(value string) (snowflake.ID, error) {
	id, err := companyservice.ParseID(value)
	if err != nil {
		return 0, entitlementdomain.ErrInvalidCompanyID
	}
	return id, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, entitlementdomain.ErrCompanyNotFound):
		return "not_found"
	case entitlementdomain.IsValidationError(err):
		return "invalid"
	default:
		return "error"
	}
}
