package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	"github.com/smallbiznis/zoolspeed/internal/catalog"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	companyrepo "github.com/smallbiznis/zoolspeed/internal/company/repository"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	entitlementrepo "github.com/smallbiznis/zoolspeed/internal/entitlement/repository"
	entitlementservice "github.com/smallbiznis/zoolspeed/internal/entitlement/service"
	"github.com/smallbiznis/zoolspeed/internal/entitlement/token"
	"github.com/smallbiznis/zoolspeed/internal/lock"
	"github.com/smallbiznis/zoolspeed/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type auditEntry struct {
	companyID *snowflake.ID
	action    string
	metadata  map[string]any
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) AuditLog(_ context.Context, companyID *snowflake.ID, _ string, _ *string, action string, _ string, _ *string, metadata map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{companyID: companyID, action: action, metadata: metadata})
	return nil
}

func (f *fakeAudit) List(context.Context, auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{PageInfo: pagination.PageInfo{}}, nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.action)
	}
	return out
}

type fixture struct {
	db    *gorm.DB
	clock *clock.FakeClock
	audit *fakeAudit
	svc   entitlementdomain.Service
}

// scriptedRepo lets a test run a hook before the next entitlement read, or fail
// replacements on demand.
type scriptedRepo struct {
	entitlementdomain.Repository

	mu          sync.Mutex
	beforeRead  func()
	failReplace bool
}

func (r *scriptedRepo) GetEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]string, error) {
	r.mu.Lock()
	hook := r.beforeRead
	r.beforeRead = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return r.Repository.GetEntitlements(ctx, db, companyID)
}

func (r *scriptedRepo) ReplaceEntitlements(ctx context.Context, db *gorm.DB, companyID snowflake.ID, keys []string, now time.Time) error {
	r.mu.Lock()
	fail := r.failReplace
	r.mu.Unlock()
	if fail {
		return errors.New("disk I/O error")
	}
	return r.Repository.ReplaceEntitlements(ctx, db, companyID, keys, now)
}

func (r *scriptedRepo) onNextRead(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeRead = hook
}

func (r *scriptedRepo) setFailReplace(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failReplace = fail
}

func setup(t *testing.T, opts ...func(*entitlementservice.Params)) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:entitlement_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&companydomain.Company{}, &entitlementdomain.Permission{}))

	f := &fixture{
		db:    db,
		clock: clock.NewFakeClock(epoch),
		audit: &fakeAudit{},
	}
	tokens, err := token.NewGenerator("test-pepper")
	require.NoError(t, err)
	params := entitlementservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       f.clock,
		Catalog:     catalog.Default(),
		Tokens:      tokens,
		Locker:      lock.NewLocal(),
		CompanyRepo: companyrepo.Provide(),
		Repo:        entitlementrepo.Provide(),
		AuditSvc:    f.audit,
	}
	for _, opt := range opts {
		opt(&params)
	}
	f.svc = entitlementservice.New(params)
	return f
}

func withScriptedRepo(repo *scriptedRepo) func(*entitlementservice.Params) {
	return func(p *entitlementservice.Params) {
		repo.Repository = p.Repo
		p.Repo = repo
	}
}

func (f *fixture) company(t *testing.T, id int64, name string) string {
	t.Helper()
	err := companyrepo.Provide().Insert(context.Background(), f.db, &companydomain.Company{
		ID:        snowflake.ID(id),
		Name:      name,
		IsActive:  true,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	})
	require.NoError(t, err)
	return snowflake.ID(id).String()
}

func enabledKeys(m map[string]bool) []string {
	var out []string
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func TestGenerateResolveRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	features := []string{"receipts_module", "clients_module", "sales_module"}
	res, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{
		CompanyID:    id,
		DurationDays: 30,
		Features:     features,
	})
	require.NoError(t, err)
	assert.True(t, token.WellFormed(res.Token))
	require.NotNil(t, res.Expiry)
	assert.True(t, res.Expiry.Equal(epoch.Add(30*24*time.Hour)))

	resolved, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, resolved.Company.ID)
	assert.True(t, resolved.Company.HasToken)
	assert.Len(t, resolved.Entitlements, catalog.Default().Len())

	want := append([]string(nil), features...)
	sort.Strings(want)
	assert.Equal(t, want, enabledKeys(resolved.Entitlements))
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StateExpiringSoon, DaysRemaining: 30}, resolved.Status)

	assert.Equal(t, []string{"entitlement.token_generated"}, f.audit.actions())
	assert.NotContains(t, f.audit.entries[0].metadata, "token")
}

// Company 1001 gets hr and chat for a year, loses chat, then regenerates perpetual
// with sales only.
func TestScenarioRegenerateReplacesEverything(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	first, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{
		CompanyID:    id,
		DurationDays: 365,
		Features:     []string{"hr_module", "chat_module"},
	})
	require.NoError(t, err)

	r, err := f.svc.Resolve(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_module", "hr_module"}, enabledKeys(r.Entitlements))
	assert.Equal(t, entitlementdomain.StateActive, r.Status.State)
	assert.Equal(t, 365, r.Status.DaysRemaining)

	require.NoError(t, f.svc.SetFeature(ctx, entitlementdomain.SetFeatureRequest{
		CompanyID: id, FeatureKey: "chat_module", Enabled: false,
	}))
	r, err = f.svc.Resolve(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"hr_module"}, enabledKeys(r.Entitlements))

	second, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{
		CompanyID:    id,
		DurationDays: 0,
		Features:     []string{"sales_module"},
	})
	require.NoError(t, err)
	assert.Nil(t, second.Expiry)
	assert.NotEqual(t, first.Token, second.Token)

	_, err = f.svc.Resolve(ctx, first.Token)
	assert.ErrorIs(t, err, entitlementdomain.ErrTokenNotFound)

	r, err = f.svc.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales_module"}, enabledKeys(r.Entitlements))
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StatePerpetual}, r.Status)
}

func TestGenerateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	tests := []struct {
		name string
		req  entitlementdomain.GenerateRequest
		want error
	}{
		{"negative duration", entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: -1, Features: []string{"sales_module"}}, entitlementdomain.ErrInvalidDuration},
		{"empty features", entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 10}, entitlementdomain.ErrInvalidFeatureSet},
		{"blank features", entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 10, Features: []string{" ", ""}}, entitlementdomain.ErrInvalidFeatureSet},
		{"unknown feature", entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 10, Features: []string{"sales_module", "teleportation"}}, entitlementdomain.ErrInvalidFeatureSet},
		{"bad company id", entitlementdomain.GenerateRequest{CompanyID: "abc", DurationDays: 10, Features: []string{"sales_module"}}, entitlementdomain.ErrInvalidCompanyID},
		{"missing company", entitlementdomain.GenerateRequest{CompanyID: "999", DurationDays: 10, Features: []string{"sales_module"}}, entitlementdomain.ErrCompanyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Generate(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	r, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)
	assert.False(t, r.Company.HasToken)
	assert.Empty(t, enabledKeys(r.Entitlements))
}

func TestGenerateCollapsesDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	_, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{
		CompanyID:    id,
		DurationDays: 7,
		Features:     []string{"sales_module", " sales_module ", "clients_module", "sales_module", ""},
	})
	require.NoError(t, err)

	r, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"clients_module", "sales_module"}, enabledKeys(r.Entitlements))
}

func TestResolveUnknownAndMalformed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, entitlementdomain.ErrInvalidToken)

	for _, value := range []string{"garbage", "zs_short", token.Prefix + fmt.Sprintf("%064x", 1)} {
		_, err := f.svc.Resolve(ctx, value)
		assert.ErrorIs(t, err, entitlementdomain.ErrTokenNotFound, value)
	}
}

func TestResolveStatusFollowsClock(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	res, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 31, Features: []string{"sales_module"}})
	require.NoError(t, err)

	r, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entitlementdomain.StateActive, r.Status.State)

	f.clock.Advance(24 * time.Hour)
	r, err = f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StateExpiringSoon, DaysRemaining: 30}, r.Status)

	f.clock.Advance(30 * 24 * time.Hour)
	r, err = f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StateExpired}, r.Status)
}

func TestSetFeatureIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	req := entitlementdomain.SetFeatureRequest{CompanyID: id, FeatureKey: "vehicles_list", Enabled: true}
	require.NoError(t, f.svc.SetFeature(ctx, req))
	once, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.svc.SetFeature(ctx, req))
	twice, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, once.Entitlements, twice.Entitlements)
	assert.True(t, twice.Entitlements["vehicles_list"])

	var rows int64
	require.NoError(t, f.db.Model(&entitlementdomain.Permission{}).Where("company_id = ?", 1001).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestSetFeatureRejectsUnknownKey(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	_, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, Features: []string{"sales_module"}})
	require.NoError(t, err)
	before, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)

	err = f.svc.SetFeature(ctx, entitlementdomain.SetFeatureRequest{CompanyID: id, FeatureKey: "flying_cars", Enabled: true})
	assert.ErrorIs(t, err, entitlementdomain.ErrUnknownFeature)

	after, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before.Entitlements, after.Entitlements)

	err = f.svc.SetFeature(ctx, entitlementdomain.SetFeatureRequest{CompanyID: "555", FeatureKey: "sales_module", Enabled: true})
	assert.ErrorIs(t, err, entitlementdomain.ErrCompanyNotFound)
}

func TestConcurrentGenerateLeavesOneCompleteSet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	sets := [][]string{
		{"sales_module", "clients_module"},
		{"hr_module", "chat_module", "vehicles_list"},
		{"receipts_module"},
		{"expenses_module", "ledger_module"},
	}

	var wg sync.WaitGroup
	tokens := make([]string, len(sets))
	for i, features := range sets {
		wg.Add(1)
		go func(i int, features []string) {
			defer wg.Done()
			res, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 10, Features: features})
			if assert.NoError(t, err) {
				tokens[i] = res.Token
			}
		}(i, features)
	}
	wg.Wait()

	var live []int
	for i, tok := range tokens {
		if _, err := f.svc.Resolve(ctx, tok); err == nil {
			live = append(live, i)
		}
	}
	require.Len(t, live, 1)

	r, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)
	want := append([]string(nil), sets[live[0]]...)
	sort.Strings(want)
	assert.Equal(t, want, enabledKeys(r.Entitlements))
}

func TestSetCompanyActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	res, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 90, Features: []string{"sales_module"}})
	require.NoError(t, err)

	freeze := entitlementdomain.SetCompanyActiveRequest{CompanyID: id, IsActive: false}
	require.NoError(t, f.svc.SetCompanyActive(ctx, freeze))
	require.NoError(t, f.svc.SetCompanyActive(ctx, freeze))

	r, err := f.svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.False(t, r.Company.IsActive)
	assert.Equal(t, entitlementdomain.StateActive, r.Status.State)
	assert.True(t, r.Entitlements["sales_module"])

	require.NoError(t, f.svc.SetCompanyActive(ctx, entitlementdomain.SetCompanyActiveRequest{CompanyID: id, IsActive: true}))
	assert.Equal(t, []string{"entitlement.token_generated", "company.frozen", "company.unfrozen"}, f.audit.actions())

	err = f.svc.SetCompanyActive(ctx, entitlementdomain.SetCompanyActiveRequest{CompanyID: "404", IsActive: true})
	assert.ErrorIs(t, err, entitlementdomain.ErrCompanyNotFound)
}

func TestStorageFailureIsWrapped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.svc.Inspect(ctx, id)
	assert.ErrorIs(t, err, entitlementdomain.ErrStorageUnavailable)

	_, err = f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, Features: []string{"sales_module"}})
	assert.ErrorIs(t, err, entitlementdomain.ErrStorageUnavailable)

	err = f.svc.SetFeature(ctx, entitlementdomain.SetFeatureRequest{CompanyID: id, FeatureKey: "sales_module", Enabled: true})
	assert.ErrorIs(t, err, entitlementdomain.ErrStorageUnavailable)
}

func TestResolveRejectsTokenRotatedDuringRead(t *testing.T) {
	repo := &scriptedRepo{}
	f := setup(t, withScriptedRepo(repo))
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	first, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 30, Features: []string{"sales_module"}})
	require.NoError(t, err)

	var second *entitlementdomain.GenerateResult
	repo.onNextRead(func() {
		var genErr error
		second, genErr = f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 60, Features: []string{"hr_module"}})
		require.NoError(t, genErr)
	})

	_, err = f.svc.Resolve(ctx, first.Token)
	assert.ErrorIs(t, err, entitlementdomain.ErrTokenNotFound)

	require.NotNil(t, second)
	r, err := f.svc.Resolve(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"hr_module"}, enabledKeys(r.Entitlements))
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StateActive, DaysRemaining: 60}, r.Status)
}

func TestInspectRereadsWhenTokenRotates(t *testing.T) {
	repo := &scriptedRepo{}
	f := setup(t, withScriptedRepo(repo))
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	_, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 30, Features: []string{"sales_module"}})
	require.NoError(t, err)

	repo.onNextRead(func() {
		_, genErr := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 0, Features: []string{"chat_module"}})
		require.NoError(t, genErr)
	})

	r, err := f.svc.Inspect(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_module"}, enabledKeys(r.Entitlements))
	assert.Equal(t, entitlementdomain.StatePerpetual, r.Status.State)
}

func TestGenerateIsAllOrNothing(t *testing.T) {
	repo := &scriptedRepo{}
	f := setup(t, withScriptedRepo(repo))
	ctx := context.Background()
	id := f.company(t, 1001, "Acme Trading")

	first, err := f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 30, Features: []string{"sales_module"}})
	require.NoError(t, err)

	repo.setFailReplace(true)
	_, err = f.svc.Generate(ctx, entitlementdomain.GenerateRequest{CompanyID: id, DurationDays: 90, Features: []string{"hr_module"}})
	assert.ErrorIs(t, err, entitlementdomain.ErrStorageUnavailable)

	r, err := f.svc.Resolve(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales_module"}, enabledKeys(r.Entitlements))
	assert.Equal(t, entitlementdomain.Status{State: entitlementdomain.StateExpiringSoon, DaysRemaining: 30}, r.Status)
	assert.Equal(t, []string{"entitlement.token_generated"}, f.audit.actions())
}
