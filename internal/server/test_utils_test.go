package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	"github.com/smallbiznis/zoolspeed/internal/authorization"
	"github.com/smallbiznis/zoolspeed/internal/catalog"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	"github.com/smallbiznis/zoolspeed/internal/config"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	"github.com/smallbiznis/zoolspeed/internal/observability"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthService struct{}

func (fakeAuthService) Issue(subject string, role authdomain.Role, ttl time.Duration) (string, error) {
	return string(role) + ":" + subject, nil
}

// Verify accepts "<role>:<subject>" so tests can pick the caller's role.
func (fakeAuthService) Verify(raw string) (*authdomain.Actor, error) {
	for _, role := range []authdomain.Role{authdomain.RoleAdmin, authdomain.RoleOperator, authdomain.RoleViewer} {
		prefix := string(role) + ":"
		if len(raw) > len(prefix) && raw[:len(prefix)] == prefix {
			return &authdomain.Actor{Subject: raw[len(prefix):], Role: role}, nil
		}
	}
	return nil, authdomain.ErrInvalidAccessToken
}

// fakeAuthz lets admins do everything and everyone else only read.
type fakeAuthz struct{}

func (fakeAuthz) Authorize(_ context.Context, actor authdomain.Actor, _ string, action string) error {
	if actor.Role == authdomain.RoleAdmin {
		return nil
	}
	switch action {
	case authorization.ActionCatalogView, authorization.ActionCompanyList,
		authorization.ActionEntitlementResolve, authorization.ActionEntitlementInspect:
		return nil
	}
	return authorization.ErrForbidden
}

type fakeAudit struct{}

func (fakeAudit) AuditLog(context.Context, *snowflake.ID, string, *string, string, string, *string, map[string]any) error {
	return nil
}

func (fakeAudit) List(_ context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	if req.PageToken == "bad" {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidPageToken
	}
	return auditdomain.ListAuditLogResponse{AuditLogs: []auditdomain.AuditLog{{ID: 1, Action: "company.frozen"}}}, nil
}

type fakeCompanies struct {
	listReq companydomain.ListRequest
}

func (f *fakeCompanies) Create(_ context.Context, req companydomain.CreateRequest) (*companydomain.Response, error) {
	if req.Name == "" {
		return nil, companydomain.ErrInvalidName
	}
	return &companydomain.Response{ID: "1", Name: req.Name, IsActive: true}, nil
}

func (f *fakeCompanies) Get(context.Context, string) (*companydomain.Response, error) {
	return nil, companydomain.ErrNotFound
}

func (f *fakeCompanies) List(_ context.Context, req companydomain.ListRequest) ([]companydomain.Response, error) {
	f.listReq = req
	return []companydomain.Response{{ID: "1001", Name: "Acme Trading", IsActive: true}}, nil
}

type fakeEntitlements struct {
	generateReq  entitlementdomain.GenerateRequest
	setFeature   entitlementdomain.SetFeatureRequest
	setActive    entitlementdomain.SetCompanyActiveRequest
	err          error
	resolveToken string
}

func (f *fakeEntitlements) Generate(_ context.Context, req entitlementdomain.GenerateRequest) (*entitlementdomain.GenerateResult, error) {
	f.generateReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &entitlementdomain.GenerateResult{Token: "zs_plain"}, nil
}

func (f *fakeEntitlements) Resolve(_ context.Context, token string) (*entitlementdomain.Resolution, error) {
	f.resolveToken = token
	if f.err != nil {
		return nil, f.err
	}
	return &entitlementdomain.Resolution{
		Company:      companydomain.Response{ID: "1001", Name: "Acme Trading", IsActive: true},
		Entitlements: map[string]bool{"hr_module": true, "chat_module": false},
		Status:       entitlementdomain.Status{State: entitlementdomain.StateActive, DaysRemaining: 365},
	}, nil
}

func (f *fakeEntitlements) Inspect(ctx context.Context, _ string) (*entitlementdomain.Resolution, error) {
	return f.Resolve(ctx, "")
}

func (f *fakeEntitlements) SetFeature(_ context.Context, req entitlementdomain.SetFeatureRequest) error {
	f.setFeature = req
	return f.err
}

func (f *fakeEntitlements) SetCompanyActive(_ context.Context, req entitlementdomain.SetCompanyActiveRequest) error {
	f.setActive = req
	return f.err
}

type testServer struct {
	srv          *Server
	companies    *fakeCompanies
	entitlements *fakeEntitlements
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		companies:    &fakeCompanies{},
		entitlements: &fakeEntitlements{},
	}
	ts.srv = NewServer(ServerParams{
		Gin:            NewEngine(observability.Config{Environment: "test"}, nil),
		Cfg:            config.Config{Environment: "test"},
		Log:            zap.NewNop(),
		Authsvc:        fakeAuthService{},
		AuthzSvc:       fakeAuthz{},
		AuditSvc:       fakeAudit{},
		Catalog:        catalog.Default(),
		CompanySvc:     ts.companies,
		EntitlementSvc: ts.entitlements,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}
