package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRequiresBearerToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/admin/features", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodGet, "/admin/features", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestViewerCannotGenerate(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/admin/companies/1001/token", "viewer:guest", map[string]any{
		"days": 30, "features": []string{"hr_module"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, ts.entitlements.generateReq.CompanyID)
}

func TestListFeaturesGroupsCatalog(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/admin/features", "viewer:guest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data catalogResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Admin, 7)

	total := 0
	for _, group := range resp.Data.General {
		assert.NotEmpty(t, group.Category)
		total += len(group.Features)
	}
	assert.Equal(t, 31, total)
}

func TestListCompaniesParsesFilters(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/admin/companies?name=acme&is_active=true", "viewer:guest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", ts.companies.listReq.Name)
	require.NotNil(t, ts.companies.listReq.IsActive)
	assert.True(t, *ts.companies.listReq.IsActive)

	rec = ts.do(t, http.MethodGet, "/admin/companies?is_active=maybe", "viewer:guest", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCompany(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/admin/companies", "admin:root", map[string]any{"name": "Acme"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/companies", "admin:root", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_name", decodeError(t, rec).Errors[0].Code)
}

func TestGenerateToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/admin/companies/1001/token", "admin:root", map[string]any{
		"days": 365, "features": []string{"hr_module", "chat_module"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, entitlementdomain.GenerateRequest{
		CompanyID:    "1001",
		DurationDays: 365,
		Features:     []string{"hr_module", "chat_module"},
	}, ts.entitlements.generateReq)

	var resp struct {
		Data entitlementdomain.GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "zs_plain", resp.Data.Token)
	assert.Nil(t, resp.Data.Expiry)
}

func TestGenerateTokenRequiresDays(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/admin/companies/1001/token", "admin:root", map[string]any{"features": []string{"hr_module"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "days", decodeError(t, rec).Errors[0].Field)

	rec = ts.do(t, http.MethodPost, "/admin/companies/1001/token", "admin:root", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDomainErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		errType string
		code    string
	}{
		{entitlementdomain.ErrInvalidDuration, http.StatusBadRequest, "validation_error", "invalid_duration"},
		{fmt.Errorf("%w: unknown keys x", entitlementdomain.ErrInvalidFeatureSet), http.StatusBadRequest, "validation_error", "invalid_feature_set"},
		{entitlementdomain.ErrUnknownFeature, http.StatusBadRequest, "validation_error", "unknown_feature"},
		{entitlementdomain.ErrInvalidCompanyID, http.StatusBadRequest, "validation_error", "invalid_company_id"},
		{entitlementdomain.ErrCompanyNotFound, http.StatusNotFound, "not_found", ""},
		{entitlementdomain.ErrTokenNotFound, http.StatusNotFound, "not_found", ""},
		{entitlementdomain.Storage(assert.AnError), http.StatusServiceUnavailable, "service_unavailable", ""},
		{assert.AnError, http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ts := newTestServer(t)
			ts.entitlements.err = tt.err

			rec := ts.do(t, http.MethodPost, "/admin/companies/1001/token", "admin:root", map[string]any{
				"days": 1, "features": []string{"hr_module"},
			})
			assert.Equal(t, tt.status, rec.Code)
			payload := decodeError(t, rec)
			assert.Equal(t, tt.errType, payload.Type)
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
			if tt.code != "" {
				require.Len(t, payload.Errors, 1)
				assert.Equal(t, tt.code, payload.Errors[0].Code)
			}
		})
	}
}

func TestResolveToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/admin/tokens/resolve", "operator:ops", map[string]any{"token": "zs_abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "zs_abc", ts.entitlements.resolveToken)

	var resp struct {
		Data entitlementdomain.Resolution `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Entitlements["hr_module"])
	assert.False(t, resp.Data.Entitlements["chat_module"])
	assert.Equal(t, entitlementdomain.StateActive, resp.Data.Status.State)

	ts.entitlements.err = entitlementdomain.ErrTokenNotFound
	rec = ts.do(t, http.MethodPost, "/admin/tokens/resolve", "operator:ops", map[string]any{"token": "zs_gone"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "zs_gone")
}

func TestSetFeature(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/admin/companies/1001/features/chat_module", "admin:root", map[string]any{"enabled": false})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, entitlementdomain.SetFeatureRequest{CompanyID: "1001", FeatureKey: "chat_module", Enabled: false}, ts.entitlements.setFeature)

	rec = ts.do(t, http.MethodPut, "/admin/companies/1001/features/chat_module", "admin:root", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/admin/companies/1001/features/chat_module", "operator:ops", map[string]any{"enabled": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSetCompanyStatus(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPatch, "/admin/companies/1001/status", "admin:root", map[string]any{"is_active": false})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, entitlementdomain.SetCompanyActiveRequest{CompanyID: "1001", IsActive: false}, ts.entitlements.setActive)

	rec = ts.do(t, http.MethodPatch, "/admin/companies/1001/status", "admin:root", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInspectAndAuditLogs(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/admin/companies/1001/entitlements", "operator:ops", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/audit-logs", "admin:root", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/audit-logs?page_token=bad", "admin:root", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/audit-logs?start_at=yesterday", "admin:root", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer "))
}
