package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/zoolspeed/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCredentials(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/admin/tokens/resolve"),
		attribute.String("token", "zs_abc"),
		attribute.String("http.request.header.authorization", "Bearer x"),
	)
	if assert.Len(t, attrs, 1) {
		assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
	}
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))

	plain := errors.New("storage_unavailable: connection refused")
	assert.Equal(t, plain, SafeError(plain))

	leaky := errors.New("lookup failed for zs_0123")
	assert.EqualError(t, SafeError(leaky), "internal error")
}

func TestSpanAttributesCarryCompanyAndRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/admin/companies/42/features/sales_module", nil)
	ctx := obscontext.WithRequestID(req.Context(), "req-1")
	ctx = obscontext.WithCompanyID(ctx, "42")
	ctx = obscontext.WithActor(ctx, "admin", "ops@zoolspeed")
	req = req.WithContext(ctx)

	attrs := SpanAttributes(req, "/admin/companies/:id/features/:key", http.StatusNoContent, 3*time.Millisecond)
	got := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		got[a.Key] = a.Value
	}

	assert.Equal(t, "42", got["zoolspeed.company_id"].AsString())
	assert.Equal(t, "admin", got["zoolspeed.actor_role"].AsString())
	assert.Equal(t, "req-1", got["request_id"].AsString())
	assert.Equal(t, int64(http.StatusNoContent), got["http.status_code"].AsInt64())
	assert.NotContains(t, got, attribute.Key("actor_id"))
}

func TestSpanAttributesSkipUnsetContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	attrs := SpanAttributes(req, "/health", http.StatusOK, time.Millisecond)
	assert.Len(t, attrs, 4)
}
