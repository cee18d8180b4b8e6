package server

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	"github.com/smallbiznis/zoolspeed/internal/auditcontext"
	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	obscontext "github.com/smallbiznis/zoolspeed/internal/observability/context"
)

const bearerPrefix = "bearer "

// AdminAuthRequired verifies the bearer token and binds the actor to the request context.
func (s *Server) AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor, err := s.authsvc.Verify(raw)
		if err != nil || actor == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		ctx = authdomain.WithActor(ctx, *actor)
		ctx = auditcontext.WithActor(ctx, string(auditdomain.ActorTypeAdmin), actor.Subject)
		ctx = obscontext.WithActor(ctx, string(actor.Role), actor.Subject)
		if companyID := strings.TrimSpace(c.Param("id")); companyID != "" {
			ctx = obscontext.WithCompanyID(ctx, companyID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ResolveRateLimit throttles token lookups per client address.
func (s *Server) ResolveRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.resolveLimiter.Enabled() {
			c.Next()
			return
		}

		res := s.resolveLimiter.Allow(c.Request.Context(), c.ClientIP())
		if res.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
		}
		if !res.Allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "token_resolve")
			seconds := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(seconds, 1)))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
