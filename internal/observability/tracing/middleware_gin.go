package tracing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/zoolspeed/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "zoolspeed/admin-http"

// GinMiddleware opens a server span per request. The company and the acting role are
// read back after the handler chain, since admin auth runs inside it. Request bodies are
// never recorded, so resolve calls do not leak tokens into spans.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName(c.Request.Method + " " + route)
		span.SetAttributes(SpanAttributes(c.Request, route, status, time.Since(start))...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// SpanAttributes builds the filtered attribute set for a finished request.
func SpanAttributes(req *http.Request, route string, status int, elapsed time.Duration) []attribute.KeyValue {
	ctx := req.Context()
	attrs := []attribute.KeyValue{
		attribute.String("http.method", req.Method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
		attribute.Int64("http.server_duration_ms", elapsed.Milliseconds()),
	}
	if id := obscontext.RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if id := obscontext.CompanyIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String("zoolspeed.company_id", id))
	}
	if role, _ := obscontext.ActorFromContext(ctx); role != "" {
		attrs = append(attrs, attribute.String("zoolspeed.actor_role", role))
	}
	return SafeAttributes(attrs...)
}
