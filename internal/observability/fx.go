package observability

import (
	"github.com/smallbiznis/zoolspeed/internal/observability/logger"
	"github.com/smallbiznis/zoolspeed/internal/observability/metrics"
	"github.com/smallbiznis/zoolspeed/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the logger, the tracer provider and both metric pipelines: OTel
// counters for entitlement operations and Prometheus HTTP metrics for /metrics.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.Logger,
		Config.Tracing,
		Config.Metrics,
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// the provider installs itself as the global tracer on construction
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
