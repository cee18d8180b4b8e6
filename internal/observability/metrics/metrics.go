package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes entitlement instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	tokensGenerated metric.Int64Counter
	tokensResolved  metric.Int64Counter
	featureToggles  metric.Int64Counter
	companyStatus   metric.Int64Counter
	rateLimited     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("otel metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "zoolspeed"
	}
	meter := provider.Meter(name)

	tokensGenerated, err := meter.Int64Counter("zoolspeed_tokens_generated_total")
	if err != nil {
		return nil, err
	}
	tokensResolved, err := meter.Int64Counter("zoolspeed_tokens_resolved_total")
	if err != nil {
		return nil, err
	}
	featureToggles, err := meter.Int64Counter("zoolspeed_feature_toggles_total")
	if err != nil {
		return nil, err
	}
	companyStatus, err := meter.Int64Counter("zoolspeed_company_status_changes_total")
	if err != nil {
		return nil, err
	}
	rateLimited, err := meter.Int64Counter("zoolspeed_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		tokensGenerated: tokensGenerated,
		tokensResolved:  tokensResolved,
		featureToggles:  featureToggles,
		companyStatus:   companyStatus,
		rateLimited:     rateLimited,
	}, nil
}

func (m *Metrics) RecordTokenGenerated(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.tokensGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenResolved counts lookups by outcome (found, not_found, error) and status state.
func (m *Metrics) RecordTokenResolved(ctx context.Context, outcome, state string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("outcome", strings.TrimSpace(outcome)),
		attribute.String("state", strings.TrimSpace(state)),
	)
	m.tokensResolved.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordFeatureToggle(ctx context.Context, featureKey string, enabled bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("feature_key", strings.TrimSpace(featureKey)),
		attribute.Bool("enabled", enabled),
	)
	m.featureToggles.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordCompanyStatus(ctx context.Context, active bool) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Bool("enabled", active))
	m.companyStatus.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// feature_key is bounded by the catalog; company and token values never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":     {},
	"state":       {},
	"feature_key": {},
	"enabled":     {},
	"endpoint":    {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
