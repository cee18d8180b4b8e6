package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

var errRedacted = errors.New("internal error")

// attribute keys that may carry credentials never reach a span.
var blockedAttributeKeys = []string{"token", "authorization", "secret", "password"}

// ExtractContext pulls the remote span context out of carrier.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// SafeAttributes removes attributes whose key looks like it holds a credential.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(string(attr.Key))
		blocked := false
		for _, needle := range blockedAttributeKeys {
			if strings.Contains(key, needle) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError keeps the error class but drops messages that could echo request input.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range blockedAttributeKeys {
		if strings.Contains(msg, needle+"=") || strings.Contains(msg, "zs_") {
			return errRedacted
		}
	}
	return err
}
