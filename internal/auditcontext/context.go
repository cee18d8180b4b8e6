// Package auditcontext carries request metadata consumed by the audit trail.
package auditcontext

import (
	"context"
	"strings"
)

type actorKey struct{}
type requestKey struct{}

type actor struct {
	actorType string
	actorID   string
}

type requestMeta struct {
	requestID string
	ipAddress string
	userAgent string
}

func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{
		actorType: strings.TrimSpace(actorType),
		actorID:   strings.TrimSpace(actorID),
	})
}

// ActorFromContext returns empty strings when no actor was attached.
func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	a, ok := ctx.Value(actorKey{}).(actor)
	if !ok {
		return "", ""
	}
	return a.actorType, a.actorID
}

func WithRequest(ctx context.Context, requestID, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, requestKey{}, requestMeta{
		requestID: strings.TrimSpace(requestID),
		ipAddress: strings.TrimSpace(ipAddress),
		userAgent: strings.TrimSpace(userAgent),
	})
}

func RequestIDFromContext(ctx context.Context) string {
	return metaFromContext(ctx).requestID
}

func IPAddressFromContext(ctx context.Context) string {
	return metaFromContext(ctx).ipAddress
}

func UserAgentFromContext(ctx context.Context) string {
	return metaFromContext(ctx).userAgent
}

func metaFromContext(ctx context.Context) requestMeta {
	if ctx == nil {
		return requestMeta{}
	}
	meta, _ := ctx.Value(requestKey{}).(requestMeta)
	return meta
}
