package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOperator:
		return RoleOperator, nil
	case RoleViewer:
		return RoleViewer, nil
	default:
		return "", ErrInvalidRole
	}
}

// Actor is the authenticated administrator behind a request.
type Actor struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}

type Service interface {
	Issue(subject string, role Role, ttl time.Duration) (string, error)
	Verify(raw string) (*Actor, error)
}

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidAccessToken = errors.New("invalid_access_token")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidSubject     = errors.New("invalid_subject")
	ErrSecretMissing      = errors.New("auth_secret_missing")
)

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
