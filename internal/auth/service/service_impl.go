package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	"github.com/smallbiznis/zoolspeed/internal/clock"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const issuer = "zoolspeed-admin"

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	secret []byte
	log    *zap.Logger
	clock  clock.Clock
}

func New(p Params) (authdomain.Service, error) {
	secret := strings.TrimSpace(p.Cfg.AuthJWTSecret)
	if secret == "" {
		if p.Cfg.IsProduction() {
			return nil, authdomain.ErrSecretMissing
		}
		p.Log.Warn("AUTH_JWT_SECRET is empty, admin API will reject every request")
	}
	return &Service{
		secret: []byte(secret),
		log:    p.Log.Named("auth.service"),
		clock:  p.Clock,
	}, nil
}

// Issue mints an HS256 admin token. Used by the CLI to bootstrap operators.
func (s *Service) Issue(subject string, role authdomain.Role, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", authdomain.ErrSecretMissing
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", authdomain.ErrInvalidSubject
	}
	if _, err := authdomain.ParseRole(string(role)); err != nil {
		return "", err
	}

	now := s.clock.Now()
	claims := jwt.MapClaims{
		"iss":  issuer,
		"sub":  subject,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) Verify(raw string) (*authdomain.Actor, error) {
	if len(s.secret) == 0 {
		return nil, authdomain.ErrUnauthenticated
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, authdomain.ErrUnauthenticated
	}

	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.log.Debug("expired admin token")
		}
		return nil, fmt.Errorf("%w: %v", authdomain.ErrInvalidAccessToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authdomain.ErrInvalidAccessToken
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, authdomain.ErrInvalidSubject
	}
	roleClaim, _ := claims["role"].(string)
	role, err := authdomain.ParseRole(roleClaim)
	if err != nil {
		return nil, err
	}

	actor := &authdomain.Actor{Subject: subject, Role: role}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		actor.ExpiresAt = exp.Time
	}
	return actor, nil
}
