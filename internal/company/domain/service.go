package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type CreateRequest struct {
	Name             string  `json:"name"`
	CommercialNumber *string `json:"commercial_number"`
	VATNumber        *string `json:"vat_number"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
}

type ListRequest struct {
	Name     string
	IsActive *bool
}

type Response struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	CommercialNumber *string    `json:"commercial_number,omitempty"`
	VATNumber        *string    `json:"vat_number,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Address          *string    `json:"address,omitempty"`
	IsActive         bool       `json:"is_active"`
	HasToken         bool       `json:"has_token"`
	TokenExpiry      *time.Time `json:"token_expiry"`
	TokenIssuedAt    *time.Time `json:"token_issued_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ToResponse never exposes the token digest.
func ToResponse(c *Company) Response {
	return Response{
		ID:               c.ID.String(),
		Name:             c.Name,
		CommercialNumber: c.CommercialNumber,
		VATNumber:        c.VATNumber,
		Email:            c.Email,
		Phone:            c.Phone,
		Address:          c.Address,
		IsActive:         c.IsActive,
		HasToken:         c.HasToken(),
		TokenExpiry:      c.TokenExpiry,
		TokenIssuedAt:    c.TokenIssuedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

var (
	ErrInvalidID   = errors.New("invalid_company_id")
	ErrInvalidName = errors.New("invalid_name")
	ErrNotFound    = errors.New("company_not_found")
)
