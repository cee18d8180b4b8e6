package authorization

import (
	"context"
	"errors"

	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
)

const (
	ObjectEntitlement = "entitlement"
	ObjectCompany     = "company"
	ObjectCatalog     = "catalog"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionEntitlementGenerate = "entitlement.generate"
	ActionEntitlementResolve  = "entitlement.resolve"
	ActionEntitlementInspect  = "entitlement.inspect"
	ActionEntitlementToggle   = "entitlement.toggle"

	ActionCompanyFreeze = "company.freeze"
	ActionCompanyList   = "company.list"
	ActionCompanyCreate = "company.create"

	ActionCatalogView  = "catalog.view"
	ActionAuditLogView = "audit_log.view"
)

// Service gates admin operations ahead of the entitlement engine.
type Service interface {
	Authorize(ctx context.Context, actor authdomain.Actor, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
