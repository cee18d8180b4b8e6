package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer loads policies from casbin_rule and tops them up with the built-in roles.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor authdomain.Actor, object string, action string) error {
	subject := strings.TrimSpace(actor.Subject)
	if subject == "" {
		return ErrInvalidActor
	}
	role, err := authdomain.ParseRole(string(actor.Role))
	if err != nil {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(roleSubject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("subject", subject),
			zap.String("role", string(role)),
			zap.String("action", action),
		)
		s.auditDenied(ctx, subject, role, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) auditDenied(ctx context.Context, subject string, role authdomain.Role, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := action
	_ = s.auditSvc.AuditLog(ctx, nil, string(auditdomain.ActorTypeAdmin), &subject, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"role":   string(role),
	})
}

func roleSubject(role authdomain.Role) string {
	return "role:" + string(role)
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	// admin inherits operator, operator inherits viewer.
	groupings := [][]string{
		{roleSubject(authdomain.RoleAdmin), roleSubject(authdomain.RoleOperator)},
		{roleSubject(authdomain.RoleOperator), roleSubject(authdomain.RoleViewer)},
	}
	policies := [][]string{
		{roleSubject(authdomain.RoleViewer), ObjectCatalog, ActionCatalogView},
		{roleSubject(authdomain.RoleViewer), ObjectCompany, ActionCompanyList},

		{roleSubject(authdomain.RoleOperator), ObjectEntitlement, ActionEntitlementResolve},
		{roleSubject(authdomain.RoleOperator), ObjectEntitlement, ActionEntitlementInspect},
		{roleSubject(authdomain.RoleOperator), ObjectAuditLog, ActionAuditLogView},

		{roleSubject(authdomain.RoleAdmin), ObjectEntitlement, ActionEntitlementGenerate},
		{roleSubject(authdomain.RoleAdmin), ObjectEntitlement, ActionEntitlementToggle},
		{roleSubject(authdomain.RoleAdmin), ObjectCompany, ActionCompanyFreeze},
		{roleSubject(authdomain.RoleAdmin), ObjectCompany, ActionCompanyCreate},
	}

	for _, grouping := range groupings {
		has, err := enforcer.HasGroupingPolicy(grouping[0], grouping[1])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return err
		}
	}
	for _, policy := range policies {
		has, err := enforcer.HasPolicy(policy[0], policy[1], policy[2])
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}
