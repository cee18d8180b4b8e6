package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/zoolspeed/internal/audit"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	"github.com/smallbiznis/zoolspeed/internal/auth"
	authdomain "github.com/smallbiznis/zoolspeed/internal/auth/domain"
	"github.com/smallbiznis/zoolspeed/internal/authorization"
	"github.com/smallbiznis/zoolspeed/internal/catalog"
	"github.com/smallbiznis/zoolspeed/internal/company"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	"github.com/smallbiznis/zoolspeed/internal/config"
	"github.com/smallbiznis/zoolspeed/internal/entitlement"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
	"github.com/smallbiznis/zoolspeed/internal/observability"
	obslogger "github.com/smallbiznis/zoolspeed/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/zoolspeed/internal/observability/metrics"
	obstracing "github.com/smallbiznis/zoolspeed/internal/observability/tracing"
	"github.com/smallbiznis/zoolspeed/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	catalog.Module,
	authorization.Module,
	audit.Module,
	auth.Module,
	company.Module,
	entitlement.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", gin.WrapH(httpMetrics.Handler()))
	}

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	catalog        *catalog.Catalog
	companySvc     companydomain.Service
	entitlementSvc entitlementdomain.Service
	resolveLimiter *ratelimit.ResolveLimiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	Catalog        *catalog.Catalog
	CompanySvc     companydomain.Service
	EntitlementSvc entitlementdomain.Service
	ResolveLimiter *ratelimit.ResolveLimiter `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics       `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		catalog:        p.Catalog,
		companySvc:     p.CompanySvc,
		entitlementSvc: p.EntitlementSvc,
		resolveLimiter: p.ResolveLimiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AdminAuthRequired())

	// -------- Catalog --------
	admin.GET("/features", s.authorize(authorization.ObjectCatalog, authorization.ActionCatalogView), s.ListFeatures)

	// -------- Companies --------
	admin.GET("/companies", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyList), s.ListCompanies)
	admin.POST("/companies", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyCreate), s.CreateCompany)
	admin.PATCH("/companies/:id/status", s.authorize(authorization.ObjectCompany, authorization.ActionCompanyFreeze), s.SetCompanyStatus)

	// -------- Entitlements --------
	admin.POST("/companies/:id/token", s.authorize(authorization.ObjectEntitlement, authorization.ActionEntitlementGenerate), s.GenerateToken)
	admin.GET("/companies/:id/entitlements", s.authorize(authorization.ObjectEntitlement, authorization.ActionEntitlementInspect), s.InspectEntitlements)
	admin.PUT("/companies/:id/features/:key", s.authorize(authorization.ObjectEntitlement, authorization.ActionEntitlementToggle), s.SetFeature)
	admin.POST("/tokens/resolve",
		s.ResolveRateLimit(),
		s.authorize(authorization.ObjectEntitlement, authorization.ActionEntitlementResolve),
		s.ResolveToken,
	)

	// -------- Audit --------
	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
