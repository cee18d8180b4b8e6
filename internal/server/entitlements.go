package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
)

type generateTokenRequest struct {
	Days     *int     `json:"days"`
	Features []string `json:"features"`
}

type resolveTokenRequest struct {
	Token string `json:"token"`
}

type setFeatureRequest struct {
	Enabled *bool `json:"enabled"`
}

// GenerateToken issues a fresh token. The plain value appears in this response only.
func (s *Server) GenerateToken(c *gin.Context) {
	var req generateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Days == nil {
		AbortWithError(c, newValidationError("days", "required", "days is required"))
		return
	}

	res, err := s.entitlementSvc.Generate(c.Request.Context(), entitlementdomain.GenerateRequest{
		CompanyID:    strings.TrimSpace(c.Param("id")),
		DurationDays: *req.Days,
		Features:     req.Features,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (s *Server) InspectEntitlements(c *gin.Context) {
	res, err := s.entitlementSvc.Inspect(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

// ResolveToken takes the token in the body so it never appears in access logs.
func (s *Server) ResolveToken(c *gin.Context) {
	var req resolveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.entitlementSvc.Resolve(c.Request.Context(), req.Token)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) SetFeature(c *gin.Context) {
	var req setFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Enabled == nil {
		AbortWithError(c, newValidationError("enabled", "required", "enabled is required"))
		return
	}

	err := s.entitlementSvc.SetFeature(c.Request.Context(), entitlementdomain.SetFeatureRequest{
		CompanyID:  strings.TrimSpace(c.Param("id")),
		FeatureKey: strings.TrimSpace(c.Param("key")),
		Enabled:    *req.Enabled,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
