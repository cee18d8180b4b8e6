package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/zoolspeed/internal/company/domain"
	entitlementdomain "github.com/smallbiznis/zoolspeed/internal/entitlement/domain"
)

type listCompaniesQuery struct {
	Name     string `form:"name"`
	IsActive string `form:"is_active"`
}

type setCompanyStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

func (s *Server) ListCompanies(c *gin.Context) {
	var query listCompaniesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseActiveFilter(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", err.Error(), "invalid is_active"))
		return
	}

	items, err := s.companySvc.List(c.Request.Context(), companydomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		IsActive: isActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req companydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// SetCompanyStatus freezes or unfreezes a company.
func (s *Server) SetCompanyStatus(c *gin.Context) {
	var req setCompanyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.IsActive == nil {
		AbortWithError(c, newValidationError("is_active", "required", "is_active is required"))
		return
	}

	err := s.entitlementSvc.SetCompanyActive(c.Request.Context(), entitlementdomain.SetCompanyActiveRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		IsActive:  *req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
