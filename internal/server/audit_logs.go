package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/zoolspeed/internal/audit/domain"
	"github.com/smallbiznis/zoolspeed/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	CompanyID string `form:"company_id"`
	Action    string `form:"action"`
	ActorID   string `form:"actor_id"`
	StartAt   string `form:"start_at"`
	EndAt     string `form:"end_at"`
	From      string `form:"from"`
	To        string `form:"to"`
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	window, field, err := parseTimeWindow(
		[]string{query.StartAt, query.From},
		[]string{query.EndAt, query.To},
	)
	if err != nil {
		AbortWithError(c, newValidationError(field, err.Error(), "invalid "+field))
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		CompanyID: strings.TrimSpace(query.CompanyID),
		Action:    strings.TrimSpace(query.Action),
		ActorID:   strings.TrimSpace(query.ActorID),
		StartAt:   window.start,
		EndAt:     window.end,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.AuditLogs, "page_info": resp.PageInfo})
}
