package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// projectAuditStats handles GET /lookup-projects/:id/audit-stats: the
// success-rate/confidence/timing rollup for one project's audit history.
func (s *Server) projectAuditStats(c *gin.Context) {
	stats, err := s.audit.ProjectStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// executionAuditTrail handles GET /lookup-executions/:execution_id/audit:
// every audit row written under one execution_id, across however many
// Look-Up projects the originating call fanned out to.
func (s *Server) executionAuditTrail(c *gin.Context) {
	rows, err := s.audit.ListByExecutionID(c.Request.Context(), c.Param("execution_id"))
	if err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no audit records for execution_id", ErrorType: "not_found"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
