package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// deleteProject handles DELETE /lookup-projects/:id. A project still linked
// to a Prompt-Studio project is not deleted (spec §6): the request is
// refused with 400 and the linked Prompt-Studio project ids, and the link
// must be removed first, explicitly, by its owner.
func (s *Server) deleteProject(c *gin.Context) {
	projectID := c.Param("id")

	if err := s.links.DeleteLookupProject(c.Request.Context(), projectID); err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}

	if err := s.projects.Delete(c.Request.Context(), projectID); err != nil {
		status, body := MapError(err)
		c.JSON(status, body)
		return
	}

	c.Status(http.StatusNoContent)
}
