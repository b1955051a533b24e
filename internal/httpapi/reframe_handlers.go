package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createReframeRequest struct {
	OriginalThought string     `json:"original_thought" binding:"required"`
	JournalEntryID  *uuid.UUID `json:"journal_entry_id"`
}

func (s *Server) createReframe(c *gin.Context) {
	var req createReframeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid reframe payload")
		return
	}

	result, err := s.reframes.Reframe(c.Request.Context(), currentIdentity(c).ID, req.JournalEntryID, req.OriginalThought)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) listReframes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reframes, err := s.reframes.History(c.Request.Context(), currentIdentity(c).ID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reframes)
}
