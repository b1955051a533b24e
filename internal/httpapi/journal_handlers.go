package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/journal"
)

type createJournalRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	Content string `json:"content" binding:"required,min=1,max=10000"`
}

type updateJournalRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string `json:"content" binding:"omitempty,min=1,max=10000"`
}

func (s *Server) createJournal(c *gin.Context) {
	var req createJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid entry payload")
		return
	}

	entry, err := s.journals.Create(c.Request.Context(), currentIdentity(c).ID, req.Title, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listJournal(c *gin.Context) {
	entries, err := s.journals.List(c.Request.Context(), currentIdentity(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := s.journals.Get(c.Request.Context(), currentIdentity(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) updateJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid entry payload")
		return
	}

	entry, err := s.journals.Update(c.Request.Context(), currentIdentity(c).ID, id, journal.Update{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteJournal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.journals.Delete(c.Request.Context(), currentIdentity(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
