package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/mood"
)

type createMoodRequest struct {
	Mood        string   `json:"mood" binding:"required,mood"`
	StressLevel int      `json:"stress_level" binding:"min=1,max=10"`
	Note        *string  `json:"note" binding:"omitempty,max=2000"`
	Activities  []string `json:"activities" binding:"omitempty,dive,min=1,max=100"`
}

type updateMoodRequest struct {
	Mood        *string   `json:"mood" binding:"omitempty,mood"`
	StressLevel *int      `json:"stress_level" binding:"omitempty,min=1,max=10"`
	Note        *string   `json:"note" binding:"omitempty,max=2000"`
	Activities  *[]string `json:"activities" binding:"omitempty,dive,min=1,max=100"`
}

func (s *Server) createMood(c *gin.Context) {
	var req createMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid mood entry payload")
		return
	}

	ident := currentIdentity(c)
	entry, err := s.moods.Create(c.Request.Context(), ident.ID, req.Mood, req.StressLevel, req.Note, req.Activities)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) listMoods(c *gin.Context) {
	entries, err := s.moods.List(c.Request.Context(), currentIdentity(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getMood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := s.moods.Get(c.Request.Context(), currentIdentity(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) updateMood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid mood entry payload")
		return
	}

	entry, err := s.moods.Update(c.Request.Context(), currentIdentity(c).ID, id, mood.Update{
		Mood:        req.Mood,
		StressLevel: req.StressLevel,
		Note:        req.Note,
		Activities:  req.Activities,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) deleteMood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.moods.Delete(c.Request.Context(), currentIdentity(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) recentMoods(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "7"))
	entries, err := s.moods.Recent(c.Request.Context(), currentIdentity(c).ID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) moodStats(c *gin.Context) {
	stats, err := s.moods.Stats(c.Request.Context(), currentIdentity(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
