package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/worry"
)

const dateLayout = "2006-01-02"

type createWorryRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=200"`
	Description   *string `json:"description" binding:"omitempty,max=2000"`
	ScheduledDate string  `json:"scheduled_date" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required,clock"`
	EndTime       string  `json:"end_time" binding:"required,clock"`
}

type updateWorryRequest struct {
	Title         *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string `json:"description" binding:"omitempty,max=2000"`
	ScheduledDate *string `json:"scheduled_date"`
	StartTime     *string `json:"start_time" binding:"omitempty,clock"`
	EndTime       *string `json:"end_time" binding:"omitempty,clock"`
	Completed     *bool   `json:"is_completed"`
}

func (s *Server) createWorry(c *gin.Context) {
	var req createWorryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid worry window payload")
		return
	}

	date, err := time.Parse(dateLayout, req.ScheduledDate)
	if err != nil {
		badRequest(c, "scheduled_date must be YYYY-MM-DD")
		return
	}

	window, err := s.worries.Create(c.Request.Context(), currentIdentity(c).ID,
		req.Title, req.Description, date, req.StartTime, req.EndTime)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, window)
}

func (s *Server) listWorries(c *gin.Context) {
	windows, err := s.worries.List(c.Request.Context(), currentIdentity(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

func (s *Server) getWorry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	window, err := s.worries.Get(c.Request.Context(), currentIdentity(c).ID, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, window)
}

func (s *Server) updateWorry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateWorryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid worry window payload")
		return
	}

	update := worry.Update{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Completed:   req.Completed,
	}
	if req.ScheduledDate != nil {
		date, err := time.Parse(dateLayout, *req.ScheduledDate)
		if err != nil {
			badRequest(c, "scheduled_date must be YYYY-MM-DD")
			return
		}
		update.ScheduledDate = &date
	}

	window, err := s.worries.Update(c.Request.Context(), currentIdentity(c).ID, id, update)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, window)
}

func (s *Server) deleteWorry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.worries.Delete(c.Request.Context(), currentIdentity(c).ID, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
