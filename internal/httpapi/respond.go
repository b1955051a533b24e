package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stillmind/stillmind/internal/auth"
	"github.com/stillmind/stillmind/internal/identity"
	"github.com/stillmind/stillmind/internal/journal"
	"github.com/stillmind/stillmind/internal/mood"
	"github.com/stillmind/stillmind/internal/reframe"
	"github.com/stillmind/stillmind/internal/worry"
)

// fail maps service errors to HTTP responses. Bodies stay generic so the
// API does not leak which part of a credential or token was wrong.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
	case errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, auth.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too weak"})
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, mood.ErrNotFound),
		errors.Is(err, journal.ErrNotFound),
		errors.Is(err, worry.ErrNotFound),
		errors.Is(err, reframe.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, reframe.ErrEmptyThought),
		errors.Is(err, reframe.ErrThoughtTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathID parses the :id route parameter. On failure it writes the 404
// itself and reports false.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
