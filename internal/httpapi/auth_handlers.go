package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/auth"
	"github.com/stillmind/stillmind/internal/identity"
)

const refreshCookieName = "refresh_token"

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         *identity.Identity `json:"user,omitempty"`
}

type preferencesRequest struct {
	DisplayName       *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	PreferredLanguage *string `json:"preferred_language" binding:"omitempty,oneof=en th"`
	PreferredTheme    *string `json:"preferred_theme" binding:"omitempty,oneof=light dark"`
}

// setRefreshCookie attaches the rotated refresh token as an HttpOnly
// strict-same-site cookie scoped to the whole site.
func (s *Server) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(s.auth.RefreshTTL().Seconds()), "/", "", s.cookieSecure, true)
}

func (s *Server) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", s.cookieSecure, true)
}

// refreshTokenFrom reads the refresh token from the cookie, falling back
// to a JSON body for clients that cannot hold cookies.
func refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(refreshCookieName); err == nil && token != "" {
		return token
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid registration payload")
		return
	}

	ident, pair, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusCreated, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         ident,
	})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A malformed login attempt gets the same answer as a wrong
		// password.
		s.fail(c, auth.ErrInvalidCredentials)
		return
	}

	ident, pair, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         ident,
	})
}

func (s *Server) refresh(c *gin.Context) {
	token := refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}

	pair, err := s.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), refreshTokenFrom(c)); err != nil {
		s.fail(c, err)
		return
	}
	s.clearRefreshCookie(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentIdentity(c))
}

func (s *Server) updatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid preferences payload")
		return
	}

	ident := currentIdentity(c)
	updated, err := s.identities.UpdatePreferences(c.Request.Context(), ident.ID, identity.PreferencesUpdate{
		DisplayName:       req.DisplayName,
		PreferredLanguage: req.PreferredLanguage,
		PreferredTheme:    req.PreferredTheme,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
