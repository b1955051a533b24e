package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stillmind/stillmind/internal/identity"
)

const identityKey = "httpapi.identity"

// requireAuth gates a route group on a valid bearer access token. The
// resolved identity is placed in the request context for handlers.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ident, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header. The
// scheme comparison is case-insensitive; an empty credential is rejected.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// currentIdentity returns the identity resolved by requireAuth.
func currentIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	ident, ok := v.(*identity.Identity)
	if !ok {
		return nil
	}
	return ident
}
