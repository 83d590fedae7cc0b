package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Cookie and header names shared with the HTTP layer.
const (
	SessionCookie = "travel_session"
	CSRFCookie    = "travel_csrf"
	CSRFHeader    = "X-CSRF-Token"
)

const (
	sessionUserKey  = "session_user_id"
	sessionTokenKey = "session_token"
)

// Authenticate resolves the request's session and stores the user id
// and token in the gin context. A bearer header wins over the session
// cookie.
func (s *Service) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := requestToken(c)
		userID, err := s.Resolve(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(sessionUserKey, userID)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// SessionUserID returns the authenticated user stored by Authenticate.
func SessionUserID(c *gin.Context) (int64, bool) {
	val, ok := c.Get(sessionUserKey)
	if !ok {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// SessionToken returns the bearer token for the current request.
func SessionToken(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionTokenKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

func requestToken(c *gin.Context) string {
	if token, ok := bearerToken(c); ok {
		return token
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[len("bearer "):]), true
}
