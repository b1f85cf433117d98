package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/comitanigiacomo/thirtyday/internal/core/services"
	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	ContextSessionKey   = "session"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// resolved session for handlers.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
			return
		}

		session, err := tokenService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// OptionalAuth resolves the session when a valid token is present and
// otherwise lets the request through anonymously. A token that cannot be
// checked fails the request rather than downgrading it to anonymous.
func OptionalAuth(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			session, err := tokenService.ValidateToken(c.Request.Context(), tokenString)
			switch {
			case err == nil:
				c.Set(ContextSessionKey, session)
			case errors.Is(err, services.ErrTokenCheckUnavailable):
				abortTokenError(c, err)
				return
			}
		}
		c.Next()
	}
}

func abortTokenError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrTokenCheckUnavailable) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
}

func bearerToken(c *gin.Context) (string, bool) {
	fields := strings.Fields(c.GetHeader(authorizationHeader))
	if len(fields) != 2 || fields[0] != authorizationType {
		return "", false
	}
	return fields[1], true
}

func GetSession(c *gin.Context) (domain.Session, bool) {
	v, exists := c.Get(ContextSessionKey)
	if !exists {
		return domain.Session{}, false
	}
	session, ok := v.(domain.Session)
	return session, ok
}
