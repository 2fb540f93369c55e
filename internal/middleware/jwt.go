package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partyweaver/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// TokenValidator resolves a bearer token to the signed-in user.
type TokenValidator interface {
	UserFromToken(token string) (uuid.UUID, string, error)
}

// JWT returns a middleware that validates the bearer token and sets user claims in context.
func JWT(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		authenticate(c, v, parts[1])
	}
}

// JWTQuery is JWT for clients that cannot set headers (browser websockets): the token is read from ?token=.
func JWTQuery(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			response.Unauthorized(c, "missing token")
			c.Abort()
			return
		}
		authenticate(c, v, token)
	}
}

func authenticate(c *gin.Context, v TokenValidator, token string) {
	userID, email, err := v.UserFromToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		c.Abort()
		return
	}
	c.Set(ContextUserID, userID)
	c.Set(ContextUserEmail, email)
	c.Next()
}

// UserID returns the authenticated user's id. Only valid behind JWT or JWTQuery.
func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}
