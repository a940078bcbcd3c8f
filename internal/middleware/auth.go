package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/identity"
	"github.com/flicky/e-games-api/internal/model"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func AuthMiddleware(tokens *identity.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, apperror.Unauthorized("Missing bearer token."))
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil {
			abort(c, apperror.Unauthorized("Invalid or expired token."))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abort(c, apperror.Unauthorized("Invalid token subject."))
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != model.RoleAdmin {
			abort(c, apperror.Forbidden("Administrator role required."))
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	uid, _ := id.(uuid.UUID)
	return uid
}

func GetUserRole(c *gin.Context) string {
	role, _ := c.Get(userRoleKey)
	r, _ := role.(string)
	return r
}

func abort(c *gin.Context, err *apperror.Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, err.Response())
}
