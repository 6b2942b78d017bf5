package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/srp-api/internal/models"
	appErrors "github.com/noah-isme/srp-api/pkg/errors"
	"github.com/noah-isme/srp-api/pkg/response"
)

// RequireAdmin rejects any caller whose token does not carry the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role != models.RoleAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminOrOwner allows admins through unconditionally and students
// only when the route parameter matches their own matric number.
func RequireAdminOrOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role == models.RoleAdmin {
			c.Next()
			return
		}
		if claims.Role == models.RoleStudent && c.Param(param) == claims.Identifier {
			c.Next()
			return
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

func currentClaims(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
