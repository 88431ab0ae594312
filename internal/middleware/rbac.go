package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/innouni-api/internal/models"
	appErrors "github.com/noah-isme/innouni-api/pkg/errors"
	"github.com/noah-isme/innouni-api/pkg/response"
)

// RBAC admits callers whose role is in the allowed set. It must run after JWT.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "access token required"))
			c.Abort()
			return
		}
		if _, ok := allowedRoles[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StudentOnly admits roles that learn.
func StudentOnly() gin.HandlerFunc {
	return RBAC(rolesWith(func(c models.Capabilities) bool { return c.Learn })...)
}

// TeacherOrAdmin admits roles that teach.
func TeacherOrAdmin() gin.HandlerFunc {
	return RBAC(rolesWith(func(c models.Capabilities) bool { return c.Teach })...)
}

// AdminOnly admits roles that administer.
func AdminOnly() gin.HandlerFunc {
	return RBAC(rolesWith(func(c models.Capabilities) bool { return c.Administer })...)
}

// Authenticated admits any valid role.
func Authenticated() gin.HandlerFunc {
	return RBAC(models.Roles...)
}

// SelfOrAdmin requires the path parameter to name the caller unless the caller administers.
func SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "access token required"))
			c.Abort()
			return
		}
		target, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || target <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+param))
			c.Abort()
			return
		}
		if !claims.Owns(target) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "you may only access your own data"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func rolesWith(predicate func(models.Capabilities) bool) []models.UserRole {
	var roles []models.UserRole
	for _, role := range models.Roles {
		if predicate(models.CapabilitiesOf(role)) {
			roles = append(roles, role)
		}
	}
	return roles
}
