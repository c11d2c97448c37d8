package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ecell-kiet/recruitment-api/internal/models"
	appErrors "github.com/ecell-kiet/recruitment-api/pkg/errors"
	"github.com/ecell-kiet/recruitment-api/pkg/response"
)

// RequireRoles allows only the listed roles through.
func RequireRoles(roles ...models.AdminRole) gin.HandlerFunc {
	allowed := make(map[models.AdminRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin allows any panel role through, rejecting candidate tokens.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleSuperAdmin, models.RoleGDProctor, models.RoleInterviewer, models.RoleScreening)
}

// roundRoles maps each recruitment round to the panel role that owns it.
// SuperAdmin can update any round.
var roundRoles = map[string]models.AdminRole{
	"screening": models.RoleScreening,
	"gd":        models.RoleGDProctor,
	"pi":        models.RoleInterviewer,
}

// RequireRoundRole gates round updates on the role owning the round named in
// the :round path parameter.
func RequireRoundRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		owner, known := roundRoles[c.Param("round")]
		if !known {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "round must be one of screening, gd, pi"))
			c.Abort()
			return
		}

		if claims.Role != models.RoleSuperAdmin && claims.Role != owner {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
