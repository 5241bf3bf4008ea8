package organizations

import (
	"github.com/gin-gonic/gin"

	"github.com/meetvo/backend/internal/middleware"
	"github.com/meetvo/backend/internal/models"
	"github.com/meetvo/backend/pkg/response"
)

// contextOrganization is the gin context key for the resolved organization.
const contextOrganization = "organization"

// RequireOwner returns a middleware that resolves :organization_id, verifies
// the authenticated user owns it, and stores it in the context for handlers.
func RequireOwner(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			response.Forbidden(c, "user not authenticated")
			c.Abort()
			return
		}
		orgID, ok := parseID(c)
		if !ok {
			c.Abort()
			return
		}
		org, err := repo.GetByID(c.Request.Context(), orgID)
		if err != nil {
			response.Internal(c, "internal server error")
			c.Abort()
			return
		}
		if org == nil {
			response.NotFound(c, "organization not found")
			c.Abort()
			return
		}
		if org.OwnerID != userID {
			response.Forbidden(c, "not authorized for this organization")
			c.Abort()
			return
		}
		c.Set(contextOrganization, org)
		c.Next()
	}
}

// MustFromContext returns the organization stored by RequireOwner. It panics
// when called off a route that did not run the middleware.
func MustFromContext(c *gin.Context) *models.Organization {
	return c.MustGet(contextOrganization).(*models.Organization)
}
