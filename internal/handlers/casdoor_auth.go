package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/raccoongang/edx-extended-api/internal/config"
)

const orgScopeKey = "org_scope"

// CasdoorAuthMiddleware authenticates requests against the identity provider
// and gates access to administrators of the configured organizations.
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	siteOrgs []string
	config   config.CasdoorConfig
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, siteOrgs []string) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		siteOrgs: siteOrgs,
		config:   cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authorization header missing",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>" format
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.User.Id)
		c.Set("username", claims.User.Name)
		c.Set("user_org", claims.User.Owner)
		c.Set("is_admin", claims.User.IsAdmin)

		c.Next()
	}
}

// RequireOrgAdminMiddleware admits only administrators whose organization is
// one of the configured site organizations, and scopes the request to those
// organizations. With no configured orgs, any administrator is admitted with
// an unrestricted scope.
func (cam *CasdoorAuthMiddleware) RequireOrgAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "administrator access required",
			})
			c.Abort()
			return
		}

		if len(cam.siteOrgs) > 0 {
			org := c.GetString("user_org")
			member := false
			for _, allowed := range cam.siteOrgs {
				if org == allowed {
					member = true
					break
				}
			}
			if !member {
				c.JSON(http.StatusForbidden, gin.H{
					"error":   "forbidden",
					"message": "organization not permitted",
				})
				c.Abort()
				return
			}
		}

		c.Set(orgScopeKey, cam.siteOrgs)
		c.Next()
	}
}

// GetOrgScope returns the organization scope established by the auth gate.
// Nil means no restriction.
func GetOrgScope(c *gin.Context) []string {
	if value, exists := c.Get(orgScopeKey); exists {
		if orgs, ok := value.([]string); ok {
			return orgs
		}
	}
	return nil
}
