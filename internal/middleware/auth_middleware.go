package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/selimk/learnhub/internal/app/auth"
	"github.com/selimk/learnhub/internal/app/models"
	"github.com/selimk/learnhub/internal/app/models/dto"
)

// Client-side navigation targets carried in gate rejections
const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
	DashboardPath  = "/dashboard"
)

// principalKey is the gin context key the fine gate stores the Principal under
const principalKey = "principal"

// AccessGate guards protected route groups. It enforces two layers:
// a coarse credential-presence check applied to a whole route prefix, and a
// fine per-request role check that resolves the session every time. An
// authenticated caller with the wrong role is redirected to the neutral
// dashboard, never to login.
type AccessGate struct {
	resolver   auth.Resolver
	cookieName string
}

// NewAccessGate creates a new AccessGate
func NewAccessGate(resolver auth.Resolver, cookieName string) *AccessGate {
	return &AccessGate{
		resolver:   resolver,
		cookieName: cookieName,
	}
}

// Credential extracts the opaque session credential from the request.
// The cookie is the primary carrier; a bearer header is accepted for
// non-browser clients. The value is never parsed or inspected here.
func (g *AccessGate) Credential(c *gin.Context) string {
	if cookie, err := c.Cookie(g.cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// RequireCredential is the coarse gate: it checks only that a credential is
// present, without resolving it, so protected groups reject anonymous
// requests before any handler code runs. Presence is necessary, not
// sufficient; RequireRoles remains the authorization boundary.
func (g *AccessGate) RequireCredential(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.Credential(c) == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(errorDetail, loginPath))
			return
		}
		c.Next()
	}
}

// RequireRoles is the fine gate: it resolves the session credential to a
// Principal on every request and admits it only when the role is in the
// required set. Resolution failure redirects to the role-appropriate login;
// a valid principal with an unlisted role redirects to the dashboard.
func (g *AccessGate) RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := g.resolver.Resolve(c.Request.Context(), g.Credential(c))
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewRedirectErrorResponse(errorDetail, loginPathFor(c)))
			return
		}

		allowed := false
		for _, role := range roles {
			if principal.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")
			errorDetail = errorDetail.WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewRedirectErrorResponse(errorDetail, DashboardPath))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// loginPathFor picks the login entry point matching the protected area
func loginPathFor(c *gin.Context) string {
	if strings.Contains(c.Request.URL.Path, "/admin/") {
		return AdminLoginPath
	}
	return LoginPath
}

// PrincipalFromContext returns the Principal stored by RequireRoles
func PrincipalFromContext(c *gin.Context) (*auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok
}
