package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selimk/learnhub/internal/app/auth"
	"github.com/selimk/learnhub/internal/app/models"
)

type fakeResolver struct {
	principals map[string]*auth.Principal
}

func (f *fakeResolver) Resolve(_ context.Context, credential string) (*auth.Principal, error) {
	if principal, ok := f.principals[credential]; ok {
		return principal, nil
	}
	return nil, auth.ErrAbsent
}

func newGateRouter(resolver auth.Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	gate := NewAccessGate(resolver, "sessionId")

	router := gin.New()

	instructor := router.Group("/api/v1/instructor")
	instructor.Use(gate.RequireCredential(LoginPath))
	instructor.GET("/courses",
		gate.RequireRoles(models.RoleInstructor),
		func(c *gin.Context) {
			principal, _ := PrincipalFromContext(c)
			c.JSON(http.StatusOK, gin.H{"ownerId": principal.ID})
		})

	admin := router.Group("/api/v1/admin")
	admin.Use(gate.RequireCredential(AdminLoginPath))
	admin.GET("/instructor-applications",
		gate.RequireRoles(models.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}

func doGateRequest(t *testing.T, router *gin.Engine, path, sessionID string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sessionId", Value: sessionID})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestGateAbsentCredentialRedirectsToLogin(t *testing.T) {
	router := newGateRouter(&fakeResolver{})

	w, body := doGateRequest(t, router, "/api/v1/instructor/courses", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, body["redirect"])
}

func TestGateAdminPrefixRedirectsToAdminLogin(t *testing.T) {
	router := newGateRouter(&fakeResolver{})

	w, body := doGateRequest(t, router, "/api/v1/admin/instructor-applications", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, AdminLoginPath, body["redirect"])
}

func TestGateUnderPrivilegedRedirectsToDashboardNotLogin(t *testing.T) {
	resolver := &fakeResolver{principals: map[string]*auth.Principal{
		"sess-learner": {ID: 3, Role: models.RoleUser},
	}}
	router := newGateRouter(resolver)

	// A valid learner session hitting an instructor-only route is not
	// treated as logged out.
	w, body := doGateRequest(t, router, "/api/v1/instructor/courses", "sess-learner")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, DashboardPath, body["redirect"])
}

func TestGateUnknownSessionOnFineLayerRedirectsToLogin(t *testing.T) {
	router := newGateRouter(&fakeResolver{})

	w, body := doGateRequest(t, router, "/api/v1/instructor/courses", "sess-stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, body["redirect"])
}

func TestGateAdmitsMatchingRole(t *testing.T) {
	resolver := &fakeResolver{principals: map[string]*auth.Principal{
		"sess-instructor": {ID: 9, Role: models.RoleInstructor},
	}}
	router := newGateRouter(resolver)

	w, body := doGateRequest(t, router, "/api/v1/instructor/courses", "sess-instructor")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(9), body["ownerId"])
}

func TestGateAdmitsEveryRoleInRequiredSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &fakeResolver{principals: map[string]*auth.Principal{
		"sess-instructor": {ID: 1, Role: models.RoleInstructor},
		"sess-admin":      {ID: 2, Role: models.RoleAdmin},
		"sess-learner":    {ID: 3, Role: models.RoleUser},
	}}
	gate := NewAccessGate(resolver, "sessionId")

	router := gin.New()
	router.GET("/shared",
		gate.RequireRoles(models.RoleInstructor, models.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	for session, want := range map[string]int{
		"sess-instructor": http.StatusOK,
		"sess-admin":      http.StatusOK,
		"sess-learner":    http.StatusForbidden,
	} {
		w, _ := doGateRequest(t, router, "/shared", session)
		assert.Equal(t, want, w.Code, "session %s", session)
	}
}
