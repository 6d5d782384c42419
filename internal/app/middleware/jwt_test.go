package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

var testJWT services.InterfaceJWTService

func init() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecretKey: "middleware-test-secret", JWTExpiresIn: 1}
	InitAuthMiddleware(cfg, nil)
	testJWT = services.NewJWTService(cfg, nil)
}

// newProtectedRouter 把中间件挂在一个回显主体的处理器前
func newProtectedRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "principal missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": string(p.Kind), "id": p.ID, "substation_id": p.SubstationID})
	})
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthentication_MissingOrInvalidToken(t *testing.T) {
	r := newProtectedRouter(Authentication())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "not-a-token").Code)
}

func TestAuthentication_AcceptsAnyValidPrincipal(t *testing.T) {
	r := newProtectedRouter(Authentication())
	sid := uint(3)

	adminToken, err := testJWT.GenerateToken(1, models.RoleAdmin, nil)
	require.NoError(t, err)
	engineerToken, err := testJWT.GenerateToken(2, models.RoleEngineer, &sid)
	require.NoError(t, err)
	substationToken, err := testJWT.GenerateToken(3, models.RoleSubstation, &sid)
	require.NoError(t, err)

	for _, token := range []string{adminToken, engineerToken, substationToken} {
		assert.Equal(t, http.StatusOK, doRequest(r, token).Code)
	}
}

func TestAuthenticateAdmin_RejectsLowerRoles(t *testing.T) {
	r := newProtectedRouter(AuthenticateAdmin())
	sid := uint(3)

	adminToken, err := testJWT.GenerateToken(1, models.RoleAdmin, nil)
	require.NoError(t, err)
	engineerToken, err := testJWT.GenerateToken(2, models.RoleEngineer, &sid)
	require.NoError(t, err)
	substationToken, err := testJWT.GenerateToken(3, models.RoleSubstation, &sid)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(r, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, engineerToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, substationToken).Code)
}

func TestAuthenticateEngineer_OnlyEngineerPasses(t *testing.T) {
	r := newProtectedRouter(AuthenticateEngineer())
	sid := uint(3)

	adminToken, err := testJWT.GenerateToken(1, models.RoleAdmin, nil)
	require.NoError(t, err)
	engineerToken, err := testJWT.GenerateToken(2, models.RoleEngineer, &sid)
	require.NoError(t, err)
	substationToken, err := testJWT.GenerateToken(3, models.RoleSubstation, &sid)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(r, adminToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, engineerToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, substationToken).Code)
}

func TestPrincipalFromClaims_CarriesSubstationScope(t *testing.T) {
	r := newProtectedRouter(Authentication())
	sid := uint(7)

	token, err := testJWT.GenerateToken(42, models.RoleEngineer, &sid)
	require.NoError(t, err)

	w := doRequest(r, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"engineer"`)
	assert.Contains(t, w.Body.String(), `"id":42`)
	assert.Contains(t, w.Body.String(), `"substation_id":7`)
}
