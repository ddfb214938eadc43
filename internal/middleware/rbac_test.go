package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stikom-adp/siakad-api/internal/models"
)

func rbacRequest(t *testing.T, identity *models.CurrentUser, path string, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	router := gin.New()
	router.GET("/resource/:id", func(c *gin.Context) {
		if identity != nil {
			c.Set(ContextIdentityKey, identity)
		}
		c.Next()
	}, RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(rec, req)
	return rec
}

func TestRBACAllowsMatchingRole(t *testing.T) {
	identity := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", Role: models.RoleAdmin}}
	rec := rbacRequest(t, identity, "/resource/x", string(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	identity := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", Role: models.RoleMahasiswa}}
	rec := rbacRequest(t, identity, "/resource/x", string(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRBACRejectsMissingIdentity(t *testing.T) {
	rec := rbacRequest(t, nil, "/resource/x", string(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRBACSelfMatchesUserID(t *testing.T) {
	identity := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", Role: models.RoleMahasiswa}}
	rec := rbacRequest(t, identity, "/resource/u1", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACSelfMatchesProfileID(t *testing.T) {
	identity := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", ProfileID: "m1", Role: models.RoleMahasiswa}}
	rec := rbacRequest(t, identity, "/resource/m1", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRBACSelfRejectsOtherTarget(t *testing.T) {
	identity := &models.CurrentUser{UserInfo: models.UserInfo{ID: "u1", ProfileID: "m1", Role: models.RoleMahasiswa}}
	rec := rbacRequest(t, identity, "/resource/m2", string(models.RoleAdmin), "SELF")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
