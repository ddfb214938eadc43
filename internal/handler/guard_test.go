package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stikom-adp/siakad-api/internal/middleware"
	"github.com/stikom-adp/siakad-api/internal/models"
)

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, rec
}

func setIdentity(c *gin.Context, role models.UserRole, userID, profileID string) {
	c.Set(middleware.ContextIdentityKey, &models.CurrentUser{
		UserInfo: models.UserInfo{ID: userID, ProfileID: profileID, Role: role},
	})
}

func TestKHSHandlerRequiresSemester(t *testing.T) {
	h := NewNilaiHandler(nil)
	c, rec := testContext(t, http.MethodGet, "/mahasiswa/m1/khs")
	c.Params = gin.Params{{Key: "id", Value: "m1"}}

	h.KHS(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKHSHandlerForbidsOtherStudent(t *testing.T) {
	h := NewNilaiHandler(nil)
	c, rec := testContext(t, http.MethodGet, "/mahasiswa/m2/khs?semester_id=sem-1")
	c.Params = gin.Params{{Key: "id", Value: "m2"}}
	setIdentity(c, models.RoleMahasiswa, "u1", "m1")

	h.KHS(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestKRSGetMineRequiresSemester(t *testing.T) {
	h := NewKRSHandler(nil)
	c, rec := testContext(t, http.MethodGet, "/krs/me")
	setIdentity(c, models.RoleMahasiswa, "u1", "m1")

	h.GetMine(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKRSSubmitRequiresIdentity(t *testing.T) {
	h := NewKRSHandler(nil)
	c, rec := testContext(t, http.MethodPost, "/krs")

	h.Submit(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportKHSRejectsUnknownFormat(t *testing.T) {
	h := NewExportHandler(nil, nil)
	c, rec := testContext(t, http.MethodGet, "/export/khs/m1?semester_id=sem-1&format=csv")
	c.Params = gin.Params{{Key: "id", Value: "m1"}}
	setIdentity(c, models.RoleAdmin, "u1", "")

	h.KHS(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportKHSForbidsOtherStudent(t *testing.T) {
	h := NewExportHandler(nil, nil)
	c, rec := testContext(t, http.MethodGet, "/export/khs/m2?semester_id=sem-1")
	c.Params = gin.Params{{Key: "id", Value: "m2"}}
	setIdentity(c, models.RoleMahasiswa, "u1", "m1")

	h.KHS(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPresensiListMeetingRequiresPertemuan(t *testing.T) {
	h := NewPresensiHandler(nil)
	c, rec := testContext(t, http.MethodGet, "/kelas/k1/presensi")
	c.Params = gin.Params{{Key: "id", Value: "k1"}}

	h.ListMeeting(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMateriDownloadRequiresToken(t *testing.T) {
	h := NewMateriHandler(nil)
	c, rec := testContext(t, http.MethodGet, "/materi/download")

	h.Download(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthLogoutRequiresClaims(t *testing.T) {
	h := NewAuthHandler(nil)
	c, rec := testContext(t, http.MethodPost, "/auth/logout")

	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
