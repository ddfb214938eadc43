package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/handler"
	"github.com/stikom-adp/siakad-api/internal/middleware"
	"github.com/stikom-adp/siakad-api/internal/models"
	"github.com/stikom-adp/siakad-api/internal/service"
	"github.com/stikom-adp/siakad-api/pkg/config"
	"github.com/stikom-adp/siakad-api/pkg/logger"
	corsmiddleware "github.com/stikom-adp/siakad-api/pkg/middleware/cors"
	reqidmiddleware "github.com/stikom-adp/siakad-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	users      *handler.UserHandler
	mahasiswa  *handler.MahasiswaHandler
	dosen      *handler.DosenHandler
	prodi      *handler.ProdiHandler
	mataKuliah *handler.MataKuliahHandler
	kelas      *handler.KelasHandler
	semester   *handler.SemesterHandler
	krs        *handler.KRSHandler
	nilai      *handler.NilaiHandler
	pembayaran *handler.PembayaranHandler
	presensi   *handler.PresensiHandler
	materi     *handler.MateriHandler
	exports    *handler.ExportHandler
	dashboard  *handler.DashboardHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, auditSvc *service.AuditService, metricsSvc *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/refresh", h.auth.Refresh)

	// Signed token gate, no bearer auth.
	api.GET("/materi/download", h.materi.Download)

	admin := string(models.RoleAdmin)
	dosen := string(models.RoleDosen)
	mahasiswa := string(models.RoleMahasiswa)
	keuangan := string(models.RoleKeuangan)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.POST("/auth/logout", h.auth.Logout)
	secured.POST("/auth/change-password", h.auth.ChangePassword)
	secured.GET("/auth/me", h.auth.Me)

	secured.GET("/users", middleware.RBAC(admin), h.users.List)
	secured.GET("/users/:id", middleware.RBAC(admin, "SELF"), h.users.Get)
	secured.POST("/users", middleware.RBAC(admin), h.users.Create)
	secured.PUT("/users/:id", middleware.RBAC(admin), h.users.Update)
	secured.DELETE("/users/:id", middleware.RBAC(admin), h.users.Deactivate)

	secured.GET("/mahasiswa", middleware.RBAC(admin, dosen, keuangan), h.mahasiswa.List)
	secured.GET("/mahasiswa/me", middleware.RBAC(mahasiswa), h.mahasiswa.Me)
	secured.GET("/mahasiswa/:id", middleware.RBAC(admin, dosen, keuangan, "SELF"), h.mahasiswa.Get)
	secured.POST("/mahasiswa", middleware.RBAC(admin), h.mahasiswa.Create)
	secured.PUT("/mahasiswa/:id", middleware.RBAC(admin), h.mahasiswa.Update)
	secured.GET("/mahasiswa/:id/khs", middleware.RBAC(admin, dosen, mahasiswa), h.nilai.KHS)

	secured.GET("/dosen", middleware.RBAC(admin, dosen, keuangan), h.dosen.List)
	secured.GET("/dosen/me", middleware.RBAC(dosen), h.dosen.Me)
	secured.GET("/dosen/:id", middleware.RBAC(admin, "SELF"), h.dosen.Get)
	secured.POST("/dosen", middleware.RBAC(admin), h.dosen.Create)
	secured.PUT("/dosen/:id", middleware.RBAC(admin), h.dosen.Update)

	secured.GET("/prodi", h.prodi.List)
	secured.GET("/prodi/:id", h.prodi.Get)
	secured.POST("/prodi", middleware.RBAC(admin), h.prodi.Create)
	secured.PUT("/prodi/:id", middleware.RBAC(admin), h.prodi.Update)

	secured.GET("/matakuliah", h.mataKuliah.List)
	secured.GET("/matakuliah/:id", h.mataKuliah.Get)
	secured.POST("/matakuliah", middleware.RBAC(admin), h.mataKuliah.Upsert)
	secured.DELETE("/matakuliah/:id", middleware.RBAC(admin), h.mataKuliah.Deactivate)

	secured.GET("/ruangan", middleware.RBAC(admin, dosen), h.kelas.ListRuangan)
	secured.POST("/ruangan", middleware.RBAC(admin), h.kelas.CreateRuangan)

	secured.GET("/kelas", h.kelas.List)
	secured.GET("/kelas/:id", h.kelas.Get)
	secured.POST("/kelas", middleware.RBAC(admin), h.kelas.Create)
	secured.PUT("/kelas/:id", middleware.RBAC(admin), h.kelas.Update)
	secured.DELETE("/kelas/:id", middleware.RBAC(admin), h.kelas.Delete)

	secured.GET("/kelas/:id/nilai", middleware.RBAC(admin, dosen), h.nilai.Roster)
	secured.PUT("/kelas/:id/nilai", middleware.RBAC(dosen), h.nilai.Upsert)
	secured.POST("/kelas/:id/nilai/lock", middleware.RBAC(admin, dosen), h.nilai.Lock)

	secured.POST("/kelas/:id/presensi", middleware.RBAC(dosen), h.presensi.Record)
	secured.GET("/kelas/:id/presensi", middleware.RBAC(admin, dosen), h.presensi.ListMeeting)
	secured.GET("/kelas/:id/presensi/rekap", middleware.RBAC(admin, dosen), h.presensi.Rekap)

	secured.GET("/kelas/:id/materi", h.materi.List)
	secured.POST("/kelas/:id/materi", middleware.RBAC(admin, dosen), h.materi.Upload)
	secured.DELETE("/materi/:id", middleware.RBAC(admin, dosen), h.materi.Delete)
	secured.GET("/materi/:id/download-url", h.materi.SignDownload)

	secured.GET("/semester", h.semester.List)
	secured.GET("/semester/active", h.semester.GetActive)
	secured.GET("/semester/:id", h.semester.Get)
	secured.POST("/semester", middleware.RBAC(admin), h.semester.Create)
	secured.PUT("/semester/:id", middleware.RBAC(admin), h.semester.Update)
	secured.POST("/semester/:id/activate", middleware.RBAC(admin), h.semester.Activate)
	secured.POST("/semester/:id/transition", middleware.RBAC(admin), h.semester.Transition)

	secured.GET("/krs", middleware.RBAC(admin, dosen, mahasiswa), h.krs.List)
	secured.GET("/krs/me", middleware.RBAC(mahasiswa), h.krs.GetMine)
	secured.GET("/krs/:id", middleware.RBAC(admin, dosen, mahasiswa), h.krs.Get)
	secured.POST("/krs", middleware.RBAC(mahasiswa), h.krs.Submit)
	secured.POST("/krs/:id/detail", middleware.RBAC(mahasiswa), h.krs.AddDetail)
	secured.DELETE("/krs/:id/detail/:kelasId", middleware.RBAC(mahasiswa), h.krs.RemoveDetail)
	secured.PUT("/krs/:id/decide", middleware.RBAC(admin, dosen), h.krs.Decide)

	secured.GET("/pembayaran", middleware.RBAC(admin, keuangan, mahasiswa), h.pembayaran.List)
	secured.GET("/pembayaran/:id", middleware.RBAC(admin, keuangan, mahasiswa), h.pembayaran.Get)
	secured.POST("/pembayaran", middleware.RBAC(mahasiswa), h.pembayaran.Submit)
	secured.PUT("/pembayaran/:id/verify", middleware.RBAC(admin, keuangan), h.pembayaran.Verify)
	secured.GET("/pembayaran/:id/bukti", middleware.RBAC(admin, keuangan, mahasiswa), h.pembayaran.Bukti)

	exports := secured.Group("/export")
	exports.Use(middleware.Audit(auditSvc, "EXPORT", "export"))
	exports.GET("/khs/:id", middleware.RBAC(admin, dosen, mahasiswa), h.exports.KHS)
	exports.GET("/pembayaran", middleware.RBAC(admin, keuangan), h.exports.Pembayaran)
	exports.GET("/presensi/:id", middleware.RBAC(admin, dosen), h.exports.Presensi)

	secured.GET("/dashboard", h.dashboard.Summary)
	secured.GET("/dashboard/system", middleware.RBAC(admin), h.dashboard.System)

	return r
}
