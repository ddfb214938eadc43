package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/stikom-adp/siakad-api/api/swagger"
	"github.com/stikom-adp/siakad-api/internal/handler"
	"github.com/stikom-adp/siakad-api/internal/repository"
	"github.com/stikom-adp/siakad-api/internal/service"
	"github.com/stikom-adp/siakad-api/pkg/cache"
	"github.com/stikom-adp/siakad-api/pkg/config"
	"github.com/stikom-adp/siakad-api/pkg/database"
	"github.com/stikom-adp/siakad-api/pkg/export"
	"github.com/stikom-adp/siakad-api/pkg/jobs"
	"github.com/stikom-adp/siakad-api/pkg/logger"
	"github.com/stikom-adp/siakad-api/pkg/storage"
)

// @title SIAKAD API
// @version 1.0.0
// @description Academic information system for STIKOM ADP
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it the session and dashboard caches
	// degrade to pass-through and the identity fallback is disabled.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Upload.StorageDir)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Upload.SignedURLSecret, cfg.Upload.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	mahasiswaRepo := repository.NewMahasiswaRepository(db)
	dosenRepo := repository.NewDosenRepository(db)
	prodiRepo := repository.NewProdiRepository(db)
	mataKuliahRepo := repository.NewMataKuliahRepository(db)
	kelasRepo := repository.NewKelasRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	krsRepo := repository.NewKRSRepository(db)
	nilaiRepo := repository.NewNilaiRepository(db)
	pembayaranRepo := repository.NewPembayaranRepository(db)
	presensiRepo := repository.NewPresensiRepository(db)
	materiRepo := repository.NewMateriRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr).WithMetrics(metricsSvc)

	auditSvc := service.NewAuditService(userRepo, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
		Logger:     logr,
	}, logr)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(userRepo, mahasiswaRepo, dosenRepo, cacheRepo, auditSvc, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SessionCacheTTL:    cfg.Session.CacheTTL,
	})
	userSvc := service.NewUserService(userRepo, cacheRepo, auditSvc, nil, logr)
	mahasiswaSvc := service.NewMahasiswaService(mahasiswaRepo, prodiRepo, dosenRepo, userRepo, nil, logr)
	dosenSvc := service.NewDosenService(dosenRepo, prodiRepo, userRepo, nil, logr)
	prodiSvc := service.NewProdiService(prodiRepo, nil, logr)
	mataKuliahSvc := service.NewMataKuliahService(mataKuliahRepo, prodiRepo, nil, logr)
	kelasSvc := service.NewKelasService(kelasRepo, mataKuliahRepo, dosenRepo, semesterRepo, nil, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, auditSvc, nil, logr)
	krsSvc := service.NewKRSService(krsRepo, kelasRepo, mahasiswaRepo, semesterRepo, auditSvc, nil, logr, service.KRSConfig{
		MaxSKS: cfg.Akademik.MaxSKSPerKRS,
	})
	nilaiSvc := service.NewNilaiService(nilaiRepo, kelasRepo, mahasiswaRepo, semesterRepo, auditSvc, nil, logr)
	pembayaranSvc := service.NewPembayaranService(pembayaranRepo, uploadStore, semesterRepo, auditSvc, nil, logr)
	presensiSvc := service.NewPresensiService(presensiRepo, kelasRepo, nilaiRepo, nil, logr)
	materiSvc := service.NewMateriService(materiRepo, uploadStore, signer, kelasRepo, nilaiRepo, nil, logr, cfg.BaseURL)
	exportSvc := service.NewExportService(nilaiSvc, pembayaranRepo, presensiRepo, kelasRepo, export.NewExcelExporter(), export.NewPDFExporter(), logr)
	dashboardSvc := service.NewDashboardService(mahasiswaRepo, dosenRepo, kelasRepo, krsRepo, pembayaranRepo, semesterRepo, cacheRepo, metricsSvc, service.DashboardConfig{
		CacheTTL: cfg.Session.DashboardTTL,
	}, logr)

	handlers := routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		users:      handler.NewUserHandler(userSvc),
		mahasiswa:  handler.NewMahasiswaHandler(mahasiswaSvc),
		dosen:      handler.NewDosenHandler(dosenSvc),
		prodi:      handler.NewProdiHandler(prodiSvc),
		mataKuliah: handler.NewMataKuliahHandler(mataKuliahSvc),
		kelas:      handler.NewKelasHandler(kelasSvc),
		semester:   handler.NewSemesterHandler(semesterSvc),
		krs:        handler.NewKRSHandler(krsSvc),
		nilai:      handler.NewNilaiHandler(nilaiSvc),
		pembayaran: handler.NewPembayaranHandler(pembayaranSvc),
		presensi:   handler.NewPresensiHandler(presensiSvc),
		materi:     handler.NewMateriHandler(materiSvc),
		exports:    handler.NewExportHandler(exportSvc, metricsSvc),
		dashboard:  handler.NewDashboardHandler(dashboardSvc, metricsSvc),
		metrics:    handler.NewMetricsHandler(metricsSvc),
	}

	router := newRouter(cfg, logr, authSvc, auditSvc, metricsSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
