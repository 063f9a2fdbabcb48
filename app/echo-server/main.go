package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpmetrics "floorPilot/app/echo-server/metrics"
	"floorPilot/app/echo-server/router"
	adapterService "floorPilot/business/adapter"
	appService "floorPilot/business/app"
	"floorPilot/business/floorbandit"
	operatorService "floorPilot/business/operator"
	"floorPilot/domain"
	"floorPilot/internal/middleware"
	psqlRepo "floorPilot/internal/repository/postgres"
	redisRepo "floorPilot/internal/repository/redis"
	"floorPilot/internal/rest"
	"floorPilot/pkg/config"
	"floorPilot/pkg/database"
	redisdb "floorPilot/pkg/database/redis"
	"floorPilot/pkg/logger"
	"floorPilot/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting FloorPilot", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	if err := db.AutoMigrate(
		&domain.FloorOutcomeEvent{},
		&domain.FloorBanditConfig{},
		&domain.FloorOverride{},
		&domain.Adapter{},
		&domain.App{},
		&domain.Operator{},
	); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	redisClient, err := redisdb.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init validate
	validate := validator.New()

	// Init repo
	floorBanditRepo := psqlRepo.NewFloorBanditRepository(db)
	if err := floorBanditRepo.Migrate(); err != nil {
		logger.Fatal("Failed to migrate floor_experiments", "error", err)
	}
	floorConfigRepo := psqlRepo.NewFloorConfigRepository(db)
	floorOverrideRepo := psqlRepo.NewFloorOverrideRepository(db)
	adapterRepo := psqlRepo.NewAdapterRepository(db)
	appRepo := psqlRepo.NewAppRepository(db)
	operatorRepo := psqlRepo.NewOperatorRepository(db)
	sessionRepo := redisRepo.NewSessionRepository(redisClient)

	// Init service
	adapterSvc := adapterService.NewAdapterService(adapterRepo)
	appSvc := appService.NewAppService(appRepo, cfg.Floor.SDKKeySecret)
	operatorSvc := operatorService.NewOperatorService(operatorRepo, sessionRepo, validate)
	floorSvc := floorbandit.NewFloorService(
		floorBanditRepo,
		floorBanditRepo,
		floorConfigRepo,
		floorOverrideRepo,
		adapterSvc,
		floorbandit.NewRandomSource(),
		floorbandit.Config{
			CandidatePrices: cfg.Floor.CandidatePrices,
			WarmUpTrials:    cfg.Floor.WarmUpTrials,
			ExplorationRate: cfg.Floor.ExplorationRate,
			PriorSuccesses:  cfg.Floor.PriorSuccesses,
			PriorFailures:   cfg.Floor.PriorFailures,
			PersistTimeout:  time.Duration(cfg.Floor.PersistTimeoutSeconds) * time.Second,
		},
	)

	// Warm the experiment store from snapshots before serving. A failed
	// load logs and starts empty.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	floorSvc.WarmStart(warmCtx)
	warmCancel()

	// Init handler
	floorHandler := rest.NewFloorHandler(floorSvc)
	floorAdminHandler := rest.NewFloorAdminHandler(floorSvc, floorConfigRepo, floorOverrideRepo)
	adapterHandler := rest.NewAdapterHandler(adapterSvc)
	appHandler := rest.NewAppHandler(appSvc)
	operatorHandler := rest.NewOperatorHandler(operatorSvc)

	// Init metrics
	metrics.Init()
	httpmetrics.Init()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.SDKKeyHeader},
	}))
	e.Use(httpmetrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request().Context())
		}
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ok",
		})
	})

	// Auth middleware
	authRequired := middleware.AuthMiddlewareWithRedis(operatorSvc)
	adminOnly := middleware.AdminOnly()
	selfOrAdmin := middleware.SelfOrAdmin()
	sdkAuth := middleware.SDKKeyAuth(appSvc)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupFloorRoutes(api, floorHandler, sdkAuth)
	router.SetupFloorAdminRoutes(api, floorAdminHandler, authRequired, adminOnly)
	router.SetupAdapterRoutes(api, adapterHandler, authRequired, adminOnly)
	router.SetupAppRoutes(api, appHandler, authRequired, adminOnly)
	router.SetupOperatorRoutes(api, operatorHandler, authRequired, adminOnly, selfOrAdmin)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
