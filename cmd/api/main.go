package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"venuehouse/internal/availability"
	"venuehouse/internal/config"
	"venuehouse/internal/database"
	"venuehouse/internal/events"
	"venuehouse/internal/logger"
	"venuehouse/internal/middleware"
	"venuehouse/internal/modules/auth"
	"venuehouse/internal/modules/catalog"
	"venuehouse/internal/modules/feed"
	"venuehouse/internal/modules/hold"
	"venuehouse/internal/modules/lifecycle"
	"venuehouse/internal/modules/settlement"
	"venuehouse/internal/pkg/jwt"
	"venuehouse/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories.
	requestRepo := repository.NewRequestRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	holdRepo := repository.NewHoldRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	// Event fan-out: availability worker and the staff feed both listen.
	bus := events.NewBus()
	worker := availability.NewWorker(
		cfg.Availability.SyncURL,
		time.Duration(cfg.Availability.TimeoutSeconds)*time.Second,
		holdRepo,
		resourceRepo,
	)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go worker.Run(workerCtx, bus.Subscribe(cfg.Availability.QueueSize))

	feedHub := feed.NewHub()
	defer feedHub.Close()
	go feedHub.Run(bus.Subscribe(cfg.Availability.QueueSize))

	// Services.
	jwtService := jwt.New(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)
	holdManager := hold.NewManager(holdRepo)
	settlementService := settlement.NewService(settlementRepo)
	lifecycleService := lifecycle.NewService(requestRepo, holdManager, settlementRepo, bus)
	catalogService := catalog.NewService(resourceRepo, holdRepo)
	authService := auth.NewService(staffRepo, jwtService)

	// Handlers.
	lifecycleHandler := lifecycle.NewHandler(lifecycleService)
	settlementHandler := settlement.NewHandler(settlementService)
	catalogHandler := catalog.NewHandler(catalogService)
	authHandler := auth.NewHandler(authService)
	feedHandler := feed.NewHandler(feedHub, jwtService)

	// Nightly full resync repairs anything the fire-and-forget pushes
	// missed during the day.
	var scheduler *cron.Cron
	if cfg.Availability.ResyncCron != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Availability.ResyncCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := worker.Resync(ctx); err != nil {
				logger.Warn("scheduled resync incomplete", "error", err)
			}
		}); err != nil {
			logger.Error("invalid resync cron expression", "expr", cfg.Availability.ResyncCron, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Router.
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/feed", feedHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	authHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		lifecycleHandler.RegisterRoutes(protected)
		settlementHandler.RegisterRoutes(protected)
		catalogHandler.RegisterRoutes(protected)
	}

	managerOnly := protected.Group("")
	managerOnly.Use(middleware.ManagerOnly())
	{
		authHandler.RegisterProtectedRoutes(managerOnly)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
