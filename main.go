package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saubio/config"
	"saubio/cron"
	"saubio/database"
	bookingRepo "saubio/database/repository/booking"
	sessionRepo "saubio/database/repository/session"
	"saubio/handlers"
	"saubio/middleware"
	"saubio/routes"
	"saubio/services/booking"
	"saubio/services/countries"
	"saubio/services/flow"
	"saubio/services/locale"
	"saubio/services/tasks"
	"saubio/services/upstream"
	"saubio/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	cacheClient := utils.GetCacheClient()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(rootCtx, cacheClient, database.MongoClient, 15*time.Second)

	catalog, err := locale.Load(config.AppConfig.DefaultLocale)
	if err != nil {
		logger.Fatal("main: failed to load locale catalogs", zap.Error(err))
	}
	logger.Info("Country directory ready", zap.Int("countries", len(countries.List())))

	// repositories.
	bookings, err := bookingRepo.NewMongoBookingRepo(database.DB())
	if err != nil {
		logger.Fatal("main: failed to initialize booking repository", zap.Error(err))
	}
	sessions := sessionRepo.NewRedisSessionRepo(cacheClient, logger.Named("sessions"))

	// upstream + queue.
	api := upstream.NewClient(config.AppConfig.APIBaseURL, nil)
	queueClient := asynq.NewClient(cron.RedisOpt())
	defer queueClient.Close()

	// services.
	flowService := &flow.DefaultSessionService{
		Store:             sessions,
		Bus:               sessions,
		Queue:             tasks.NewAsynqSuggestionQueue(queueClient),
		Fetcher:           api,
		Translator:        catalog,
		Logger:            logger.Named("flow"),
		TTL:               time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute,
		DefaultLocale:     catalog.DefaultLocale(),
		RequiredProviders: config.AppConfig.RequiredProviders,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:   bookings,
		Source: api,
		Logger: logger.Named("bookings"),
	}

	worker, err := cron.StartWorker(flowService, bookingService, logger.Named("worker"))
	if err != nil {
		logger.Fatal("main: failed to start job worker", zap.Error(err))
	}

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(config.AppConfig.Proxies()); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewFlowHandler(flowService, catalog, logger),
		handlers.NewBookingsHandler(bookingService, catalog),
		handlers.NewLocaleHandler(catalog, config.AppConfig.APIBaseURL),
		handlers.NewAdminHandler(flowService, config.AppConfig.AdminEmail, config.AppConfig.AdminPasswordHash),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server",
		zap.String("addr", srv.Addr),
		zap.String("apiBaseUrl", config.AppConfig.APIBaseURL),
		zap.String("env", config.GetEnv()),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	stop()
	if err := cacheClient.Close(); err != nil {
		logger.Warn("main: failed to close redis", zap.Error(err))
	}
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: failed to close mongo", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
