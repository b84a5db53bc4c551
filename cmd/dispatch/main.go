package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/biyahe-app/biyahe/internal/pkg/config"
	"github.com/biyahe-app/biyahe/internal/pkg/database"
	"github.com/biyahe-app/biyahe/internal/pkg/health"
	"github.com/biyahe-app/biyahe/internal/pkg/httpclient"
	"github.com/biyahe-app/biyahe/internal/pkg/logger"
	"github.com/biyahe-app/biyahe/internal/pkg/middleware"
	natspkg "github.com/biyahe-app/biyahe/internal/pkg/nats"
	"github.com/biyahe-app/biyahe/internal/pkg/server"
	"github.com/biyahe-app/biyahe/internal/pkg/websocket"

	bookinggw "github.com/biyahe-app/biyahe/services/booking/gateway"
	bookinghttp "github.com/biyahe-app/biyahe/services/booking/handler/http"
	bookingrepo "github.com/biyahe-app/biyahe/services/booking/repository"
	bookinguc "github.com/biyahe-app/biyahe/services/booking/usecase"
	farerepo "github.com/biyahe-app/biyahe/services/fare/repository"
	fareuc "github.com/biyahe-app/biyahe/services/fare/usecase"
	locationgw "github.com/biyahe-app/biyahe/services/location/gateway"
	locationhttp "github.com/biyahe-app/biyahe/services/location/handler/http"
	locationrepo "github.com/biyahe-app/biyahe/services/location/repository"
	locationuc "github.com/biyahe-app/biyahe/services/location/usecase"
	presencegw "github.com/biyahe-app/biyahe/services/presence/gateway"
	presencehandler "github.com/biyahe-app/biyahe/services/presence/handler"
	presencerepo "github.com/biyahe-app/biyahe/services/presence/repository"
	presenceuc "github.com/biyahe-app/biyahe/services/presence/usecase"
)

func main() {
	cfg := config.InitConfig(".env")

	zapLogger, err := logger.NewZapLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting dispatch service",
		logger.String("name", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("environment", cfg.App.Environment))

	// Infrastructure
	pgClient, err := database.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	natsClient, err := natspkg.NewClient(cfg.NATS.URL)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", logger.Err(err))
	}

	accountClient := httpclient.NewClient(cfg.Booking.AccountServiceURL, 10*time.Second)

	// Repositories
	fareRepository := farerepo.NewFareRepository(pgClient.GetDB())
	bookingRepository := bookingrepo.NewBookingRepository(pgClient.GetDB())
	presenceRepository := presencerepo.NewPresenceRepository(cfg, redisClient)
	locationRepository := locationrepo.NewLocationRepo(redisClient, cfg.Location.ProjectionTTLSec)

	// Gateways
	bookingGateway := bookinggw.NewBookingGW(natsClient)
	accountGateway := bookinggw.NewAccountGW(accountClient)
	presenceGateway := presencegw.NewPresenceGW(natsClient)
	locationGateway := locationgw.NewLocationGW(natsClient)

	// Use cases
	fareUC := fareuc.NewFareUC(cfg, fareRepository)
	presenceUC := presenceuc.NewPresenceUC(cfg, presenceRepository, presenceGateway, fareUC)
	locationUC := locationuc.NewLocationUC(cfg, locationRepository, locationGateway)
	bookingUC := bookinguc.NewBookingUC(cfg, bookingRepository, bookingGateway, accountGateway, fareUC, presenceUC)

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	sweepWorker := bookinguc.NewSweepWorker(cfg, bookingUC)
	go sweepWorker.Run(workerCtx)

	// HTTP transport
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(logger.EchoMiddleware(zapLogger))
	e.Use(echomw.CORS())

	wsManager := websocket.NewManager()
	driverChannel := presencehandler.NewDriverChannelHandler(presenceUC, locationUC, wsManager)
	driverChannel.RegisterRoutes(e)

	presencehandler.NewPresenceHandler(presenceUC).RegisterRoutes(e)
	bookinghttp.NewBookingHandler(bookingUC).RegisterRoutes(e)
	locationhttp.NewLocationHandler(locationUC).RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	healthService := health.NewService()
	healthService.AddChecker("postgres", health.NewPostgresChecker(pgClient))
	healthService.AddChecker("redis", health.NewRedisChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSChecker(natsClient))
	health.RegisterEndpoints(e, cfg.App.Name, cfg.App.Version, healthService)

	// Shutdown ordering: stop accepting traffic, stop workers, then
	// close the stores
	shutdown := server.NewShutdownManager(zapLogger)
	shutdown.Register(func(ctx context.Context) error {
		cancelWorkers()
		return nil
	})
	shutdown.Register(func(ctx context.Context) error {
		natsClient.Close()
		return nil
	})
	shutdown.Register(func(ctx context.Context) error {
		return redisClient.Close()
	})
	shutdown.Register(func(ctx context.Context) error {
		return pgClient.Close()
	})

	srv := server.NewGracefulServer(e, zapLogger, cfg.Server.Port, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	if err := srv.Start(); err != nil {
		logger.Error("Server exited with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = shutdown.Shutdown(shutdownCtx)
}
