package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/q6kkhvmy6s/rsvp/config"
	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/handler"
	"github.com/q6kkhvmy6s/rsvp/internal/imagestore"
	"github.com/q6kkhvmy6s/rsvp/internal/middleware"
	"github.com/q6kkhvmy6s/rsvp/internal/preview"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
	"github.com/q6kkhvmy6s/rsvp/pkg/database"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.UsesDefaultSecret() {
		logger.Log.Warn("JWT_SECRET not set, signing tokens with the development key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Log.Warn("close store", zap.Error(err))
		}
	}()

	// Publishing is optional; the interface must stay nil without a broker.
	var publisher service.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logger.Log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Log.Info("RABBITMQ_URL not set, domain events disabled")
	}

	images := imagestore.NewLocal(cfg.UploadDir)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	eventSvc := service.NewEventService(store.Events, store.Reservations, images, publisher, cfg.BaseURL)
	reservationSvc := service.NewReservationService(store.Events, store.Reservations, store.Users, publisher, cfg.Location())
	accountSvc := service.NewAccountService(store.Users, store.Events, issuer, publisher, cfg.BootstrapAdmins, cfg.RecentLoginWindow)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.Recover())
	e.Use(middleware.Session(accountSvc))
	e.Use(middleware.RequestLogger())
	e.Use(echoMw.BodyLimit("10M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "rsvp"})
	})
	e.Static(imagestore.PublicPrefix, images.Dir())

	handler.NewEventHandler(eventSvc).RegisterRoutes(e)
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e)
	handler.NewAccountHandler(accountSvc).RegisterRoutes(e)

	shim := preview.New(preview.Config{
		HostingDir:         cfg.HostingDir,
		Crawlers:           cfg.CrawlerPatterns,
		DefaultTitle:       cfg.DefaultPreviewTitle,
		DefaultDescription: cfg.DefaultPreviewDesc,
		DefaultImage:       cfg.DefaultPreviewImage,
	}, eventSvc)
	e.Any("/api/*", func(c echo.Context) error { return echo.ErrNotFound })
	e.GET("/", shim.Serve)
	e.GET("/*", shim.Serve)

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}
