package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware
	"github.com/sirupsen/logrus"                    // structured logging

	"github.com/iliyamo/cinemaflow/internal/config"     // Internal config loader
	"github.com/iliyamo/cinemaflow/internal/database"   // MySQL pool and migrations
	"github.com/iliyamo/cinemaflow/internal/handler"    // HTTP handlers
	"github.com/iliyamo/cinemaflow/internal/middleware" // session and rate limit middleware
	"github.com/iliyamo/cinemaflow/internal/repository" // data access
	"github.com/iliyamo/cinemaflow/internal/router"     // Internal router setup
	"github.com/iliyamo/cinemaflow/internal/service"    // catalog and event publishing
	"github.com/iliyamo/cinemaflow/internal/view"       // HTML templates
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg)

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("migrate database")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	bookings := repository.NewBookingRepo(db)
	shows := repository.NewShowRepo(db)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.BcryptCost)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("bootstrap admin")
		}
		log.WithField("username", cfg.AdminUsername).Info("admin account ensured")
	}

	// Redis is optional: without it the catalog is uncached and rate
	// limiting is per process.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.WithField("addr", cfg.Redis.Addr).Warn("redis unavailable; running without cache")
	} else {
		defer rdb.Close()
	}
	var cache service.ListingCache
	if cfg.Cache.Enabled && rdb != nil {
		cache = repository.NewCatalogCache(rdb, cfg.Cache.TTL, cfg.Cache.Prefix)
	}
	catalog := service.NewCatalog(repository.NewMovieRepo(db), repository.NewHallRepo(db), shows, cache, log)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitMQURL, log)
	}

	e := newServer(cfg, log, users, sessions)
	flash := handler.NewFlasher(cfg.SecretKey, cfg.IsProduction())
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)

	router.RegisterRoutes(e, handler.NewIndexHandler(flash)) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions, flash, log), limit)
	router.RegisterPublic(e, handler.NewCatalogHandler(catalog, flash))
	router.RegisterBookings(e, handler.NewBookingHandler(shows, bookings, events, flash, log), limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, bookings, flash, log))

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newServer builds the Echo instance with the renderer, the error page
// and the middleware every request passes through.
func newServer(cfg config.Config, log *logrus.Logger, users *repository.UserRepo, sessions *repository.SessionRepo) *echo.Echo {
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Renderer = view.MustNewRenderer()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.LoadSession(cfg.SecretKey, sessions, users, log))
	return e
}
