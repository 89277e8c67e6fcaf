package router

import (
	"fmt"
	"io"
	"os"
	"time"

	listsvc "estate-marketplace/internal/application/listings"
	mktsvc "estate-marketplace/internal/application/marketplace"
	"estate-marketplace/internal/config"
	"estate-marketplace/internal/infrastructure/backendapi"
	"estate-marketplace/internal/infrastructure/database"
	"estate-marketplace/internal/infrastructure/draftstore"
	"estate-marketplace/internal/infrastructure/events"
	healthhandler "estate-marketplace/internal/interfaces/handlers/health"
	listhandler "estate-marketplace/internal/interfaces/handlers/listings"
	mkthandler "estate-marketplace/internal/interfaces/handlers/marketplace"
	"estate-marketplace/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Closer releases connections opened by CreateApp.
type Closer interface {
	Close() error
}

// Deps is what CreateApp opened; main verifies and closes them.
type Deps struct {
	DB     *gorm.DB
	Rdb    *redis.Client
	Events Closer
}

// Close releases every opened connection.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	if d.Events != nil {
		_ = d.Events.Close()
	}
	if d.Rdb != nil {
		_ = d.Rdb.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stdout
	if cfg.Env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	setupLogging(cfg)

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               20 * 1024 * 1024,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	deps := &Deps{}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	deps.Rdb = rdb

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		BackendURL:     cfg.BackendAPIURL,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	if cfg.DatabaseURL != "" {
		db, errDB := database.Open(cfg.DatabaseURL)
		if errDB != nil {
			deps.Close()
			return nil, nil, errDB
		}
		if err := database.AutoMigrate(db); err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		deps.DB = db
		hh.DB = &gormDBPinger{db: db}
	}

	var store listsvc.Storage = &draftstore.RedisStore{Rdb: rdb}
	if cfg.DraftsBackend == config.DraftsSQL {
		if deps.DB == nil {
			deps.Close()
			return nil, nil, fmt.Errorf("DRAFTS_BACKEND=sql requires DATABASE_URL")
		}
		store = &draftstore.GormStore{DB: deps.DB}
	}

	var publisher listsvc.EventPublisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		p, errMQ := events.Dial(cfg.RabbitMQURL, cfg.EventsExchange)
		if errMQ != nil {
			// Events are best effort; the service runs without them.
			log.Warn().Err(errMQ).Msg("RabbitMQ unavailable; listing events disabled")
		} else {
			publisher = p
			deps.Events = p
		}
	}

	backend := &backendapi.Client{
		BaseURL:  cfg.BackendAPIURL,
		MediaDir: cfg.MediaDir,
		Timeout:  cfg.BackendTimeout,
	}

	// Listings (drafts + publish)
	ls := &listsvc.Service{
		Store:     store,
		Submitter: &listsvc.Submitter{API: backend},
		Events:    publisher,
	}
	lh := &listhandler.Handlers{Service: ls, Backend: backend, MediaDir: cfg.MediaDir}
	lg := app.Group("/api/v1/listings", middleware.RequireToken())
	lg.Post("/drafts", lh.CreateDraft)
	lg.Get("/drafts", lh.ListDrafts)
	lg.Put("/drafts/:id", lh.UpdateDraft)
	lg.Delete("/drafts/:id", lh.RemoveDraft)
	lg.Post("/drafts/:id/images", lh.UploadImage)
	lg.Post("/drafts/:id/publish", lh.Publish)
	lg.Get("/:id", lh.GetListing)

	// Marketplace (published backend properties)
	ms := &mktsvc.Service{Feed: backend}
	mh := &mkthandler.Handlers{Service: ms}
	mg := app.Group("/api/v1/marketplace", middleware.RequireToken())
	mg.Get("/properties", mh.GetAllProperties)
	mg.Get("/properties/search", mh.Search)
	mg.Post("/properties/:id/bookmark", mh.Bookmark)

	return app, deps, nil
}
