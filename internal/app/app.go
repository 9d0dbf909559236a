// Package app builds the running service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/crosspost"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/realtime"
	"github.com/inkwell/internal/router"
	"github.com/inkwell/internal/seo"
	"github.com/inkwell/internal/service"
	"github.com/inkwell/internal/store"
	"github.com/inkwell/internal/tasks"
	"github.com/inkwell/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App owns every long-lived dependency of the server.
type App struct {
	Config   config.AppConfig
	DB       *gorm.DB
	Store    *store.GormStore
	Posts    *service.PostService
	Ratings  *service.RatingService
	Comments *service.CommentService
	Views    *service.ViewService
	// Handler is the HTTP entry point, CORS policy included.
	Handler http.Handler

	logger     *zap.Logger
	hub        *realtime.Hub
	broker     *realtime.RedisBroker
	redis      *redis.Client
	dispatcher *crosspost.Dispatcher
	announcer  io.Closer
	reconciler *tasks.Reconciler
	telemetry  telemetry.Shutdown
}

// New opens the database, bootstraps the admin account and wires services,
// realtime fan-out, cross-posting and the router. Background work starts in Start.
func New(cfg config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = logging.L()
	}
	a := &App{Config: cfg, logger: logger, hub: realtime.NewHub(), telemetry: func() {}}

	shutdown, err := telemetry.Init(cfg.Telemetry, logger.With(zap.String("component", "telemetry")))
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	a.telemetry = shutdown

	gdb, err := db.Init(cfg.Database, db.WithLogger(gormlogger.Default.LogMode(gormlogger.Warn)))
	if err != nil {
		a.telemetry()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = gdb

	created, err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootPassword)
	if err != nil {
		_ = a.closeDB()
		a.telemetry()
		return nil, fmt.Errorf("ensure admin user: %w", err)
	}
	if created {
		logger.Info("admin user created", zap.String("username", cfg.SuperRootUserName))
	}

	var broker realtime.Broker = a.hub
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			_ = a.closeDB()
			a.telemetry()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.broker = realtime.NewRedisBroker(a.redis, cfg.Redis.Channel, a.hub, logger.With(zap.String("component", "realtime")))
		broker = a.broker
	}

	site := seo.Site{Name: cfg.Site.Name, BaseURL: cfg.Site.BaseURL, LogoURL: cfg.Site.LogoURL}
	postOpts := []service.PostOption{service.WithLogger(logger.With(zap.String("component", "posts")))}
	if cfg.CrossPost.Enabled {
		kafkaAnnouncer := crosspost.NewKafkaAnnouncer(cfg.CrossPost.Brokers, cfg.CrossPost.TopicPrefix, logger)
		a.announcer = kafkaAnnouncer
		a.dispatcher = crosspost.NewDispatcher(kafkaAnnouncer, cfg.CrossPost.Platforms, site, cfg.CrossPost.Timeout,
			logger.With(zap.String("component", "crosspost")))
		postOpts = append(postOpts, service.WithNotifier(a.dispatcher))
	}

	a.Store = store.NewGormStore(gdb)
	a.Posts = service.NewPostService(a.Store, site, postOpts...)
	a.Ratings = service.NewRatingService(a.Store)
	a.Comments = service.NewCommentService(a.Store, logger.With(zap.String("component", "comments")))
	a.Views = service.NewViewService(a.Store, broker, logger.With(zap.String("component", "views")))
	a.reconciler = tasks.NewReconciler(a.Store, cfg.Tasks.ReconcileSchedule, logger.With(zap.String("component", "tasks")))

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	api := handler.NewAPI(handler.Dependencies{
		DB:       gdb,
		Posts:    a.Posts,
		Ratings:  a.Ratings,
		Comments: a.Comments,
		Views:    a.Views,
		Logger:   logger.With(zap.String("component", "http")),
	})
	opts := router.Options{
		SessionSecret: cfg.SessionSecret,
		ServiceName:   cfg.Telemetry.ServiceName,
		Logger:        logger.With(zap.String("component", "http")),
		Health:        a.Ping,
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusEnabled {
		opts.Metrics = promhttp.Handler()
	}
	a.Handler = router.WithCORS(router.SetupRouter(api, opts), cfg.CORSOrigins)
	return a, nil
}

// Start begins background work: the Redis relay and the reconcile schedule.
func (a *App) Start(ctx context.Context) error {
	if a.broker != nil {
		if err := a.broker.Start(ctx); err != nil {
			return fmt.Errorf("start redis relay: %w", err)
		}
		a.logger.Info("view updates relayed through redis", zap.String("channel", a.Config.Redis.Channel))
	}
	if a.Config.Tasks.ReconcileSchedule != "" {
		if err := a.reconciler.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Ping reports whether the primary database answers.
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Reconcile runs one projection repair pass immediately.
func (a *App) Reconcile(ctx context.Context) (int, error) {
	return a.reconciler.Run(ctx)
}

// Close stops background work and releases connections in reverse start order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	a.reconciler.Stop(ctx)
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.announcer != nil {
		errs = append(errs, a.announcer.Close())
	}
	if a.broker != nil {
		errs = append(errs, a.broker.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.closeDB())
	a.telemetry()
	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
