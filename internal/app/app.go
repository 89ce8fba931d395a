package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stable-app-go/internal/config"
	"stable-app-go/internal/db"
	announcementsdomain "stable-app-go/internal/domain/announcements"
	authdomain "stable-app-go/internal/domain/auth"
	eventsdomain "stable-app-go/internal/domain/events"
	horsesdomain "stable-app-go/internal/domain/horses"
	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/internal/metrics"
	"stable-app-go/internal/notify"
	"stable-app-go/internal/repository/inmemory"
	announcementsrepo "stable-app-go/internal/repository/postgres/announcements"
	authrepo "stable-app-go/internal/repository/postgres/auth"
	eventsrepo "stable-app-go/internal/repository/postgres/events"
	horsesrepo "stable-app-go/internal/repository/postgres/horses"
	invitationsrepo "stable-app-go/internal/repository/postgres/invitations"
	stablesrepo "stable-app-go/internal/repository/postgres/stables"
	userrepo "stable-app-go/internal/repository/postgres/user"
	redisrepo "stable-app-go/internal/repository/redis"
	"stable-app-go/internal/transport/httpserver"
	"stable-app-go/internal/transport/httpserver/handler"
	"stable-app-go/internal/transport/httpserver/middleware"
	"stable-app-go/internal/worker/sweep"
	"stable-app-go/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg         config.Config
	log         logger.Logger
	httpServer  *http.Server
	db          *gorm.DB
	redis       *goredis.Client
	scheduler   *sweep.Scheduler
	authLimiter *middleware.RateLimiter
	userLimiter *middleware.RateLimiter
}

type repositories struct {
	users         userdomain.Repository
	auth          authdomain.Repository
	sessions      authdomain.SessionStore
	stables       stablesdomain.Repository
	invitations   invitationsdomain.Repository
	horses        horsesdomain.Repository
	events        eventsdomain.Repository
	announcements announcementsdomain.Repository
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	return Build(context.Background(), cfg, log)
}

// Build wires every component from cfg. The returned App owns its connections; call Close when done.
func Build(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	repos, err := a.openStorage(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	users := userdomain.NewService(repos.users)
	stables := stablesdomain.NewService(repos.stables, users, inmemory.NewStableCache(), cfg.Stables.CacheTTL)

	notifier := a.buildNotifier(ctx)
	tokens := authdomain.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	auth := authdomain.NewService(repos.auth, repos.sessions, users, tokens)
	auth.OnSessionChange(func(change authdomain.SessionChange) {
		log.Info("auth: session changed", "user_id", change.UserID, "kind", change.Kind)
		collector.RecordSessionChange(change.Kind)
	})

	announcements := announcementsdomain.NewService(repos.announcements, stables, users, notifier, cfg.Announcements.RetentionDays, log)
	services := handler.Services{
		Auth:          auth,
		Users:         users,
		Stables:       stables,
		Invitations:   invitationsdomain.NewService(repos.invitations, stables, users, notifier, cfg.Notify.AppName, log),
		Horses:        horsesdomain.NewService(repos.horses, stables),
		Events:        eventsdomain.NewService(repos.events, stables),
		Announcements: announcements,
	}

	log.Info("app: initializing sweep scheduler", "schedule", cfg.Announcements.SweepSchedule)
	a.scheduler, err = sweep.NewScheduler(cfg.Announcements.SweepSchedule, sweep.NewJob(announcements, collector, log), log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.scheduler.Start()

	a.authLimiter = middleware.NewRateLimiter("auth", cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst, middleware.ByClientIP, collector, log)
	a.userLimiter = middleware.NewRateLimiter("user", cfg.RateLimit.UserPerMinute, cfg.RateLimit.UserBurst, middleware.ByUser, collector, log)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, httpserver.RouterDeps{
		Handlers:    handler.New(services, log),
		Auth:        middleware.NewAuth(cfg.Auth, auth, users, log),
		AuthLimiter: a.authLimiter,
		UserLimiter: a.userLimiter,
		Metrics:     collector,
		Gatherer:    registry,
	}, log)

	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (repositories, error) {
	if a.cfg.StorageDriver == config.StorageDriverMemory {
		a.log.Warn("app: using in-memory storage, data is lost on restart")
		store := inmemory.NewStore()
		return repositories{
			users:         store.Users(),
			auth:          store.Auth(),
			sessions:      store.Sessions(),
			stables:       store.Stables(),
			invitations:   store.Invitations(),
			horses:        store.Horses(),
			events:        store.Events(),
			announcements: store.Announcements(),
		}, nil
	}

	if a.cfg.DB.AutoMigrate {
		a.log.Info("app: applying migrations")
		if err := db.Migrate(a.cfg.DB.MigrationURL()); err != nil {
			return repositories{}, fmt.Errorf("migrate: %w", err)
		}
	}

	a.log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(a.cfg.DB, a.log)
	if err != nil {
		return repositories{}, err
	}
	a.db = dbConn

	sessions, err := a.openSessions(ctx)
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		users:         userrepo.NewPostgres(dbConn),
		auth:          authrepo.NewPostgres(dbConn),
		sessions:      sessions,
		stables:       stablesrepo.NewPostgres(dbConn),
		invitations:   invitationsrepo.NewPostgres(dbConn),
		horses:        horsesrepo.NewPostgres(dbConn),
		events:        eventsrepo.NewPostgres(dbConn),
		announcements: announcementsrepo.NewPostgres(dbConn),
	}, nil
}

// openSessions uses Redis when configured. Without it sessions live in process memory and a
// restart signs everybody out.
func (a *App) openSessions(ctx context.Context) (authdomain.SessionStore, error) {
	if a.cfg.Redis.URL == "" {
		a.log.Warn("app: REDIS_URL not set, sessions are kept in memory")
		return inmemory.NewStore().Sessions(), nil
	}

	client, err := redisrepo.NewClient(ctx, a.cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	a.redis = client
	return redisrepo.NewSessionStore(client), nil
}

func (a *App) buildNotifier(ctx context.Context) notify.Notifier {
	notifiers := notify.Multi{notify.NewLogNotifier(a.log)}

	if a.cfg.Notify.SendGridAPIKey != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(a.cfg.Notify.SendGridAPIKey, a.cfg.Notify.SendGridFrom, a.cfg.Notify.AppName))
	} else {
		a.log.Info("app: SENDGRID_API_KEY not set, invitation emails disabled")
	}

	if a.cfg.Notify.FirebaseCredentials != "" {
		push, err := notify.NewPushNotifier(ctx, a.cfg.Notify.FirebaseCredentials)
		if err != nil {
			a.log.InternalError("app: push notifications disabled", err)
		} else {
			notifiers = append(notifiers, push)
		}
	}

	return notifiers
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error

	if a.scheduler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.scheduler.Stop(ctx))
		cancel()
	}
	a.authLimiter.Stop()
	a.userLimiter.Stop()

	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}

	return errors.Join(errs...)
}
