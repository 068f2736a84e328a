package app

import (
	"context"
	"fmt"
	"time"

	"nekocare/internal/auth"
	"nekocare/internal/cache"
	"nekocare/internal/config"
	"nekocare/internal/demo"
	"nekocare/internal/logging"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"
	"nekocare/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	cfg    config.Config
	log    *zap.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine

	stopHub context.CancelFunc
	hubDone chan struct{}
}

// backend is the set of stores the services run on.
type backend struct {
	care       repo.CareRepo
	incidents  repo.IncidentRepo
	themes     repo.ThemeRepo
	households repo.HouseholdRepo
	users      repo.UserRepo
	sessions   auth.Sessions
	broker     realtime.Broker
	// cache is nil when snapshots are not cached.
	cache service.SnapshotCache
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	var (
		be  backend
		err error
	)
	if cfg.App.Demo {
		be, err = a.demoBackend()
	} else {
		be, err = a.pgBackend()
	}
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	hub := realtime.NewHub(be.broker, log)
	ctx, cancel := context.WithCancel(context.Background())
	a.stopHub = cancel
	a.hubDone = make(chan struct{})
	go func() {
		defer close(a.hubDone)
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("realtime hub stopped", zap.Error(err))
		}
	}()

	a.router = newRouter(cfg, log, be, hub)
	return a, nil
}

func (a *App) demoBackend() (backend, error) {
	store := repo.NewMemoryStore()
	res, err := demo.Default().Apply(context.Background(), demo.Memory(store), time.Now().In(a.cfg.Care.Location()))
	if err != nil {
		return backend{}, fmt.Errorf("demo seed: %w", err)
	}
	a.log.Info("demo mode: in-memory data",
		zap.Int64("household_id", res.Household.ID),
		zap.String("username", res.User.Username))
	return backend{
		care:       store,
		incidents:  store.Incidents(),
		themes:     store,
		households: store,
		users:      store.Users(),
		sessions:   auth.NewMemoryStore(24 * time.Hour),
		broker:     realtime.NewLocalBroker(),
	}, nil
}

func (a *App) pgBackend() (backend, error) {
	db, err := NewPostgres(a.cfg.PG.DSN)
	if err != nil {
		return backend{}, err
	}
	a.db = db

	rdb, err := NewRedis(a.cfg.Redis)
	if err != nil {
		return backend{}, err
	}
	a.redis = rdb

	if err := RunMigrations(a.cfg.PG.DSN, a.cfg.PG.MigrationsDir); err != nil {
		return backend{}, err
	}
	return backend{
		care:       repo.NewPGCareRepo(db),
		incidents:  repo.NewPGIncidentRepo(db),
		themes:     repo.NewPGThemeRepo(db),
		households: repo.NewPGHouseholdRepo(db),
		users:      repo.NewPGUserRepo(db),
		sessions:   auth.NewStore(rdb, 24*time.Hour),
		broker:     realtime.NewRedisBroker(rdb, a.log),
		cache:      cache.NewFeedCache(rdb, a.cfg.Redis.DefaultTTL.Duration()),
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	if a.stopHub != nil {
		a.stopHub()
		select {
		case <-a.hubDone:
		case <-ctx.Done():
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

// NewPostgres opens and pings a pgx pool.
func NewPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

// NewRedis opens and pings a Redis client.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// RunMigrations applies every pending goose migration in dir.
func RunMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, log *zap.Logger, be backend, hub *realtime.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "Cookie"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, log, be, hub)
	return r
}
