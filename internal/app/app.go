package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"

	"github.com/productbazar/bazar/internal/config"
	"github.com/productbazar/bazar/internal/coordinator"
	"github.com/productbazar/bazar/internal/httpserver"
	"github.com/productbazar/bazar/internal/httpserver/deps"
	"github.com/productbazar/bazar/internal/logger"
	"github.com/productbazar/bazar/internal/redis"
	"github.com/productbazar/bazar/internal/scheduler"
	"github.com/productbazar/bazar/internal/search"
	"github.com/productbazar/bazar/internal/session"
	"github.com/productbazar/bazar/internal/sources/lexicon"
	redisstore "github.com/productbazar/bazar/internal/store/redis"
	"github.com/productbazar/bazar/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Registry
	reloader    *scheduler.LexiconReloader
	sweeper     *scheduler.SessionSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	// The planner starts on the built-in lexicon; the reloader swaps in the
	// operator's file when one is configured.
	planner := search.NewPlanner(lexicon.Default())

	sessions := session.NewRegistry(session.Options{
		Upstream: coordinator.Options{
			BaseURL:       cfg.UpstreamURL,
			Timeout:       cfg.RequestTimeout,
			RetryBase:     cfg.RetryBase,
			MaxConcurrent: cfg.MaxConcurrent,
		},
		SeenCapacity: cfg.SeenCapacity,
	}, loggerClient)

	var reloader *scheduler.LexiconReloader
	var reloadTrigger chan struct{}
	if cfg.LexiconFile != "" {
		loggerClient.Info("lexicon file configured, initializing reloader",
			logger.String("file", cfg.LexiconFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewLexiconReloader(
			cfg.LexiconFile,
			planner,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("no lexicon file configured, using built-in entries")
	}

	sweeper := scheduler.NewSessionSweeper(
		sessions,
		store,
		loggerClient,
		cfg.SweepInterval,
		cfg.SessionTTL,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:               loggerClient,
		StartTime:            time.Now(),
		Version:              version.Version,
		Commit:               version.Commit,
		BuildDate:            version.BuildDate,
		GoVersion:            version.GoVersion,
		TimeNow:              time.Now,
		Sessions:             sessions,
		Store:                store,
		RedisClient:          redisClient,
		Planner:              planner,
		Validate:             newValidator(),
		DefaultPageSize:      cfg.DefaultPageSize,
		SessionTTL:           cfg.SessionTTL,
		CrumbWindow:          cfg.CrumbWindow,
		TrustProxy:           cfg.TrustProxy,
		LexiconReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		reloader:    reloader,
		sweeper:     sweeper,
	}
}

// newValidator builds the submission validator with field errors keyed by
// json names rather than Go field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Bazar v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Bazar %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start lexicon reloader (if a file is configured)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start lexicon reloader: %w", err)
		}
		a.logger.Info("lexicon reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// Start session sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}
	a.logger.Info("session sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval),
		logger.Duration("ttl", a.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Bazar stopped cleanly")
	return nil
}
