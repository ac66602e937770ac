package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/config"
	"github.com/MrSnakeDoc/voicelist/internal/dialog"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/voicelist/internal/locale"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
	"github.com/MrSnakeDoc/voicelist/internal/nlu"
	"github.com/MrSnakeDoc/voicelist/internal/redis"
	"github.com/MrSnakeDoc/voicelist/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/voicelist/internal/store/redis"
	"github.com/MrSnakeDoc/voicelist/internal/utils"
	"github.com/MrSnakeDoc/voicelist/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.CatalogReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis holds every user record: fail fast if unavailable
	redisClient, err := redis.Connect(context.Background(), redis.ConnectOptions{
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
		loggerClient.Error("failed to connect to redis", logger.Error(err))
		os.Exit(1)
	}

	pack, err := loadPack(cfg)
	if err != nil {
		loggerClient.Error("failed to load locale pack", logger.Error(err))
		os.Exit(1)
	}
	loggerClient.Info("locale pack loaded",
		logger.String("locale", cfg.Locale),
		logger.String("file", cfg.LocaleFile))

	// Filled by the reloader on Start
	holder := catalog.NewHolder(nil)

	store := redisstore.NewStore(redisClient, nil)
	engine := dialog.New(
		store,
		pack,
		nlu.NewDateParser(pack.Dates, nil),
		nlu.NewShoppingExtractor(pack.Shopping, holder),
		loggerClient,
		cfg.TurnTimeout,
	)

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewCatalogReloader(
		cfg.CatalogFile,
		holder,
		loggerClient,
		cfg.CatalogReloadSchedule,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		CORSOrigins:        cfg.CORSOrigins,
		TrustProxy:         cfg.TrustProxy,
		Locale:             cfg.Locale,
		CatalogFile:        cfg.CatalogFile,
		RedisClient:        redisClient,
		Store:              store,
		Engine:             engine,
		Catalog:            holder,
		SearchLimit:        cfg.SearchLimit,
		SearchBurst:        cfg.SearchBurst,
		SearchRefillPerMin: cfg.SearchRefillPerMin,
		ReloadTrigger:      reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		reloader:    reloader,
	}
}

// loadPack prefers a custom pack file over the embedded one.
func loadPack(cfg *config.Config) (*locale.Pack, error) {
	if cfg.LocaleFile != "" {
		return locale.LoadFile(cfg.LocaleFile)
	}
	return locale.Load(cfg.Locale)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Voicelist v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Voicelist %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.String("schedule", a.cfg.CatalogReloadSchedule))

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
		a.reloader.Stop()
		utils.CloseLogged(a.redisClient, "redis", a.logger)
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.redisClient, "redis", a.logger)

	a.logger.Info("✅ Voicelist stopped cleanly")
	return nil
}
