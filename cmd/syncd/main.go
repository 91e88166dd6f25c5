package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fekuna/superfume-sync/config"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/lock"
	"github.com/fekuna/superfume-sync/internal/remote"
	"github.com/fekuna/superfume-sync/internal/schema"
	"github.com/fekuna/superfume-sync/internal/secret"
	"github.com/fekuna/superfume-sync/pkg/broker"
	"github.com/fekuna/superfume-sync/pkg/cache"
	"github.com/fekuna/superfume-sync/pkg/database"
	"github.com/fekuna/superfume-sync/pkg/i18n"
	"github.com/fekuna/superfume-sync/pkg/logger"
	"github.com/fekuna/superfume-sync/pkg/utilities"

	cartRepoPkg "github.com/fekuna/superfume-sync/internal/cart/repository"
	cartUCPkg "github.com/fekuna/superfume-sync/internal/cart/usecase"

	prodListenerPkg "github.com/fekuna/superfume-sync/internal/product/listener"
	prodRepoPkg "github.com/fekuna/superfume-sync/internal/product/repository"
	prodUCPkg "github.com/fekuna/superfume-sync/internal/product/usecase"

	userRepoPkg "github.com/fekuna/superfume-sync/internal/user/repository"
	userUCPkg "github.com/fekuna/superfume-sync/internal/user/usecase"
)

func main() {
	// 1. Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.App.AppEnv != "production",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
		FilePath:          cfg.Logger.FilePath,
		FileMaxAge:        cfg.Logger.FileMaxAge,
	})
	defer appLogger.Sync()

	// 3. Messages
	i18n.Init()
	for _, path := range cfg.I18n.ExtraLocales {
		if err := i18n.Load(path); err != nil {
			appLogger.Warn("Failed to load locale file", zap.String("path", path), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Local store
	db, err := database.NewSQLite(&database.Config{
		Path:         cfg.SQLite.Path,
		MaxOpenConns: cfg.SQLite.MaxOpenConns,
		BusyTimeout:  cfg.SQLite.BusyTimeout,
	})
	if err != nil {
		appLogger.Fatal("Could not open local database", zap.Error(err))
	}
	defer db.Close()
	if err := schema.Migrate(ctx, db); err != nil {
		appLogger.Fatal("Could not migrate local database", zap.Error(err))
	}
	appLogger.Info("Opened local database", zap.String("path", cfg.SQLite.Path))

	// 5. Repositories
	hub := live.NewHub()
	prodRepo := prodRepoPkg.NewSQLiteRepository(db, hub)
	userRepo := userRepoPkg.NewSQLiteRepository(db, hub)
	cartRepo := cartRepoPkg.NewSQLiteRepository(db, hub)

	// 6. Locking
	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Lock.Backend == "redis" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, lock.RedisLockerConfig{
			TTL:      cfg.Lock.TTL,
			Attempts: cfg.Lock.Attempts,
			Backoff:  cfg.Lock.Backoff,
		}, appLogger)
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 7. Remote
	tokens := secret.NewMemoryStore()
	client := remote.NewClient(&cfg.Remote, tokens, appLogger)

	// 8. UseCases
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, client, locker, utilities.NewIDGenerator(cfg.Snowflake.Node), &cfg.Sync, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, client, tokens, cfg.App.Language, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodRepo, client, locker, hub, appLogger)

	g, gctx := errgroup.WithContext(ctx)

	// 9. Catalog events
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

		catalogListener := prodListenerPkg.NewCatalogListener(consumer, prodUC, appLogger)
		g.Go(func() error {
			catalogListener.Start(gctx)
			return nil
		})
	}

	// 10. Catalog feed
	if cfg.Sync.RefreshOnStart {
		g.Go(func() error {
			sub, err := prodUC.AvailableProducts(gctx)
			if err != nil {
				return err
			}
			defer sub.Close()
			for products := range sub.C() {
				appLogger.Info("Available catalog", zap.Int("count", len(products)))
			}
			return sub.Err()
		})
	}

	// 11. Restored session
	if u, err := userUC.Current(ctx); err != nil {
		appLogger.Warn("Could not restore session", zap.Error(err))
	} else if u != nil {
		totals, err := cartUC.ComputeTotals(ctx, u.ID)
		if err != nil {
			appLogger.Warn("Could not read cart", zap.Error(err))
		} else {
			appLogger.Info("Session restored",
				zap.Int64("user_id", u.ID),
				zap.Int("cart_lines", totals.LineCount),
				zap.Int64("cart_total", totals.TotalPrice),
			)
		}
	}

	appLogger.Info("Sync daemon running")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		appLogger.Error("Catalog feed failed", zap.Error(err))
	} else {
		<-ctx.Done()
	}

	appLogger.Info("Shutting down, waiting for in-flight refreshes...")
	prodUC.Wait()
	appLogger.Info("Sync daemon stopped")
}
