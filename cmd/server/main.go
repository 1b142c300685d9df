package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/aurahabits/aura/internal/db"
	"github.com/aurahabits/aura/internal/storage"
	"github.com/aurahabits/aura/modules"
	"github.com/aurahabits/aura/modules/habits"
	"github.com/aurahabits/aura/modules/payments"
	"github.com/aurahabits/aura/modules/profile"
	"github.com/aurahabits/aura/pkg/auth"
	"github.com/aurahabits/aura/pkg/billing"
	"github.com/aurahabits/aura/pkg/cache"
	"github.com/aurahabits/aura/pkg/config"
	"github.com/aurahabits/aura/pkg/habit"
	"github.com/aurahabits/aura/pkg/httpserver"
	"github.com/aurahabits/aura/pkg/logger"
	"github.com/aurahabits/aura/pkg/pg"
	"github.com/aurahabits/aura/pkg/redis"
	"github.com/aurahabits/aura/pkg/requestid"
	"github.com/aurahabits/aura/pkg/role"
	"github.com/aurahabits/aura/pkg/wallet"
)

type appConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"aura-api"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	PlansFile   string `env:"PLANS_FILE"`
	CachePrefix string `env:"CACHE_KEY_PREFIX" envDefault:"aura:"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    appConfig
		httpCfg   httpserver.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		authCfg   auth.Config
		stripeCfg billing.StripeConfig
	)
	for _, load := range []func() error{
		func() error { return config.Load(&appCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&authCfg) },
		func() error { return config.Load(&stripeCfg) },
	} {
		if err := load(); err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment),
		logger.WithService(appCfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, db.Migrations(), pgCfg, log); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	var store cache.Cache = cache.NewMemory()
	probes := []func(context.Context) error{pg.Healthcheck(pool)}
	if redisCfg.Enabled() {
		rdb, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close() //nolint:errcheck
		store = cache.NewRedis(rdb, appCfg.CachePrefix, log)
		probes = append(probes, redis.Healthcheck(rdb))
		log.Info("using redis cache backend")
	} else {
		log.Info("no redis configured, using in-memory cache")
	}

	verifier, err := auth.NewVerifier(authCfg)
	if err != nil {
		return fmt.Errorf("configuring token verifier: %w", err)
	}

	plans, err := role.LoadPlansFile(appCfg.PlansFile)
	if err != nil {
		return fmt.Errorf("loading plans: %w", err)
	}

	stripeProvider, err := billing.NewStripeProvider(stripeCfg, log)
	if err != nil {
		return fmt.Errorf("configuring stripe: %w", err)
	}

	users := storage.NewUsers(pool)
	reconciler := billing.NewReconciler(users, verifier,
		billing.WithProvider(stripeProvider),
		billing.WithCache(store),
		billing.WithLogger(log),
	)

	walletSvc := wallet.NewService(storage.NewWallets(pool), wallet.NewLocalProvisioner(), wallet.WithLogger(log))
	profileSvc := profile.NewService(users, walletSvc, reconciler, profile.WithLogger(log))
	habitsSvc := habits.NewService(storage.NewHabits(pool), users, habit.NewPolicy(plans),
		habits.WithCache(store),
		habits.WithLogger(log),
	)
	paymentsSvc := payments.NewService(stripeProvider, stripeProvider, reconciler, payments.WithLogger(log))

	router := modules.Router(modules.RouterOptions{
		Auth:     auth.Middleware(verifier),
		Profile:  profileSvc,
		Habits:   habitsSvc,
		Payments: paymentsSvc,
		Login:    profileSvc.HandleLogin,
		Webhook:  paymentsSvc.HandleWebhook,
		Health:   httpserver.HealthCheckHandler(log, probes...),
	})

	handler := requestid.Middleware(middleware.Recoverer(router))

	return httpserver.New(httpCfg, log).Run(ctx, handler)
}
