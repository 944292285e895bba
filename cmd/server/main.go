// @title Community Hub API
// @version 1.0
// @description Members, events, and a simulated wallet for a local community hub.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"communityhub/config"
	_ "communityhub/docs"
	"communityhub/internal/adapters/auth"
	"communityhub/internal/adapters/clock"
	"communityhub/internal/adapters/email"
	"communityhub/internal/adapters/wallet"
	httpdelivery "communityhub/internal/delivery/http"
	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
	boltrepo "communityhub/internal/repository/bolt"
	"communityhub/internal/repository/memory"
	"communityhub/internal/repository/postgres"
	redisrepo "communityhub/internal/repository/redis"
	"communityhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}()
	logger.Info("storage ready", "backend", cfg.StorageBackend)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}

	clk := clock.NewSystemClock()
	ids := clock.NewUUIDGenerator()
	tokens := auth.NewJWTService(cfg.JWTSecret)

	identity := services.NewIdentityStore(ctx, services.IdentityOptions{
		Storage:   storage,
		Clock:     clk,
		IDs:       ids,
		Hasher:    auth.NewBcryptHasher(cfg.BcryptCost),
		Emails:    services.NewEmailService(mailer, renderer, logger),
		Latency:   cfg.SimulatedLatency,
		SeedUsers: cfg.SeedUsers,
		Logger:    logger,
	})
	var seed []*domain.Event
	if cfg.SeedEvents {
		seed = demoEvents(clk.Now(), cfg.SeedUsers)
	}
	catalog := services.NewEventCatalog(services.CatalogOptions{
		Clock:   clk,
		IDs:     ids,
		Latency: cfg.SimulatedLatency,
		Seed:    seed,
		Logger:  logger,
	})
	sessions := services.NewSessionStore(ctx, services.WalletOptions{
		Storage:   storage,
		Clock:     clk,
		Addresses: wallet.NewRandomAddressGenerator(nil),
		Latency:   cfg.SimulatedLatency,
		Logger:    logger,
	})

	defer identity.Subscribe(func(u *domain.User) {
		if u == nil {
			logger.Info("session ended")
			return
		}
		logger.Info("session started", "user_id", u.ID)
	})()
	defer sessions.Subscribe(func(s domain.WalletSession) {
		logger.Info("wallet changed", "connected", s.Connected, "address", s.Address)
	})()

	mux := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Auth:     controllers.NewAuthController(logger, identity, tokens, cfg.JWTExpiry),
		Users:    controllers.NewUserController(logger, identity, catalog),
		Events:   controllers.NewEventController(logger, catalog, identity),
		Wallet:   controllers.NewWalletController(logger, sessions),
		Verifier: tokens,
		Session:  identity,
		Logger:   logger,
	})
	var handler http.Handler = middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSOrigins, handler)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage returns the configured key-value backend and a func that releases it.
func openStorage(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func() error, error) {
	switch cfg.StorageBackend {
	case config.StorageBolt:
		store, err := boltrepo.Open(cfg.BoltPath, "")
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewKeyValueRepository(db), db.Close, nil
	case config.StorageRedis:
		store := redisrepo.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "communityhub:")
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return store, store.Close, nil
	default:
		return memory.NewKeyValueStore(), func() error { return nil }, nil
	}
}
