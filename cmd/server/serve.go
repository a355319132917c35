package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/controle-estoque/internal/adapter/cache"
	"github.com/arturoeanton/controle-estoque/internal/adapter/identity"
	"github.com/arturoeanton/controle-estoque/internal/adapter/store"
	"github.com/arturoeanton/controle-estoque/internal/handler"
	"github.com/arturoeanton/controle-estoque/internal/middleware"
	"github.com/arturoeanton/controle-estoque/internal/router"
	"github.com/arturoeanton/controle-estoque/internal/service"
	"github.com/arturoeanton/controle-estoque/internal/session"
)

const keyPrefix = "estoque"

var serveFlags = withEnvFile(map[string]cobraflags.Flag{})

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting",
		"app", cfg.AppName,
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"database", cfg.DSN(),
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pgStore.Close()

	if cfg.MigrateOnStart {
		if _, err := pgStore.MigrateUp(ctx, store.Migrations()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// ── Redis ────────────────────────────────────────────────────────────
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sessionStore := cache.NewSessionStore(rdb, keyPrefix)
	flashStore := cache.NewFlashStore(rdb, keyPrefix, cfg.FlashTTL)

	// ── Identity ─────────────────────────────────────────────────────────
	hasher, err := identity.NewArgon2Hasher(identity.DefaultArgon2Params)
	if err != nil {
		return err
	}
	tokens, err := identity.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	bus := identity.NewEventBus()
	provider := identity.NewProvider(pgStore, sessionStore, hasher, tokens, bus, cfg.SessionTTL)

	sessions := session.New(provider, pgStore)
	if err := sessions.Start(ctx); err != nil {
		return err
	}
	defer sessions.Stop()

	// ── Services ─────────────────────────────────────────────────────────
	products := service.NewProductService(pgStore)
	suppliers := service.NewSupplierService(pgStore)
	movements := service.NewMovementService(pgStore)
	users := service.NewUserService(pgStore, provider)

	// ── Handlers ─────────────────────────────────────────────────────────
	opts := handler.Options{
		SkipFetch:     cfg.IsTest(),
		SecureCookies: cfg.AppEnv == "production",
	}
	flash := handler.NewFlash(flashStore)
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(sessions, opts),
		Home:      handler.NewHomeHandler(cfg.AppName, sessions),
		Products:  handler.NewProductHandler(products, flash, opts),
		Movements: handler.NewMovementHandler(movements, products, flash, opts),
		Suppliers: handler.NewSupplierHandler(suppliers, flash, opts),
		Users:     handler.NewUserHandler(users, flash, opts),
		Audit:     handler.NewAuditHandler(pgStore),
		Events:    handler.NewEventsHandler(provider),
	}

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))
	app.Use(middleware.AuditMiddleware(pgStore))

	router.Mount(app, sessions, router.Table(handlers))

	// ── Start ────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("fiber listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
