package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-bot/internal/application/access"
	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/bot"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/backup"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-bot/internal/infrastructure/telegram"
	httpRouter "github.com/jhoicas/almacen-bot/internal/interfaces/http"
	"github.com/jhoicas/almacen-bot/pkg/config"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando bot de almacén")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("preparar esquema")
	}

	partRepo := postgres.NewPartRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockUC := inventory.NewStockUseCase(txRunner, partRepo, movementRepo)

	allowlist := access.NewFileAllowlist(cfg.Bot.AllowlistPath)
	accessSvc, err := access.NewService(ctx, cfg.Bot.AdminID, allowlist, userRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar lista de usuarios")
	}

	backupSvc := backup.NewService(txRunner, cfg.Backup.Dir, cfg.Backup.Retention, log)
	go backupSvc.Run(ctx, cfg.Backup.Interval)

	dispatcher := bot.NewDispatcher(log.WithComponent("dispatcher"), stockUC, accessSvc, backupSvc, cfg.Bot.PageSize)

	transport, err := telegram.New(cfg.Bot.Token, dispatcher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("transporte de Telegram")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:  stockUC,
		Access: accessSvc,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	go func() {
		if err := transport.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("transporte de Telegram finalizado")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}

	log.Info().Msg("bot detenido")
}
