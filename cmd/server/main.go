package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/chess-server/internal/auth"
	"github.com/benbeisheim/chess-server/internal/config"
	"github.com/benbeisheim/chess-server/internal/controller"
	"github.com/benbeisheim/chess-server/internal/service"
	"github.com/benbeisheim/chess-server/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	results, err := openResults(cfg.ResultsDB)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.ResultsDB).Msg("failed to open results store")
	}
	defer results.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(func(c *fiber.Ctx) error {
		log.Debug().Str("method", c.Method()).Str("path", c.Path()).Msg("incoming request")
		return c.Next()
	})

	// Initialize services
	gameManager := service.NewGameManager(ctx, cfg.MatchmakingInterval)
	gameService := service.NewGameService(gameManager, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), results)

	controller.RegisterRoutes(app, gameService, cfg.OutboxSize)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting chess server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func openResults(dsn string) (store.ResultStore, error) {
	if dsn == "" {
		return store.NewMemory(), nil
	}
	return store.NewSQLite(dsn)
}
