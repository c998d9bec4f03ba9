package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/api"
	"github.com/avaldez/poketeams/internal/auth"
	"github.com/avaldez/poketeams/internal/config"
	"github.com/avaldez/poketeams/internal/db"
	"github.com/avaldez/poketeams/internal/repository"
	"github.com/avaldez/poketeams/internal/service"
	"github.com/avaldez/poketeams/pkg/logger"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	if err = runMigrations(cfg.DSN()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	logger.Info("migrations applied")

	transactor := db.NewPgxTransactor(pool)

	teamRepo := repository.NewPgxTeamRepository(pool)
	pokemonRepo := repository.NewPgxPokemonRepository(pool)
	userRepo := repository.NewPgxUserRepository(pool)
	personRepo := repository.NewPgxPersonRepository(pool)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)

	team := service.NewTeamService(transactor).WithTeamRepo(teamRepo).WithPokemonRepo(pokemonRepo)
	pokemon := service.NewPokemonService(transactor).WithTeamRepo(teamRepo).WithPokemonRepo(pokemonRepo)
	user := service.NewUserService(tokens).WithUserRepo(userRepo).WithPersonRepo(personRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name:    "postgres",
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger).
		WithTeamService(team).
		WithPokemonService(pokemon).
		WithUserService(user).
		WithTokenManager(tokens).
		WithHealthChecker(healthChecker)

	handler.RegisterRoutes(e)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err = e.Start(":" + cfg.HTTPPort); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err = e.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func runMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
