package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"canvass/internal/auth"
	"canvass/internal/cache"
	"canvass/internal/config"
	"canvass/internal/db"
	"canvass/internal/handler"
	"canvass/internal/logging"
	"canvass/internal/middleware"
	"canvass/internal/repository"
	"canvass/internal/router"
	"canvass/internal/service"
)

// @title Canvass Records API
// @version 1.0
// @description Multi-user record keeping with per-owner isolation and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewSlogLogger(logging.New("error", "json")).Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	log := logging.NewSlogLogger(logging.New(cfg.LogLevel, cfg.LogFormat))
	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx := context.Background()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gormDB) }()

	if cfg.ResetDB {
		log.Warn(ctx, "RESET_DB set, dropping tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}

	var cacheClient *cache.Client
	if cfg.RedisEnabled {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := cacheClient.Ping(ctx); err != nil {
			// lookups fall through to the database while redis is down
			log.Warn(ctx, "redis unreachable, identity cache degraded", "addr", cfg.RedisAddr, "error", err)
		}
		defer func() { _ = cacheClient.Close() }()
	}

	// Repositories
	identityRepo := repository.NewIdentityRepository(gormDB)
	recordRepo := repository.NewRecordRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	// Services
	identityService := service.NewIdentityService(identityRepo, cacheClient)
	authService := service.NewAuthService(identityRepo, hasher, jwtService)
	recordService := service.NewRecordService(recordRepo)

	e := echo.New()
	router.Register(e, cfg, log, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Me:      handler.NewMeHandler(log),
		Records: handler.NewRecordHandler(recordService, log),
	}, middleware.AuthGate(jwtService, identityService, log))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		log.Info(ctx, "listening", "addr", addr, "driver", cfg.DBDriver, "token_ttl", jwtService.TTL().String())
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-sig:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	log.Info(ctx, "shutting down")
	return e.Shutdown(shutdownCtx)
}
