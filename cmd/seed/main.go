// seed registers a development user for local testing.
// Idempotent: an existing dev@example.com is left as is.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/db"
	"auth-service/internal/identity/service"
	"auth-service/internal/logging"
	"auth-service/internal/security"
	userrepo "auth-service/internal/user/repository"
)

const (
	devUsername = "dev"
	devEmail    = "dev@example.com"
	devPassword = "password123"
)

func main() {
	logger := logging.SetDefault("auth-seed", "dev", "text", "info")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if cfg.IsProduction() {
		logger.Error("refusing to seed when APP_ENV=production")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	auth, err := service.NewAuthService(
		userrepo.NewPostgresRepository(pool),
		security.NewHasher(cfg.BcryptCost),
		security.NewTokenSigner(cfg.JWTIssuer),
		nil,
		cfg.Session(),
		logger,
	)
	if err != nil {
		logger.Error("auth service", "error", err)
		os.Exit(1)
	}

	res, err := auth.Register(ctx, service.SignUpRequest{
		Username: devUsername,
		Email:    devEmail,
		Password: devPassword,
		Roles:    []string{"admin", "user"},
	})
	if errors.Is(err, &service.Error{Kind: service.KindInvalidRequest, Message: "email already exists"}) {
		logger.Info("dev user already exists", "email", devEmail)
		return
	}
	if err != nil {
		logger.Error("register dev user", "error", err)
		os.Exit(1)
	}
	logger.Info("dev user created", "id", res.User.ID, "email", devEmail, "password", devPassword)
}
