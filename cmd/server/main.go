package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/db"
	"auth-service/internal/db/migrate"
	"auth-service/internal/identity/service"
	"auth-service/internal/logging"
	"auth-service/internal/security"
	"auth-service/internal/server"
	"auth-service/internal/telemetry"
	telemetryotel "auth-service/internal/telemetry/otel"
	userrepo "auth-service/internal/user/repository"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.SetDefault(cfg.ServiceName, version, cfg.LogFormat, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, version, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	if cfg.MigrateOnStart {
		if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	auth, err := service.NewAuthService(
		userrepo.NewPostgresRepository(pool),
		security.NewHasher(cfg.BcryptCost),
		security.NewTokenSigner(cfg.JWTIssuer),
		security.DefaultIDGenerator,
		cfg.Session(),
		logger,
	)
	if err != nil {
		return err
	}
	auth.SetEventEmitter(telemetryotel.NewEventEmitter(providers.LoggerProvider))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	s := server.NewServer(logger)
	server.RegisterServices(s, server.Deps{Auth: auth, HealthPinger: pool})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		serveErr <- s.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gRPC server")
	s.GracefulStop()
	// Let in-flight async event emits finish before the providers shut down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	logger.Info("gRPC server stopped")
	return nil
}
