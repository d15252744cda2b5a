package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/feedhub/internal/config"
	"github.com/iudanet/feedhub/internal/crypto"
	"github.com/iudanet/feedhub/internal/server"
	"github.com/iudanet/feedhub/internal/server/auth"
	"github.com/iudanet/feedhub/internal/server/feed"
	"github.com/iudanet/feedhub/internal/server/images"
	"github.com/iudanet/feedhub/internal/server/jwt"
	"github.com/iudanet/feedhub/internal/server/middleware"
	"github.com/iudanet/feedhub/internal/server/notify"
	"github.com/iudanet/feedhub/internal/server/storage"
	"github.com/iudanet/feedhub/internal/server/storage/memory"
	"github.com/iudanet/feedhub/internal/server/storage/mongo"
	"github.com/iudanet/feedhub/internal/server/storage/sqlite"
	"github.com/iudanet/feedhub/internal/telemetry"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const serviceName = "feedhub-server"

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	showVersion := fs.Bool("version", false, "Show version information")

	// -version не требует остальной конфигурации
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Server) error {
	logger.Info("starting feedhub server",
		slog.String("version", Version),
		slog.String("storage", cfg.StorageDriver),
		slog.String("addr", cfg.HTTPAddr))

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, Version, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to flush traces", slog.Any("error", err))
		}
	}()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	tokens, err := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	imageStore, err := images.NewStore(logger, cfg.ImageDir)
	if err != nil {
		return err
	}

	hub := notify.NewHub(logger, notify.DefaultBufferSize)
	svc := feed.NewService(logger, store, tokens, crypto.NewHasher(crypto.PasswordCost), hub, imageStore)

	srv, err := server.New(logger, cfg.HTTPAddr, cfg.ShutdownTimeout, server.Deps{
		Service:       svc,
		Authenticator: auth.NewAuthenticator(tokens),
		Images:        imageStore,
		Hub:           hub,
		Store:         store,
		Limiter:       middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
		Version:       Version,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

func openStorage(ctx context.Context, cfg *config.Server) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	case config.DriverMongo:
		s, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, errors.New("unknown storage driver: " + cfg.StorageDriver)
	}
}

func newLogger(cfg *config.Server) *slog.Logger {
	// уровень уже проверен в config.Validate
	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func printVersion() {
	fmt.Printf("Feedhub Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
