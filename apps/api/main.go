package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	platformlogging "github.com/proptrack/proptrack/platform/go/logging"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	AuthProvider      string `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	DataSource   string `env:"DATA_SOURCE" envDefault:"memory"` // memory | postgres
	DatabaseURL  string `env:"DATABASE_URL"`
	DataFallback bool   `env:"DATA_FALLBACK" envDefault:"true"` // serve the fixture when postgres is unreachable at startup

	AssetBackend string        `env:"ASSET_BACKEND" envDefault:"static"` // static | gcs
	AssetBaseURL string        `env:"ASSET_BASE_URL" envDefault:"/assets"`
	AssetBucket  string        `env:"ASSET_BUCKET"`
	AssetPrefix  string        `env:"ASSET_PREFIX" envDefault:"properties"`
	AssetURLTTL  time.Duration `env:"ASSET_URL_TTL" envDefault:"15m"`
}

func main() {
	ctx := context.Background()

	// .env files are optional; real environment variables win.
	_ = godotenv.Load(".env.local", ".env")

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("wire dependencies", zap.Error(err))
	}
	defer cleanup()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, deps, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server",
			zap.String("port", cfg.Port),
			zap.String("data_source", deps.sourceKind),
			zap.String("auth_provider", cfg.AuthProvider),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
