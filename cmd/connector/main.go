package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/user/linkedin-connector/internal/adapter/chromedp_browser"
	"github.com/user/linkedin-connector/internal/adapter/file"
	"github.com/user/linkedin-connector/internal/adapter/postgres"
	redis_adapter "github.com/user/linkedin-connector/internal/adapter/redis"
	"github.com/user/linkedin-connector/internal/delivery/http/handler"
	"github.com/user/linkedin-connector/internal/delivery/http/router"
	"github.com/user/linkedin-connector/internal/repository"
	"github.com/user/linkedin-connector/internal/usecase"
	"github.com/user/linkedin-connector/pkg/config"
	"github.com/user/linkedin-connector/pkg/logger"
	"github.com/user/linkedin-connector/pkg/metrics"
)

const (
	viewportWidth  = 1080
	viewportHeight = 1024
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		stealth    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "connector",
		Short:         "Send LinkedIn connection requests to the people of a search",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				slog.Error("Could not load config", "path", configPath, "error", err)
				return err
			}
			cfg.Headless = stealth
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&stealth, "stealth", false, "run the browser headless")
	cmd.Flags().StringVar(&configPath, "config", ".env", "path to the env file")

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Logger ---
	log, closeLog := logger.Init(os.Stdout, cfg.LogDir, logger.ParseLevel(cfg.LogLevel))
	defer closeLog()
	for _, key := range cfg.Fallbacks {
		log.Warn("Invalid config value, using default", "key", key)
	}

	// --- Metrics ---
	metrics.Init()

	// --- Repositories ---
	sessions, closeSessions, err := newSessionRepo(ctx, cfg)
	if err != nil {
		log.Error("Unable to open session store", "backend", cfg.SessionBackend, "error", err)
		return err
	}
	defer closeSessions()

	var runs repository.RunRepository
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("Unable to connect to database", "error", err)
			return err
		}
		defer dbpool.Close()

		runRepo := postgres.NewRunRepo(dbpool)
		if err := runRepo.Ping(ctx); err != nil {
			log.Error("Unable to connect to database", "error", err)
			return err
		}
		if err := runRepo.EnsureSchema(ctx); err != nil {
			log.Error("Unable to prepare run history tables", "error", err)
			return err
		}
		runs = runRepo
		log.Info("Run history enabled")
	}

	// --- Browser ---
	browser, err := chromedp_browser.Launch(ctx, chromedp_browser.Options{
		Headless:       cfg.Headless,
		Timeout:        cfg.Timeout(),
		KeystrokeDelay: cfg.KeystrokeDelay(),
		Identity:       chromedp_browser.NewIdentityPool(cfg.ProxyServers, nil).Next(),
		Logger:         log,
	})
	if err != nil {
		log.Error("Unable to launch browser", "error", err)
		return err
	}
	defer browser.Close()

	// --- Use Cases ---
	composer, err := usecase.NewMessageComposer(usecase.DefaultNoteTemplates, nil)
	if err != nil {
		return err
	}
	lo, hi := cfg.DelayRange()
	reporter := usecase.NewReporter(uuid.NewString(), cfg.SearchURL, log, runs)

	connector := usecase.NewConnectorUseCase(
		browser.Page(),
		usecase.NewSessionKeeper(sessions, reporter.Logger()),
		usecase.NewDelayPolicy(lo, hi, nil),
		composer,
		reporter,
		usecase.Options{
			Login:          cfg.Login,
			Password:       cfg.Password,
			SearchURL:      cfg.SearchURL,
			MaxPages:       cfg.MaxPage,
			MaxActions:     cfg.MaxClickedProfiles,
			AddNote:        cfg.ShouldAddMessage,
			Timeout:        cfg.Timeout(),
			KeystrokeDelay: cfg.KeystrokeDelay(),
			Scroll: repository.ScrollOptions{
				StepPx:     cfg.ScrollStepPx,
				IntervalMS: cfg.ScrollIntervalMS,
				MaxSteps:   cfg.ScrollMaxSteps,
			},
			ViewportWidth:  viewportWidth,
			ViewportHeight: viewportHeight,
		},
	)

	// --- Status Server ---
	if cfg.MetricsAddr != "" {
		server := &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      router.New(handler.NewHandler(reporter.Progress())),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		go func() {
			log.Info("Starting status server", "addr", cfg.MetricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Status server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	res, err := connector.Run(ctx)
	if err != nil {
		log.Warn("Run interrupted", "termination", string(res.Termination), "error", err)
	}
	return nil
}

func newSessionRepo(ctx context.Context, cfg *config.Config) (repository.SessionRepository, func(), error) {
	switch cfg.SessionBackend {
	case "", "file":
		return file.NewSessionRepo(cfg.CookiesPath), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redis_adapter.NewSessionRepo(rdb, cfg.Login), func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
