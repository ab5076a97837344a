package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medrec/internal/config"
	"github.com/jwalitptl/medrec/internal/email"
	"github.com/jwalitptl/medrec/internal/handler/health"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/repository/memory"
	"github.com/jwalitptl/medrec/internal/repository/postgres"
	"github.com/jwalitptl/medrec/internal/router"
	"github.com/jwalitptl/medrec/internal/service/record"
	"github.com/jwalitptl/medrec/internal/session"
	"github.com/jwalitptl/medrec/internal/storage"
	"github.com/jwalitptl/medrec/pkg/logger"
	"github.com/jwalitptl/medrec/pkg/security"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "medrec",
		Short:         "Medical records web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(auditCleanupCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app holds what every command needs: config, logger and a repository set.
type app struct {
	cfg   *config.Config
	db    *sqlx.DB
	repos repository.Set
}

func openApp(inMemory bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if inMemory {
		log.Warn().Msg("using in-memory storage, data is lost on exit")
		return &app{cfg: cfg, repos: memory.New().Repositories()}, nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Name).Msg("connected to database")
	return &app{cfg: cfg, db: db, repos: postgres.NewRepositories(db)}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func serveCmd() *cobra.Command {
	var inMemory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(inMemory)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServer(cmd.Context(), a, inMemory)
		},
	}
	cmd.Flags().BoolVar(&inMemory, "memory", false, "keep all data in process instead of Postgres")
	return cmd
}

func runServer(ctx context.Context, a *app, inMemory bool) error {
	cfg := a.cfg

	if a.db != nil {
		n, err := postgres.Migrate(ctx, a.db)
		if err != nil {
			return err
		}
		log.Info().Int("applied", n).Msg("database migrations checked")
	}

	var store session.Store
	if cfg.Redis.URL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		store = session.NewRedisStore(client)
		log.Info().Msg("using Redis session store")
	} else {
		store = session.NewMemoryStore(10 * time.Minute)
	}
	sessions := session.NewManager(store, session.Options{
		Secret:      cfg.Session.Secret,
		TTL:         cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
		CookieName:  cfg.Session.CookieName,
		Secure:      cfg.Session.Secure,
	})

	var files record.Attachments
	if inMemory {
		files = storage.New(afero.NewMemMapFs())
	} else {
		fs, err := storage.NewOS(cfg.Storage.Root)
		if err != nil {
			return err
		}
		files = fs
	}

	var pinger health.Pinger
	if a.db != nil {
		pinger = a.db
	}

	r := router.NewRouter(router.Dependencies{
		Repos:    a.repos,
		Sessions: sessions,
		Files:    files,
		Mailer:   email.New(cfg.SMTP),
		Hasher:   security.NewBcryptHasher(0),
		DB:       pinger,
	}, router.Config{
		Mode:           cfg.Server.Mode,
		RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:      cfg.RateLimit.Burst,
		RateLimitOff:   !cfg.RateLimit.Enabled,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		HSTS:           cfg.Session.Secure,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
