package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/hub"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/resume"
	"github.com/jonathan/interview-coach/internal/server"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/session"
	"github.com/jonathan/interview-coach/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST, SSE and websocket API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	logStartup(logger, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := newGateway(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = gw.Close() }()

	var database *db.DB
	if cfg.Database.URL != "" {
		database, err = db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	store, closeStore, err := openSessionStore(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeStore()

	matcher, err := resume.NewMatcher(gw, 256, logger)
	if err != nil {
		return err
	}

	h := hub.New(0, logger)
	deps := server.Deps{
		Engine:      interview.NewEngine(gw, hub.SessionEmitter{Hub: h}, logger),
		Registry:    session.NewRegistry(store, logger),
		Hub:         h,
		Parser:      resume.NewParser(gw, logger),
		Matcher:     matcher,
		Letters:     resume.NewCoverLetterWriter(gw),
		Jobs:        fetch.NewJobFetcher(fetch.DefaultOptions(), 128, 30*time.Minute, logger),
		Limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}

	if cfg.Storage.Endpoint != "" {
		s3, err := storage.NewS3Store(cfg.Storage)
		if err != nil {
			return err
		}
		deps.Storage = s3
	}

	if database != nil {
		if err := wireAccounts(&deps, cfg, database); err != nil {
			return err
		}
	} else {
		logger.Warn("database.url not set; account and résumé routes are disabled")
	}

	srv, err := server.New(cfg.Server.Port, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

func wireAccounts(deps *server.Deps, cfg *config.Config, database *db.DB) error {
	jwtCfg, err := cfg.Auth.JWT()
	if err != nil {
		return err
	}
	passwords, err := cfg.Auth.Password()
	if err != nil {
		return err
	}
	deps.DB = database
	deps.JWT = server.NewJWTService(jwtCfg)
	deps.Passwords = passwords
	return nil
}

// openSessionStore picks the interview session backend named in config.
func openSessionStore(ctx context.Context, cfg *config.Config, database *db.DB) (session.Store, func(), error) {
	nop := func() {}
	switch cfg.Session.Store {
	case config.StoreSQLite:
		s, err := session.OpenSQLite(ctx, cfg.Session.SQLitePath)
		if err != nil {
			return nil, nop, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		if database == nil {
			return nil, nop, fmt.Errorf("session store %q requires a database", config.StorePostgres)
		}
		return session.NewPostgresStore(database.Pool()), nop, nil
	default:
		return session.NewMemoryStore(), nop, nil
	}
}

func logStartup(logger *zap.Logger, cfg *config.Config) {
	logger.Info("configuration loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("session_store", cfg.Session.Store),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("storage", cfg.Storage.Endpoint != ""),
		zap.Bool("accounts", cfg.Database.URL != ""))
}
