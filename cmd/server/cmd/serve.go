package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hackpoint/server/internal/api"
	"github.com/hackpoint/server/internal/api/handlers"
	"github.com/hackpoint/server/internal/api/middleware"
	"github.com/hackpoint/server/internal/auth"
	"github.com/hackpoint/server/internal/config"
	"github.com/hackpoint/server/internal/domain/announcements"
	"github.com/hackpoint/server/internal/domain/certificates"
	"github.com/hackpoint/server/internal/domain/chat"
	"github.com/hackpoint/server/internal/domain/enrollments"
	"github.com/hackpoint/server/internal/domain/events"
	"github.com/hackpoint/server/internal/domain/refs"
	"github.com/hackpoint/server/internal/domain/submissions"
	"github.com/hackpoint/server/internal/domain/teams"
	"github.com/hackpoint/server/internal/domain/users"
	"github.com/hackpoint/server/internal/metrics"
	"github.com/hackpoint/server/internal/storage/elastic"
	"github.com/hackpoint/server/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Hackpoint HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server loads configuration from environment variables (a .env file
is honored when present), connects to PostgreSQL and Elasticsearch,
ensures the document-store indexes exist, bootstraps the first
organizer account if BOOTSTRAP_ORGANIZER_* is set, and shuts down
gracefully on SIGINT/SIGTERM.

Examples:
  # Start with configuration from env vars
  hackpoint serve

  # Start on a specific host and port
  hackpoint serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  hackpoint serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting hackpoint server")

	metrics.AppInfo.WithLabelValues(Version, GitCommit).Set(1)

	pool, err := connectPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init: %w", err)
	}

	esClient, err := elastic.Connect(cfg.Elastic)
	if err != nil {
		return fmt.Errorf("elasticsearch connection failed: %w", err)
	}
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = elastic.EnsureIndexes(indexCtx, esClient)
	indexCancel()
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	go dbCollector.Start(collectorCtx, 15*time.Second)
	defer collectorCancel()
	defer dbCollector.Stop()

	refsValidator := refs.NewValidator(repo.Refs())

	usersService := users.NewService(repo.Users(), logger)
	enrollmentsService := enrollments.NewService(repo.Enrollments(), repo.Events(), repo.Teams(), logger)
	eventsService := events.NewService(repo.Events(), enrollmentsService, logger)
	teamsService := teams.NewService(repo.Teams(), repo.Events(), enrollmentsService, logger)
	submissionsService := submissions.NewService(elastic.NewSubmissionStore(esClient), repo.Events(), repo.Teams(), refsValidator, logger)
	announcementsService := announcements.NewService(elastic.NewAnnouncementStore(esClient), eventsService, refsValidator, logger)
	certificatesService := certificates.NewService(elastic.NewCertificateStore(esClient), eventsService, enrollmentsService, refsValidator, logger)
	chatService := chat.NewService(elastic.NewChatStore(esClient), enrollmentsService, eventsService, refsValidator, logger)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapOrganizer(bootstrapCtx, cfg.OrganizerBootstrap, usersService, logger); err != nil {
		logger.Error().Err(err).Msg("organizer bootstrap failed")
	}
	bootstrapCancel()

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	router := api.NewRouter(cfg, api.Deps{
		JWT:       jwt,
		RateLimit: rateLimiter,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,

		Auth:          handlers.NewAuthHandler(usersService, jwt),
		Users:         handlers.NewUsersHandler(usersService),
		Events:        handlers.NewEventsHandler(eventsService),
		Teams:         handlers.NewTeamsHandler(teamsService),
		Enrollments:   handlers.NewEnrollmentsHandler(enrollmentsService),
		Submissions:   handlers.NewSubmissionsHandler(submissionsService),
		Announcements: handlers.NewAnnouncementsHandler(announcementsService),
		Certificates:  handlers.NewCertificatesHandler(certificatesService),
		Chat:          handlers.NewChatHandler(chatService),
		Health:        handlers.NewHealthHandler(pool, esClient, Version),
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func connectPostgres(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// bootstrapOrganizer creates the first organizer account from env
// configuration. An already-registered email is not an error, so the
// bootstrap is safe to run on every start.
func bootstrapOrganizer(ctx context.Context, cfg config.OrganizerBootstrapConfig, svc *users.Service, logger zerolog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	name := cfg.Name
	if name == "" {
		name = "Organizer"
	}

	user, err := svc.Signup(ctx, users.SignupParams{
		Name:     name,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     string(auth.RoleOrganizer),
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			logger.Debug().Str("email", cfg.Email).Msg("bootstrap organizer already exists")
			return nil
		}
		return err
	}

	logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("bootstrap organizer created")
	return nil
}
