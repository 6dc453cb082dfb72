package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/audit"
	"github.com/minrisk/risk-management/internal/core/events"
	"github.com/minrisk/risk-management/internal/identity"
	"github.com/minrisk/risk-management/internal/incident"
	incidentpg "github.com/minrisk/risk-management/internal/incident/postgres"
	"github.com/minrisk/risk-management/internal/invitation"
	invitationpg "github.com/minrisk/risk-management/internal/invitation/postgres"
	"github.com/minrisk/risk-management/internal/llm"
	"github.com/minrisk/risk-management/internal/organization"
	organizationpg "github.com/minrisk/risk-management/internal/organization/postgres"
	"github.com/minrisk/risk-management/internal/profile"
	profilepg "github.com/minrisk/risk-management/internal/profile/postgres"
	regulatorpg "github.com/minrisk/risk-management/internal/regulator/postgres"
	"github.com/minrisk/risk-management/internal/risk"
	riskpg "github.com/minrisk/risk-management/internal/risk/postgres"
	"github.com/minrisk/risk-management/internal/suggestion"
	suggestionpg "github.com/minrisk/risk-management/internal/suggestion/postgres"
	"github.com/minrisk/risk-management/internal/transport/rest"
	"github.com/minrisk/risk-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Auth     *identity.Authenticator
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Auth, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()
	if log == nil {
		log = slog.Default()
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	// Event bus with the audit trail subscribed before anything publishes.
	bus := events.NewEventBus(log)
	audit.Subscribe(bus, audit.NewRepository(gormDB), log)

	// Repositories
	profileRepo := profilepg.NewProfileRepository(gormDB)
	invitationRepo := invitationpg.NewInvitationRepository(gormDB)
	organizationRepo := organizationpg.NewOrganizationRepository(gormDB)
	regulatorRepo := regulatorpg.NewRegulatorRepository(gormDB)
	riskRepo := riskpg.NewRiskRepository(gormDB)
	incidentRepo := incidentpg.NewIncidentRepository(gormDB)
	suggestionRepo := suggestionpg.NewSuggestionRepository(gormDB)

	// External collaborators
	identityClient := identity.NewClient(identity.Config{
		AdminAPIURL:    config.Identity.AdminAPIURL,
		ServiceRoleKey: config.Identity.ServiceRoleKey,
		RequestTimeout: config.Identity.RequestTimeout,
	}, log)
	aiClient := llm.NewClient(config.AI, log)

	// Services
	profileService := profile.NewService(profileRepo, bus, log)
	invitationService := invitation.NewService(
		invitationRepo,
		profileRepo,
		organizationRepo,
		regulatorRepo,
		identityClient,
		bus,
		config.Server.BaseURL,
		config.Security.BCryptCost,
		log,
	)
	organizationService := organization.NewService(organizationRepo, log)
	riskService := risk.NewService(riskRepo, log)
	incidentService := incident.NewService(incidentRepo, log)
	suggestionService := suggestion.NewService(
		suggestionRepo,
		incidentRepo,
		riskRepo,
		aiClient,
		config.AI.ConfidenceThreshold,
		log,
	)

	verifier := identity.NewJWTVerifier(config.Security.JWTSecret)
	auth := identity.NewAuthenticator(verifier, profileRepo, log)

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Auth:   auth,
		Handlers: rest.Handlers{
			Profile:      profile.NewHandler(profileService),
			Invitation:   invitation.NewHandler(invitationService),
			Organization: organization.NewHandler(organizationService),
			Risk:         risk.NewHandler(riskService),
			Incident:     incident.NewHandler(incidentService),
			Suggestion:   suggestion.NewHandler(suggestionService),
		},
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
