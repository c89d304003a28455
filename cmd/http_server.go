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
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/internal/audit"
	auditPostgres "github.com/coparently/coparently/internal/audit/postgres"
	"github.com/coparently/coparently/internal/auth"
	"github.com/coparently/coparently/internal/category"
	"github.com/coparently/coparently/internal/core/events"
	"github.com/coparently/coparently/internal/expense"
	expensePostgres "github.com/coparently/coparently/internal/expense/postgres"
	"github.com/coparently/coparently/internal/family"
	familyPostgres "github.com/coparently/coparently/internal/family/postgres"
	"github.com/coparently/coparently/internal/mailer"
	"github.com/coparently/coparently/internal/messaging"
	messagingPostgres "github.com/coparently/coparently/internal/messaging/postgres"
	"github.com/coparently/coparently/internal/notification"
	notificationPostgres "github.com/coparently/coparently/internal/notification/postgres"
	"github.com/coparently/coparently/internal/payment"
	paymentPostgres "github.com/coparently/coparently/internal/payment/postgres"
	"github.com/coparently/coparently/internal/transport/rest"
	"github.com/coparently/coparently/internal/trigger"
	triggerPostgres "github.com/coparently/coparently/internal/trigger/postgres"
	"github.com/coparently/coparently/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Mailer *mailer.Client
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Mailer.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	bus := events.NewEventBus(deps.Logger)

	auditRepo := auditPostgres.NewAuditRepository(deps.GormDB)
	recorder := audit.NewRecorder(auditRepo)

	familyRepo := familyPostgres.NewFamilyRepository(deps.GormDB)
	familyService := family.NewService(familyRepo, deps.Logger)

	messageRepo := messagingPostgres.NewMessageRepository(deps.GormDB)
	bridge := messaging.NewBridge(messageRepo, familyService, deps.Logger)

	expenseRepo := expensePostgres.NewExpenseRepository(deps.GormDB)
	expenseService := expense.NewService(expenseRepo, recorder, bridge, familyService, bus, deps.Logger)

	paymentRepo := paymentPostgres.NewPaymentRepository(deps.GormDB)
	paymentService := payment.NewService(paymentRepo, deps.Logger)
	paymentService.RegisterEventHandlers(bus)

	notificationRepo := notificationPostgres.NewNotificationRepository(deps.GormDB)
	notificationService := notification.NewService(notificationRepo, deps.Logger)
	notificationService.RegisterEventHandlers(bus)

	tokenRepo := triggerPostgres.NewTokenRepository(deps.GormDB)
	triggerService := trigger.NewService(
		tokenRepo,
		expenseService,
		familyService,
		familyService,
		deps.Mailer,
		bridge,
		bus,
		deps.Config.Server.BaseURL,
		deps.Logger,
	)

	verifier := auth.NewVerifier(deps.Config.Security.JWTSecret)

	handlers := rest.Handlers{
		Expense:      expense.NewHandler(expenseService),
		Trigger:      trigger.NewHandler(triggerService),
		Payment:      payment.NewHandler(paymentService),
		Messaging:    messaging.NewHandler(bridge),
		Notification: notification.NewHandler(notificationService),
		Family:       family.NewHandler(familyService),
		Category:     category.NewHandler(),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, verifier, handlers, deps.Config, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := os.Getenv("APP_ENV")
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	mailClient := mailer.NewClient(mailer.Config{
		APIURL:      config.Mail.APIURL,
		APIKey:      config.Mail.APIKey,
		FromAddress: config.Mail.FromAddress,
		SendTimeout: config.Mail.SendTimeout,
	}, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Mailer: mailClient,
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
