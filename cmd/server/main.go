package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/config"
	"ledger-api/internal/handler"
	"ledger-api/internal/metrics"
	"ledger-api/internal/repository"
	"ledger-api/internal/repository/memory"
	"ledger-api/internal/repository/migrations"
	"ledger-api/internal/service"
	"ledger-api/internal/validation"
)

// stores groups the storage implementations selected at startup.
type stores struct {
	accounts service.AccountStore
	assets   service.AssetStore
	orders   service.OrderStore
	auditor  service.NegativePositionFinder
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	var st stores
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		assetStore := memory.NewAssetStore()
		st = stores{
			accounts: memory.NewAccountStore(),
			assets:   assetStore,
			orders:   memory.NewOrderStore(),
			auditor:  assetStore,
		}
	default:
		if cfg.RunMigrations {
			if err := migrations.Apply(context.Background(), cfg.DSN(), logger); err != nil {
				logger.Fatalf("Failed to apply migrations: %v", err)
			}
		}

		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}

		assetRepo := repository.NewAssetRepository(db, logger)
		st = stores{
			accounts: repository.NewAccountRepository(db, logger),
			assets:   assetRepo,
			orders:   repository.NewOrderRepository(db, logger),
			auditor:  assetRepo,
		}
	}

	passwords, err := service.NewPasswordEncoder(cfg.PasswordEncoder)
	if err != nil {
		logger.Fatalf("Invalid PASSWORD_ENCODER: %v", err)
	}

	appMetrics := metrics.New()
	emailSender := service.NewEmailSender(service.EmailSenderOptions{
		Enabled:            cfg.Email.Enabled,
		Host:               cfg.Email.SMTPHost,
		Port:               cfg.Email.SMTPPort,
		User:               cfg.Email.SMTPUser,
		Password:           cfg.Email.SMTPPass,
		InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
	}, logger)

	allowedAssets := validation.NewAssetSet(cfg.AllowedAssets...)
	logger.WithField("assets", allowedAssets.Symbols()).Info("Ledger assets configured")

	logger.Info("Initialising services...")
	accountService := service.NewAccountService(st.accounts, passwords, emailSender, logger)
	assetService := service.NewAssetService(st.assets, service.AssetServiceOptions{
		AllowedAssets: allowedAssets,
		LockStripes:   cfg.LedgerLockStripes,
		Metrics:       appMetrics,
	}, logger)
	accountAssetService := service.NewAccountAssetService(accountService, assetService, logger)
	orderService := service.NewOrderService(accountService, st.orders, service.AcceptAllOrders{}, appMetrics, logger)
	auditor := service.NewPositionAuditor(st.auditor, appMetrics, logger)

	router := handler.NewRouter(
		handler.NewAccountHandler(accountService, accountAssetService, logger),
		handler.NewOrderHandler(orderService, logger),
		handler.RouterOptions{
			AllowedOrigin: cfg.CORSAllowedOrigin,
			Metrics:       appMetrics,
		},
		logger,
	)

	c := cron.New()
	if cfg.AuditSchedule != "" {
		_, err = c.AddFunc(cfg.AuditSchedule, func() {
			if _, err := auditor.Run(context.Background()); err != nil {
				logger.WithError(err).Error("Scheduled position audit failed")
			}
		})
		if err != nil {
			logger.Fatalf("Invalid AUDIT_SCHEDULE: %v", err)
		}
		logger.WithField("schedule", cfg.AuditSchedule).Info("Position audit scheduled")
	}
	c.Start()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	<-c.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	if err := accountService.WaitForNotifications(ctx); err != nil {
		logger.Errorf("Welcome emails dropped: %v", err)
	}
	logger.Info("Server stopped")
}
