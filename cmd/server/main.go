package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-backend/internal/audit"
	"crm-backend/internal/auth"
	"crm-backend/internal/camp"
	"crm-backend/internal/card"
	"crm-backend/internal/claim"
	"crm-backend/internal/clientservice"
	"crm-backend/internal/config"
	"crm-backend/internal/customer"
	"crm-backend/internal/dashboard"
	"crm-backend/internal/database"
	"crm-backend/internal/document"
	"crm-backend/internal/email"
	"crm-backend/internal/filestore"
	"crm-backend/internal/financial"
	"crm-backend/internal/meeseva"
	"crm-backend/internal/metrics"
	"crm-backend/internal/server"
	"crm-backend/internal/store"
	"crm-backend/internal/user"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	logger := log.StandardLogger()
	logger.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.IsDevelopment() {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		logger.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("database unavailable")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
	}
	if err := database.SeedAdmin(context.Background(), db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logger.WithError(err).Fatal("could not seed admin")
	}

	files, err := openFileStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("file storage unavailable")
	}

	var sender email.Sender
	if cfg.SMTPEnabled() {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		logger.Warn("SMTP_HOST not set, /api/email/send will fail")
	}

	m := metrics.New()

	users := store.NewUserStore(db)
	customers := store.NewCustomerStore(db)
	cards := store.NewCardStore(db)
	claims := store.NewClaimStore(db)
	camps := store.NewCampStore(db)
	clientServices := store.NewClientServiceStore(db)
	documents := store.NewDocumentStore(db)
	transactions := store.NewFinancialStore(db)
	meesevaRecords := store.NewMeesevaStore(db)
	auditLogs := store.NewAuditStore(db)

	recorder := audit.NewService(auditLogs, logger)
	documentService := document.NewService(documents, clientServices, files, m, logger)

	handlers := server.Handlers{
		Auth:           auth.NewHandler(users, cfg.JWTSecret, cfg.JWTTTL),
		Users:          user.NewHandler(users, recorder),
		Customers:      customer.NewHandler(customers, recorder),
		Cards:          card.NewHandler(cards, card.NewService(cards, customers), recorder),
		Claims:         claim.NewHandler(claims, cards, recorder),
		Camps:          camp.NewHandler(camps, recorder),
		ClientServices: clientservice.NewHandler(clientServices, documentService, recorder),
		Documents:      document.NewHandler(documents, documentService, recorder),
		Financial:      financial.NewHandler(transactions, recorder, m, logger),
		Meeseva:        meeseva.NewHandler(meesevaRecords, recorder),
		Email:          email.NewHandler(sender, logger),
		Dashboard:      dashboard.NewHandler(store.NewDashboardStore(db)),
		Audit:          audit.NewHandler(auditLogs),
	}

	opts := server.Options{
		Dev:            cfg.IsDevelopment(),
		AllowedOrigins: cfg.AllowedOrigins(),
		JWTSecret:      cfg.JWTSecret,
		Users:          users,
		Ping: func(ctx context.Context) (time.Time, error) {
			return database.Now(ctx, db)
		},
		Metrics:     m,
		Logger:      logger,
		FrontendDir: cfg.FrontendDir,
	}
	if cfg.StorageDriver == "disk" {
		opts.StorageDir = cfg.StorageDir
		opts.StoragePublicURL = cfg.StoragePublicURL
	}

	app := server.New(opts, handlers)

	go func() {
		logger.WithField("port", cfg.HTTPPort).Info("server listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
	closeDB(db, logger)
}

func openFileStore(cfg *config.Config, logger *log.Logger) (filestore.FileStore, error) {
	if cfg.StorageDriver == "s3" {
		return filestore.NewS3Driver(filestore.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return filestore.NewDiskDriver(cfg.StorageDir, cfg.StoragePublicURL, logger)
}

func closeDB(db *gorm.DB, logger *log.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("could not close database")
	}
}
