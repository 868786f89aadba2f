package database

import (
	"context"
	"strings"
	"time"

	"crm-backend/internal/config"
	"crm-backend/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to postgres and configures the connection pool. The returned
// handle is shared by all stores.
func Open(cfg *config.Config, logger *log.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsDevelopment() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "could not get sql.DB")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Card{},
		&models.Claim{},
		&models.Camp{},
		&models.ClientService{},
		&models.ClientServiceItem{},
		&models.ServicesDocument{},
		&models.FinancialTransaction{},
		&models.Meeseva{},
		&models.AuditLog{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate failed")
	}

	// camps.assigned_to is searched with ANY(); a GIN index keeps "mine" cheap
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_camps_assigned_to ON camps USING GIN (assigned_to)").Error; err != nil {
		log.WithError(err).Warn("could not create camps.assigned_to index")
	}
	return nil
}

// SeedAdmin creates the first admin account when no admin exists yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return errors.Wrap(err, "could not count admins")
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "could not hash admin password")
	}

	admin := models.User{
		EmployeeID: "ADMIN001",
		Name:       "Administrator",
		Email:      email,
		Role:       models.RoleAdmin,
		Password:   string(hash),
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return errors.Wrap(err, "could not create admin")
	}
	log.WithField("email", email).Info("seeded admin user")
	return nil
}

// Now returns the database server time, used by the health check.
func Now(ctx context.Context, db *gorm.DB) (time.Time, error) {
	var now time.Time
	if err := db.WithContext(ctx).Raw("SELECT NOW()").Scan(&now).Error; err != nil {
		return time.Time{}, errors.Wrap(err, "database ping failed")
	}
	return now, nil
}
