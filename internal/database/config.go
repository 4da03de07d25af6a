package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"taskfollowup/internal/config"
	"taskfollowup/internal/models"
	"taskfollowup/internal/utils"
)

// ProgressScanPattern is the query the progress refresh job issues in a loop; it is kept out of the logs
const ProgressScanPattern = `FROM "history_reminder" WHERE cardinality(history_reminder.task_ids) > 0`

const (
	maxRetries = 5
	retryDelay = 5 * time.Second
)

// Open connects to PostgreSQL, configures the pool and migrates every model the service owns or reads
func Open(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: utils.NewLogrusGormLogger(log, ProgressScanPattern),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		PrepareStmt: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			break
		}
		log.Warnf("Database connection attempt %d failed: %v", i+1, err)
		if i < maxRetries-1 {
			log.Infof("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates the tables behind every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.HistoryReminder{},
		&models.TemplateReminder{},
		&models.RncpTitle{},
		&models.Class{},
		&models.School{},
		&models.User{},
		&models.AcadTask{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
