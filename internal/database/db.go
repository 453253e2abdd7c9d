package database

import (
	"fmt"
	"log"
	"time"

	"bullion-backend/internal/config"
	"bullion-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Models lists every table the backend owns, in migration order.
func Models() []any {
	return []any{
		&models.Nominee{},
		&models.MaterialTransaction{},
		&models.ProductGiveTransaction{},
		&models.ProductTakeTransaction{},
		&models.LendenEntry{},
		&models.Buyer{},
		&models.Bill{},
		&models.BillItem{},
	}
}

// GormConfig is shared by the server and the tests so timestamps are always
// written in UTC.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), GormConfig(cfg.AppEnv == "development"))
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("could not get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate error: %v", err)
	}

	log.Println("Database connected. Migration complete.")
}
