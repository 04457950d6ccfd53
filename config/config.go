package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restokorp/restaurant-app/utils"
)

// LoadEnv reads .env if present. Real deployments set env vars directly,
// so a missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("No .env file found, using environment variables")
	}
}

func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens MySQL when DB_HOST is set, otherwise a local sqlite file.
// The sqlite path keeps local development free of external services.
func InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			Getenv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			host,
			Getenv("DB_PORT", "3306"),
			Getenv("DB_NAME", "restaurant"),
		)
		db, err := gorm.Open(mysql.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mysql: %w", err)
		}
		utils.InfoLogger.Printf("Connected to MySQL at %s", host)
		return db, nil
	}

	path := Getenv("SQLITE_PATH", "restaurant.db")
	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %s: %w", path, err)
	}
	utils.InfoLogger.Printf("Using sqlite database %s", path)
	return db, nil
}
