package db

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPSQLStorage() (*gorm.DB, error) {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	connString := os.Getenv("DB_URL")

	var db *gorm.DB
	err := utils.Retry(3, time.Second, func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(connString), &gorm.Config{TranslateError: true})
		return openErr
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)

	return db, nil
}
