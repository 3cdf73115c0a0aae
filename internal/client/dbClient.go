package client

import (
	"log"
	"photo-paywall-api/internal/model"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDBClient opens the catalog/ledger database. A mysql DSN selects the
// mysql driver; anything else (including empty) is treated as a sqlite path.
func InitDBClient(databaseURL string) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if strings.Contains(databaseURL, "@tcp(") {
		db, err = gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	} else {
		if databaseURL == "" {
			databaseURL = "paywall.db"
		}
		db, err = gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Photo{},
		&model.PaymentRecord{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
