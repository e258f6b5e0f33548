package storage

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to MySQL and runs schema migration. The unique indexes
// created here carry the duplicate-vote and one-session-per-event guarantees.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&Program{},
		&Employee{},
		&Vote{},
		&ProgramStatistic{},
		&AwardResult{},
		&UserSession{},
		&LoginAttempt{},
	)
}
