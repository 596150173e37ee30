package db

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/solmusic/studio/internal/models"
)

var conn *gorm.DB

func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	// This also keeps each payment reconcile serialized against any other
	// write touching the same class set.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Student{},
		&models.Payment{},
		&models.Class{},
	); err != nil {
		return err
	}

	// Indexes GORM doesn't auto-create from struct tags. The partial unique
	// index is the backstop for the one invariant that has bitten us in
	// production: two active classes on the same day under one payment.
	conn.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_classes_payment_date ON classes(payment_id, date) WHERE active = 1")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_classes_student_active ON classes(student_id, active)")

	return nil
}

func Conn() *gorm.DB {
	return conn
}
