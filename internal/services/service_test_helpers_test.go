package services

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}

	return db
}

func createCsvFilesTable(t *testing.T, db *gorm.DB) {
	t.Helper()

	query := "CREATE TABLE csv_files (id TEXT PRIMARY KEY, filename TEXT NOT NULL, s3_url TEXT, status TEXT NOT NULL DEFAULT 'PROCESSING', error TEXT, created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL)"
	if err := db.Exec(query).Error; err != nil {
		t.Fatalf("create csv_files table: %v", err)
	}
}

func createLogsTable(t *testing.T, db *gorm.DB) {
	t.Helper()

	query := "CREATE TABLE logs (id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))), datetime DATETIME NOT NULL, action TEXT NOT NULL, outcome TEXT NOT NULL, message TEXT)"
	if err := db.Exec(query).Error; err != nil {
		t.Fatalf("create logs table: %v", err)
	}
}

type loggedEntry struct {
	action  string
	outcome string
	message *string
}

type stubLogWriter struct {
	entries []loggedEntry
}

func (s *stubLogWriter) CreateLog(ctx context.Context, action string, outcome string, message *string) error {
	var copied *string
	if message != nil {
		value := *message
		copied = &value
	}

	s.entries = append(s.entries, loggedEntry{
		action:  action,
		outcome: outcome,
		message: copied,
	})
	return nil
}
