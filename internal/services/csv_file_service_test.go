package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"csvflow/internal/models"
)

func TestCsvFileServiceInsertDefaults(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	file, err := service.Insert(context.Background(), "grades.csv")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if file.ID == "" {
		t.Fatalf("expected generated id")
	}
	if file.Status != models.StatusProcessing {
		t.Fatalf("Status = %q, want %q", file.Status, models.StatusProcessing)
	}
	if file.S3URL != nil {
		t.Fatalf("S3URL = %v, want nil", file.S3URL)
	}

	stored, err := service.Get(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Filename != "grades.csv" {
		t.Fatalf("Filename = %q, want %q", stored.Filename, "grades.csv")
	}
	if stored.UpdatedAt.Before(stored.CreatedAt) {
		t.Fatalf("UpdatedAt %v before CreatedAt %v", stored.UpdatedAt, stored.CreatedAt)
	}
}

func TestCsvFileServiceGetNotFound(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}
}

func TestCsvFileServiceListOrder(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	older, err := service.Insert(context.Background(), "older.csv")
	if err != nil {
		t.Fatalf("Insert older: %v", err)
	}
	newer, err := service.Insert(context.Background(), "newer.csv")
	if err != nil {
		t.Fatalf("Insert newer: %v", err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := db.Exec("UPDATE csv_files SET created_at = ? WHERE id = ?", base, older.ID).Error; err != nil {
		t.Fatalf("set older created_at: %v", err)
	}
	if err := db.Exec("UPDATE csv_files SET created_at = ? WHERE id = ?", base.Add(time.Hour), newer.ID).Error; err != nil {
		t.Fatalf("set newer created_at: %v", err)
	}

	files, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].ID != newer.ID {
		t.Fatalf("files[0].ID = %q, want newest %q", files[0].ID, newer.ID)
	}
	if files[1].ID != older.ID {
		t.Fatalf("files[1].ID = %q, want oldest %q", files[1].ID, older.ID)
	}
}

func TestCsvFileServiceUpdatePartial(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	file, err := service.Insert(context.Background(), "grades.csv")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	stale := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := db.Exec("UPDATE csv_files SET updated_at = ? WHERE id = ?", stale, file.ID).Error; err != nil {
		t.Fatalf("set stale updated_at: %v", err)
	}

	updated, err := service.Update(context.Background(), file.ID, map[string]any{"filename": "renamed.csv"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Filename != "renamed.csv" {
		t.Fatalf("Filename = %q, want %q", updated.Filename, "renamed.csv")
	}
	if updated.Status != models.StatusProcessing {
		t.Fatalf("Status = %q, want untouched %q", updated.Status, models.StatusProcessing)
	}
	if !updated.UpdatedAt.After(stale) {
		t.Fatalf("UpdatedAt = %v, want refreshed past %v", updated.UpdatedAt, stale)
	}
}

func TestCsvFileServiceUpdateEmptyFields(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	file, err := service.Insert(context.Background(), "grades.csv")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	updated, err := service.Update(context.Background(), file.ID, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Filename != "grades.csv" {
		t.Fatalf("Filename = %q, want %q", updated.Filename, "grades.csv")
	}
}

func TestCsvFileServiceUpdateNotFound(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	if _, err := service.Update(context.Background(), "missing", map[string]any{"filename": "x.csv"}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Update missing: err = %v, want ErrNotFound", err)
	}
}

func TestCsvFileServiceDelete(t *testing.T) {
	db := openTestDB(t)
	createCsvFilesTable(t, db)

	service, err := NewCsvFileService(db)
	if err != nil {
		t.Fatalf("NewCsvFileService: %v", err)
	}

	file, err := service.Insert(context.Background(), "grades.csv")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	deleted, err := service.Delete(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != file.ID {
		t.Fatalf("deleted.ID = %q, want %q", deleted.ID, file.ID)
	}
	if deleted.Filename != "grades.csv" {
		t.Fatalf("deleted.Filename = %q, want prior state", deleted.Filename)
	}

	if _, err := service.Get(context.Background(), file.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get after delete: err = %v, want ErrNotFound", err)
	}

	if _, err := service.Delete(context.Background(), file.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Delete again: err = %v, want ErrNotFound", err)
	}
}
