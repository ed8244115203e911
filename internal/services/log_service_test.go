package services

import (
	"context"
	"testing"
	"time"

	"csvflow/internal/models"
)

func TestLogServiceCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	createLogsTable(t, db)

	service, err := NewLogService(db)
	if err != nil {
		t.Fatalf("NewLogService: %v", err)
	}

	message := "id=abc"
	if err := service.CreateLog(context.Background(), LogActionFileUpload, LogOutcomeSuccess, &message); err != nil {
		t.Fatalf("CreateLog: %v", err)
	}

	logs, err := service.GetLogs(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].Action != LogActionFileUpload {
		t.Fatalf("Action = %q, want %q", logs[0].Action, LogActionFileUpload)
	}
	if logs[0].Outcome != LogOutcomeSuccess {
		t.Fatalf("Outcome = %q, want %q", logs[0].Outcome, LogOutcomeSuccess)
	}
	if logs[0].Message == nil || *logs[0].Message != "id=abc" {
		t.Fatalf("Message = %v, want %q", logs[0].Message, "id=abc")
	}
}

func TestLogServiceGetOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	createLogsTable(t, db)

	service, err := NewLogService(db)
	if err != nil {
		t.Fatalf("NewLogService: %v", err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	insert := "INSERT INTO logs (id, datetime, action, outcome) VALUES (?, ?, ?, ?)"
	for i, id := range []string{"first", "second", "third"} {
		if err := db.Exec(insert, id, base.Add(time.Duration(i)*time.Minute), LogActionPreview, LogOutcomeSuccess).Error; err != nil {
			t.Fatalf("insert log: %v", err)
		}
	}

	logs, err := service.GetLogs(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	if logs[0].ID != "third" || logs[1].ID != "second" {
		t.Fatalf("unexpected order: %q, %q", logs[0].ID, logs[1].ID)
	}
}

func TestLogServiceInvalidInput(t *testing.T) {
	db := openTestDB(t)
	createLogsTable(t, db)

	service, err := NewLogService(db)
	if err != nil {
		t.Fatalf("NewLogService: %v", err)
	}

	if err := service.CreateLog(context.Background(), "", LogOutcomeSuccess, nil); err == nil {
		t.Fatalf("CreateLog empty action: expected error")
	}
	if err := service.CreateLog(context.Background(), LogActionPreview, "", nil); err == nil {
		t.Fatalf("CreateLog empty outcome: expected error")
	}
	if _, err := service.GetLogs(context.Background(), 0); err == nil {
		t.Fatalf("GetLogs zero limit: expected error")
	}
}

func TestLogServiceTruncate(t *testing.T) {
	db := openTestDB(t)
	createLogsTable(t, db)

	service, err := NewLogService(db)
	if err != nil {
		t.Fatalf("NewLogService: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := service.CreateLog(context.Background(), LogActionScratchSweep, LogOutcomeSuccess, nil); err != nil {
			t.Fatalf("CreateLog: %v", err)
		}
	}

	deleted, err := service.TruncateLogs(context.Background())
	if err != nil {
		t.Fatalf("TruncateLogs: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d, want 3", deleted)
	}

	var count int64
	if err := db.Model(&models.Log{}).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}
