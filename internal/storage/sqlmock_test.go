package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Veraticus/finshare-ai/internal/model"
)

func newMockStorage(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &SQLiteStorage{db: db, dbPath: "mock"}, mock
}

func TestAppend_InsertFailureRollsBack(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := store.Append(context.Background(), makeRecord("alice", 1, "Coffee", model.CategoryFoodDining))
	if err == nil || !strings.Contains(err.Error(), "failed to save feedback") {
		t.Errorf("Append() error = %v, want save failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAppend_CountFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	_, err := store.Append(context.Background(), makeRecord("alice", 1, "Coffee", model.CategoryFoodDining))
	if err == nil || !strings.Contains(err.Error(), "failed to count feedback") {
		t.Errorf("Append() error = %v, want count failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestExamples_QueryFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT id, user_id").WithArgs("alice").WillReturnError(errors.New("no such table: feedback"))

	_, err := store.Examples(context.Background(), "alice")
	if err == nil || !strings.Contains(err.Error(), "failed to query feedback") {
		t.Errorf("Examples() error = %v, want query failure", err)
	}
}

func TestGetCategories_ScanFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	rows := sqlmock.NewRows([]string{"name"}).AddRow("Shopping").RowError(0, errors.New("corrupt page"))
	mock.ExpectQuery("SELECT name FROM categories").WillReturnRows(rows)

	_, err := store.GetCategories(context.Background())
	if err == nil {
		t.Error("GetCategories() expected error for corrupt row")
	}
}

func TestSaveOverlayTokens_CommitFailure(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT OR IGNORE INTO overlay_tokens")
	prep.ExpectExec().WithArgs("alice", "Shopping", "bike").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := store.SaveOverlayTokens(context.Background(), "alice", model.CategoryShopping, []string{"bike"})
	if err == nil || !strings.Contains(err.Error(), "failed to commit overlay tokens") {
		t.Errorf("SaveOverlayTokens() error = %v, want commit failure", err)
	}
}

func TestMigrate_StatementFailureRollsBack(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery("PRAGMA user_version").WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS overlay_tokens").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Migrate(context.Background())
	if err == nil || !strings.Contains(err.Error(), "migration 2 (learned overlay tokens) failed") {
		t.Errorf("Migrate() error = %v, want migration 2 failure", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
