// Package testutil provides shared fixtures for tests that need a real,
// migrated database.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/storage"
	"github.com/google/uuid"
)

// TestDB is a migrated in-memory SQLite database closed at test cleanup.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database seeded with categories.
//
// Example:
//
//	db := testutil.SetupTestDB(t, model.BaseCategories()...)
//	db.SeedFeedback(testutil.Correction("alice", "Local Bike Shop", model.CategoryShopping))
func SetupTestDB(t *testing.T, categories ...model.Category) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if len(categories) > 0 {
		if err := store.SaveCategories(ctx, categories); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// SeedFeedback appends records and returns the user's count after the last one.
func (db *TestDB) SeedFeedback(records ...model.FeedbackRecord) int {
	db.t.Helper()

	count := 0
	for _, rec := range records {
		n, err := db.Storage.Append(context.Background(), rec)
		if err != nil {
			db.t.Fatalf("failed to seed feedback for %q: %v", rec.MerchantText, err)
		}
		count = n
	}
	return count
}

// Correction builds a valid feedback record with a fresh ID.
func Correction(userID, merchantText string, corrected model.Category) model.FeedbackRecord {
	return model.FeedbackRecord{
		ID:                uuid.NewString(),
		UserID:            userID,
		MerchantText:      merchantText,
		PredictedCategory: model.CategoryOther,
		CorrectedCategory: corrected,
		Timestamp:         time.Now().UTC(),
	}
}

// Repeat returns n copies of a correction, each with its own ID.
func Repeat(n int, userID, merchantText string, corrected model.Category) []model.FeedbackRecord {
	out := make([]model.FeedbackRecord, n)
	for i := range out {
		out[i] = Correction(userID, merchantText, corrected)
	}
	return out
}
