package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finshare-ai/internal/model"
)

// Append stores a feedback record and returns the user's record count.
func (s *SQLiteStorage) Append(ctx context.Context, record model.FeedbackRecord) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateFeedback(&record); err != nil {
		return 0, err
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, merchant_text, predicted_category, corrected_category, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.MerchantText,
		string(record.PredictedCategory), string(record.CorrectedCategory),
		record.Timestamp.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save feedback: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback WHERE user_id = ?`, record.UserID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit feedback: %w", err)
	}

	slog.Debug("saved feedback", "user_id", record.UserID, "count", count)
	return count, nil
}

// Examples returns a user's feedback in insertion order.
func (s *SQLiteStorage) Examples(ctx context.Context, userID string) ([]model.FeedbackRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, merchant_text, predicted_category, corrected_category, recorded_at
		FROM feedback
		WHERE user_id = ?
		ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var records []model.FeedbackRecord
	for rows.Next() {
		var (
			rec       model.FeedbackRecord
			predicted string
			corrected string
			recorded  time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.MerchantText, &predicted, &corrected, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		rec.PredictedCategory = model.Category(predicted)
		rec.CorrectedCategory = model.Category(corrected)
		rec.Timestamp = recorded
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return records, nil
}

// FeedbackUsers returns every user with at least one correction, ordered by ID.
func (s *SQLiteStorage) FeedbackUsers(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM feedback ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
