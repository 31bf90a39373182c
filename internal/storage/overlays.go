package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/service"
)

// SaveOverlayTokens records learned tokens for a user's category. Tokens that
// are already stored are ignored.
func (s *SQLiteStorage) SaveOverlayTokens(ctx context.Context, userID string, category model.Category, tokens []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(string(category), "category"); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO overlay_tokens (user_id, category, token)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, token := range tokens {
		if _, err := stmt.ExecContext(ctx, userID, string(category), token); err != nil {
			return fmt.Errorf("failed to save overlay token %q: %w", token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit overlay tokens: %w", err)
	}
	return nil
}

// LoadOverlays returns every stored overlay, tokens in learning order.
func (s *SQLiteStorage) LoadOverlays(ctx context.Context) (service.Overlays, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, category, token
		FROM overlay_tokens
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlay tokens: %w", err)
	}
	defer rows.Close()

	overlays := make(service.Overlays)
	for rows.Next() {
		var user, category, token string
		if err := rows.Scan(&user, &category, &token); err != nil {
			return nil, fmt.Errorf("failed to scan overlay token: %w", err)
		}
		if overlays[user] == nil {
			overlays[user] = make(map[model.Category][]string)
		}
		cat := model.Category(category)
		overlays[user][cat] = append(overlays[user][cat], token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overlay tokens: %w", err)
	}

	return overlays, nil
}
