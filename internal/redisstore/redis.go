// Package redisstore persists feedback, learned overlays and the category
// catalog in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/service"
	"github.com/redis/go-redis/v9"
)

var _ service.Storage = (*Store)(nil)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "finshare"

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	Prefix   string
	DB       int
}

// appendUnique pushes each ARGV onto the list at KEYS[2] unless the set at
// KEYS[1] already holds it. Returns the number appended.
var appendUnique = redis.NewScript(`
local added = 0
for i, v in ipairs(ARGV) do
	if redis.call('SADD', KEYS[1], v) == 1 then
		redis.call('RPUSH', KEYS[2], v)
		added = added + 1
	end
end
return added
`)

// Store implements service.Storage on Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	s := NewWithClient(client, cfg.Prefix)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Ping tests the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

type feedbackDoc struct {
	Timestamp         time.Time `json:"timestamp"`
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	MerchantText      string    `json:"merchant_text"`
	PredictedCategory string    `json:"predicted_category"`
	CorrectedCategory string    `json:"corrected_category"`
}

// Append pushes the record onto the user's feedback list. The list length
// after the push is the user's record count.
func (s *Store) Append(ctx context.Context, record model.FeedbackRecord) (int, error) {
	if record.UserID == "" {
		return 0, errors.New("feedback user ID is required")
	}

	payload, err := json.Marshal(feedbackDoc{
		Timestamp:         record.Timestamp.UTC(),
		ID:                record.ID,
		UserID:            record.UserID,
		MerchantText:      record.MerchantText,
		PredictedCategory: string(record.PredictedCategory),
		CorrectedCategory: string(record.CorrectedCategory),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode feedback: %w", err)
	}

	n, err := s.client.RPush(ctx, s.feedbackKey(record.UserID), payload).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to append feedback: %w", err)
	}
	return int(n), nil
}

// Examples returns the user's feedback in insertion order.
func (s *Store) Examples(ctx context.Context, userID string) ([]model.FeedbackRecord, error) {
	raw, err := s.client.LRange(ctx, s.feedbackKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback: %w", err)
	}

	records := make([]model.FeedbackRecord, 0, len(raw))
	for i, item := range raw {
		var doc feedbackDoc
		if err := json.Unmarshal([]byte(item), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode feedback %d for %s: %w", i, userID, err)
		}
		records = append(records, model.FeedbackRecord{
			Timestamp:         doc.Timestamp,
			ID:                doc.ID,
			UserID:            doc.UserID,
			MerchantText:      doc.MerchantText,
			PredictedCategory: model.Category(doc.PredictedCategory),
			CorrectedCategory: model.Category(doc.CorrectedCategory),
		})
	}
	return records, nil
}

// SaveOverlayTokens appends tokens not yet learned for the user's category.
func (s *Store) SaveOverlayTokens(ctx context.Context, userID string, category model.Category, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	args := make([]any, len(tokens))
	for i, tok := range tokens {
		args[i] = tok
	}

	keys := []string{s.overlaySetKey(userID, category), s.overlayListKey(userID, category)}
	if err := appendUnique.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to save overlay tokens: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key("overlay", "users"), userID)
	pipe.SAdd(ctx, s.overlayCategoriesKey(userID), string(category))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index overlay: %w", err)
	}
	return nil
}

// LoadOverlays returns every stored overlay.
func (s *Store) LoadOverlays(ctx context.Context) (service.Overlays, error) {
	users, err := s.client.SMembers(ctx, s.key("overlay", "users")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list overlay users: %w", err)
	}

	overlays := make(service.Overlays, len(users))
	for _, user := range users {
		categories, err := s.client.SMembers(ctx, s.overlayCategoriesKey(user)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list overlay categories for %s: %w", user, err)
		}

		byCategory := make(map[model.Category][]string, len(categories))
		for _, c := range categories {
			category := model.Category(c)
			tokens, err := s.client.LRange(ctx, s.overlayListKey(user, category), 0, -1).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to read overlay for %s/%s: %w", user, c, err)
			}
			byCategory[category] = tokens
		}
		overlays[user] = byCategory
	}
	return overlays, nil
}

// SaveCategories appends categories not yet stored.
func (s *Store) SaveCategories(ctx context.Context, categories []model.Category) error {
	if len(categories) == 0 {
		return errors.New("categories cannot be empty")
	}

	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = string(c)
	}

	keys := []string{s.key("categories", "set"), s.key("categories", "list")}
	if err := appendUnique.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// GetCategories returns the stored catalog in registration order.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	names, err := s.client.LRange(ctx, s.key("categories", "list"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	categories := make([]model.Category, len(names))
	for i, n := range names {
		categories[i] = model.Category(n)
	}
	return categories, nil
}

func (s *Store) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *Store) feedbackKey(userID string) string {
	return s.key("feedback", userID)
}

func (s *Store) overlayListKey(userID string, category model.Category) string {
	return s.key("overlay", userID, string(category), "tokens")
}

func (s *Store) overlaySetKey(userID string, category model.Category) string {
	return s.key("overlay", userID, string(category), "seen")
}

func (s *Store) overlayCategoriesKey(userID string) string {
	return s.key("overlay", userID, "categories")
}
