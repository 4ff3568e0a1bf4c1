package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"plutus/internal/domain/prefs"
	"plutus/pkg/errors"
)

// Preferences survive restarts but are not precious; a long TTL keeps
// abandoned accounts from accumulating keys forever.
const prefsTTL = 90 * 24 * time.Hour

// Compile-time check
var _ prefs.Repository = (*PrefsRepository)(nil)

// PrefsRepository implements prefs.Repository using Redis
type PrefsRepository struct {
	client *redis.Client
}

// NewPrefsRepository creates a new preferences repository
func NewPrefsRepository(client *redis.Client) *PrefsRepository {
	return &PrefsRepository{client: client}
}

// Get retrieves stored preferences for a user
func (r *PrefsRepository) Get(ctx context.Context, userID uuid.UUID) (*prefs.Preferences, error) {
	key := r.getKey(userID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "preferences not found for user=%s", userID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get preferences from redis: user=%s", userID)
	}

	var p prefs.Preferences
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal preferences: user=%s", userID)
	}

	return &p, nil
}

// Save upserts preferences
func (r *PrefsRepository) Save(ctx context.Context, p *prefs.Preferences) error {
	key := r.getKey(p.UserID)

	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal preferences: user=%s", p.UserID)
	}

	if err := r.client.Set(ctx, key, data, prefsTTL).Err(); err != nil {
		return errors.Wrapf(err, "failed to save preferences to redis: user=%s", p.UserID)
	}

	return nil
}

// Delete removes stored preferences
func (r *PrefsRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, r.getKey(userID)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete preferences from redis: user=%s", userID)
	}
	return nil
}

func (r *PrefsRepository) getKey(userID uuid.UUID) string {
	return fmt.Sprintf("report_prefs:%s", userID)
}
