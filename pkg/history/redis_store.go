package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat_history:"

// Store keeps one ordered, append-only turn log per session in a redis
// list. Appends RPUSH a JSON-encoded turn; when a TTL is configured it is
// refreshed on every append, so idle sessions expire silently and list on
// an expired (or unknown) session simply returns an empty log.
//
// Redis guarantees per-key command atomicity, which is all the store needs:
// sessions never share keys and no cross-session coordination happens here.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session history store. ttl <= 0 disables expiry.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(sessionID string) string {
	return keyPrefix + sessionID
}

// Append adds a turn at the tail of the session's log.
func (s *Store) Append(ctx context.Context, sessionID string, turn Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	key := s.key(sessionID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	if s.ttl > 0 {
		// Sliding TTL: renewed on every insertion.
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("refresh ttl: %w", err)
		}
	}
	return nil
}

// List returns the session's turns in insertion order. Unknown or expired
// sessions yield an empty slice, not an error.
func (s *Store) List(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear removes the session's log entirely.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}
