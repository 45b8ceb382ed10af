package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codepair-system/internal/status"
	"codepair-system/models"
)

const positionKeyPrefix = "queue:position:"

// RedisQueueStore wraps the Redis lists backing the matchmaking queues. Every
// queue mutation in the system goes through this adapter so key naming and
// entry encoding stay consistent between the enqueue path and the scheduler.
type RedisQueueStore struct {
	redis *redis.Client
}

func NewRedisQueueStore(client *redis.Client) *RedisQueueStore {
	return &RedisQueueStore{redis: client}
}

// PushTail appends a waiting user to the tail of the queue.
func (s *RedisQueueStore) PushTail(ctx context.Context, key string, user models.WaitingUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode queue entry: %w", err)
	}

	if err := s.redis.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("push to queue %s: %w", key, err)
	}
	return nil
}

// PopHead removes and returns the oldest entry, or nil when the queue is
// empty. An undecodable payload is reported as status.ErrMalformedEntry; the
// entry is already gone from the queue at that point.
func (s *RedisQueueStore) PopHead(ctx context.Context, key string) (*models.WaitingUser, error) {
	data, err := s.redis.LPop(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop from queue %s: %w", key, err)
	}

	var user models.WaitingUser
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrMalformedEntry, err)
	}
	return &user, nil
}

// Length returns the number of waiting users in the queue.
func (s *RedisQueueStore) Length(ctx context.Context, key string) (int64, error) {
	length, err := s.redis.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("length of queue %s: %w", key, err)
	}
	return length, nil
}

// Keys lists every existing queue key.
func (s *RedisQueueStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.redis.Keys(ctx, models.QueueKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("list queue keys: %w", err)
	}

	queues := make([]string, 0, len(keys))
	for _, key := range keys {
		// The position cache shares the "queue:" namespace.
		if isPositionKey(key) {
			continue
		}
		if _, _, ok := models.ParseQueueKey(key); ok {
			queues = append(queues, key)
		}
	}
	return queues, nil
}

// Entries returns the whole queue head-to-tail without mutating it. Malformed
// payloads are skipped.
func (s *RedisQueueStore) Entries(ctx context.Context, key string) ([]models.WaitingUser, error) {
	items, err := s.redis.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("range queue %s: %w", key, err)
	}

	users := make([]models.WaitingUser, 0, len(items))
	for _, item := range items {
		var user models.WaitingUser
		if err := json.Unmarshal([]byte(item), &user); err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// RemoveUser deletes the first entry for userID from the queue. It reports
// whether an entry was removed.
func (s *RedisQueueStore) RemoveUser(ctx context.Context, key, userID string) (bool, error) {
	items, err := s.redis.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("range queue %s: %w", key, err)
	}

	for _, item := range items {
		var user models.WaitingUser
		if err := json.Unmarshal([]byte(item), &user); err != nil {
			continue
		}
		if user.UserID != userID {
			continue
		}
		removed, err := s.redis.LRem(ctx, key, 1, item).Result()
		if err != nil {
			return false, fmt.Errorf("remove from queue %s: %w", key, err)
		}
		return removed > 0, nil
	}
	return false, nil
}

// SetPosition caches a user's 1-based queue position with a short TTL.
func (s *RedisQueueStore) SetPosition(ctx context.Context, domain, roomType, userID string, position int, ttl time.Duration) error {
	return s.redis.Set(ctx, positionKey(domain, roomType, userID), position, ttl).Err()
}

// Position returns the cached queue position, or -1 when none is cached.
func (s *RedisQueueStore) Position(ctx context.Context, domain, roomType, userID string) (int, error) {
	position, err := s.redis.Get(ctx, positionKey(domain, roomType, userID)).Int()
	if err == redis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("cached position: %w", err)
	}
	return position, nil
}

func positionKey(domain, roomType, userID string) string {
	if roomType == "" {
		return positionKeyPrefix + domain + ":" + userID
	}
	return positionKeyPrefix + domain + ":" + roomType + ":" + userID
}

func isPositionKey(key string) bool {
	return len(key) >= len(positionKeyPrefix) && key[:len(positionKeyPrefix)] == positionKeyPrefix
}
