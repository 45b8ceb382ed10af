package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"codepair-system/config"
	"codepair-system/internal/status"
	"codepair-system/models"
	"codepair-system/monitoring"
	"codepair-system/store"
)

const positionCacheTTL = 5 * time.Second

// QueueService implements the enqueue side of matchmaking: duplicate-checked
// tail appends plus the read-only queue status surface.
type QueueService struct {
	queues   *store.RedisQueueStore
	notifier RoomNotifier
	cfg      *config.Config
}

func NewQueueService(queues *store.RedisQueueStore, notifier RoomNotifier, cfg *config.Config) *QueueService {
	return &QueueService{
		queues:   queues,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Enqueue appends the user to the (domain, room_type) queue. It returns false
// without mutation when the user is already waiting in that queue.
func (s *QueueService) Enqueue(ctx context.Context, domain, roomType, userID string) (bool, error) {
	if domain == "" || userID == "" {
		return false, errors.New("domain and user_id must not be empty")
	}

	key := models.QueueKey(domain, roomType)

	entries, err := s.queues.Entries(ctx, key)
	if err != nil {
		monitoring.TrackQueueOperation("enqueue", "error")
		return false, fmt.Errorf("duplicate scan: %w", err)
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			monitoring.TrackQueueOperation("enqueue", "duplicate")
			return false, nil
		}
	}

	user := models.WaitingUser{
		UserID:   userID,
		Domain:   domain,
		RoomType: roomType,
	}
	if err := s.queues.PushTail(ctx, key, user); err != nil {
		monitoring.TrackQueueOperation("enqueue", "error")
		return false, err
	}

	monitoring.TrackQueueOperation("enqueue", "ok")
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"domain":    domain,
		"room_type": roomType,
	}).Debug("user enqueued")
	return true, nil
}

// Length returns the number of waiting users in the (domain, room_type) queue.
func (s *QueueService) Length(ctx context.Context, domain, roomType string) (int64, error) {
	return s.queues.Length(ctx, models.QueueKey(domain, roomType))
}

// Position returns the user's 1-based position in the queue, preferring the
// cached value maintained by UpdatePositions. -1 means not waiting.
func (s *QueueService) Position(ctx context.Context, domain, roomType, userID string) (int, error) {
	position, err := s.queues.Position(ctx, domain, roomType, userID)
	if err != nil {
		return -1, err
	}
	if position > 0 {
		return position, nil
	}

	entries, err := s.queues.Entries(ctx, models.QueueKey(domain, roomType))
	if err != nil {
		return -1, err
	}
	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}
	return -1, nil
}

// Leave removes a waiting user from the queue.
func (s *QueueService) Leave(ctx context.Context, domain, roomType, userID string) error {
	removed, err := s.queues.RemoveUser(ctx, models.QueueKey(domain, roomType), userID)
	if err != nil {
		monitoring.TrackQueueOperation("leave", "error")
		return err
	}
	if !removed {
		monitoring.TrackQueueOperation("leave", "not_found")
		return status.ErrNotQueued
	}
	monitoring.TrackQueueOperation("leave", "ok")
	return nil
}

// UpdatePositions periodically recomputes every waiting user's position,
// caches it with a short TTL and pushes it to the user's notification
// channel. Runs until ctx is cancelled.
func (s *QueueService) UpdatePositions(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.QueuePositionUpdate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishPositions(ctx)
		}
	}
}

func (s *QueueService) publishPositions(ctx context.Context) {
	keys, err := s.queues.Keys(ctx)
	if err != nil {
		logrus.WithError(err).Warn("position update: listing queue keys failed")
		return
	}

	for _, key := range keys {
		domain, roomType, ok := models.ParseQueueKey(key)
		if !ok {
			continue
		}

		entries, err := s.queues.Entries(ctx, key)
		if err != nil {
			continue
		}

		for i, entry := range entries {
			position := i + 1
			if err := s.queues.SetPosition(ctx, domain, roomType, entry.UserID, position, positionCacheTTL); err != nil {
				continue
			}
			s.notifier.QueuePosition(ctx, entry.UserID, position, domain, roomType)
		}
	}
}
