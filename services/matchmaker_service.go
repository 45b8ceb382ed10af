package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"codepair-system/config"
	"codepair-system/internal/status"
	"codepair-system/models"
	"codepair-system/monitoring"
	"codepair-system/utils"
)

// defaultRoomTypes is the pool a room type is drawn from when the queue key
// carries none.
var defaultRoomTypes = []string{"easy", "medium", "hard"}

// QueueStore is the slice of the queue adapter the matchmaker needs.
type QueueStore interface {
	Keys(ctx context.Context) ([]string, error)
	Length(ctx context.Context, key string) (int64, error)
	PopHead(ctx context.Context, key string) (*models.WaitingUser, error)
	PushTail(ctx context.Context, key string, user models.WaitingUser) error
}

// RoomStore is the slice of the room adapter the matchmaker needs.
type RoomStore interface {
	SeatedUsers(ctx context.Context, userIDs []string) (map[string]struct{}, error)
	InsertRoom(ctx context.Context, room *models.Room) error
}

// Matchmaker is the polling scheduler that promotes full cohorts of waiting
// users into rooms. Exactly one instance may run against a given Redis
// database; a second instance would double-drain the queues. That invariant is
// enforced by deployment, not here.
//
// Skipped users (already seated in an active room) are re-queued at the tail
// rather than discarded, so they are matched again once their room ends.
type Matchmaker struct {
	queues   QueueStore
	rooms    RoomStore
	notifier RoomNotifier

	roomSize      int
	interval      time.Duration
	insertRetries int

	log *logrus.Entry
}

func NewMatchmaker(queues QueueStore, rooms RoomStore, notifier RoomNotifier, cfg *config.Config) *Matchmaker {
	return &Matchmaker{
		queues:        queues,
		rooms:         rooms,
		notifier:      notifier,
		roomSize:      cfg.RoomSize,
		interval:      cfg.MatchInterval,
		insertRetries: cfg.RoomInsertRetries,
		log:           logrus.WithField("component", "matchmaker"),
	}
}

// Run polls until ctx is cancelled.
func (m *Matchmaker) Run(ctx context.Context) {
	m.log.WithFields(logrus.Fields{
		"room_size": m.roomSize,
		"interval":  m.interval,
	}).Info("matchmaker started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("matchmaker stopped")
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass over every queue key.
func (m *Matchmaker) RunOnce(ctx context.Context) {
	start := time.Now()

	keys, err := m.queues.Keys(ctx)
	if err != nil {
		m.log.WithError(err).Warn("listing queue keys failed; skipping pass")
		return
	}

	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}
		m.drainKey(ctx, key)
	}

	monitoring.ObservePass(time.Since(start))
}

// drainKey forms as many rooms as the queue currently allows. It stops for
// this pass once the queue cannot yield a full cohort.
func (m *Matchmaker) drainKey(ctx context.Context, key string) {
	domain, keyRoomType, ok := models.ParseQueueKey(key)
	if !ok {
		m.log.WithField("key", key).Warn("skipping key outside queue naming pattern")
		return
	}

	for {
		length, err := m.queues.Length(ctx, key)
		if err != nil {
			m.log.WithError(err).WithField("key", key).Warn("queue length failed")
			return
		}
		if length < int64(m.roomSize) {
			return
		}

		drained := m.drain(ctx, key, int(length))
		if len(drained) == 0 {
			return
		}

		seated, err := m.rooms.SeatedUsers(ctx, userIDs(drained))
		if err != nil {
			// Membership unknown: put everything back and retry next tick.
			m.log.WithError(err).WithField("key", key).Warn("seated-user lookup failed; requeueing batch")
			m.requeue(ctx, key, domain, drained)
			return
		}

		cohort, leftover, skipped := m.partition(drained, seated)
		if len(skipped) > 0 {
			monitoring.TrackSkipped(domain, len(skipped))
			m.log.WithFields(logrus.Fields{
				"key":     key,
				"skipped": userIDs(skipped),
			}).Info("skipped users already seated in active rooms")
		}

		if len(cohort) < m.roomSize {
			// Not enough eligible users; restore relative order and stop
			// working this key until the next tick.
			m.requeue(ctx, key, domain, append(cohort, leftover...))
			m.requeue(ctx, key, domain, skipped)
			return
		}

		room := m.buildRoom(domain, keyRoomType, cohort)
		if err := m.insertWithRetry(ctx, room); err != nil {
			// The cohort is neither queued nor seated at this point. Push the
			// whole batch back before giving up on the key.
			m.log.WithError(err).WithFields(logrus.Fields{
				"key":   key,
				"users": userIDs(cohort),
			}).Error("room insert failed; requeueing drained users")
			m.requeue(ctx, key, domain, append(cohort, leftover...))
			m.requeue(ctx, key, domain, skipped)
			return
		}

		m.log.WithFields(logrus.Fields{
			"room_id":   room.RoomID,
			"domain":    room.Domain,
			"room_type": room.RoomType,
			"users":     userIDs(cohort),
		}).Info("room formed")
		monitoring.TrackRoomFormed(room.Domain, room.RoomType)
		m.notifier.RoomFormed(ctx, room)

		m.requeue(ctx, key, domain, leftover)
		m.requeue(ctx, key, domain, skipped)
		// The queue may still hold a full cohort; loop and re-check.
	}
}

// drain pops up to max entries off the head. Malformed payloads are dropped
// and counted; a transient pop error ends the drain early with what was
// collected so far.
func (m *Matchmaker) drain(ctx context.Context, key string, max int) []models.WaitingUser {
	users := make([]models.WaitingUser, 0, max)
	for i := 0; i < max; i++ {
		user, err := m.queues.PopHead(ctx, key)
		if err != nil {
			if errors.Is(err, status.ErrMalformedEntry) {
				monitoring.TrackMalformedEntry()
				m.log.WithError(err).WithField("key", key).Warn("dropping malformed queue entry")
				continue
			}
			m.log.WithError(err).WithField("key", key).Warn("pop failed; ending drain early")
			break
		}
		if user == nil {
			break
		}
		users = append(users, *user)
	}
	return users
}

// partition splits a drained batch into the forming cohort, eligible users
// beyond the cohort, and users skipped for already being seated. Relative
// order is preserved within each group.
func (m *Matchmaker) partition(drained []models.WaitingUser, seated map[string]struct{}) (cohort, leftover, skipped []models.WaitingUser) {
	for _, user := range drained {
		if _, ok := seated[user.UserID]; ok {
			skipped = append(skipped, user)
			continue
		}
		if len(cohort) < m.roomSize {
			cohort = append(cohort, user)
		} else {
			leftover = append(leftover, user)
		}
	}
	return cohort, leftover, skipped
}

func (m *Matchmaker) buildRoom(domain, roomType string, cohort []models.WaitingUser) *models.Room {
	if roomType == "" {
		roomType = utils.RandomChoice(defaultRoomTypes)
	}

	users := make([]models.RoomUser, len(cohort))
	for i, user := range cohort {
		users[i] = models.RoomUser{UserID: user.UserID}
	}

	return &models.Room{
		RoomID:    uuid.NewString(),
		Domain:    domain,
		RoomType:  roomType,
		Users:     users,
		Status:    models.RoomStatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

// insertWithRetry retries transient insert failures with a small backoff. A
// membership conflict is returned immediately: retrying the same cohort
// cannot succeed, and the next tick re-filters it.
func (m *Matchmaker) insertWithRetry(ctx context.Context, room *models.Room) error {
	var err error
	for attempt := 0; attempt < m.insertRetries; attempt++ {
		if err = m.rooms.InsertRoom(ctx, room); err == nil {
			return nil
		}
		if errors.Is(err, status.ErrRoomConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
		}
	}
	return err
}

// requeue pushes users back to the tail of their queue, preserving their
// relative order. A failed push is a dropped user and is logged loudly.
func (m *Matchmaker) requeue(ctx context.Context, key, domain string, users []models.WaitingUser) {
	for _, user := range users {
		if err := m.queues.PushTail(ctx, key, user); err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"key":     key,
				"user_id": user.UserID,
			}).Error("requeue failed; user lost from queue")
			continue
		}
	}
	if len(users) > 0 {
		monitoring.TrackRequeued(domain, len(users))
	}
}

func userIDs(users []models.WaitingUser) []string {
	ids := make([]string, len(users))
	for i, user := range users {
		ids[i] = user.UserID
	}
	return ids
}
