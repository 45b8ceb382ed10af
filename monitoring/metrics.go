package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"codepair-system/models"
	"codepair-system/store"
)

var (
	queueLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchmaking_queue_length",
			Help: "Current number of waiting users per queue",
		},
		[]string{"domain", "room_type"},
	)

	roomsFormed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_rooms_formed_total",
			Help: "Rooms created by the matchmaking scheduler",
		},
		[]string{"domain", "room_type"},
	)

	usersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_users_skipped_total",
			Help: "Drained users skipped because they were already seated in an active room",
		},
		[]string{"domain"},
	)

	usersRequeued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_users_requeued_total",
			Help: "Users pushed back to the tail of their queue",
		},
		[]string{"domain"},
	)

	malformedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmaking_malformed_entries_total",
			Help: "Queue entries dropped because their payload could not be decoded",
		},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchmaking_pass_duration_seconds",
			Help:    "Duration of one scheduler pass over all queue keys",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	queueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_operations_total",
			Help: "Total queue API operations",
		},
		[]string{"operation", "status"},
	)
)

// TrackRoomFormed records one room creation.
func TrackRoomFormed(domain, roomType string) {
	roomsFormed.WithLabelValues(domain, roomType).Inc()
}

// TrackSkipped records users filtered out for already being seated.
func TrackSkipped(domain string, n int) {
	usersSkipped.WithLabelValues(domain).Add(float64(n))
}

// TrackRequeued records users pushed back onto their queue.
func TrackRequeued(domain string, n int) {
	usersRequeued.WithLabelValues(domain).Add(float64(n))
}

// TrackMalformedEntry records a dropped undecodable queue entry.
func TrackMalformedEntry() {
	malformedEntries.Inc()
}

// ObservePass records the duration of one scheduler pass.
func ObservePass(d time.Duration) {
	passDuration.Observe(d.Seconds())
}

// TrackQueueOperation records one queue API call outcome.
func TrackQueueOperation(operation, status string) {
	queueOperations.WithLabelValues(operation, status).Inc()
}

// Monitor periodically samples queue lengths into the queue length gauge.
type Monitor struct {
	queues   *store.RedisQueueStore
	interval time.Duration
}

func NewMonitor(queues *store.RedisQueueStore, interval time.Duration) *Monitor {
	return &Monitor{queues: queues, interval: interval}
}

// Run samples until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect(ctx)
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	keys, err := m.queues.Keys(ctx)
	if err != nil {
		logrus.WithError(err).Warn("metrics: listing queue keys failed")
		return
	}

	for _, key := range keys {
		domain, roomType, ok := models.ParseQueueKey(key)
		if !ok {
			continue
		}
		length, err := m.queues.Length(ctx, key)
		if err != nil {
			continue
		}
		queueLength.WithLabelValues(domain, roomType).Set(float64(length))
	}
}
