package services

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go"
	"github.com/sirupsen/logrus"

	"codepair-system/models"
	"codepair-system/utils"
)

// RoomNotifier fans matchmaking events out to waiting clients. Delivery is
// best-effort; polling the room endpoint remains the source of truth.
type RoomNotifier interface {
	RoomFormed(ctx context.Context, room *models.Room)
	QueuePosition(ctx context.Context, userID string, position int, domain, roomType string)
}

// PubNubNotifier publishes to one channel per user. A circuit breaker keeps a
// flapping PubNub backend from stalling the scheduler tick.
type PubNubNotifier struct {
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("pubnub"),
	}
}

func (n *PubNubNotifier) RoomFormed(ctx context.Context, room *models.Room) {
	for _, user := range room.Users {
		n.publish(ctx, user.UserID, map[string]any{
			"type":      "room_matched",
			"room_id":   room.RoomID,
			"domain":    room.Domain,
			"room_type": room.RoomType,
		})
	}
}

func (n *PubNubNotifier) QueuePosition(ctx context.Context, userID string, position int, domain, roomType string) {
	n.publish(ctx, userID, map[string]any{
		"type":      "queue_position",
		"position":  position,
		"domain":    domain,
		"room_type": roomType,
	})
}

func (n *PubNubNotifier) publish(ctx context.Context, userID string, message map[string]any) {
	channel := fmt.Sprintf("user-%s", userID)

	err := n.breaker.Execute(ctx, func(context.Context) error {
		_, _, err := n.pubnub.Publish().
			Channel(channel).
			Message(message).
			Execute()
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("channel", channel).Warn("notify publish failed")
	}
}

// NopNotifier discards all events. Used when PubNub keys are not configured.
type NopNotifier struct{}

func (NopNotifier) RoomFormed(context.Context, *models.Room)                   {}
func (NopNotifier) QueuePosition(context.Context, string, int, string, string) {}
