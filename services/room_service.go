package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"codepair-system/internal/status"
	"codepair-system/models"
	"codepair-system/store"
)

// RoomService exposes the room lifecycle around the scheduler's inserts:
// looking up a user's current room, leaving, and challenge completion.
type RoomService struct {
	rooms *store.MongoRoomStore
}

func NewRoomService(rooms *store.MongoRoomStore) *RoomService {
	return &RoomService{rooms: rooms}
}

// CurrentRoom returns the active room seating userID.
func (s *RoomService) CurrentRoom(ctx context.Context, userID string) (*models.Room, error) {
	room, err := s.rooms.FindActiveRoomForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, status.ErrRoomNotFound
	}
	return room, nil
}

// Leave removes a user from a room; the room is deleted once its last user
// leaves.
func (s *RoomService) Leave(ctx context.Context, roomID, userID string) error {
	deleted, err := s.rooms.RemoveUser(ctx, roomID, userID)
	if err != nil {
		return err
	}

	entry := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})
	if deleted {
		entry.Info("room deleted after last user left")
	} else {
		entry.Info("user left room")
	}
	return nil
}

// Complete ends an active room and records the winner.
func (s *RoomService) Complete(ctx context.Context, roomID, winnerID string) error {
	if err := s.rooms.EndRoom(ctx, roomID, winnerID); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "winner_id": winnerID}).Info("room ended")
	return nil
}
