package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codepair-system/internal/status"
	"codepair-system/models"
)

// MongoRoomStore persists rooms. The scheduler is the only writer for room
// creation; the room lifecycle endpoints mutate status and membership.
type MongoRoomStore struct {
	collection *mongo.Collection
}

func NewMongoRoomStore(db *mongo.Database) *MongoRoomStore {
	return &MongoRoomStore{collection: db.Collection("rooms")}
}

// EnsureIndexes creates the partial unique index that rejects a user holding
// seats in two active rooms at once. The scheduler relies on the resulting
// duplicate-key error to stay correct across its non-atomic check-then-insert.
func (s *MongoRoomStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "users.user_id", Value: 1}},
			Options: options.Index().
				SetName("unique_active_membership").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.RoomStatusActive}),
		},
		{
			Keys:    bson.D{{Key: "room_id", Value: 1}},
			Options: options.Index().SetName("room_id").SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create room indexes: %w", err)
	}
	return nil
}

// InsertRoom persists a newly formed room. A membership conflict with an
// existing active room surfaces as status.ErrRoomConflict.
func (s *MongoRoomStore) InsertRoom(ctx context.Context, room *models.Room) error {
	_, err := s.collection.InsertOne(ctx, room)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", status.ErrRoomConflict, err)
		}
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// FindActiveRoomForUser returns the active room seating userID, or nil when
// there is none.
func (s *MongoRoomStore) FindActiveRoomForUser(ctx context.Context, userID string) (*models.Room, error) {
	var room models.Room
	err := s.collection.FindOne(ctx, bson.M{
		"status":        models.RoomStatusActive,
		"users.user_id": userID,
	}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active room: %w", err)
	}
	return &room, nil
}

// SeatedUsers reports which of the given users already hold a seat in an
// active room, with a single query for the whole batch.
func (s *MongoRoomStore) SeatedUsers(ctx context.Context, userIDs []string) (map[string]struct{}, error) {
	seated := make(map[string]struct{})
	if len(userIDs) == 0 {
		return seated, nil
	}

	requested := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		requested[id] = struct{}{}
	}

	cursor, err := s.collection.Find(ctx,
		bson.M{
			"status":        models.RoomStatusActive,
			"users.user_id": bson.M{"$in": userIDs},
		},
		options.Find().SetProjection(bson.M{"users.user_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("query seated users: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var room models.Room
		if err := cursor.Decode(&room); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		for _, u := range room.Users {
			if _, ok := requested[u.UserID]; ok {
				seated[u.UserID] = struct{}{}
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate seated users: %w", err)
	}
	return seated, nil
}

// GetRoom fetches a room by its public id.
func (s *MongoRoomStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := s.collection.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, status.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

// RemoveUser pulls userID out of the room and deletes the room once it has no
// seats left. It reports whether the room was deleted.
func (s *MongoRoomStore) RemoveUser(ctx context.Context, roomID, userID string) (bool, error) {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"room_id": roomID},
		bson.M{"$pull": bson.M{"users": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return false, fmt.Errorf("remove user from room: %w", err)
	}
	if result.MatchedCount == 0 {
		return false, status.ErrRoomNotFound
	}
	if result.ModifiedCount == 0 {
		return false, status.ErrUserNotInRoom
	}

	var room models.Room
	err = s.collection.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reload room: %w", err)
	}

	if len(room.Users) == 0 {
		if _, err := s.collection.DeleteOne(ctx, bson.M{"room_id": roomID}); err != nil {
			return false, fmt.Errorf("delete empty room: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// EndRoom transitions an active room to ended, recording the winner.
func (s *MongoRoomStore) EndRoom(ctx context.Context, roomID, winnerID string) error {
	now := time.Now().UTC()
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"room_id": roomID, "status": models.RoomStatusActive},
		bson.M{"$set": bson.M{
			"status":    models.RoomStatusEnded,
			"ended_at":  now,
			"winner_id": winnerID,
		}},
	)
	if err != nil {
		return fmt.Errorf("end room: %w", err)
	}
	if result.MatchedCount == 0 {
		return status.ErrRoomNotFound
	}
	return nil
}
