package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusEnded  RoomStatus = "ended"
)

// RoomUser is one seat in a room. It starts as a copy of the queue entry that
// produced it; challenge tracking fields are filled in during the session.
type RoomUser struct {
	UserID          string   `bson:"user_id" json:"user_id"`
	SolvedQuestions []string `bson:"solved_questions,omitempty" json:"solved_questions,omitempty"`
}

// Room is a persisted match. Membership is fixed at creation; only the status,
// winner and per-user challenge fields change afterwards.
type Room struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RoomID    string             `bson:"room_id" json:"room_id"`
	Domain    string             `bson:"domain" json:"domain"`
	RoomType  string             `bson:"room_type" json:"room_type"`
	Users     []RoomUser         `bson:"users" json:"users"`
	Status    RoomStatus         `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	EndedAt   *time.Time         `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	WinnerID  string             `bson:"winner_id,omitempty" json:"winner_id,omitempty"`
}

// HasUser reports whether userID holds a seat in the room.
func (r *Room) HasUser(userID string) bool {
	for _, u := range r.Users {
		if u.UserID == userID {
			return true
		}
	}
	return false
}
