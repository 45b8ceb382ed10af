package models

import "time"

// Domain is a practice subject users can queue for, e.g. "dsa" or "frontend".
type Domain struct {
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// RoomType is a room flavor registered under a domain.
type RoomType struct {
	Name       string    `bson:"name" json:"name"`
	DomainName string    `bson:"domain_name" json:"domain_name"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
