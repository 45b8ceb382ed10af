package models

import "time"

// Account is a registered user. UserID is the stable identifier used in queue
// entries and room seats; for GitHub logins it is the numeric GitHub id
// rendered as a string.
type Account struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	GitHubID    int64     `bson:"github_id" json:"github_id"`
	Name        string    `bson:"name" json:"name"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Avatar      string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	LastLoginAt time.Time `bson:"last_login_at" json:"last_login_at"`
}
