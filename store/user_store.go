package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codepair-system/models"
)

// MongoUserStore persists accounts created through OAuth login.
type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("users")}
}

// UpsertAccount creates or refreshes the account for a GitHub identity and
// returns the stored record.
func (s *MongoUserStore) UpsertAccount(ctx context.Context, account models.Account) (*models.Account, error) {
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"user_id":       account.UserID,
			"name":          account.Name,
			"email":         account.Email,
			"avatar":        account.Avatar,
			"last_login_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored models.Account
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"github_id": account.GitHubID}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return &stored, nil
}

// FindByUserID fetches an account by its stable user id.
func (s *MongoUserStore) FindByUserID(ctx context.Context, userID string) (*models.Account, error) {
	var account models.Account
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}
