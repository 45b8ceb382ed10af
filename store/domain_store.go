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

// MongoDomainStore holds the registry of practice domains and their room
// types.
type MongoDomainStore struct {
	domains   *mongo.Collection
	roomTypes *mongo.Collection
}

func NewMongoDomainStore(db *mongo.Database) *MongoDomainStore {
	return &MongoDomainStore{
		domains:   db.Collection("domains"),
		roomTypes: db.Collection("room_types"),
	}
}

// CreateDomain registers a new domain; duplicate names are rejected.
func (s *MongoDomainStore) CreateDomain(ctx context.Context, domain models.Domain) error {
	err := s.domains.FindOne(ctx, bson.M{"name": domain.Name}).Err()
	if err == nil {
		return status.ErrDomainExists
	}
	if err != mongo.ErrNoDocuments {
		return fmt.Errorf("check domain: %w", err)
	}

	domain.CreatedAt = time.Now().UTC()
	if _, err := s.domains.InsertOne(ctx, domain); err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	return nil
}

// ListDomains returns all registered domains, oldest first.
func (s *MongoDomainStore) ListDomains(ctx context.Context) ([]models.Domain, error) {
	cursor, err := s.domains.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer cursor.Close(ctx)

	var domains []models.Domain
	if err := cursor.All(ctx, &domains); err != nil {
		return nil, fmt.Errorf("decode domains: %w", err)
	}
	return domains, nil
}

// CreateRoomType registers a room type under a domain.
func (s *MongoDomainStore) CreateRoomType(ctx context.Context, rt models.RoomType) error {
	rt.CreatedAt = time.Now().UTC()
	if _, err := s.roomTypes.InsertOne(ctx, rt); err != nil {
		return fmt.Errorf("insert room type: %w", err)
	}
	return nil
}

// ListRoomTypes returns room types, optionally filtered by domain name.
func (s *MongoDomainStore) ListRoomTypes(ctx context.Context, domainName string) ([]models.RoomType, error) {
	filter := bson.M{}
	if domainName != "" {
		filter["domain_name"] = domainName
	}

	cursor, err := s.roomTypes.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	defer cursor.Close(ctx)

	var roomTypes []models.RoomType
	if err := cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("decode room types: %w", err)
	}
	return roomTypes, nil
}
