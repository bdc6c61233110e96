package repositories

import (
	"context"

	"github.com/anonto42/userswatch/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActivityRepository keeps an append-only log of follow events
type ActivityRepository interface {
	InsertFollowEvent(ctx context.Context, event *models.FollowEvent) error
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new MongoActivityRepository
func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("follow_events")}
}

func (r *MongoActivityRepository) InsertFollowEvent(ctx context.Context, event *models.FollowEvent) error {
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

