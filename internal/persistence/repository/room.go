package repository

import (
	"context"
	"time"

	"github.com/devmeet/devmeet/internal/domain"
	"github.com/devmeet/devmeet/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoomRepository struct {
	db *mongo.Database
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{
		db: db,
	}
}

// Create records a room. Creating an id that already exists is treated as
// success; room creation is idempotent by design of the join flow.
func (r *RoomRepository) Create(ctx context.Context, roomID string) error {
	collection := r.db.Collection(db.RoomsCollection)

	filter := bson.M{"_id": roomID}
	update := bson.M{
		"$setOnInsert": domain.Room{
			ID:        roomID,
			CreatedAt: time.Now(),
		},
	}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *RoomRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	collection := r.db.Collection(db.RoomsCollection)

	count, err := collection.CountDocuments(ctx, bson.M{"_id": roomID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoomRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RoomsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
