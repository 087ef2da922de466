package repository

import (
	"context"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSettingsRepo struct {
	DB *mongo.Client
}

func NewMongoSettingsRepo(db *mongo.Client) *MongoSettingsRepo {
	return &MongoSettingsRepo{DB: db}
}

func (r *MongoSettingsRepo) collection() *mongo.Collection {
	return r.DB.Database(DatabaseName).Collection("carrier_settings")
}

func (r *MongoSettingsRepo) GetByCarrier(ctx context.Context, carrierID string) (*models.CarrierSettings, error) {
	var s models.CarrierSettings
	err := r.collection().FindOne(ctx, bson.M{"carrier_id": carrierID}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoSettingsRepo) Save(ctx context.Context, s *models.CarrierSettings) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := r.collection().ReplaceOne(ctx,
		bson.M{"carrier_id": s.CarrierID},
		s,
		options.Replace().SetUpsert(true),
	)
	return err
}
