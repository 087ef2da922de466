package repository

import (
	"context"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoMessageRepo struct {
	DB *mongo.Client
}

func NewMongoMessageRepo(db *mongo.Client) *MongoMessageRepo {
	return &MongoMessageRepo{DB: db}
}

func (r *MongoMessageRepo) collection() *mongo.Collection {
	return r.DB.Database(DatabaseName).Collection("shipment_messages")
}

func (r *MongoMessageRepo) Create(ctx context.Context, m *models.ShipmentMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection().InsertOne(ctx, m)
	return err
}

func (r *MongoMessageRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShipmentMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.collection().Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.ShipmentMessage
	for cur.Next(ctx) {
		var m models.ShipmentMessage
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	users := r.DB.Database(DatabaseName).Collection("users")
	for _, m := range out {
		var u models.AppUser
		if err := users.FindOne(ctx, bson.M{"_id": m.SenderID}).Decode(&u); err == nil {
			m.Sender = u.Summary()
		}
	}
	return out, nil
}
