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

// DatabaseName is the Mongo database the repositories operate on.
const DatabaseName = "horseshipt"

type MongoShipmentRepo struct {
	DB *mongo.Client
}

func NewMongoShipmentRepo(db *mongo.Client) *MongoShipmentRepo {
	return &MongoShipmentRepo{DB: db}
}

func (r *MongoShipmentRepo) collection() *mongo.Collection {
	return r.DB.Database(DatabaseName).Collection("shipments")
}

func (r *MongoShipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err := r.collection().InsertOne(ctx, s)
	return err
}

func (r *MongoShipmentRepo) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	var s models.Shipment
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoShipmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"customer_id": customerID}, opts)
}

func (r *MongoShipmentRepo) ListAvailable(ctx context.Context, asOfDate string) ([]*models.Shipment, error) {
	filter := bson.M{
		"status":      models.ShipmentPending,
		"pickup_date": bson.M{"$gte": asOfDate},
	}
	opts := options.Find().SetSort(bson.D{{Key: "pickup_date", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *MongoShipmentRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Shipment, error) {
	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Shipment
	for cur.Next(ctx) {
		var s models.Shipment
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

func (r *MongoShipmentRepo) Update(ctx context.Context, s *models.Shipment) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("shipment %s not found", s.ID)
	}
	return nil
}

func (r *MongoShipmentRepo) SetAssigned(ctx context.Context, id, carrierID string) error {
	return r.set(ctx, id, bson.M{
		"status":     models.ShipmentAssigned,
		"carrier_id": carrierID,
	})
}

func (r *MongoShipmentRepo) SetStatus(ctx context.Context, id string, status models.ShipmentStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *MongoShipmentRepo) Release(ctx context.Context, id string, status models.ShipmentStatus) error {
	return r.set(ctx, id, bson.M{"status": status, "carrier_id": nil})
}

func (r *MongoShipmentRepo) SetWaybill(ctx context.Context, id, url string, createdAt time.Time) error {
	return r.set(ctx, id, bson.M{"waybill_url": url, "waybill_created_at": createdAt})
}

func (r *MongoShipmentRepo) set(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("shipment %s not found", id)
	}
	return nil
}

func (r *MongoShipmentRepo) AppendLocation(ctx context.Context, id string, loc models.Location) error {
	update := bson.M{
		"$set": bson.M{
			"current_location": loc,
			"updated_at":       time.Now().UTC(),
		},
		"$push": bson.M{"location_history": loc},
	}
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("shipment %s not found", id)
	}
	return nil
}

func (r *MongoShipmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("shipment %s not found", id)
	}
	return nil
}
