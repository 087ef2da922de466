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

type MongoAssignmentRepo struct {
	DB *mongo.Client
}

func NewMongoAssignmentRepo(db *mongo.Client) *MongoAssignmentRepo {
	return &MongoAssignmentRepo{DB: db}
}

func (r *MongoAssignmentRepo) collection() *mongo.Collection {
	return r.DB.Database(DatabaseName).Collection("assignments")
}

// Create inserts the assignment. The unique shipment_id index makes this the
// serialization point between racing claims and quote acceptances.
func (r *MongoAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.LocationHistory == nil {
		a.LocationHistory = []models.Location{}
	}

	_, err := r.collection().InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError("shipment %s is already accepted by another carrier", a.ShipmentID)
	}
	return err
}

func (r *MongoAssignmentRepo) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAssignmentRepo) GetByShipment(ctx context.Context, shipmentID string) (*models.Assignment, error) {
	return r.findOne(ctx, bson.M{"shipment_id": shipmentID})
}

func (r *MongoAssignmentRepo) findOne(ctx context.Context, filter bson.M) (*models.Assignment, error) {
	var a models.Assignment
	err := r.collection().FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	r.populateShipment(ctx, &a)
	return &a, nil
}

func (r *MongoAssignmentRepo) ListByCarrier(ctx context.Context, carrierID string) ([]*models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.collection().Find(ctx, bson.M{"carrier_id": carrierID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Assignment
	for cur.Next(ctx) {
		var a models.Assignment
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		r.populateShipment(ctx, &a)
		out = append(out, &a)
	}
	return out, cur.Err()
}

func (r *MongoAssignmentRepo) populateShipment(ctx context.Context, a *models.Assignment) {
	var s models.Shipment
	shipments := r.DB.Database(DatabaseName).Collection("shipments")
	if err := shipments.FindOne(ctx, bson.M{"_id": a.ShipmentID}).Decode(&s); err == nil {
		a.Shipment = &s
	}
}

func (r *MongoAssignmentRepo) SetStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("assignment %s not found", id)
	}
	return nil
}

func (r *MongoAssignmentRepo) AppendLocation(ctx context.Context, id string, loc models.Location) error {
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
		return models.NewNotFoundError("assignment %s not found", id)
	}
	return nil
}
