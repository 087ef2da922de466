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

type MongoQuoteRepo struct {
	DB *mongo.Client
}

func NewMongoQuoteRepo(db *mongo.Client) *MongoQuoteRepo {
	return &MongoQuoteRepo{DB: db}
}

func (r *MongoQuoteRepo) collection() *mongo.Collection {
	return r.DB.Database(DatabaseName).Collection("quotes")
}

// Create inserts the quote. The unique (shipment_id, carrier_id) index turns
// a duplicate submission into a ConflictError no matter how the calls raced.
func (r *MongoQuoteRepo) Create(ctx context.Context, q *models.Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	_, err := r.collection().InsertOne(ctx, q)
	if mongo.IsDuplicateKeyError(err) {
		return models.NewConflictError("carrier already sent a quote for shipment %s", q.ShipmentID)
	}
	return err
}

func (r *MongoQuoteRepo) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	var q models.Quote
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *MongoQuoteRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*models.Quote, error) {
	quotes, err := r.find(ctx, bson.M{"shipment_id": shipmentID})
	if err != nil {
		return nil, err
	}

	// Populate carrier contact summaries for customer review.
	users := r.DB.Database(DatabaseName).Collection("users")
	for _, q := range quotes {
		var u models.AppUser
		if err := users.FindOne(ctx, bson.M{"_id": q.CarrierID}).Decode(&u); err == nil {
			q.Carrier = u.Summary()
		}
	}
	return quotes, nil
}

func (r *MongoQuoteRepo) ListByCarrier(ctx context.Context, carrierID string) ([]*models.Quote, error) {
	quotes, err := r.find(ctx, bson.M{"carrier_id": carrierID})
	if err != nil {
		return nil, err
	}

	shipments := r.DB.Database(DatabaseName).Collection("shipments")
	for _, q := range quotes {
		var s models.Shipment
		if err := shipments.FindOne(ctx, bson.M{"_id": q.ShipmentID}).Decode(&s); err == nil {
			q.Shipment = &s
		}
	}
	return quotes, nil
}

func (r *MongoQuoteRepo) find(ctx context.Context, filter bson.M) ([]*models.Quote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Quote
	for cur.Next(ctx) {
		var q models.Quote
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		out = append(out, &q)
	}
	return out, cur.Err()
}

func (r *MongoQuoteRepo) SetStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("quote %s not found", id)
	}
	return nil
}

func (r *MongoQuoteRepo) RejectSiblings(ctx context.Context, shipmentID, acceptedID string) error {
	_, err := r.collection().UpdateMany(ctx,
		bson.M{"shipment_id": shipmentID, "_id": bson.M{"$ne": acceptedID}},
		bson.M{"$set": bson.M{"status": models.QuoteRejected, "updated_at": time.Now().UTC()}},
	)
	return err
}
