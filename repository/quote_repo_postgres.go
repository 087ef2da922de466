package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
)

type PostgresQuoteRepo struct {
	DB *sql.DB
}

func NewPostgresQuoteRepo(db *sql.DB) *PostgresQuoteRepo {
	return &PostgresQuoteRepo{DB: db}
}

const quoteColumns = `id, shipment_id, carrier_id, price, message,
	estimated_delivery_days, status, created_at, updated_at`

// Create inserts the quote; the UNIQUE (shipment_id, carrier_id) constraint
// resolves racing duplicate submissions to one winner.
func (r *PostgresQuoteRepo) Create(ctx context.Context, q *models.Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO quotes (`+quoteColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, q.ID, q.ShipmentID, q.CarrierID, q.Price, q.Message,
		q.EstimatedDeliveryDays, q.Status, q.CreatedAt, q.UpdatedAt)
	if isUniqueViolation(err) {
		return models.NewConflictError("carrier already sent a quote for shipment %s", q.ShipmentID)
	}
	return err
}

func (r *PostgresQuoteRepo) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (r *PostgresQuoteRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*models.Quote, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT q.id, q.shipment_id, q.carrier_id, q.price, q.message,
		       q.estimated_delivery_days, q.status, q.created_at, q.updated_at,
		       u.name, u.email, u.phone, u.company_name
		FROM quotes q
		JOIN users u ON u.id = q.carrier_id
		WHERE q.shipment_id = $1
		ORDER BY q.created_at DESC
	`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Quote
	for rows.Next() {
		var (
			q       models.Quote
			carrier models.UserSummary
		)
		err := rows.Scan(&q.ID, &q.ShipmentID, &q.CarrierID, &q.Price, &q.Message,
			&q.EstimatedDeliveryDays, &q.Status, &q.CreatedAt, &q.UpdatedAt,
			&carrier.Name, &carrier.Email, &carrier.Phone, &carrier.CompanyName)
		if err != nil {
			return nil, err
		}
		carrier.ID = q.CarrierID
		q.Carrier = &carrier
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (r *PostgresQuoteRepo) ListByCarrier(ctx context.Context, carrierID string) ([]*models.Quote, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE carrier_id = $1
		ORDER BY created_at DESC
	`, carrierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	shipments := NewPostgresShipmentRepo(r.DB)
	for _, q := range out {
		if s, err := shipments.GetByID(ctx, q.ShipmentID); err == nil && s != nil {
			q.Shipment = s
		}
	}
	return out, nil
}

func (r *PostgresQuoteRepo) SetStatus(ctx context.Context, id string, status models.QuoteStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE quotes SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "quote %s not found", id)
}

func (r *PostgresQuoteRepo) RejectSiblings(ctx context.Context, shipmentID, acceptedID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE quotes SET status = $3, updated_at = $4
		WHERE shipment_id = $1 AND id <> $2
	`, shipmentID, acceptedID, models.QuoteRejected, time.Now().UTC())
	return err
}

func scanQuote(row rowScanner) (*models.Quote, error) {
	var q models.Quote
	err := row.Scan(&q.ID, &q.ShipmentID, &q.CarrierID, &q.Price, &q.Message,
		&q.EstimatedDeliveryDays, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
