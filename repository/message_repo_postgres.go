package repository

import (
	"context"
	"database/sql"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
)

type PostgresMessageRepo struct {
	DB *sql.DB
}

func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{DB: db}
}

func (r *PostgresMessageRepo) Create(ctx context.Context, m *models.ShipmentMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO shipment_messages (id, shipment_id, sender_id, body, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, m.ID, m.ShipmentID, m.SenderID, m.Body, m.CreatedAt)
	return err
}

func (r *PostgresMessageRepo) ListByShipment(ctx context.Context, shipmentID string) ([]*models.ShipmentMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.shipment_id, m.sender_id, m.body, m.created_at,
		       u.name, u.email, u.phone, u.company_name
		FROM shipment_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.shipment_id = $1
		ORDER BY m.created_at ASC
	`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ShipmentMessage
	for rows.Next() {
		var (
			m      models.ShipmentMessage
			sender models.UserSummary
		)
		err := rows.Scan(&m.ID, &m.ShipmentID, &m.SenderID, &m.Body, &m.CreatedAt,
			&sender.Name, &sender.Email, &sender.Phone, &sender.CompanyName)
		if err != nil {
			return nil, err
		}
		sender.ID = m.SenderID
		m.Sender = &sender
		out = append(out, &m)
	}
	return out, rows.Err()
}
