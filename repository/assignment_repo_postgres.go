package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
)

type PostgresAssignmentRepo struct {
	DB *sql.DB
}

func NewPostgresAssignmentRepo(db *sql.DB) *PostgresAssignmentRepo {
	return &PostgresAssignmentRepo{DB: db}
}

const assignmentColumns = `id, shipment_id, carrier_id, status, notes,
	current_location, location_history, created_at, updated_at`

// Create inserts the assignment; the UNIQUE shipment_id constraint is the
// serialization point between racing claims and quote acceptances.
func (r *PostgresAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	current, err := jsonbValue(a.CurrentLocation)
	if err != nil {
		return err
	}
	history, err := jsonbValue(a.LocationHistory)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.ShipmentID, a.CarrierID, a.Status, a.Notes,
		current, history, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return models.NewConflictError("shipment %s is already accepted by another carrier", a.ShipmentID)
	}
	return err
}

func (r *PostgresAssignmentRepo) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	return r.scanOne(ctx, row)
}

func (r *PostgresAssignmentRepo) GetByShipment(ctx context.Context, shipmentID string) (*models.Assignment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE shipment_id = $1`, shipmentID)
	return r.scanOne(ctx, row)
}

func (r *PostgresAssignmentRepo) scanOne(ctx context.Context, row rowScanner) (*models.Assignment, error) {
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.populateShipment(ctx, a)
	return a, nil
}

func (r *PostgresAssignmentRepo) ListByCarrier(ctx context.Context, carrierID string) ([]*models.Assignment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE carrier_id = $1
		ORDER BY created_at DESC
	`, carrierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range out {
		r.populateShipment(ctx, a)
	}
	return out, nil
}

func (r *PostgresAssignmentRepo) populateShipment(ctx context.Context, a *models.Assignment) {
	shipments := NewPostgresShipmentRepo(r.DB)
	if s, err := shipments.GetByID(ctx, a.ShipmentID); err == nil && s != nil {
		a.Shipment = s
	}
}

func (r *PostgresAssignmentRepo) SetStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE assignments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "assignment %s not found", id)
}

func (r *PostgresAssignmentRepo) AppendLocation(ctx context.Context, id string, loc models.Location) error {
	point, err := jsonbValue(loc)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE assignments SET
			current_location = $2,
			location_history = COALESCE(location_history, '[]'::jsonb) || $3::jsonb,
			updated_at = $4
		WHERE id = $1
	`, id, point, point, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "assignment %s not found", id)
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	var (
		a       models.Assignment
		current sql.NullString
		history sql.NullString
	)
	err := row.Scan(&a.ID, &a.ShipmentID, &a.CarrierID, &a.Status, &a.Notes,
		&current, &history, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := jsonbScan(current, &a.CurrentLocation); err != nil {
		return nil, err
	}
	if err := jsonbScan(history, &a.LocationHistory); err != nil {
		return nil, err
	}
	return &a, nil
}
