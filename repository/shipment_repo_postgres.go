package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
)

type PostgresShipmentRepo struct {
	DB *sql.DB
}

func NewPostgresShipmentRepo(db *sql.DB) *PostgresShipmentRepo {
	return &PostgresShipmentRepo{DB: db}
}

const shipmentColumns = `id, customer_id, carrier_id, status,
	pickup_location, pickup_time_option, pickup_date,
	delivery_location, delivery_time_option, delivery_date,
	number_of_horses, horses, additional_info,
	current_location, location_history,
	waybill_url, waybill_created_at, created_at, updated_at`

func (r *PostgresShipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	horses, err := jsonbValue(s.Horses)
	if err != nil {
		return err
	}
	current, err := jsonbValue(s.CurrentLocation)
	if err != nil {
		return err
	}
	history, err := jsonbValue(s.LocationHistory)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO shipments (`+shipmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, s.ID, s.CustomerID, s.CarrierID, s.Status,
		s.PickupLocation, s.PickupTimeOption, s.PickupDate,
		s.DeliveryLocation, s.DeliveryTimeOption, s.DeliveryDate,
		s.NumberOfHorses, horses, s.AdditionalInfo,
		current, history,
		s.WaybillURL, s.WaybillCreatedAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PostgresShipmentRepo) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	s, err := scanShipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *PostgresShipmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]*models.Shipment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipments
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	return collectShipments(rows)
}

func (r *PostgresShipmentRepo) ListAvailable(ctx context.Context, asOfDate string) ([]*models.Shipment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+shipmentColumns+` FROM shipments
		WHERE status = $1 AND pickup_date >= $2
		ORDER BY pickup_date ASC
	`, models.ShipmentPending, asOfDate)
	if err != nil {
		return nil, err
	}
	return collectShipments(rows)
}

func (r *PostgresShipmentRepo) Update(ctx context.Context, s *models.Shipment) error {
	s.UpdatedAt = time.Now().UTC()

	horses, err := jsonbValue(s.Horses)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET
			pickup_location = $2, pickup_time_option = $3, pickup_date = $4,
			delivery_location = $5, delivery_time_option = $6, delivery_date = $7,
			number_of_horses = $8, horses = $9, additional_info = $10,
			updated_at = $11
		WHERE id = $1
	`, s.ID, s.PickupLocation, s.PickupTimeOption, s.PickupDate,
		s.DeliveryLocation, s.DeliveryTimeOption, s.DeliveryDate,
		s.NumberOfHorses, horses, s.AdditionalInfo, s.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", s.ID)
}

func (r *PostgresShipmentRepo) SetAssigned(ctx context.Context, id, carrierID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET status = $2, carrier_id = $3, updated_at = $4 WHERE id = $1
	`, id, models.ShipmentAssigned, carrierID, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

func (r *PostgresShipmentRepo) SetStatus(ctx context.Context, id string, status models.ShipmentStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

func (r *PostgresShipmentRepo) Release(ctx context.Context, id string, status models.ShipmentStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET status = $2, carrier_id = NULL, updated_at = $3 WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

func (r *PostgresShipmentRepo) SetWaybill(ctx context.Context, id, url string, createdAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET waybill_url = $2, waybill_created_at = $3, updated_at = $4 WHERE id = $1
	`, id, url, createdAt, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

func (r *PostgresShipmentRepo) AppendLocation(ctx context.Context, id string, loc models.Location) error {
	point, err := jsonbValue(loc)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shipments SET
			current_location = $2,
			location_history = COALESCE(location_history, '[]'::jsonb) || $3::jsonb,
			updated_at = $4
		WHERE id = $1
	`, id, point, point, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

func (r *PostgresShipmentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "shipment %s not found", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var (
		s        models.Shipment
		horses   sql.NullString
		current  sql.NullString
		history  sql.NullString
		carrier  sql.NullString
		waybill  sql.NullString
		waybillT sql.NullTime
	)
	err := row.Scan(&s.ID, &s.CustomerID, &carrier, &s.Status,
		&s.PickupLocation, &s.PickupTimeOption, &s.PickupDate,
		&s.DeliveryLocation, &s.DeliveryTimeOption, &s.DeliveryDate,
		&s.NumberOfHorses, &horses, &s.AdditionalInfo,
		&current, &history,
		&waybill, &waybillT, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if carrier.Valid {
		s.CarrierID = &carrier.String
	}
	if waybill.Valid {
		s.WaybillURL = &waybill.String
	}
	if waybillT.Valid {
		s.WaybillCreatedAt = &waybillT.Time
	}
	if err := jsonbScan(horses, &s.Horses); err != nil {
		return nil, err
	}
	if err := jsonbScan(current, &s.CurrentLocation); err != nil {
		return nil, err
	}
	if err := jsonbScan(history, &s.LocationHistory); err != nil {
		return nil, err
	}
	return &s, nil
}

func collectShipments(rows *sql.Rows) ([]*models.Shipment, error) {
	defer rows.Close()
	var out []*models.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, format string, args ...interface{}) error {
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NewNotFoundError(format, args...)
	}
	return nil
}
