package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"horseshipt/models"

	"github.com/google/uuid"
)

type PostgresSettingsRepo struct {
	DB *sql.DB
}

func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{DB: db}
}

func (r *PostgresSettingsRepo) GetByCarrier(ctx context.Context, carrierID string) (*models.CarrierSettings, error) {
	var (
		s     models.CarrierSettings
		prefs sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, carrier_id, notifications, created_at, updated_at
		FROM carrier_settings WHERE carrier_id = $1
	`, carrierID).Scan(&s.ID, &s.CarrierID, &prefs, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := jsonbScan(prefs, &s.Notifications); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSettingsRepo) Save(ctx context.Context, s *models.CarrierSettings) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	prefs, err := jsonbValue(s.Notifications)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO carrier_settings (id, carrier_id, notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (carrier_id) DO UPDATE
		SET notifications = EXCLUDED.notifications, updated_at = EXCLUDED.updated_at
	`, s.ID, s.CarrierID, prefs, s.CreatedAt, s.UpdatedAt)
	return err
}
