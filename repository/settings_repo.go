package repository

import (
	"context"

	"horseshipt/models"
)

// SettingsRepository stores carrier notification preferences.
// GetByCarrier returns (nil, nil) when the carrier has none saved yet.
type SettingsRepository interface {
	GetByCarrier(ctx context.Context, carrierID string) (*models.CarrierSettings, error)
	Save(ctx context.Context, s *models.CarrierSettings) error
}
