package repository

import (
	"context"

	"horseshipt/models"
)

// WaybillRepository gathers everything the waybill PDF needs: the shipment,
// its assignment, and the two parties' contact details.
type WaybillRepository struct {
	Shipments   ShipmentRepository
	Assignments AssignmentRepository
	Users       UserRepository
}

func NewWaybillRepository(shipments ShipmentRepository, assignments AssignmentRepository, users UserRepository) *WaybillRepository {
	return &WaybillRepository{
		Shipments:   shipments,
		Assignments: assignments,
		Users:       users,
	}
}

// WaybillData is the template input for one rendered waybill.
type WaybillData struct {
	Shipment   *models.Shipment
	Assignment *models.Assignment
	Customer   *models.UserSummary
	Carrier    *models.UserSummary
}

// GetWaybillData loads the waybill inputs for a committed shipment. The
// caller must be the owning customer or the assigned carrier.
func (r *WaybillRepository) GetWaybillData(ctx context.Context, shipmentID, callerID string) (*WaybillData, error) {
	shipment, err := r.Shipments.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, models.NewNotFoundError("shipment %s not found", shipmentID)
	}
	if shipment.CustomerID != callerID && (shipment.CarrierID == nil || *shipment.CarrierID != callerID) {
		return nil, models.NewAuthorizationError("caller has no relationship to shipment %s", shipmentID)
	}

	assignment, err := r.Assignments.GetByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, models.NewStateError("shipment %s has no carrier yet, nothing to print", shipmentID)
	}

	data := &WaybillData{Shipment: shipment, Assignment: assignment}
	if customer, err := r.Users.GetUserByID(ctx, shipment.CustomerID); err == nil && customer != nil {
		data.Customer = customer.Summary()
	}
	if carrier, err := r.Users.GetUserByID(ctx, assignment.CarrierID); err == nil && carrier != nil {
		data.Carrier = carrier.Summary()
	}
	return data, nil
}
