package handlers

import (
	"fmt"
	"net/http"
	"time"

	"horseshipt/repository"
	"horseshipt/utils"

	"go.uber.org/zap"
)

type WaybillHandler struct {
	Waybills  *repository.WaybillRepository
	Shipments repository.ShipmentRepository
	Logger    *zap.Logger
}

// Waybill handles /shipments/{id}/waybill. POST renders the PDF, uploads it,
// and records the URL on the shipment; GET returns the stored URL.
func (h *WaybillHandler) Waybill(w http.ResponseWriter, r *http.Request, shipmentID string) {
	switch r.Method {
	case http.MethodPost:
		h.generate(w, r, shipmentID)
	case http.MethodGet:
		h.get(w, r, shipmentID)
	default:
		methodNotAllowed(w)
	}
}

func (h *WaybillHandler) generate(w http.ResponseWriter, r *http.Request, shipmentID string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	pdf, err := utils.GenerateWaybillPDF(r.Context(), h.Waybills, shipmentID, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	key := fmt.Sprintf("waybills/%s.pdf", shipmentID)
	fileURL, err := utils.UploadToR2(pdf, key, "application/pdf")
	if err != nil {
		h.Logger.Error("waybill: upload failed",
			zap.String("shipment_id", shipmentID), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, ApiResponse{
			Success: false,
			Message: "failed to store waybill",
		})
		return
	}

	createdAt := time.Now().UTC()
	if err := h.Shipments.SetWaybill(r.Context(), shipmentID, fileURL, createdAt); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Waybill generated",
		Data: map[string]interface{}{
			"waybill_url":        fileURL,
			"waybill_created_at": createdAt,
		},
	})
}

func (h *WaybillHandler) get(w http.ResponseWriter, r *http.Request, shipmentID string) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	// GetWaybillData enforces the viewer gate; we only need the shipment.
	data, err := h.Waybills.GetWaybillData(r.Context(), shipmentID, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if data.Shipment.WaybillURL == nil {
		writeJSON(w, http.StatusNotFound, ApiResponse{
			Success: false,
			Message: "no waybill has been generated for this shipment",
		})
		return
	}

	writeJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"waybill_url":        data.Shipment.WaybillURL,
			"waybill_created_at": data.Shipment.WaybillCreatedAt,
		},
	})
}
