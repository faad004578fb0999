package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"parkmeter/internal/parking"
	"parkmeter/internal/telemetry"
)

func getServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return "parkmeter"
}

type Handler struct {
	calc      parking.FeeCalculator
	resolve   parking.MethodResolver
	telemetry *telemetry.Provider

	mu  sync.RWMutex
	lot *parking.InstrumentedLot
}

// NewHandler wires the fee calculator, payment method resolver and
// telemetry; lot may be nil until a create request arrives.
func NewHandler(calc parking.FeeCalculator, resolve parking.MethodResolver, tel *telemetry.Provider, lot *parking.InstrumentedLot) *Handler {
	return &Handler{
		calc:      calc,
		resolve:   resolve,
		telemetry: tel,
		lot:       lot,
	}
}

func (h *Handler) getLot() *parking.InstrumentedLot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lot
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": getServiceName(),
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var specs []parking.SpotSpec
	if req.Layout != "" {
		var err error
		specs, err = parking.ParseLayout(req.Layout)
		if err != nil {
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	lot, err := parking.NewInstrumentedLot(h.calc, parking.SystemClock, h.telemetry)
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create lot")
		return
	}

	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			lot.AddSpot(ctx, spec.Class)
		}
	}

	h.mu.Lock()
	replaced := h.lot
	h.lot = lot
	h.mu.Unlock()

	if replaced != nil {
		replaced.Retire(ctx)
	}

	WriteSuccess(ctx, w, "Lot created successfully", map[string]any{
		"capacity": lot.Capacity(),
		"layout":   req.Layout,
	})
}

func (h *Handler) AddSpot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lot := h.getLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusNotFound, "Lot not created. Create the lot first")
		return
	}

	var req AddSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	class, err := parking.ParseSpotClass(req.Class)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	id := lot.AddSpot(ctx, class)

	WriteSuccess(ctx, w, "Spot added successfully", map[string]any{
		"spot_id": id,
		"class":   string(class),
	})
}

func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lot := h.getLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusNotFound, "Lot not created. Create the lot first")
		return
	}

	var req ParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vehicle, err := parking.Classify(req.Vehicle)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := lot.Admit(ctx, vehicle)
	if err != nil {
		WriteError(ctx, w, http.StatusConflict, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle admitted successfully", TicketResponse{
		TicketID: ticket.ID,
		SpotID:   ticket.SpotID,
		Category: string(ticket.Vehicle.Category),
		IssuedAt: ticket.IssuedAt,
	})
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lot := h.getLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusNotFound, "Lot not created. Create the lot first")
		return
	}

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket ID is required")
		return
	}

	method, err := h.resolve(req.Method)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := lot.Locate(ctx, req.TicketID)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	fee, receipt, err := lot.Release(ctx, parking.Ticket{ID: req.TicketID, SpotID: status.ID}, method)
	if err != nil {
		var settlementErr *parking.SettlementError
		switch {
		case errors.As(err, &settlementErr):
			WriteError(ctx, w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, parking.ErrSpotVacant), errors.Is(err, parking.ErrTicketStale):
			WriteError(ctx, w, http.StatusConflict, err.Error())
		default:
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
		}
		return
	}

	WriteSuccess(ctx, w, "Spot vacated successfully", ReceiptResponse{
		SpotID:    status.ID,
		Amount:    fee.Amount,
		Units:     fee.Units,
		Rate:      fee.Rate,
		Method:    receipt.Method,
		Reference: receipt.Reference,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lot := h.getLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusNotFound, "Lot not created. Create the lot first")
		return
	}

	statuses := lot.Status(ctx)

	occupied := 0
	spots := make([]SpotResponse, 0, len(statuses))
	for _, status := range statuses {
		spots = append(spots, toSpotResponse(status))
		if status.Occupied {
			occupied++
		}
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		Capacity:  len(statuses),
		Occupied:  occupied,
		Available: len(statuses) - occupied,
		Spots:     spots,
	})
}

func (h *Handler) FindTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lot := h.getLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusNotFound, "Lot not created. Create the lot first")
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket ID is required")
		return
	}

	status, err := lot.Locate(ctx, ticketID)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", toSpotResponse(status))
}

func toSpotResponse(status parking.SpotStatus) SpotResponse {
	resp := SpotResponse{
		SpotID:   status.ID,
		Class:    string(status.Class),
		Occupied: status.Occupied,
	}
	if status.Occupied {
		resp.Category = string(status.Category)
		resp.TicketID = status.TicketID
		resp.AdmittedAt = status.AdmittedAt.Format(time.RFC3339)
	}
	return resp
}
