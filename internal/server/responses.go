package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CreateLotRequest struct {
	Layout string `json:"layout"`
}

type AddSpotRequest struct {
	Class string `json:"class"`
}

type ParkRequest struct {
	Vehicle string `json:"vehicle"`
}

type LeaveRequest struct {
	TicketID string `json:"ticket_id"`
	Method   string `json:"method"`
}

type TicketResponse struct {
	TicketID string    `json:"ticket_id"`
	SpotID   int       `json:"spot_id"`
	Category string    `json:"category"`
	IssuedAt time.Time `json:"issued_at"`
}

type ReceiptResponse struct {
	SpotID    int     `json:"spot_id"`
	Amount    float64 `json:"amount"`
	Units     int64   `json:"units"`
	Rate      float64 `json:"rate"`
	Method    string  `json:"method"`
	Reference string  `json:"reference"`
}

type SpotResponse struct {
	SpotID     int    `json:"spot_id"`
	Class      string `json:"class"`
	Occupied   bool   `json:"occupied"`
	Category   string `json:"category,omitempty"`
	TicketID   string `json:"ticket_id,omitempty"`
	AdmittedAt string `json:"admitted_at,omitempty"`
}

type StatusResponse struct {
	Capacity  int            `json:"capacity"`
	Occupied  int            `json:"occupied"`
	Available int            `json:"available"`
	Spots     []SpotResponse `json:"spots"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
