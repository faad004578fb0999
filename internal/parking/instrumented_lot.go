package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parkmeter/internal/telemetry"
)

type InstrumentedLot struct {
	*Lot
	telemetry *telemetry.Provider

	// Metrics
	admissions        metric.Int64Counter
	releases          metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	spotsGauge        metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	revenue           metric.Float64Counter
}

func NewInstrumentedLot(calc FeeCalculator, clock Clock, tel *telemetry.Provider) (*InstrumentedLot, error) {
	meter := tel.Meter

	admissions, err := meter.Int64Counter("parking_admissions_total",
		metric.WithDescription("Total number of admission attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("parking_releases_total",
		metric.WithDescription("Total number of release attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	spotsGauge, err := meter.Int64UpDownCounter("parking_lot_spots_total",
		metric.WithDescription("Total number of spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Counter("parking_revenue_total",
		metric.WithDescription("Total settled fees"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedLot{
		Lot:               NewLot(calc, clock),
		telemetry:         tel,
		admissions:        admissions,
		releases:          releases,
		occupancyGauge:    occupancyGauge,
		spotsGauge:        spotsGauge,
		operationDuration: operationDuration,
		revenue:           revenue,
	}, nil
}

func (il *InstrumentedLot) AddSpot(ctx context.Context, class SpotClass) int {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.add_spot",
		trace.WithAttributes(
			attribute.String("spot.class", string(class)),
		))
	defer span.End()

	start := time.Now()

	id := il.Lot.AddSpot(class)

	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Int("spot.id", id))
	span.AddEvent("spot_added", trace.WithAttributes(
		attribute.Int("spot_id", id),
	))

	il.spotsGauge.Add(ctx, 1, metric.WithAttributes(
		attribute.String("class", string(class)),
	))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "add_spot"),
		attribute.String("status", "success"),
	))

	return id
}

func (il *InstrumentedLot) Admit(ctx context.Context, vehicle Vehicle) (Ticket, error) {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.admit",
		trace.WithAttributes(
			attribute.String("vehicle.category", string(vehicle.Category)),
			attribute.Int("vehicle.size", int(vehicle.Size)),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_compatible_spot")

	ticket, err := il.Lot.Admit(vehicle)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "admit"),
		attribute.String("category", string(vehicle.Category)),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "rejected"))
		il.admissions.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		labels = append(labels, attribute.String("status", "admitted"))
		span.SetAttributes(
			attribute.Int("spot.id", ticket.SpotID),
			attribute.String("ticket.id", ticket.ID),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(
			attribute.Int("spot_id", ticket.SpotID),
		))

		il.admissions.Add(ctx, 1, metric.WithAttributes(labels...))
		il.occupancyGauge.Add(ctx, 1)
	}

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (il *InstrumentedLot) Release(ctx context.Context, ticket Ticket, method PaymentMethod) (Fee, Receipt, error) {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.release",
		trace.WithAttributes(
			attribute.String("ticket.id", ticket.ID),
			attribute.Int("spot.id", ticket.SpotID),
			attribute.String("payment.method", method.Name()),
		))
	defer span.End()

	start := time.Now()

	fee, receipt, err := il.Lot.Release(ticket, method)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "release"),
		attribute.String("method", method.Name()),
	}

	var settlementErr *SettlementError
	switch {
	case errors.As(err, &settlementErr):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.AddEvent("settlement_failed", trace.WithAttributes(
			attribute.Float64("fee.amount", settlementErr.Fee.Amount),
		))
		labels = append(labels, attribute.String("status", "settlement_failed"))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "rejected"))
	default:
		labels = append(labels, attribute.String("status", "released"))
		span.SetAttributes(
			attribute.Float64("fee.amount", fee.Amount),
			attribute.Int64("fee.units", fee.Units),
			attribute.String("receipt.reference", receipt.Reference),
		)
		span.AddEvent("fee_settled", trace.WithAttributes(
			attribute.Float64("amount", fee.Amount),
			attribute.String("method", receipt.Method),
		))

		il.occupancyGauge.Add(ctx, -1)
		il.revenue.Add(ctx, fee.Amount, metric.WithAttributes(
			attribute.String("category", string(fee.Category)),
			attribute.String("method", receipt.Method),
		))
	}

	il.releases.Add(ctx, 1, metric.WithAttributes(labels...))
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return fee, receipt, err
}

// Retire backs this lot's spots and occupants out of the shared
// gauges. Call it when a replacement lot takes over the meter.
func (il *InstrumentedLot) Retire(ctx context.Context) {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.retire")
	defer span.End()

	statuses := il.Lot.Status()

	occupied := 0
	for _, status := range statuses {
		il.spotsGauge.Add(ctx, -1, metric.WithAttributes(
			attribute.String("class", string(status.Class)),
		))
		if status.Occupied {
			occupied++
			il.occupancyGauge.Add(ctx, -1)
		}
	}

	span.SetAttributes(
		attribute.Int("spots.total", len(statuses)),
		attribute.Int("spots.occupied", occupied),
	)
	span.AddEvent("lot_retired")
}

func (il *InstrumentedLot) Status(ctx context.Context) []SpotStatus {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.status")
	defer span.End()

	start := time.Now()

	statuses := il.Lot.Status()

	duration := time.Since(start).Seconds()

	occupied := 0
	for _, status := range statuses {
		if status.Occupied {
			occupied++
		}
	}

	span.SetAttributes(
		attribute.Int("spots.total", len(statuses)),
		attribute.Int("spots.occupied", occupied),
	)

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return statuses
}

func (il *InstrumentedLot) Locate(ctx context.Context, ticketID string) (SpotStatus, error) {
	ctx, span := il.telemetry.Tracer.Start(ctx, "lot.locate",
		trace.WithAttributes(
			attribute.String("ticket.id", ticketID),
		))
	defer span.End()

	start := time.Now()

	status, err := il.Lot.Locate(ticketID)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "locate"),
	}

	if err != nil {
		span.AddEvent("ticket_not_found")
		labels = append(labels, attribute.String("status", "not_found"))
	} else {
		span.SetAttributes(attribute.Int("spot.id", status.ID))
		span.AddEvent("ticket_found", trace.WithAttributes(
			attribute.Int("spot_id", status.ID),
		))
		labels = append(labels, attribute.String("status", "found"))
	}

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return status, err
}
