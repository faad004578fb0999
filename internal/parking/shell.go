package parking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"parkmeter/internal/telemetry"
)

// MethodResolver maps a payment method label to a backend.
type MethodResolver func(name string) (PaymentMethod, error)

type Shell struct {
	lot       *InstrumentedLot
	calc      FeeCalculator
	resolve   MethodResolver
	telemetry *telemetry.Provider
	scanner   *bufio.Scanner
}

// NewShell builds the interactive driver. lot may be nil; create_lot
// builds one on demand.
func NewShell(calc FeeCalculator, resolve MethodResolver, tel *telemetry.Provider, lot *InstrumentedLot) *Shell {
	return &Shell{
		lot:       lot,
		calc:      calc,
		resolve:   resolve,
		telemetry: tel,
		scanner:   bufio.NewScanner(os.Stdin),
	}
}

func (s *Shell) Run(ctx context.Context) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")
	defer span.AddEvent("shell_ended")

	lines := make(chan string)
	go func() {
		defer close(lines)
		for s.scanner.Scan() {
			select {
			case lines <- s.scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}

			cmdCtx, cmdSpan := s.telemetry.Tracer.Start(ctx, "shell.process_command",
				trace.WithAttributes(attribute.String("command.input", input)))

			done := s.processCommand(cmdCtx, input)
			cmdSpan.End()

			if done {
				return
			}
		}
	}
}

func (s *Shell) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	command := parts[0]

	switch command {
	case "create_lot":
		s.handleCreateLot(ctx, parts)
	case "add_spot":
		s.handleAddSpot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "leave":
		s.handleLeave(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "find":
		s.handleFind(ctx, parts)
	case "help":
		s.printHelp()
	case "exit":
		return true
	default:
		fmt.Printf("Unknown command: %s (try help)\n", command)
	}

	return false
}

func (s *Shell) handleCreateLot(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.create_lot")
	defer span.End()

	if len(parts) > 2 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: create_lot [small:2,medium:2,large:1]")
		return
	}

	var specs []SpotSpec
	if len(parts) == 2 {
		var err error
		specs, err = ParseLayout(parts[1])
		if err != nil {
			span.RecordError(err)
			fmt.Printf("Invalid layout: %s\n", err.Error())
			return
		}
	}

	lot, err := NewInstrumentedLot(s.calc, SystemClock, s.telemetry)
	if err != nil {
		span.RecordError(err)
		fmt.Printf("Error creating lot: %s\n", err.Error())
		return
	}

	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			lot.AddSpot(ctx, spec.Class)
		}
	}

	if s.lot != nil {
		s.lot.Retire(ctx)
	}
	s.lot = lot
	span.AddEvent("lot_created")
	fmt.Printf("Created a lot with %d spots\n", lot.Capacity())
}

func (s *Shell) handleAddSpot(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.add_spot")
	defer span.End()

	if s.lot == nil {
		span.AddEvent("lot_not_created")
		fmt.Println("Lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: add_spot <class>")
		return
	}

	class, err := ParseSpotClass(parts[1])
	if err != nil {
		span.RecordError(err)
		fmt.Printf("Unknown spot class: %s\n", parts[1])
		return
	}

	id := s.lot.AddSpot(ctx, class)
	fmt.Printf("Added %s spot %d\n", class, id)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.park_command")
	defer span.End()

	if s.lot == nil {
		span.AddEvent("lot_not_created")
		fmt.Println("Lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: park <bike|car|truck>")
		return
	}

	vehicle, err := Classify(parts[1])
	if err != nil {
		span.RecordError(err)
		fmt.Printf("Unknown vehicle type: %s\n", parts[1])
		return
	}

	ticket, err := s.lot.Admit(ctx, vehicle)
	if err != nil {
		span.AddEvent("admission_rejected")
		fmt.Println("Sorry, no compatible spot available")
		return
	}

	span.AddEvent("admission_accepted", trace.WithAttributes(
		attribute.Int("spot_id", ticket.SpotID),
	))
	fmt.Printf("Allocated spot %d\n", ticket.SpotID)
	fmt.Printf("Ticket: %s\n", ticket.ID)
}

func (s *Shell) handleLeave(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.leave_command")
	defer span.End()

	if s.lot == nil {
		span.AddEvent("lot_not_created")
		fmt.Println("Lot not created")
		return
	}

	if len(parts) != 3 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: leave <ticket-id> <card|wallet|crypto>")
		return
	}

	ticketID := parts[1]

	method, err := s.resolve(parts[2])
	if err != nil {
		span.RecordError(err)
		fmt.Printf("Unknown payment method: %s\n", parts[2])
		return
	}

	status, err := s.lot.Locate(ctx, ticketID)
	if err != nil {
		span.AddEvent("ticket_not_found")
		fmt.Println("Ticket not found")
		return
	}

	fee, receipt, err := s.lot.Release(ctx, Ticket{ID: ticketID, SpotID: status.ID}, method)
	if err != nil {
		span.RecordError(err)

		var settlementErr *SettlementError
		if errors.As(err, &settlementErr) {
			fmt.Printf("Payment of $%.2f via %s failed, the spot stays occupied\n",
				settlementErr.Fee.Amount, settlementErr.Method)
			return
		}
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	span.AddEvent("spot_released", trace.WithAttributes(
		attribute.Int("spot_id", status.ID),
	))
	fmt.Printf("Spot %d is free\n", status.ID)
	fmt.Printf("Charged $%.2f for %d unit(s) at $%.2f\n", fee.Amount, fee.Units, fee.Rate)
	fmt.Printf("Paid via %s, reference %s\n", receipt.Method, receipt.Reference)
}

func (s *Shell) handleStatus(ctx context.Context) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.status_command")
	defer span.End()

	if s.lot == nil {
		span.AddEvent("lot_not_created")
		fmt.Println("Lot not created")
		return
	}

	statuses := s.lot.Status(ctx)

	var occupied []SpotStatus
	for _, status := range statuses {
		if status.Occupied {
			occupied = append(occupied, status)
		}
	}

	if len(occupied) == 0 {
		fmt.Printf("Lot is empty (%d spots)\n", len(statuses))
		return
	}

	fmt.Println("Spot\tClass\tVehicle\tTicket")
	for _, status := range occupied {
		fmt.Printf("%d\t%s\t%s\t%s\n", status.ID, status.Class, status.Category, status.TicketID)
	}
}

func (s *Shell) handleFind(ctx context.Context, parts []string) {
	ctx, span := s.telemetry.Tracer.Start(ctx, "shell.find_ticket")
	defer span.End()

	if s.lot == nil {
		span.AddEvent("lot_not_created")
		fmt.Println("Lot not created")
		return
	}

	if len(parts) != 2 {
		span.AddEvent("invalid_arguments")
		fmt.Println("Usage: find <ticket-id>")
		return
	}

	status, err := s.lot.Locate(ctx, parts[1])
	if err != nil {
		span.AddEvent("ticket_not_found")
		fmt.Println("Not found")
		return
	}

	fmt.Printf("Spot %d (%s), admitted at %s\n",
		status.ID, status.Category, status.AdmittedAt.Format(time.RFC3339))
}

func (s *Shell) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  create_lot [layout]        create a lot, e.g. create_lot small:2,medium:2,large:1")
	fmt.Println("  add_spot <class>           append a spot (small, medium, large)")
	fmt.Println("  park <type>                admit a bike, car or truck")
	fmt.Println("  leave <ticket> <method>    release and pay via card, wallet or crypto")
	fmt.Println("  status                     show occupied spots")
	fmt.Println("  find <ticket>              locate an active ticket")
	fmt.Println("  exit                       quit")
}
