package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"parkmeter/internal/billing"
	"parkmeter/internal/config"
	"parkmeter/internal/parking"
	"parkmeter/internal/payment"
	"parkmeter/internal/server"
	"parkmeter/internal/telemetry"
)

var (
	mode     = flag.String("mode", "cli", "Mode to run: cli, server, both, or demo")
	port     = flag.String("port", "", "Port for HTTP server (overrides APP_PORT)")
	logLevel = flag.String("log", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level %q: %v", *logLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := telemetry.Init(ctx, cfg.OTelServiceName, cfg.OTelEndpoint, cfg.Environment)
	if err != nil {
		logrus.Fatalf("Failed to initialize telemetry: %v", err)
	}

	tariff := billing.DefaultTariff()
	if cfg.TariffPath != "" {
		tariff, err = billing.LoadTariff(cfg.TariffPath)
		if err != nil {
			logrus.Fatalf("Failed to load tariff from %s: %v", cfg.TariffPath, err)
		}
		logrus.WithField("path", cfg.TariffPath).Info("loaded tariff")
	}

	var lot *parking.InstrumentedLot
	if len(cfg.LotLayout) > 0 {
		lot, err = buildLot(ctx, cfg.LotLayout, tariff, telemetryProvider)
		if err != nil {
			logrus.Fatalf("Failed to build lot from LOT_LAYOUT: %v", err)
		}
		logrus.WithField("capacity", lot.Capacity()).Info("lot built from LOT_LAYOUT")
	}

	handler := server.NewHandler(tariff, payment.ByName, telemetryProvider, lot)
	srv := server.NewServer(cfg.Port, handler)
	shell := parking.NewShell(tariff, payment.ByName, telemetryProvider, lot)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, shell, telemetryProvider, sigChan)
	case "server":
		runServer(cancel, srv, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, srv, shell, telemetryProvider, sigChan)
	case "demo":
		runDemo(ctx, tariff, telemetryProvider)
	default:
		logrus.Fatalf("Invalid mode: %s. Must be cli, server, both, or demo", *mode)
	}
}

func buildLot(ctx context.Context, layout []parking.SpotSpec, calc parking.FeeCalculator, telemetryProvider *telemetry.Provider) (*parking.InstrumentedLot, error) {
	lot, err := parking.NewInstrumentedLot(calc, nil, telemetryProvider)
	if err != nil {
		return nil, err
	}
	for _, spec := range layout {
		for i := 0; i < spec.Count; i++ {
			lot.AddSpot(ctx, spec.Class)
		}
	}
	return lot, nil
}

func runCLI(ctx context.Context, cancel context.CancelFunc, shell *parking.Shell, telemetryProvider *telemetry.Provider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logrus.Info("Shutting down...")
		cancel()
	}()

	shell.Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(cancel context.CancelFunc, srv *server.Server, telemetryProvider *telemetry.Provider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logrus.Info("Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("Server shutdown error: %v", err)
		}

		cancel()
	}()

	logrus.Infof("Starting server mode on %s", srv.GetAddress())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Errorf("Server error: %v", err)
	}

	shutdownTelemetry(telemetryProvider)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, srv *server.Server, shell *parking.Shell, telemetryProvider *telemetry.Provider, sigChan chan os.Signal) {
	serverDone := make(chan error, 1)
	go func() {
		logrus.Infof("Starting HTTP server on %s", srv.GetAddress())
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logrus.Info("Received shutdown signal...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("Server shutdown error: %v", err)
		}

		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Server error: %v", err)
		}
	case <-cliDone:
		logrus.Info("CLI exited")
	case <-ctx.Done():
		logrus.Info("Context cancelled")
	}

	shutdownTelemetry(telemetryProvider)
}

// runDemo walks one full lot lifecycle so traces and metrics have
// something to show without any manual input.
func runDemo(ctx context.Context, tariff *billing.Tariff, telemetryProvider *telemetry.Provider) {
	lot, err := parking.NewInstrumentedLot(tariff, nil, telemetryProvider)
	if err != nil {
		logrus.Fatalf("Failed to create lot: %v", err)
	}

	for _, class := range []parking.SpotClass{parking.SpotSmall, parking.SpotMedium, parking.SpotLarge} {
		id := lot.AddSpot(ctx, class)
		logrus.Infof("Added %s spot %d", class, id)
	}

	tickets := make(map[string]parking.Ticket)
	for _, label := range []string{"bike", "car", "truck"} {
		vehicle, err := parking.Classify(label)
		if err != nil {
			logrus.Fatalf("Classify %s: %v", label, err)
		}
		ticket, err := lot.Admit(ctx, vehicle)
		if err != nil {
			logrus.Fatalf("Admit %s: %v", label, err)
		}
		logrus.Infof("Parked %s at spot %d, ticket %s", label, ticket.SpotID, ticket.ID)
		tickets[label] = ticket
	}

	car, _ := parking.Classify("car")
	if _, err := lot.Admit(ctx, car); err != nil {
		logrus.Infof("Extra car turned away: %v", err)
	}

	departures := []struct {
		label  string
		method string
	}{
		{"bike", "card"},
		{"car", "wallet"},
		{"truck", "crypto"},
	}
	for _, d := range departures {
		method, err := payment.ByName(d.method)
		if err != nil {
			logrus.Fatalf("Resolve %s: %v", d.method, err)
		}
		fee, receipt, err := lot.Release(ctx, tickets[d.label], method)
		if err != nil {
			logrus.Fatalf("Release %s: %v", d.label, err)
		}
		logrus.Infof("%s left: $%.2f for %d unit(s), paid via %s (ref %s)",
			d.label, fee.Amount, fee.Units, receipt.Method, receipt.Reference)
	}

	logrus.Infof("Demo complete: %d of %d spots free", lot.Available(), lot.Capacity())

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *telemetry.Provider) {
	logrus.Info("Shutting down telemetry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Error shutting down telemetry: %v", err)
	}
}
