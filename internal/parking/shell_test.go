package parking

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestShellRunStopsOnContextCancel(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	shell := NewShell(&stubCalc{rate: 1.0}, nil, newTestTelemetry(), nil)
	shell.scanner = bufio.NewScanner(reader)

	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		shell.Run(ctx)
		close(finished)
	}()

	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancellation")
	}
}

func TestShellRunProcessesScriptedInput(t *testing.T) {
	script := "create_lot small:1\npark bike\nstatus\nexit\n"

	shell := NewShell(&stubCalc{rate: 1.0}, nil, newTestTelemetry(), nil)
	shell.scanner = bufio.NewScanner(strings.NewReader(script))

	shell.Run(context.Background())

	if shell.lot == nil {
		t.Fatal("Expected create_lot to build a lot")
	}
	if shell.lot.Capacity() != 1 {
		t.Errorf("Expected capacity 1, got %d", shell.lot.Capacity())
	}
	if shell.lot.Available() != 0 {
		t.Errorf("Expected the bike to occupy the only spot, got %d available", shell.lot.Available())
	}
}
