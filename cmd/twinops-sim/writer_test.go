package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"twinops-sim/internal/sim"
	"twinops-sim/internal/twin"
)

func TestNewWritersPrintOnly(t *testing.T) {
	tw, aw, cleanup, err := newWriters(true, false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", tw)
	}
	if _, ok := aw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", aw)
	}
}

func TestNewWritersColor(t *testing.T) {
	tw, _, cleanup, err := newWriters(true, false, true, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.ColorStdoutWriter); !ok {
		t.Fatalf("expected *sim.ColorStdoutWriter, got %T", tw)
	}
}

func TestNewWritersGreptimeFallback(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	tw, _, cleanup, err := newWriters(false, false, false, "")
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	cleanup()
	if _, ok := tw.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter without endpoint, got %T", tw)
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telemetry.log")
	tw, aw, cleanup, err := newWriters(true, false, false, path)
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer cleanup()
	if _, ok := tw.(*sim.MultiWriter); !ok {
		t.Fatalf("expected *sim.MultiWriter, got %T", tw)
	}

	row := twin.TelemetryRow{TwinID: "atm-1", DefinitionID: "def-atm", Timestamp: time.Now()}
	if err := tw.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	alert := twin.AlertRow{TwinID: "atm-1", AlertID: "a1", Severity: twin.SeverityLow, Timestamp: time.Now()}
	if err := aw.WriteAlert(alert); err != nil {
		t.Fatalf("write alert failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log file to be non-empty")
	}
	alertInfo, err := os.Stat(path + ".alerts")
	if err != nil {
		t.Fatalf("stat alerts failed: %v", err)
	}
	if alertInfo.Size() == 0 {
		t.Fatalf("expected alert file to be non-empty")
	}
}

func TestNewTelemetryWriter(t *testing.T) {
	w, cleanup, err := newTelemetryWriter(true)
	if err != nil {
		t.Fatalf("newTelemetryWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*sim.StdoutWriter); !ok {
		t.Fatalf("expected *sim.StdoutWriter, got %T", w)
	}
}
