package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"twinops-sim/internal/twin"
)

func TestFileWriterWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	telePath := filepath.Join(dir, "telemetry.log")
	alertPath := filepath.Join(dir, "alerts.log")

	fw, err := NewFileWriter(telePath, alertPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	rows := []twin.TelemetryRow{
		{TwinID: "atm-1", DefinitionID: "def-atm", Status: twin.StatusActive, CashLevel: 12000, Timestamp: time.Unix(0, 0).UTC()},
		{TwinID: "atm-2", DefinitionID: "def-atm", Status: twin.StatusActive, CashLevel: 8000, Timestamp: time.Unix(1, 0).UTC()},
	}
	if err := fw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := fw.WriteAlert(twin.AlertRow{TwinID: "atm-1", AlertID: "a1", Severity: twin.SeverityHigh, Message: "low cash"}); err != nil {
		t.Fatalf("WriteAlert: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(telePath)
	if err != nil {
		t.Fatalf("open telemetry log: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		var row twin.TelemetryRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("line %d not valid JSON: %v", count, err)
		}
		if row.TwinID != rows[count].TwinID {
			t.Errorf("line %d twin_id = %s, want %s", count, row.TwinID, rows[count].TwinID)
		}
		count++
	}
	if count != len(rows) {
		t.Errorf("telemetry log has %d lines, want %d", count, len(rows))
	}

	alertData, err := os.ReadFile(alertPath)
	if err != nil {
		t.Fatalf("read alert log: %v", err)
	}
	var alert twin.AlertRow
	if err := json.Unmarshal(alertData, &alert); err != nil {
		t.Fatalf("alert line not valid JSON: %v", err)
	}
	if alert.AlertID != "a1" || alert.Severity != twin.SeverityHigh {
		t.Errorf("alert row = %+v", alert)
	}
}

func TestFileWriterNoAlertLog(t *testing.T) {
	fw, err := NewFileWriter(filepath.Join(t.TempDir(), "telemetry.log"), "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()

	// Alerts are dropped silently when no alert path is configured.
	if err := fw.WriteAlert(twin.AlertRow{TwinID: "atm-1"}); err != nil {
		t.Fatalf("WriteAlert without alert log: %v", err)
	}
}
