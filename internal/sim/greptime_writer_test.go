package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"twinops-sim/internal/twin"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterTelemetry(t *testing.T) {
	rows := []twin.TelemetryRow{{
		TwinID:              "atm-1",
		DefinitionID:        "def-atm",
		Status:              twin.StatusActive,
		HealthScore:         97,
		CashLevel:           12000,
		Temp:                21.5,
		TransactionsPerHour: 40,
		Properties:          `{"cashLevel":12000}`,
		Timestamp:           time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: "twin_telemetry"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatal("expected table to be captured")
	}
	if got := m.table.GetRows().Rows[0].Values[0].GetStringValue(); got != "atm-1" {
		t.Fatalf("twin_id = %s, want atm-1", got)
	}
	if got := m.table.GetRows().Rows[0].Values[4].GetF64Value(); got != 12000 {
		t.Fatalf("cash_level = %v, want 12000", got)
	}
}

func TestGreptimeWriterAlerts(t *testing.T) {
	rows := []twin.AlertRow{{
		TwinID:    "atm-1",
		AlertID:   "a1",
		Severity:  twin.SeverityCritical,
		Message:   "cash level critical",
		Status:    twin.AlertActive,
		Timestamp: time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, alertTable: "twin_alerts"}

	if err := w.WriteAlerts(rows); err != nil {
		t.Fatalf("WriteAlerts: %v", err)
	}
	if m.table == nil {
		t.Fatal("expected table to be captured")
	}
	if got := m.table.GetRows().Rows[0].Values[1].GetStringValue(); got != "a1" {
		t.Fatalf("alert_id = %s, want a1", got)
	}
	if got := m.table.GetRows().Rows[0].Values[2].GetStringValue(); got != "critical" {
		t.Fatalf("severity = %s, want critical", got)
	}
}

func TestGreptimeWriterEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: "twin_telemetry"}

	if err := w.WriteBatch(nil); err != nil {
		t.Fatalf("WriteBatch(nil): %v", err)
	}
	if m.table != nil {
		t.Error("empty batch should not reach the client")
	}
}
