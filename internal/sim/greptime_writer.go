package sim

import (
	"context"
	"net"
	"strconv"

	"twinops-sim/internal/twin"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// greptimeClient abstracts the ingester client for testing.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes telemetry and alerts to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	table      string
	alertTable string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. Empty table names
// fall back to the env-overridable defaults.
func NewGreptimeDBWriter(endpoint, database, teleTable, alertTable string) (*GreptimeDBWriter, error) {
	host := endpoint
	port := 4001
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		host = h
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if teleTable == "" {
		teleTable = twin.TelemetryTableName
	}
	if alertTable == "" {
		alertTable = twin.AlertTableName
	}
	return &GreptimeDBWriter{
		client:     client,
		table:      teleTable,
		alertTable: alertTable,
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row twin.TelemetryRow) error {
	return w.WriteBatch([]twin.TelemetryRow{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []twin.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("twin_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("definition_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("health_score", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("cash_level", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("temp", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("tph", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("properties", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(r.TwinID, r.DefinitionID, r.Status, r.HealthScore,
			r.CashLevel, r.Temp, r.TransactionsPerHour, r.Properties, r.Timestamp); err != nil {
			return err
		}
	}

	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteAlert inserts a single alert row.
func (w *GreptimeDBWriter) WriteAlert(row twin.AlertRow) error {
	return w.WriteAlerts([]twin.AlertRow{row})
}

// WriteAlerts inserts multiple alert rows.
func (w *GreptimeDBWriter) WriteAlerts(rows []twin.AlertRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("twin_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("alert_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("severity", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(r.TwinID, r.AlertID, string(r.Severity), r.Message, r.Status, r.Timestamp); err != nil {
			return err
		}
	}

	_, err = w.client.Write(context.Background(), tbl)
	return err
}
