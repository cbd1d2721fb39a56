// Twin domain types with greptime tags
package twin

import (
	"os"
	"time"
)

// Category classifies the kind of physical asset a definition describes.
type Category string

// Asset categories.
const (
	CategoryATM    Category = "atm"
	CategoryKiosk  Category = "kiosk"
	CategoryVault  Category = "vault"
	CategoryBranch Category = "branch"
)

// Categories lists all known asset categories.
func Categories() []Category {
	return []Category{CategoryATM, CategoryKiosk, CategoryVault, CategoryBranch}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// PropertySpec declares one property of a definition's schema.
type PropertySpec struct {
	Type        PropertyType `json:"type" yaml:"type"`
	Unit        string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
}

// Definition is a schema template for a class of asset.
// Definitions are immutable once appended to the store.
type Definition struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Category    Category                `json:"category"`
	Version     string                  `json:"version"`
	Properties  map[string]PropertySpec `json:"properties"`
}

// Instance status constants.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
	StatusError       = "error"
)

// Alert severities.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Alert status constants.
const (
	AlertActive   = "active"
	AlertResolved = "resolved"
)

// Alert is a flagged condition attached to an instance.
type Alert struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
	Status    string    `json:"status"`
}

// Instance is a live simulated asset bound to a definition.
type Instance struct {
	ID           string           `json:"id"`
	DefinitionID string           `json:"definition_id"`
	Status       string           `json:"status"`
	HealthScore  float64          `json:"health_score"`
	Properties   map[string]Value `json:"properties"`
	Alerts       []Alert          `json:"alerts"`
	LastUpdate   time.Time        `json:"last_update"`
}

// Clone returns a deep copy of the instance. The simulator perturbs clones
// and swaps the whole collection, so the original is never written through.
func (in Instance) Clone() Instance {
	out := in
	out.Properties = make(map[string]Value, len(in.Properties))
	for k, v := range in.Properties {
		out.Properties[k] = v
	}
	out.Alerts = make([]Alert, len(in.Alerts))
	copy(out.Alerts, in.Alerts)
	return out
}

// Well-known property names the simulator perturbs.
const (
	PropCashLevel           = "cashLevel"
	PropTemp                = "temp"
	PropTransactionsPerHour = "transactionsPerHour"
)

// TelemetryRow represents one per-tick record for GreptimeDB.
type TelemetryRow struct {
	TwinID              string    `json:"twin_id"`       // TAG
	DefinitionID        string    `json:"definition_id"` // TAG
	Status              string    `json:"status"`        // FIELD
	HealthScore         float64   `json:"health_score"`  // FIELD
	CashLevel           float64   `json:"cash_level"`    // FIELD
	Temp                float64   `json:"temp"`          // FIELD
	TransactionsPerHour float64   `json:"tph"`           // FIELD
	Properties          string    `json:"properties"`    // FIELD, JSON-encoded full bag
	Timestamp           time.Time `json:"ts"`            // TIME INDEX
}

// TelemetryTableName holds the table name used when writing to GreptimeDB.
// It defaults to "twin_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "twin_telemetry"
}()

func (TelemetryRow) TableName() string {
	return TelemetryTableName
}

// AlertRow represents one alert event for GreptimeDB.
type AlertRow struct {
	TwinID    string    `json:"twin_id"`  // TAG
	AlertID   string    `json:"alert_id"` // TAG
	Severity  Severity  `json:"severity"` // FIELD
	Message   string    `json:"message"`  // FIELD
	Status    string    `json:"status"`   // FIELD
	Timestamp time.Time `json:"ts"`       // TIME INDEX
}

// AlertTableName holds the alert table name, overridable via the
// ALERT_TABLE environment variable.
var AlertTableName = func() string {
	if env := os.Getenv("ALERT_TABLE"); env != "" {
		return env
	}
	return "twin_alerts"
}()

func (AlertRow) TableName() string {
	return AlertTableName
}
