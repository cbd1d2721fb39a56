// Simulator orchestrating twin ingestion ticks
package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"twinops-sim/internal/store"
	"twinops-sim/internal/twin"

	"github.com/google/uuid"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(twin.TelemetryRow) error
}

// AlertWriter handles alert events raised against instances.
type AlertWriter interface {
	WriteAlert(twin.AlertRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]twin.TelemetryRow) error
}

// Optional: alert writers may support batch mode.
type batchAlertWriter interface {
	WriteAlerts([]twin.AlertRow) error
}

// Simulator drives the periodic ingestion step over the entity store and
// fans resulting telemetry out to a writer.
type Simulator struct {
	store        *store.Store
	writer       TelemetryWriter
	alertWriter  AlertWriter
	tickInterval time.Duration
	rand         *rand.Rand
	now          func() time.Time
}

// NewSimulator creates a simulator over st. rng and now may be nil, in which
// case a time-seeded source and the wall clock are used.
func NewSimulator(st *store.Store, writer TelemetryWriter, alertWriter AlertWriter, tickInterval time.Duration, rng *rand.Rand, now func() time.Time) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	if tickInterval <= 0 {
		tickInterval = 3 * time.Second
	}
	return &Simulator{
		store:        st,
		writer:       writer,
		alertWriter:  alertWriter,
		tickInterval: tickInterval,
		rand:         rng,
		now:          now,
	}
}

// Store exposes the underlying entity store.
func (s *Simulator) Store() *store.Store {
	return s.store
}

// Spawn appends count instances bound to a definition, each starting from
// the given initial property values.
func (s *Simulator) Spawn(definitionID string, count int, props map[string]twin.Value) ([]twin.Instance, error) {
	def, ok := s.store.FindDefinition(definitionID)
	if !ok {
		return nil, fmt.Errorf("unknown definition %s", definitionID)
	}
	spawned := make([]twin.Instance, 0, count)
	for i := 0; i < count; i++ {
		inst := twin.Instance{
			ID:           generateTwinID(def.Name, i),
			DefinitionID: def.ID,
			Status:       twin.StatusActive,
			HealthScore:  100,
			Properties:   make(map[string]twin.Value, len(props)),
			LastUpdate:   s.now().UTC(),
		}
		for k, v := range props {
			inst.Properties[k] = v
		}
		if err := s.store.AppendInstance(inst); err != nil {
			return spawned, err
		}
		spawned = append(spawned, inst)
	}
	return spawned, nil
}

// RaiseAlert appends an alert to an instance and forwards it to the alert
// sink, if one is configured.
func (s *Simulator) RaiseAlert(instanceID string, severity twin.Severity, message string) error {
	alert := twin.Alert{
		ID:        uuid.New().String(),
		Severity:  severity,
		Message:   message,
		Timestamp: s.now().UTC(),
		Status:    twin.AlertActive,
	}
	if err := s.store.AppendAlert(instanceID, alert); err != nil {
		return err
	}
	if s.alertWriter != nil {
		row := twin.AlertRow{
			TwinID:    instanceID,
			AlertID:   alert.ID,
			Severity:  alert.Severity,
			Message:   alert.Message,
			Status:    alert.Status,
			Timestamp: alert.Timestamp,
		}
		return s.alertWriter.WriteAlert(row)
	}
	return nil
}

// DefinitionHealth summarizes instance status counts per definition.
type DefinitionHealth struct {
	DefinitionID string `json:"definition_id"`
	Name         string `json:"name"`
	Total        int    `json:"total"`
	Active       int    `json:"active"`
	Maintenance  int    `json:"maintenance"`
	Errored      int    `json:"errored"`
	Alerts       int    `json:"alerts"`
}

// Health returns aggregated health information per definition.
func (s *Simulator) Health() []DefinitionHealth {
	defs := s.store.Definitions()
	instances := s.store.Instances()
	var result []DefinitionHealth
	for _, d := range defs {
		h := DefinitionHealth{DefinitionID: d.ID, Name: d.Name}
		for _, in := range instances {
			if in.DefinitionID != d.ID {
				continue
			}
			h.Total++
			switch in.Status {
			case twin.StatusActive:
				h.Active++
			case twin.StatusMaintenance:
				h.Maintenance++
			case twin.StatusError:
				h.Errored++
			}
			h.Alerts += len(in.Alerts)
		}
		result = append(result, h)
	}
	return result
}

// TelemetrySnapshot returns the latest state of all instances as rows.
func (s *Simulator) TelemetrySnapshot() []twin.TelemetryRow {
	instances := s.store.Instances()
	rows := make([]twin.TelemetryRow, 0, len(instances))
	ts := s.now().UTC()
	for _, in := range instances {
		row := rowFor(in)
		row.Timestamp = ts
		rows = append(rows, row)
	}
	return rows
}

// rowFor flattens an instance into a telemetry row. The three well-known
// numeric properties get their own columns; the full bag rides along as JSON.
func rowFor(in twin.Instance) twin.TelemetryRow {
	row := twin.TelemetryRow{
		TwinID:       in.ID,
		DefinitionID: in.DefinitionID,
		Status:       in.Status,
		HealthScore:  in.HealthScore,
		Timestamp:    in.LastUpdate,
	}
	if v, ok := in.Properties[twin.PropCashLevel]; ok && v.Type == twin.TypeNumber {
		row.CashLevel = v.Num
	}
	if v, ok := in.Properties[twin.PropTemp]; ok && v.Type == twin.TypeNumber {
		row.Temp = v.Num
	}
	if v, ok := in.Properties[twin.PropTransactionsPerHour]; ok && v.Type == twin.TypeNumber {
		row.TransactionsPerHour = v.Num
	}
	if data, err := json.Marshal(in.Properties); err == nil {
		row.Properties = string(data)
	}
	return row
}

func generateTwinID(name string, index int) string {
	// Include the index along with a UUID to guarantee uniqueness
	return fmt.Sprintf("%s-%d-%s", name, index, uuid.New().String())
}
