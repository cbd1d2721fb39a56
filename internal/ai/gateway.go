// Package ai delegates schema synthesis, anomaly detection and state
// prediction to a remote generative model behind a TextGenerator.
//
// All operations are stateless single-shot request/response calls. The
// returned shapes are validated defensively before anything is merged into
// the entity store; a malformed response is an error, never a partial merge.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"twinops-sim/internal/twin"

	"github.com/google/uuid"
)

// Gateway wraps a TextGenerator with the three twin operations.
type Gateway struct {
	gen TextGenerator
}

// NewGateway creates a gateway over the given generator.
func NewGateway(gen TextGenerator) *Gateway {
	return &Gateway{gen: gen}
}

// Model returns the underlying model name.
func (g *Gateway) Model() string {
	return g.gen.GetModel()
}

// schemaResponse is the fixed shape for schema generation.
type schemaResponse struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Category    string                         `json:"category"`
	Version     string                         `json:"version"`
	Schema      map[string]schemaPropertyEntry `json:"schema"`
}

type schemaPropertyEntry struct {
	Type        string `json:"type"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// GenerateSchema asks the model to synthesize a twin definition from a
// free-text request. The returned definition carries a fresh id and is ready
// to append to the store unchanged.
func (g *Gateway) GenerateSchema(ctx context.Context, request string) (*twin.Definition, error) {
	raw, err := g.gen.Complete(ctx, schemaPrompt(request))
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	var resp schemaResponse
	if err := parseResponse(raw, &resp); err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	if resp.Name == "" {
		return nil, fmt.Errorf("generate schema: response missing name")
	}
	if !twin.ValidCategory(twin.Category(resp.Category)) {
		return nil, fmt.Errorf("generate schema: unknown category %q", resp.Category)
	}
	if len(resp.Schema) == 0 {
		return nil, fmt.Errorf("generate schema: response has empty property schema")
	}
	if resp.Version == "" {
		resp.Version = "1.0"
	}

	props := make(map[string]twin.PropertySpec, len(resp.Schema))
	for name, entry := range resp.Schema {
		pt := twin.PropertyType(entry.Type)
		switch pt {
		case twin.TypeNumber, twin.TypeString, twin.TypeBool:
		default:
			return nil, fmt.Errorf("generate schema: property %q has unknown type %q", name, entry.Type)
		}
		props[name] = twin.PropertySpec{Type: pt, Unit: entry.Unit, Description: entry.Description}
	}

	return &twin.Definition{
		ID:          uuid.New().String(),
		Name:        resp.Name,
		Description: resp.Description,
		Category:    twin.Category(resp.Category),
		Version:     resp.Version,
		Properties:  props,
	}, nil
}

// Anomaly is one flagged condition from an anomaly scan.
type Anomaly struct {
	Severity twin.Severity `json:"severity"`
	Message  string        `json:"message"`
}

// AnomalyReport is the result of DetectAnomalies.
type AnomalyReport struct {
	Anomalies []Anomaly `json:"anomalies"`
	Summary   string    `json:"summary"`
}

// DetectAnomalies asks the model to flag anomalous readings on an instance.
func (g *Gateway) DetectAnomalies(ctx context.Context, inst twin.Instance, def twin.Definition) (*AnomalyReport, error) {
	instJSON, err := json.Marshal(inst)
	if err != nil {
		return nil, fmt.Errorf("detect anomalies: %w", err)
	}
	defJSON, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("detect anomalies: %w", err)
	}

	raw, err := g.gen.Complete(ctx, anomalyPrompt(string(instJSON), string(defJSON)))
	if err != nil {
		return nil, fmt.Errorf("detect anomalies: %w", err)
	}

	var report AnomalyReport
	if err := parseResponse(raw, &report); err != nil {
		return nil, fmt.Errorf("detect anomalies: %w", err)
	}
	for i, a := range report.Anomalies {
		if !twin.ValidSeverity(a.Severity) {
			return nil, fmt.Errorf("detect anomalies: anomaly %d has unknown severity %q", i, a.Severity)
		}
		if a.Message == "" {
			return nil, fmt.Errorf("detect anomalies: anomaly %d has empty message", i)
		}
	}
	return &report, nil
}

// PropertyForecast is one projected property in a prediction.
type PropertyForecast struct {
	Property       string  `json:"property"`
	Trend          string  `json:"trend"`
	ProjectedValue float64 `json:"projected_value"`
	Confidence     float64 `json:"confidence"`
}

// Prediction is the result of PredictFutureState.
type Prediction struct {
	Predictions []PropertyForecast `json:"predictions"`
	Insights    string             `json:"insights"`
}

// Forecast trends.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// PredictFutureState asks the model to project an instance's numeric
// properties horizonHours ahead.
func (g *Gateway) PredictFutureState(ctx context.Context, inst twin.Instance, horizonHours int) (*Prediction, error) {
	if horizonHours <= 0 {
		return nil, fmt.Errorf("predict future state: horizon must be positive, got %d", horizonHours)
	}
	instJSON, err := json.Marshal(inst)
	if err != nil {
		return nil, fmt.Errorf("predict future state: %w", err)
	}

	raw, err := g.gen.Complete(ctx, predictionPrompt(string(instJSON), horizonHours))
	if err != nil {
		return nil, fmt.Errorf("predict future state: %w", err)
	}

	var pred Prediction
	if err := parseResponse(raw, &pred); err != nil {
		return nil, fmt.Errorf("predict future state: %w", err)
	}
	for i, p := range pred.Predictions {
		if p.Property == "" {
			return nil, fmt.Errorf("predict future state: prediction %d has empty property", i)
		}
		switch p.Trend {
		case TrendRising, TrendFalling, TrendStable:
		default:
			return nil, fmt.Errorf("predict future state: prediction %d has unknown trend %q", i, p.Trend)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return nil, fmt.Errorf("predict future state: prediction %d has confidence %f outside [0,1]", i, p.Confidence)
		}
	}
	return &pred, nil
}
