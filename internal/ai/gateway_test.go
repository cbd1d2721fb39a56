package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"twinops-sim/internal/twin"
)

// fakeGenerator returns a canned response or error.
type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) GetModel() string { return "fake-model" }

func TestGenerateSchema(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + `{
		"name": "Cash Recycler",
		"description": "Self-filling cash unit",
		"category": "atm",
		"version": "1.1",
		"schema": {
			"cashLevel": {"type": "number", "unit": "EUR", "description": "current cash"},
			"vendor": {"type": "string"}
		}
	}` + "\n```"}
	g := NewGateway(gen)

	def, err := g.GenerateSchema(context.Background(), "a cash recycler for branch lobbies")
	if err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	if def.ID == "" {
		t.Error("definition missing generated id")
	}
	if def.Name != "Cash Recycler" || def.Category != twin.CategoryATM || def.Version != "1.1" {
		t.Errorf("definition = %+v", def)
	}
	if def.Properties["cashLevel"].Type != twin.TypeNumber || def.Properties["cashLevel"].Unit != "EUR" {
		t.Errorf("cashLevel spec = %+v", def.Properties["cashLevel"])
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "cash recycler for branch lobbies") {
		t.Error("request text not forwarded in prompt")
	}
}

func TestGenerateSchemaRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing name", `{"category": "atm", "schema": {"x": {"type": "number"}}}`},
		{"unknown category", `{"name": "n", "category": "submarine", "schema": {"x": {"type": "number"}}}`},
		{"empty schema", `{"name": "n", "category": "atm", "schema": {}}`},
		{"unknown property type", `{"name": "n", "category": "atm", "schema": {"x": {"type": "tensor"}}}`},
		{"not JSON", `I cannot help with that.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(&fakeGenerator{response: tt.response})
			if _, err := g.GenerateSchema(context.Background(), "req"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateSchemaDefaultsVersion(t *testing.T) {
	g := NewGateway(&fakeGenerator{response: `{"name": "n", "category": "kiosk", "schema": {"x": {"type": "bool"}}}`})
	def, err := g.GenerateSchema(context.Background(), "req")
	if err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	if def.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", def.Version)
	}
}

func TestDetectAnomalies(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"anomalies": [
			{"severity": "critical", "message": "cash level near empty"},
			{"severity": "low", "message": "temperature drift"}
		],
		"summary": "two issues found"
	}`}
	g := NewGateway(gen)

	report, err := g.DetectAnomalies(context.Background(), twin.Instance{ID: "atm-1"}, twin.Definition{ID: "def-atm"})
	if err != nil {
		t.Fatalf("DetectAnomalies: %v", err)
	}
	if len(report.Anomalies) != 2 {
		t.Fatalf("got %d anomalies, want 2", len(report.Anomalies))
	}
	if report.Anomalies[0].Severity != twin.SeverityCritical {
		t.Errorf("severity = %s", report.Anomalies[0].Severity)
	}
}

func TestDetectAnomaliesRejectsUnknownSeverity(t *testing.T) {
	g := NewGateway(&fakeGenerator{response: `{"anomalies": [{"severity": "catastrophic", "message": "m"}]}`})
	if _, err := g.DetectAnomalies(context.Background(), twin.Instance{}, twin.Definition{}); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestPredictFutureState(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"predictions": [
			{"property": "cashLevel", "trend": "falling", "projected_value": 4200, "confidence": 0.8}
		],
		"insights": "refill within 24h"
	}`}
	g := NewGateway(gen)

	pred, err := g.PredictFutureState(context.Background(), twin.Instance{ID: "atm-1"}, 24)
	if err != nil {
		t.Fatalf("PredictFutureState: %v", err)
	}
	if len(pred.Predictions) != 1 || pred.Predictions[0].Trend != TrendFalling {
		t.Errorf("prediction = %+v", pred)
	}
}

func TestPredictFutureStateValidation(t *testing.T) {
	g := NewGateway(&fakeGenerator{response: `{"predictions": []}`})
	if _, err := g.PredictFutureState(context.Background(), twin.Instance{}, 0); err == nil {
		t.Error("expected error for non-positive horizon")
	}

	g = NewGateway(&fakeGenerator{response: `{"predictions": [{"property": "cashLevel", "trend": "sideways", "confidence": 0.5}]}`})
	if _, err := g.PredictFutureState(context.Background(), twin.Instance{}, 24); err == nil {
		t.Error("expected error for unknown trend")
	}

	g = NewGateway(&fakeGenerator{response: `{"predictions": [{"property": "cashLevel", "trend": "stable", "confidence": 1.5}]}`})
	if _, err := g.PredictFutureState(context.Background(), twin.Instance{}, 24); err == nil {
		t.Error("expected error for confidence outside [0,1]")
	}
}

func TestGatewayPropagatesGeneratorError(t *testing.T) {
	g := NewGateway(&fakeGenerator{err: errors.New("provider down")})
	if _, err := g.GenerateSchema(context.Background(), "req"); err == nil {
		t.Error("expected wrapped generator error")
	}
}
