package ai

import "fmt"

// Prompts instruct the model to answer with a single JSON object matching a
// fixed shape. The gateway still validates the shape defensively; models add
// prose and code fences despite these instructions.

func schemaPrompt(request string) string {
	return fmt.Sprintf(`You are designing a digital twin schema for a banking asset.

User request: %s

Respond with ONLY a JSON object in exactly this shape:
{
  "name": "short asset name",
  "description": "one-sentence description",
  "category": "atm" | "kiosk" | "vault" | "branch",
  "version": "1.0",
  "schema": {
    "<propertyName>": {"type": "number" | "string" | "bool", "unit": "optional unit", "description": "optional"}
  }
}

Include the properties cashLevel, temp and transactionsPerHour as numbers
when they make sense for the asset. No text outside the JSON object.`, request)
}

func anomalyPrompt(instanceJSON, definitionJSON string) string {
	return fmt.Sprintf(`You are monitoring a digital twin of a banking asset.

Definition:
%s

Current instance state:
%s

Identify anomalous readings. Respond with ONLY a JSON object in exactly this shape:
{
  "anomalies": [
    {"severity": "low" | "medium" | "high" | "critical", "message": "what is wrong"}
  ],
  "summary": "one-sentence overall assessment"
}

Use an empty anomalies array if everything looks normal. No text outside the JSON object.`, definitionJSON, instanceJSON)
}

func predictionPrompt(instanceJSON string, horizonHours int) string {
	return fmt.Sprintf(`You are forecasting the state of a digital twin of a banking asset.

Current instance state:
%s

Project each numeric property %d hours ahead. Respond with ONLY a JSON object in exactly this shape:
{
  "predictions": [
    {"property": "name", "trend": "rising" | "falling" | "stable", "projected_value": 0.0, "confidence": 0.0}
  ],
  "insights": "one or two sentences of operational insight"
}

Confidence is a fraction between 0 and 1. No text outside the JSON object.`, instanceJSON, horizonHours)
}
