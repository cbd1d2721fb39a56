// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"time"

	"twinops-sim/internal/twin"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints telemetry rows using ANSI colors.
type ColorStdoutWriter struct {
	out              io.Writer
	definitionColors map[string]string
	colorIdx         int
}

var definitionPalette = []string{colorBlue, colorMagenta, colorCyan, colorGreen, colorYellow}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter() *ColorStdoutWriter {
	return &ColorStdoutWriter{
		out:              os.Stdout,
		definitionColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getDefinitionColor(id string) string {
	if c, ok := w.definitionColors[id]; ok {
		return c
	}
	c := definitionPalette[w.colorIdx%len(definitionPalette)]
	w.definitionColors[id] = c
	w.colorIdx++
	return c
}

func statusColor(status string) string {
	switch status {
	case twin.StatusError:
		return colorRed
	case twin.StatusMaintenance:
		return colorYellow
	case twin.StatusInactive:
		return colorGray
	}
	return colorGreen
}

// Write outputs a single telemetry row.
func (w *ColorStdoutWriter) Write(row twin.TelemetryRow) error {
	dColor := w.getDefinitionColor(row.DefinitionID)
	_, err := fmt.Fprintf(w.out, "%s[%s]%s %sdef=%s%s twin=%s %scash=%.0f%s temp=%.2f tph=%.0f health=%.0f %sstatus=%s%s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		dColor, row.DefinitionID, colorReset,
		row.TwinID,
		colorCyan, row.CashLevel, colorReset,
		row.Temp, row.TransactionsPerHour, row.HealthScore,
		statusColor(row.Status), row.Status, colorReset)
	return err
}

// WriteBatch outputs multiple telemetry rows.
func (w *ColorStdoutWriter) WriteBatch(rows []twin.TelemetryRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert outputs an alert event, severity-colored.
func (w *ColorStdoutWriter) WriteAlert(row twin.AlertRow) error {
	c := colorYellow
	switch row.Severity {
	case twin.SeverityHigh, twin.SeverityCritical:
		c = colorRed
	case twin.SeverityLow:
		c = colorGray
	}
	_, err := fmt.Fprintf(w.out, "%s[%s]%s twin=%s %salert=%s sev=%s%s msg=%q\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		row.TwinID,
		c, row.AlertID, row.Severity, colorReset,
		row.Message)
	return err
}
