package sim

import (
	"twinops-sim/internal/twin"
)

// MultiWriter fan-outs telemetry and alert rows to multiple writers.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	alertwriters []AlertWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(tws []TelemetryWriter, aws []AlertWriter) *MultiWriter {
	return &MultiWriter{telewriters: tws, alertwriters: aws}
}

// Write sends a telemetry row to all writers.
func (mw *MultiWriter) Write(row twin.TelemetryRow) error {
	for _, w := range mw.telewriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple telemetry rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []twin.TelemetryRow) error {
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAlert sends an alert row to all alert writers.
func (mw *MultiWriter) WriteAlert(row twin.AlertRow) error {
	for _, w := range mw.alertwriters {
		if err := w.WriteAlert(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlerts sends multiple alerts to all alert writers, using batch if supported.
func (mw *MultiWriter) WriteAlerts(rows []twin.AlertRow) error {
	for _, w := range mw.alertwriters {
		if bw, ok := w.(batchAlertWriter); ok {
			if err := bw.WriteAlerts(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteAlert(r); err != nil {
				return err
			}
		}
	}
	return nil
}
