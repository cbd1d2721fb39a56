package main

import (
	"os"

	"twinops-sim/internal/sim"
)

// newWriters sets up telemetry and alert writers based on flags and env vars.
// It returns the writers and a cleanup function to close any resources.
func newWriters(printOnly, tui, color bool, logFile string) (sim.TelemetryWriter, sim.AlertWriter, func(), error) {
	writer, alertWriter, cleanup, err := baseWriters(printOnly, tui, color)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return writer, alertWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".alerts")
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.TelemetryWriter{writer, fw},
		[]sim.AlertWriter{alertWriter, fw},
	)
	prev := cleanup
	cleanup = func() {
		fw.Close()
		prev()
	}
	return mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers based on flags and env vars.
func baseWriters(printOnly, tui, color bool) (sim.TelemetryWriter, sim.AlertWriter, func(), error) {
	if tui {
		tw := sim.NewTUIWriter()
		return tw, tw, func() { tw.Close() }, nil
	}
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if color {
			w := sim.NewColorStdoutWriter()
			return w, w, func() {}, nil
		}
		w := &sim.StdoutWriter{}
		return w, w, func() {}, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	table := os.Getenv("GREPTIMEDB_TABLE")
	alertTable := os.Getenv("ALERT_TABLE")
	w, err := sim.NewGreptimeDBWriter(endpoint, "public", table, alertTable)
	if err != nil {
		return nil, nil, nil, err
	}
	return w, w, func() {}, nil
}

// newTelemetryWriter creates a telemetry writer without alert handling.
func newTelemetryWriter(printOnly bool) (sim.TelemetryWriter, func(), error) {
	w, _, cleanup, err := baseWriters(printOnly, false, false)
	return w, cleanup, err
}
