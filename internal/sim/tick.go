package sim

import (
	"context"
	"time"

	"twinops-sim/internal/logging"
	"twinops-sim/internal/twin"
)

// Run starts the ingestion loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// tick perturbs active instances and writes one row per active instance.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	var next []twin.Instance
	s.store.UpdateInstances(func(instances []twin.Instance) []twin.Instance {
		next = Perturb(instances, s.rand, s.now().UTC())
		return next
	})

	var batch []twin.TelemetryRow
	for _, in := range next {
		if in.Status != twin.StatusActive {
			continue
		}
		batch = append(batch, rowFor(in))
	}
	if len(batch) == 0 || s.writer == nil {
		return
	}

	// Batch support if writer implements WriteBatch
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			log.Error("batch write failed", "err", err)
		}
		return
	}
	for _, row := range batch {
		if err := s.writer.Write(row); err != nil {
			log.Error("write failed", "twin_id", row.TwinID, "err", err)
		}
	}
}
