package sim

import (
	"math"
	"math/rand"
	"time"

	"twinops-sim/internal/twin"
)

// Perturb applies one ingestion step to a snapshot of instances and returns
// the next generation. It is pure over (instances, rng, now): callers own
// the randomness source and clock, so a seeded rng replays identically.
//
// Only instances with status active are touched. Their lastUpdate is set to
// now on every tick whether or not any property changed. All other statuses
// pass through untouched, lastUpdate included.
func Perturb(instances []twin.Instance, rng *rand.Rand, now time.Time) []twin.Instance {
	out := make([]twin.Instance, len(instances))
	for i, in := range instances {
		if in.Status != twin.StatusActive {
			out[i] = in
			continue
		}
		cp := in.Clone()
		perturbNumeric(cp.Properties, twin.PropCashLevel, func(v float64) float64 {
			return v - float64(rng.Intn(100))
		})
		perturbNumeric(cp.Properties, twin.PropTemp, func(v float64) float64 {
			return v + rng.Float64() - 0.5
		})
		perturbNumeric(cp.Properties, twin.PropTransactionsPerHour, func(v float64) float64 {
			return math.Max(0, v+float64(rng.Intn(5)-2))
		})
		cp.LastUpdate = now
		out[i] = cp
	}
	return out
}

// perturbNumeric applies step to a named numeric property. Properties that
// are absent or exactly zero are skipped: a zero reading counts as "not
// reporting" and stays frozen at zero.
func perturbNumeric(props map[string]twin.Value, name string, step func(float64) float64) {
	v, ok := props[name]
	if !ok || v.Type != twin.TypeNumber || v.Num == 0 {
		return
	}
	props[name] = twin.Number(step(v.Num))
}
