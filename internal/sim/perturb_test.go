package sim

import (
	"math/rand"
	"testing"
	"time"

	"twinops-sim/internal/twin"
)

func activeATM(id string, cash, temp, tph float64) twin.Instance {
	return twin.Instance{
		ID:           id,
		DefinitionID: "def-atm",
		Status:       twin.StatusActive,
		HealthScore:  100,
		Properties: map[string]twin.Value{
			twin.PropCashLevel:           twin.Number(cash),
			twin.PropTemp:                twin.Number(temp),
			twin.PropTransactionsPerHour: twin.Number(tph),
		},
	}
}

func TestPerturb_CashLevelDropsWithinStep(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Now().UTC()

	in := []twin.Instance{activeATM("atm-1", 12500, 21.5, 40)}
	out := Perturb(in, rng, now)

	cash := out[0].Properties[twin.PropCashLevel].Num
	if cash > 12500 || cash < 12400 {
		t.Errorf("cashLevel after one tick = %v, want within [12400, 12500]", cash)
	}
	if !out[0].LastUpdate.Equal(now) {
		t.Errorf("lastUpdate = %v, want %v", out[0].LastUpdate, now)
	}
}

func TestPerturb_NonActiveUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	inst := activeATM("atm-2", 9000, 20, 30)
	inst.Status = twin.StatusMaintenance
	inst.LastUpdate = stamp

	out := Perturb([]twin.Instance{inst}, rng, time.Now().UTC())

	got := out[0]
	if got.Properties[twin.PropCashLevel].Num != 9000 {
		t.Errorf("cashLevel changed on maintenance instance: %v", got.Properties[twin.PropCashLevel].Num)
	}
	if !got.LastUpdate.Equal(stamp) {
		t.Errorf("lastUpdate changed on maintenance instance: %v", got.LastUpdate)
	}
}

func TestPerturb_TransactionsNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	instances := []twin.Instance{activeATM("atm-3", 12500, 21, 1)}

	for i := 0; i < 200; i++ {
		instances = Perturb(instances, rng, time.Now().UTC())
		tph := instances[0].Properties[twin.PropTransactionsPerHour].Num
		if tph < 0 {
			t.Fatalf("transactionsPerHour went negative on tick %d: %v", i, tph)
		}
	}
}

func TestPerturb_ZeroValueStaysFrozen(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inst := activeATM("atm-4", 12500, 21, 0)

	out := Perturb([]twin.Instance{inst}, rng, time.Now().UTC())
	for i := 0; i < 50; i++ {
		out = Perturb(out, rng, time.Now().UTC())
	}

	if got := out[0].Properties[twin.PropTransactionsPerHour].Num; got != 0 {
		t.Errorf("zero transactionsPerHour should stay frozen, got %v", got)
	}
}

func TestPerturb_DeterministicWithSeed(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	in := []twin.Instance{activeATM("atm-5", 12500, 21.5, 40)}

	a := Perturb(in, rand.New(rand.NewSource(99)), now)
	b := Perturb(in, rand.New(rand.NewSource(99)), now)

	for _, name := range []string{twin.PropCashLevel, twin.PropTemp, twin.PropTransactionsPerHour} {
		if a[0].Properties[name].Num != b[0].Properties[name].Num {
			t.Errorf("property %s differs for identical seeds: %v vs %v",
				name, a[0].Properties[name].Num, b[0].Properties[name].Num)
		}
	}
}

func TestPerturb_DoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	in := []twin.Instance{activeATM("atm-6", 12500, 21.5, 40)}

	Perturb(in, rng, time.Now().UTC())

	if got := in[0].Properties[twin.PropCashLevel].Num; got != 12500 {
		t.Errorf("input snapshot mutated, cashLevel = %v", got)
	}
}
