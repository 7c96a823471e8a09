package state

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/kingdom-engine/pkg/conditionals"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// seqRoller replays fixed values. When a sequence runs out it returns a
// roll that never passes the random gate, and 0 for picks.
type seqRoller struct {
	floats []float64
	ints   []int
}

func (r *seqRoller) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *seqRoller) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	return i % n
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resourcePredicate(r economy.Resource, threshold int, cmp conditionals.Comparison) *crisis.Predicate {
	return &crisis.Predicate{
		Target:    economy.ResourceTarget(r),
		Condition: conditionals.Condition{Threshold: threshold, Comparison: cmp},
	}
}

func famineDef() *crisis.Definition {
	return &crisis.Definition{
		ID:          "famine",
		Name:        "Famine",
		TriggerType: crisis.TriggerResource,
		Trigger:     crisis.Trigger{Predicate: resourcePredicate(economy.Food, 150, conditionals.LessThanOrEqual)},
		Resolution:  crisis.ThresholdResolution{Predicate: *resourcePredicate(economy.Food, 300, conditionals.GreaterThanOrEqual)},
		Effects: []crisis.Effect{
			{Target: economy.ResourceTarget(economy.Food), Amount: -50, Frequency: crisis.OnTrigger},
			{Target: economy.ResourceTarget(economy.Food), Amount: -10, Frequency: crisis.PerTurn},
		},
		NotifyStart: "The granaries are empty.",
		NotifyEnd:   "The harvest returns.",
	}
}

func quakeDef() *crisis.Definition {
	return &crisis.Definition{
		ID:          "earthquake",
		Name:        "Great Earthquake",
		TriggerType: crisis.TriggerRandom,
		Resolution:  crisis.DurationResolution{Turns: 2},
		Effects: []crisis.Effect{
			{Target: economy.ResourceTarget(economy.Stability), Amount: -15, Frequency: crisis.OnTrigger},
		},
		Critical: true,
	}
}

func plagueDef(fallback int) *crisis.Definition {
	return &crisis.Definition{
		ID:          "plague",
		Name:        "The Crimson Plague",
		TriggerType: crisis.TriggerRandom,
		Trigger: crisis.Trigger{Clauses: []conditionals.Clause{
			{Subject: conditionals.SubjectYear, Condition: conditionals.Condition{Threshold: 3, Comparison: conditionals.GreaterThanOrEqual}},
		}},
		Resolution: crisis.ChainResolution{FallbackTurns: fallback},
		Effects: []crisis.Effect{
			{Target: economy.ResourceTarget(economy.Population), Amount: -100, Frequency: crisis.PerTurn},
		},
		Critical:    true,
		NotifyStart: "A plague spreads.",
		NotifyEnd:   "The plague has passed.",
		Stages: []crisis.Stage{
			{ID: "0", GeneratorKey: "plague_stage_0_initial_report", Guidance: "first signs"},
			{ID: "1", GeneratorKey: "plague_stage_1_investigation_efforts", Guidance: "investigation"},
			{ID: "2", GeneratorKey: "plague_stage_2_resolution_attempt", Guidance: "cure", TerminalSuccess: true},
		},
	}
}

func mustCatalog(t *testing.T, defs ...*crisis.Definition) *crisis.Catalog {
	t.Helper()
	cat, err := crisis.NewCatalog(defs...)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

func newTestState() *GameState {
	return NewGameState("", "", &seqRoller{ints: []int{2}})
}
