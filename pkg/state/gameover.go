package state

import (
	"fmt"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// GameOver describes how a reign ended.
type GameOver struct {
	Reason string `json:"reason"`
}

const bankruptcyFloor = -200

var resourceLosses = []struct {
	resource economy.Resource
	lost     func(v int) bool
	reason   string
}{
	{economy.Wealth, func(v int) bool { return v < bankruptcyFloor }, "Your kingdom is bankrupt beyond recovery!"},
	{economy.Food, func(v int) bool { return v <= 0 }, "Your people have starved!"},
	{economy.Military, func(v int) bool { return v <= 0 }, "Your kingdom is defenseless and has collapsed!"},
	{economy.Stability, func(v int) bool { return v <= 0 }, "Your kingdom has descended into chaos!"},
}

// EvaluateGameOver checks the terminal conditions in order and returns the
// first that holds, or nil. An active crisis triggered by a resource
// suspends that resource's loss; an active critical crisis triggered by a
// faction suspends that faction's revolt.
func EvaluateGameOver(gs *GameState) *GameOver {
	if gs.Economy.Resources[economy.Population] <= 0 {
		return &GameOver{Reason: "Your kingdom has no people left!"}
	}
	for _, l := range resourceLosses {
		if l.lost(gs.Economy.Resources[l.resource]) && !crisisTargets(gs, economy.ResourceTarget(l.resource), false) {
			return &GameOver{Reason: l.reason}
		}
	}
	for _, f := range economy.Factions {
		if gs.Economy.Factions[f] <= 0 && !crisisTargets(gs, economy.FactionTarget(f), true) {
			return &GameOver{Reason: fmt.Sprintf("The %s have revolted!", f.DisplayName())}
		}
	}
	return nil
}

func crisisTargets(gs *GameState, t economy.Target, criticalOnly bool) bool {
	for _, ac := range gs.Active {
		def := ac.Definition
		if def == nil || (criticalOnly && !def.Critical) {
			continue
		}
		want := crisis.TriggerResource
		if t.Kind == economy.KindFaction {
			want = crisis.TriggerFaction
		}
		if def.TriggerType != want {
			continue
		}
		if target, ok := def.TriggerTarget(); ok && target == t {
			return true
		}
	}
	return false
}
