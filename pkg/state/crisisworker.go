package state

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/kingdom-engine/pkg/conditionals"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// RandomCrisisChance is the per-turn probability of a random crisis roll.
const RandomCrisisChance = 0.05

// Delta records one change made to a register.
type Delta struct {
	Target    economy.Target `json:"-"`
	Name      string         `json:"name"`
	Requested int            `json:"requested"`
	Applied   int            `json:"applied"`
}

func applyDelta(gs *GameState, t economy.Target, amount int) Delta {
	return Delta{
		Target:    t,
		Name:      t.String(),
		Requested: amount,
		Applied:   gs.Economy.ApplyDelta(t, amount),
	}
}

// Activation records a crisis that started this turn and its one-shot effects.
type Activation struct {
	Crisis  *ActiveCrisis
	Effects []Delta
}

// LifecycleResult is the outcome of one lifecycle pass.
type LifecycleResult struct {
	Resolved  []*ActiveCrisis
	Activated []Activation
}

// CrisisWorker runs the crisis lifecycle against a game state.
type CrisisWorker struct {
	gs           *GameState
	catalog      *crisis.Catalog
	roller       Roller
	logger       *slog.Logger
	randomChance float64
}

// NewCrisisWorker creates a worker bound to one game state.
func NewCrisisWorker(gs *GameState, catalog *crisis.Catalog, roller Roller, logger *slog.Logger) *CrisisWorker {
	return &CrisisWorker{
		gs:           gs,
		catalog:      catalog,
		roller:       roller,
		logger:       logger,
		randomChance: RandomCrisisChance,
	}
}

// WithRandomChance overrides the random crisis probability.
// Returns the CrisisWorker for method chaining
func (w *CrisisWorker) WithRandomChance(p float64) *CrisisWorker {
	w.randomChance = p
	return w
}

// ApplyOngoingEffects applies every perTurn effect of crises whose chain has
// not been concluded, then ages each of those crises by one turn.
func (w *CrisisWorker) ApplyOngoingEffects() []Delta {
	var deltas []Delta
	for _, ac := range w.gs.Active {
		if ac.ChainState.Concluded() {
			continue
		}
		if ac.Definition != nil {
			for _, e := range ac.Definition.EffectsAt(crisis.PerTurn) {
				deltas = append(deltas, applyDelta(w.gs, e.Target, e.Amount))
			}
		}
		ac.TurnsActive++
	}
	return deltas
}

// Activate starts a crisis and applies its onTrigger effects. It returns
// nil if the crisis is already active.
func (w *CrisisWorker) Activate(def *crisis.Definition) *Activation {
	if w.gs.IsActive(def.ID) {
		return nil
	}
	ac := &ActiveCrisis{Definition: def, CrisisID: def.ID}
	if def.HasChain() {
		ac.ChainProgress = def.Stages[0].ID
		ac.ChainState = ChainOngoing
	}
	w.gs.Active = append(w.gs.Active, ac)

	act := &Activation{Crisis: ac}
	for _, e := range def.EffectsAt(crisis.OnTrigger) {
		act.Effects = append(act.Effects, applyDelta(w.gs, e.Target, e.Amount))
	}
	w.logger.Info("Crisis activated",
		"crisis_id", def.ID,
		"game_id", w.gs.ID.String(),
		"chain_progress", ac.ChainProgress)
	return act
}

// RunLifecycle resolves finished crises, then activates newly triggered
// ones, then tries one random crisis.
func (w *CrisisWorker) RunLifecycle() LifecycleResult {
	var res LifecycleResult
	res.Resolved = w.resolvePass()

	resolvedNow := make(map[string]bool, len(res.Resolved))
	for _, ac := range res.Resolved {
		resolvedNow[ac.CrisisID] = true
	}
	res.Activated = w.triggerPass(resolvedNow)
	if act := w.randomPass(); act != nil {
		res.Activated = append(res.Activated, *act)
	}
	return res
}

func (w *CrisisWorker) resolvePass() []*ActiveCrisis {
	var resolved []*ActiveCrisis
	kept := w.gs.Active[:0]
	for _, ac := range w.gs.Active {
		if w.isResolved(ac) {
			resolved = append(resolved, ac)
			w.logger.Info("Crisis resolved",
				"crisis_id", ac.CrisisID,
				"game_id", w.gs.ID.String(),
				"turns_active", ac.TurnsActive,
				"chain_state", string(ac.ChainState))
			continue
		}
		kept = append(kept, ac)
	}
	clear(w.gs.Active[len(kept):])
	w.gs.Active = kept
	return resolved
}

func (w *CrisisWorker) isResolved(ac *ActiveCrisis) bool {
	if ac.ChainState.Concluded() {
		return true
	}
	if ac.Definition == nil {
		return false
	}
	switch r := ac.Definition.Resolution.(type) {
	case crisis.DurationResolution:
		return ac.TurnsActive >= r.Turns
	case crisis.ChainResolution:
		if r.FallbackTurns > 0 && ac.TurnsActive >= r.FallbackTurns {
			ac.ChainState = ChainResolvedByDuration
			return true
		}
		return false
	case crisis.ThresholdResolution:
		return w.evaluate(ac.CrisisID+".resolution", w.gs.GetValue(r.Target), r.Condition)
	default:
		w.configIssue(ac.CrisisID+".resolution", fmt.Sprintf("unsupported resolution %T", r))
		return false
	}
}

func (w *CrisisWorker) triggerPass(resolvedNow map[string]bool) []Activation {
	var out []Activation
	for _, def := range w.catalog.All() {
		if def.TriggerType != crisis.TriggerResource && def.TriggerType != crisis.TriggerFaction {
			continue
		}
		if w.gs.IsActive(def.ID) || resolvedNow[def.ID] {
			continue
		}
		p := def.Trigger.Predicate
		if p == nil {
			w.configIssue(def.ID+".trigger", "missing trigger predicate")
			continue
		}
		if !w.evaluate(def.ID+".trigger", w.gs.GetValue(p.Target), p.Condition) {
			continue
		}
		if act := w.Activate(def); act != nil {
			out = append(out, *act)
		}
	}
	return out
}

// randomPass spends the turn's single random-crisis opportunity. A failed
// roll, an already active pick or an unmet condition all end it.
func (w *CrisisWorker) randomPass() *Activation {
	if w.roller.Float64() >= w.randomChance {
		return nil
	}
	candidates := w.catalog.ByTriggerType(crisis.TriggerRandom)
	if len(candidates) == 0 {
		return nil
	}
	def := candidates[w.roller.IntN(len(candidates))]
	if w.gs.IsActive(def.ID) {
		w.logger.Debug("Random crisis already active", "crisis_id", def.ID)
		return nil
	}
	ok, err := conditionals.AllOf(def.Trigger.Clauses, w.gs)
	if err != nil {
		w.configIssue(def.ID+".trigger", err.Error())
		return nil
	}
	if !ok {
		w.logger.Debug("Random crisis conditions not met", "crisis_id", def.ID)
		return nil
	}
	return w.Activate(def)
}

func (w *CrisisWorker) evaluate(subject string, value int, cond conditionals.Condition) bool {
	ok, err := conditionals.Evaluate(value, cond)
	if err != nil {
		w.configIssue(subject, err.Error())
	}
	return ok
}

func (w *CrisisWorker) configIssue(subject, detail string) {
	err := &crisis.ConfigurationError{Subject: subject, Detail: detail}
	w.logger.Warn("Crisis configuration issue", "error", err)
}
