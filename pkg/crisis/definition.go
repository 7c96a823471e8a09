package crisis

import (
	"github.com/jwebster45206/kingdom-engine/pkg/conditionals"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// TriggerType selects which lifecycle pass considers a crisis.
type TriggerType string

const (
	TriggerResource TriggerType = "resource"
	TriggerFaction  TriggerType = "faction"
	TriggerRandom   TriggerType = "random"
)

// Frequency says when an effect is applied.
type Frequency string

const (
	PerTurn   Frequency = "perTurn"
	OnTrigger Frequency = "onTrigger"
)

// Predicate is a single threshold test against one register.
type Predicate struct {
	Target    economy.Target
	Condition conditionals.Condition
}

// Trigger holds the activation rule. Resource and faction crises use
// Predicate; random crises use Clauses, all of which must hold.
type Trigger struct {
	Predicate *Predicate
	Clauses   []conditionals.Clause
}

// Resolution is one of DurationResolution, ChainResolution or
// ThresholdResolution.
type Resolution interface {
	isResolution()
}

// DurationResolution ends a crisis once it has been active for Turns turns.
type DurationResolution struct {
	Turns int
}

// ChainResolution ends a crisis through its event chain. A non-zero
// FallbackTurns also ends it after that many turns.
type ChainResolution struct {
	FallbackTurns int
}

// ThresholdResolution ends a crisis when its predicate holds.
type ThresholdResolution struct {
	Predicate
}

func (DurationResolution) isResolution()  {}
func (ChainResolution) isResolution()     {}
func (ThresholdResolution) isResolution() {}

// Effect is a resource or faction delta attached to a crisis.
type Effect struct {
	Target    economy.Target
	Amount    int
	Frequency Frequency
}

// Stage is one step of an event chain.
type Stage struct {
	ID              string
	GeneratorKey    string
	Guidance        string
	TerminalSuccess bool
}

// Definition is an immutable catalog entry.
type Definition struct {
	ID          string
	Name        string
	TriggerType TriggerType
	Trigger     Trigger
	Resolution  Resolution
	Effects     []Effect
	Critical    bool
	PromptText  string
	NotifyStart string
	NotifyEnd   string
	Stages      []Stage
}

// HasChain reports whether the crisis carries an event chain.
func (d *Definition) HasChain() bool {
	return len(d.Stages) > 0
}

// Stage looks up a chain stage by id.
func (d *Definition) Stage(id string) (Stage, bool) {
	for _, s := range d.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// StageIDs returns the chain's stage ids in order.
func (d *Definition) StageIDs() []string {
	ids := make([]string, len(d.Stages))
	for i, s := range d.Stages {
		ids[i] = s.ID
	}
	return ids
}

// EffectsAt returns the effects with the given frequency, in catalog order.
func (d *Definition) EffectsAt(f Frequency) []Effect {
	var out []Effect
	for _, e := range d.Effects {
		if e.Frequency == f {
			out = append(out, e)
		}
	}
	return out
}

// TriggerTarget returns the register named by a single-predicate trigger.
// Random crises have none.
func (d *Definition) TriggerTarget() (economy.Target, bool) {
	if d.Trigger.Predicate == nil {
		return economy.Target{}, false
	}
	return d.Trigger.Predicate.Target, true
}
