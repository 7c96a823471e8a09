package state

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

// ErrGameEnded is returned when a turn is requested after game over.
var ErrGameEnded = errors.New("game has ended")

// CrisisNotice reports a crisis starting or ending.
type CrisisNotice struct {
	CrisisID string  `json:"crisis_id"`
	Name     string  `json:"name"`
	Message  string  `json:"message,omitempty"`
	Effects  []Delta `json:"effects,omitempty"`
}

// TurnReport describes everything one turn changed.
type TurnReport struct {
	Turn          int            `json:"turn"`
	Date          string         `json:"date"`
	ChoiceDeltas  []Delta        `json:"choice_deltas,omitempty"`
	ChainMessages []string       `json:"chain_messages,omitempty"`
	CrisisDrains  []Delta        `json:"crisis_drains,omitempty"`
	Started       []CrisisNotice `json:"started,omitempty"`
	Ended         []CrisisNotice `json:"ended,omitempty"`
	GameOver      *GameOver      `json:"game_over,omitempty"`
}

// Engine advances game states one turn at a time. It holds no session
// state of its own.
type Engine struct {
	catalog      *crisis.Catalog
	roller       Roller
	logger       *slog.Logger
	randomChance float64
}

func NewEngine(catalog *crisis.Catalog, roller Roller, logger *slog.Logger) *Engine {
	return &Engine{
		catalog:      catalog,
		roller:       roller,
		logger:       logger,
		randomChance: RandomCrisisChance,
	}
}

// WithRandomChance overrides the random crisis probability.
// Returns the Engine for method chaining
func (e *Engine) WithRandomChance(p float64) *Engine {
	e.randomChance = p
	return e
}

func (e *Engine) Catalog() *crisis.Catalog {
	return e.catalog
}

// NewGame starts a new reign.
func (e *Engine) NewGame(playerName, kingdomName string) *GameState {
	gs := NewGameState(playerName, kingdomName, e.roller)
	e.logger.Info("New reign started",
		"game_id", gs.ID.String(),
		"player", gs.PlayerName,
		"kingdom", gs.KingdomName,
		"date", gs.Clock.String())
	return gs
}

// AdvanceTurn applies a decision and runs one full turn: choice effects,
// chain directive, calendar, ongoing crisis effects, lifecycle, game over.
// On game over the state is marked ended and no further turns run.
func (e *Engine) AdvanceTurn(gs *GameState, directive narrative.EffectDirective) (*TurnReport, error) {
	if gs.Ended {
		return nil, ErrGameEnded
	}
	report := &TurnReport{}

	for _, r := range economy.Resources {
		if amount, ok := directive.Resources[r]; ok {
			report.ChoiceDeltas = append(report.ChoiceDeltas, applyDelta(gs, economy.ResourceTarget(r), amount))
		}
	}
	for _, f := range economy.Factions {
		if amount, ok := directive.Factions[f]; ok {
			report.ChoiceDeltas = append(report.ChoiceDeltas, applyDelta(gs, economy.FactionTarget(f), amount))
		}
	}

	if msg := NewChainDriver(gs, e.logger).Apply(directive.Chain); msg != "" {
		report.ChainMessages = append(report.ChainMessages, msg)
	}
	gs.ChainOwner = ""
	gs.Event = nil

	gs.Clock.Advance()
	gs.Turn++

	worker := NewCrisisWorker(gs, e.catalog, e.roller, e.logger).WithRandomChance(e.randomChance)
	report.CrisisDrains = sumDeltas(worker.ApplyOngoingEffects())

	lifecycle := worker.RunLifecycle()
	for _, ac := range lifecycle.Resolved {
		n := CrisisNotice{CrisisID: ac.CrisisID, Name: ac.Name()}
		if ac.Definition != nil && !ac.ChainState.Concluded() {
			n.Message = ac.Definition.NotifyEnd
		}
		report.Ended = append(report.Ended, n)
	}
	for _, act := range lifecycle.Activated {
		n := CrisisNotice{CrisisID: act.Crisis.CrisisID, Name: act.Crisis.Name(), Effects: act.Effects}
		if act.Crisis.Definition != nil {
			n.Message = act.Crisis.Definition.NotifyStart
		}
		report.Started = append(report.Started, n)
	}

	if over := EvaluateGameOver(gs); over != nil {
		gs.Ended = true
		gs.EndReason = over.Reason
		report.GameOver = over
		e.logger.Info("Reign ended", "game_id", gs.ID.String(), "reason", over.Reason, "turn", gs.Turn)
	}

	gs.UpdatedAt = time.Now()
	report.Turn = gs.Turn
	report.Date = gs.Clock.String()
	return report, nil
}

// sumDeltas folds deltas on the same register together, keeping first-seen order.
func sumDeltas(deltas []Delta) []Delta {
	var out []Delta
	index := make(map[economy.Target]int)
	for _, d := range deltas {
		if i, ok := index[d.Target]; ok {
			out[i].Requested += d.Requested
			out[i].Applied += d.Applied
			continue
		}
		index[d.Target] = len(out)
		out = append(out, d)
	}
	return out
}
