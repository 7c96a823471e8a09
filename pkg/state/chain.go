package state

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

// ErrStageNotFound means a chain's progress names no stage of its definition.
var ErrStageNotFound = errors.New("chain stage not found")

// ChainDriver moves event chains forward on player directives.
type ChainDriver struct {
	gs     *GameState
	logger *slog.Logger
}

func NewChainDriver(gs *GameState, logger *slog.Logger) *ChainDriver {
	return &ChainDriver{gs: gs, logger: logger}
}

// NextChainCrisis returns the first active crisis with an ongoing chain, or nil.
func (d *ChainDriver) NextChainCrisis() *ActiveCrisis {
	for _, ac := range d.gs.Active {
		if ac.ChainState != ChainOngoing || ac.Definition == nil {
			continue
		}
		if _, ok := ac.Definition.Resolution.(crisis.ChainResolution); ok {
			return ac
		}
	}
	return nil
}

// CurrentStage returns the stage the chain is at.
func (d *ChainDriver) CurrentStage(ac *ActiveCrisis) (crisis.Stage, error) {
	if ac.Definition == nil {
		return crisis.Stage{}, fmt.Errorf("crisis %s: %w", ac.CrisisID, ErrStageNotFound)
	}
	stage, ok := ac.Definition.Stage(ac.ChainProgress)
	if !ok {
		return crisis.Stage{}, fmt.Errorf("crisis %s stage %q: %w", ac.CrisisID, ac.ChainProgress, ErrStageNotFound)
	}
	return stage, nil
}

// Progress moves the chain to targetStageID. Unknown targets are accepted
// and logged; the next stage lookup will then fail.
func (d *ChainDriver) Progress(ac *ActiveCrisis, targetStageID string) string {
	if ac.Definition != nil {
		if _, ok := ac.Definition.Stage(targetStageID); !ok {
			err := &crisis.ConfigurationError{
				Subject:    ac.CrisisID + ".chain_progress",
				Detail:     fmt.Sprintf("unknown stage %q", targetStageID),
				Suggestion: crisis.Suggest(targetStageID, ac.Definition.StageIDs()),
			}
			d.logger.Warn("Chain progressed to unknown stage", "error", err, "game_id", d.gs.ID.String())
		}
	}
	ac.ChainProgress = targetStageID
	d.logger.Info("Chain progressed", "crisis_id", ac.CrisisID, "stage", targetStageID)
	return fmt.Sprintf("The %s situation develops... (Stage: %s)", ac.Name(), targetStageID)
}

// Resolve concludes the chain. The crisis is removed on the next lifecycle pass.
func (d *ChainDriver) Resolve(ac *ActiveCrisis, outcome narrative.Outcome) string {
	if outcome == narrative.OutcomeSuccess {
		ac.ChainState = ChainResolvedSuccess
	} else {
		ac.ChainState = ChainResolvedFailure
	}
	d.logger.Info("Chain resolved", "crisis_id", ac.CrisisID, "chain_state", string(ac.ChainState))
	if outcome == narrative.OutcomeSuccess {
		msg := ac.Name() + " resolved!"
		if ac.Definition != nil && ac.Definition.NotifyEnd != "" {
			msg += " " + ac.Definition.NotifyEnd
		}
		return msg
	}
	return fmt.Sprintf("Efforts for %s failed.", ac.Name())
}

// Apply carries out a directive against the current chain owner. It does
// nothing unless the presented event belonged to an ongoing chain. The
// returned message is empty when nothing happened.
func (d *ChainDriver) Apply(directive *narrative.ChainDirective) string {
	if directive == nil || d.gs.ChainOwner == "" {
		return ""
	}
	ac := d.gs.FindActive(d.gs.ChainOwner)
	if ac == nil {
		d.logger.Warn("Chain owner is not active", "crisis_id", d.gs.ChainOwner)
		return ""
	}
	if ac.ChainState != ChainOngoing {
		return ""
	}
	switch directive.Type {
	case narrative.ChainProgress:
		if directive.TargetStageID == "" {
			return ""
		}
		return d.Progress(ac, directive.TargetStageID)
	case narrative.ChainResolve:
		return d.Resolve(ac, directive.Outcome)
	}
	return ""
}
