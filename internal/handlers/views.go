package handlers

import (
	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

// KingdomView is the client-facing state of a reign.
type KingdomView struct {
	ID          uuid.UUID                  `json:"id"`
	PlayerName  string                     `json:"player_name"`
	KingdomName string                     `json:"kingdom_name"`
	Date        string                     `json:"date"`
	Turn        int                        `json:"turn"`
	Resources   economy.ResourceSet        `json:"resources"`
	Factions    economy.FactionStandingSet `json:"factions"`
	Crises      []CrisisView               `json:"active_crises"`
	Event       *narrative.Event           `json:"event,omitempty"`
	Ended       bool                       `json:"ended"`
	EndReason   string                     `json:"end_reason,omitempty"`
}

// CrisisView describes one active crisis.
type CrisisView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TurnsActive int    `json:"turns_active"`
	Stage       string `json:"stage,omitempty"`
	ChainState  string `json:"chain_state,omitempty"`
	Critical    bool   `json:"critical"`
}

// TurnResponse is returned for a decision.
type TurnResponse struct {
	Report  *state.TurnReport `json:"report"`
	Kingdom KingdomView       `json:"kingdom"`
}

func NewKingdomView(gs *state.GameState) KingdomView {
	v := KingdomView{
		ID:          gs.ID,
		PlayerName:  gs.PlayerName,
		KingdomName: gs.KingdomName,
		Date:        gs.Clock.String(),
		Turn:        gs.Turn,
		Resources:   gs.Economy.Resources,
		Factions:    gs.Economy.Factions,
		Crises:      make([]CrisisView, 0, len(gs.Active)),
		Event:       gs.Event,
		Ended:       gs.Ended,
		EndReason:   gs.EndReason,
	}
	for _, ac := range gs.Active {
		cv := CrisisView{
			ID:          ac.CrisisID,
			Name:        ac.Name(),
			TurnsActive: ac.TurnsActive,
			Stage:       ac.ChainProgress,
			ChainState:  string(ac.ChainState),
		}
		if ac.Definition != nil {
			cv.Critical = ac.Definition.Critical
		}
		v.Crises = append(v.Crises, cv)
	}
	return v
}
