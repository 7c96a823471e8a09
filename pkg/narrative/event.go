package narrative

import "github.com/jwebster45206/kingdom-engine/pkg/economy"

// Character is the courtier presenting an event.
type Character struct {
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Faction      economy.Faction `json:"faction"`
	FactionName  string          `json:"faction_name"`
	Mood         string          `json:"mood,omitempty"`
	PortraitSeed string          `json:"portrait_seed,omitempty"`
}

// Choice is one option offered to the ruler.
type Choice struct {
	Text   string          `json:"text"`
	Effect EffectDirective `json:"effect"`
}

// Event is a presented decision: a courtier's dialogue and 1-3 choices.
type Event struct {
	Character Character `json:"character"`
	Dialogue  string    `json:"dialogue"`
	Choices   []Choice  `json:"choices"`

	// ChainCrisisID is set when the event is a stage of that crisis's chain.
	ChainCrisisID string `json:"chain_crisis_id,omitempty"`
	StageID       string `json:"stage_id,omitempty"`

	// Fallback marks a locally synthesized event.
	Fallback bool `json:"fallback,omitempty"`
}
