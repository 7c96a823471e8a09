package court

import (
	"fmt"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

const (
	MockAcknowledgeText = "Acknowledge (Mock Option 1: +10 Wealth, -5 Stability)"
	MockDismissText     = "Dismiss (Mock Option 2: -10 Wealth, +5 Stability)"
)

// MockEvent builds the local two-choice event shown when the narrative
// service is unavailable or returns nothing usable. Chain identity on
// params is carried over so the chain owner stays consistent.
func MockEvent(p EventParams) narrative.Event {
	name := orDefault(p.Name, "Mock Character")
	role := orDefault(p.Role, "Mock Role")
	factionName := orDefault(p.FactionName, "Mock Faction")
	faction := p.Faction
	if !faction.Valid() {
		faction = economy.Factions[0]
	}

	dialogue := fmt.Sprintf(
		"Greetings, Your Majesty. I am %s, a %s from the %s. My mood is %s. We are facing a mock situation: \"%s\". We need your wisdom. This is a fallback event because the LLM is currently unavailable or not configured.",
		name, role, factionName, orDefault(p.Mood, "neutral"), orDefault(p.Situation, "A generic problem."),
	)

	return narrative.Event{
		Character: narrative.Character{
			Name:         name,
			Role:         role,
			Faction:      faction,
			FactionName:  factionName,
			Mood:         p.Mood,
			PortraitSeed: orDefault(p.PortraitSeed, "Mock Seed"),
		},
		Dialogue: dialogue,
		Choices: []narrative.Choice{
			{
				Text:   MockAcknowledgeText,
				Effect: mockEffect(faction, 10, -5, 5),
			},
			{
				Text:   MockDismissText,
				Effect: mockEffect(faction, -10, 5, -5),
			},
		},
		ChainCrisisID: p.CrisisID,
		StageID:       p.StageID,
		Fallback:      true,
	}
}

func mockEffect(f economy.Faction, wealth, stability, standing int) narrative.EffectDirective {
	return narrative.EffectDirective{
		Resources: map[economy.Resource]int{economy.Wealth: wealth, economy.Stability: stability},
		Factions:  map[economy.Faction]int{f: standing},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
