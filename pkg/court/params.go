package court

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// otherFactionKey is filtered against the speaking faction so a courtier
// never complains about their own people.
const otherFactionKey = "other_faction_name"

// maxFillPasses bounds nested placeholder expansion.
const maxFillPasses = 3

var placeholderRe = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// EventParams describes the courtier and situation behind one event.
type EventParams struct {
	Faction      economy.Faction `json:"faction"`
	FactionName  string          `json:"faction_name"`
	Role         string          `json:"role"`
	Name         string          `json:"name"`
	Mood         string          `json:"mood"`
	Situation    string          `json:"situation"`
	PortraitSeed string          `json:"portrait_seed"`

	// Set for crisis chain stages only.
	CrisisID        string `json:"crisis_id,omitempty"`
	StageID         string `json:"stage_id,omitempty"`
	Guidance        string `json:"guidance,omitempty"`
	TerminalSuccess bool   `json:"terminal_success,omitempty"`
}

// IsChainStage reports whether the params belong to a crisis chain event.
func (p EventParams) IsChainStage() bool {
	return p.CrisisID != ""
}

// RandomParams draws a courtier from a random faction with a random
// grievance.
func (t *Tables) RandomParams(roller Roller) EventParams {
	faction := economy.Factions[roller.IntN(len(economy.Factions))]
	ft := t.Factions[faction]
	factionName := faction.DisplayName()

	role := pick(roller, ft.Roles)
	mood := pick(roller, t.Moods)
	names := t.FemaleNames
	if roller.Float64() < 0.5 {
		names = t.MaleNames
	}
	name := pick(roller, names)
	situation := t.Fill(pick(roller, t.Situations), factionName, roller)

	return EventParams{
		Faction:      faction,
		FactionName:  factionName,
		Role:         role,
		Name:         name,
		Mood:         mood,
		Situation:    situation,
		PortraitSeed: fmt.Sprintf("%s %s %s", name, role, factionName),
	}
}

// StageParams builds the courtier for a crisis chain stage from its
// generator key. The caller attaches the crisis and stage identity.
func (t *Tables) StageParams(generatorKey string, roller Roller) (EventParams, error) {
	st, ok := t.Stages[generatorKey]
	if !ok {
		return EventParams{}, fmt.Errorf("%w: %q", ErrUnknownGenerator, generatorKey)
	}
	factionName := st.Faction.DisplayName()
	name := pick(roller, t.namePool(st.Names))

	return EventParams{
		Faction:      st.Faction,
		FactionName:  factionName,
		Role:         t.Fill(st.Role, factionName, roller),
		Name:         name,
		Mood:         st.Mood,
		Situation:    t.Fill(st.Situation, factionName, roller),
		PortraitSeed: strings.TrimSpace(name + " " + st.Portrait),
	}, nil
}

// Fill replaces {placeholders} in template with random entries from the
// placeholder pools. Every occurrence of a key gets the same value. A key
// with no usable entries becomes "[key_unavailable]".
func (t *Tables) Fill(template, ownFaction string, roller Roller) string {
	chosen := make(map[string]string)
	out := template
	for pass := 0; pass < maxFillPasses && placeholderRe.MatchString(out); pass++ {
		out = placeholderRe.ReplaceAllStringFunc(out, func(m string) string {
			key := m[1 : len(m)-1]
			if v, ok := chosen[key]; ok {
				return v
			}
			v := t.fillValue(key, ownFaction, roller)
			chosen[key] = v
			return v
		})
	}
	return out
}

func (t *Tables) fillValue(key, ownFaction string, roller Roller) string {
	pool := t.Placeholders[key]
	if key == otherFactionKey && ownFaction != "" {
		filtered := make([]string, 0, len(pool))
		for _, f := range pool {
			if !strings.EqualFold(f, ownFaction) {
				filtered = append(filtered, f)
			}
		}
		pool = filtered
	}
	if len(pool) == 0 {
		return "[" + key + "_unavailable]"
	}
	return pick(roller, pool)
}

func pick(roller Roller, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[roller.IntN(len(items))]
}
