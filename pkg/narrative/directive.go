package narrative

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

type ChainDirectiveType string

const (
	ChainProgress ChainDirectiveType = "progress"
	ChainResolve  ChainDirectiveType = "resolve"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ChainDirective advances or concludes the event chain of the crisis whose
// stage event was presented.
type ChainDirective struct {
	Type          ChainDirectiveType `json:"type"`
	TargetStageID string             `json:"target_stage_id,omitempty"`
	Outcome       Outcome            `json:"outcome,omitempty"`
}

// EffectDirective is what a single player decision does to the kingdom.
type EffectDirective struct {
	Resources map[economy.Resource]int `json:"resources,omitempty"`
	Factions  map[economy.Faction]int  `json:"factions,omitempty"`
	Chain     *ChainDirective          `json:"chain,omitempty"`
}

// IsEmpty reports whether the directive changes nothing.
func (d EffectDirective) IsEmpty() bool {
	return len(d.Resources) == 0 && len(d.Factions) == 0 && d.Chain == nil
}

var tagPattern = regexp.MustCompile(`<([^>]+)>`)

// ParseTags extracts an EffectDirective from a tag string such as
// "<wealth:-50> <nobility:+10> <chain_progress:1>". Tags that are unknown
// or carry an unusable value are skipped individually and returned so the
// caller can log them. A later tag for the same name overrides an earlier one.
func ParseTags(s string) (EffectDirective, []string) {
	var d EffectDirective
	var ignored []string
	for _, m := range tagPattern.FindAllStringSubmatch(s, -1) {
		name, value, hasValue := strings.Cut(strings.TrimSpace(m[1]), ":")
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if !applyTag(&d, name, value, hasValue) {
			ignored = append(ignored, m[0])
		}
	}
	return d, ignored
}

func applyTag(d *EffectDirective, name, value string, hasValue bool) bool {
	if !hasValue || value == "" {
		return false
	}
	switch name {
	case "chain_progress":
		d.Chain = &ChainDirective{Type: ChainProgress, TargetStageID: value}
		return true
	case "chain_resolve":
		switch o := Outcome(strings.ToLower(value)); o {
		case OutcomeSuccess, OutcomeFailure:
			d.Chain = &ChainDirective{Type: ChainResolve, Outcome: o}
			return true
		}
		return false
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	t, err := economy.ParseTarget(name)
	if err != nil {
		return false
	}
	if t.Kind == economy.KindFaction {
		if d.Factions == nil {
			d.Factions = make(map[economy.Faction]int)
		}
		d.Factions[t.Faction] = n
		return true
	}
	if d.Resources == nil {
		d.Resources = make(map[economy.Resource]int)
	}
	d.Resources[t.Resource] = n
	return true
}
