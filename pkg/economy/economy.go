package economy

import (
	"encoding/json"
	"fmt"
)

// Starting values for a new reign.
var (
	InitialResources = ResourceSet{
		Population: 1000,
		Wealth:     500,
		Food:       750,
		Military:   100,
		Stability:  75,
	}
	InitialStanding = 50
)

// Kind says which register a Target addresses.
type Kind int

const (
	KindResource Kind = iota
	KindFaction
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resourceChange"
	case KindFaction:
		return "factionStandingChange"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Target names a single register: a resource or a faction standing.
type Target struct {
	Kind     Kind
	Resource Resource
	Faction  Faction
}

func ResourceTarget(r Resource) Target { return Target{Kind: KindResource, Resource: r} }

func FactionTarget(f Faction) Target { return Target{Kind: KindFaction, Faction: f} }

func (t Target) Valid() bool {
	switch t.Kind {
	case KindResource:
		return t.Resource.Valid()
	case KindFaction:
		return t.Faction.Valid()
	}
	return false
}

func (t Target) String() string {
	if t.Kind == KindFaction {
		return t.Faction.String()
	}
	return t.Resource.String()
}

// ParseTarget resolves a tag name against both registers.
func ParseTarget(name string) (Target, error) {
	if r, err := ParseResource(name); err == nil {
		return ResourceTarget(r), nil
	}
	if f, err := ParseFaction(name); err == nil {
		return FactionTarget(f), nil
	}
	return Target{}, fmt.Errorf("unknown resource or faction %q", name)
}

// ResourceSet holds one value per resource. Indexed by Resource.
type ResourceSet [numResources]int

func (s ResourceSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, numResources)
	for _, r := range Resources {
		m[r.String()] = s[r]
	}
	return json.Marshal(m)
}

func (s *ResourceSet) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for name, v := range m {
		r, err := ParseResource(name)
		if err != nil {
			return err
		}
		s[r] = v
	}
	return nil
}

// FactionStandingSet holds one approval score per faction. Indexed by Faction.
type FactionStandingSet [numFactions]int

func (s FactionStandingSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, numFactions)
	for _, f := range Factions {
		m[f.String()] = s[f]
	}
	return json.Marshal(m)
}

func (s *FactionStandingSet) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for name, v := range m {
		f, err := ParseFaction(name)
		if err != nil {
			return err
		}
		s[f] = v
	}
	return nil
}

// Economy owns the kingdom's resources and faction standings.
// All mutation goes through ApplyDelta so the clamping rules hold everywhere.
type Economy struct {
	Resources ResourceSet        `json:"resources"`
	Factions  FactionStandingSet `json:"factions"`
}

// New returns an economy at the starting values.
func New() *Economy {
	e := &Economy{Resources: InitialResources}
	for _, f := range Factions {
		e.Factions[f] = InitialStanding
	}
	return e
}

// Value reads the current value of a register. Invalid targets read as zero.
func (e *Economy) Value(t Target) int {
	if !t.Valid() {
		return 0
	}
	if t.Kind == KindFaction {
		return e.Factions[t.Faction]
	}
	return e.Resources[t.Resource]
}

// ApplyDelta adds amount to the target register and clamps the result.
// Population, food and military floor at 0; stability and faction standings
// stay within [0,100]; wealth is unbounded. Returns the change actually
// applied after clamping. Invalid targets are a no-op.
func (e *Economy) ApplyDelta(t Target, amount int) int {
	if !t.Valid() {
		return 0
	}
	before := e.Value(t)
	after := clamp(t, before+amount)
	if t.Kind == KindFaction {
		e.Factions[t.Faction] = after
	} else {
		e.Resources[t.Resource] = after
	}
	return after - before
}

// Normalize clamps every register into its legal range. Used when loading
// values that did not pass through ApplyDelta. Reports whether anything
// changed.
func (e *Economy) Normalize() bool {
	changed := false
	for _, r := range Resources {
		if v := clamp(ResourceTarget(r), e.Resources[r]); v != e.Resources[r] {
			e.Resources[r] = v
			changed = true
		}
	}
	for _, f := range Factions {
		if v := clamp(FactionTarget(f), e.Factions[f]); v != e.Factions[f] {
			e.Factions[f] = v
			changed = true
		}
	}
	return changed
}

func clamp(t Target, v int) int {
	if t.Kind == KindFaction {
		return min(max(v, 0), 100)
	}
	switch t.Resource {
	case Wealth:
		return v
	case Stability:
		return min(max(v, 0), 100)
	default:
		return max(v, 0)
	}
}
