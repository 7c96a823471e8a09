package economy

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resource is one of the five kingdom-wide numeric registers.
type Resource int

const (
	Population Resource = iota
	Wealth
	Food
	Military
	Stability

	numResources
)

var resourceNames = [numResources]string{
	Population: "population",
	Wealth:     "wealth",
	Food:       "food",
	Military:   "military",
	Stability:  "stability",
}

// Resources lists every resource in display order.
var Resources = []Resource{Population, Wealth, Food, Military, Stability}

func (r Resource) Valid() bool {
	return r >= 0 && r < numResources
}

func (r Resource) String() string {
	if !r.Valid() {
		return fmt.Sprintf("resource(%d)", int(r))
	}
	return resourceNames[r]
}

// DisplayName renders the resource for players, e.g. "Wealth".
func (r Resource) DisplayName() string {
	return cases.Title(language.English).String(r.String())
}

// ParseResource maps a lowercase tag name to a Resource.
// Unknown names are rejected rather than ignored.
func ParseResource(s string) (Resource, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range resourceNames {
		if n == name {
			return Resource(r), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}

func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid resource %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Resource) UnmarshalText(b []byte) error {
	parsed, err := ParseResource(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Faction is one of the five power blocs whose approval the ruler tracks.
type Faction int

const (
	Nobility Faction = iota
	Clergy
	Merchants
	Peasantry
	MilitaryLeaders

	numFactions
)

var factionNames = [numFactions]string{
	Nobility:        "nobility",
	Clergy:          "clergy",
	Merchants:       "merchants",
	Peasantry:       "peasantry",
	MilitaryLeaders: "military_leaders",
}

// Factions lists every faction in display order.
var Factions = []Faction{Nobility, Clergy, Merchants, Peasantry, MilitaryLeaders}

func (f Faction) Valid() bool {
	return f >= 0 && f < numFactions
}

func (f Faction) String() string {
	if !f.Valid() {
		return fmt.Sprintf("faction(%d)", int(f))
	}
	return factionNames[f]
}

// DisplayName renders the faction for players, e.g. "Military Leaders".
func (f Faction) DisplayName() string {
	return cases.Title(language.English).String(strings.ReplaceAll(f.String(), "_", " "))
}

// ParseFaction maps a lowercase tag name to a Faction.
func ParseFaction(s string) (Faction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range factionNames {
		if n == name {
			return Faction(f), nil
		}
	}
	return 0, fmt.Errorf("unknown faction %q", s)
}

func (f Faction) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid faction %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Faction) UnmarshalText(b []byte) error {
	parsed, err := ParseFaction(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Names returns every resource and faction tag name. Used for suggestions
// when validating hand-written data.
func Names() []string {
	names := make([]string, 0, len(resourceNames)+len(factionNames))
	names = append(names, resourceNames[:]...)
	names = append(names, factionNames[:]...)
	return names
}
