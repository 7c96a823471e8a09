// Package court holds the tables used to dress an event: which courtier
// appears, in what mood, with what grievance. It also builds the local
// fallback event shown when no narrative service answers.
package court

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return LoadTables(bytes.NewReader(defaultTablesYAML))
})

// DefaultTables returns the built-in court tables.
func DefaultTables() (*Tables, error) {
	return defaultTables()
}

// ErrUnknownGenerator is returned by StageParams for a generator key with no
// stage template.
var ErrUnknownGenerator = errors.New("unknown stage generator")

// Roller supplies randomness. *rand.Rand from math/rand/v2 satisfies it.
type Roller interface {
	Float64() float64
	IntN(n int) int
}

// NamePool selects which given names a stage courtier is drawn from.
type NamePool string

const (
	NamesAny    NamePool = "any"
	NamesMale   NamePool = "male"
	NamesFemale NamePool = "female"
)

// FactionTable lists the roles a faction's courtiers hold and what they
// worry about.
type FactionTable struct {
	Roles    []string `yaml:"roles"`
	Concerns []string `yaml:"concerns"`
}

// StageTemplate is the fixed courtier and situation for one stage of a
// crisis chain. Role and Situation may contain {placeholders}.
type StageTemplate struct {
	Faction   economy.Faction
	Names     NamePool
	Role      string
	Mood      string
	Portrait  string
	Situation string
}

// Tables is the full set of court generation data.
type Tables struct {
	Factions     map[economy.Faction]FactionTable
	Moods        []string
	Situations   []string
	Placeholders map[string][]string
	MaleNames    []string
	FemaleNames  []string
	Stages       map[string]StageTemplate
}

type rawStage struct {
	Faction   string   `yaml:"faction"`
	Names     NamePool `yaml:"names"`
	Role      string   `yaml:"role"`
	Mood      string   `yaml:"mood"`
	Portrait  string   `yaml:"portrait"`
	Situation string   `yaml:"situation"`
}

type rawTables struct {
	Factions     map[string]FactionTable `yaml:"factions"`
	Moods        []string                `yaml:"moods"`
	Situations   []string                `yaml:"situations"`
	Placeholders map[string][]string     `yaml:"placeholders"`
	MaleNames    []string                `yaml:"male_names"`
	FemaleNames  []string                `yaml:"female_names"`
	Stages       map[string]rawStage     `yaml:"stages"`
}

// LoadTables decodes and checks a tables document.
func LoadTables(r io.Reader) (*Tables, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw rawTables
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode court tables: %w", err)
	}
	if len(raw.Moods) == 0 || len(raw.Situations) == 0 || len(raw.MaleNames) == 0 || len(raw.FemaleNames) == 0 {
		return nil, errors.New("court tables: moods, situations and names must not be empty")
	}

	t := &Tables{
		Factions:     make(map[economy.Faction]FactionTable, len(raw.Factions)),
		Moods:        raw.Moods,
		Situations:   raw.Situations,
		Placeholders: raw.Placeholders,
		MaleNames:    raw.MaleNames,
		FemaleNames:  raw.FemaleNames,
		Stages:       make(map[string]StageTemplate, len(raw.Stages)),
	}

	for name, ft := range raw.Factions {
		f, err := economy.ParseFaction(name)
		if err != nil {
			return nil, fmt.Errorf("court tables: %w", err)
		}
		if len(ft.Roles) == 0 {
			return nil, fmt.Errorf("court tables: faction %s has no roles", name)
		}
		t.Factions[f] = ft
	}
	for _, f := range economy.Factions {
		if _, ok := t.Factions[f]; !ok {
			return nil, fmt.Errorf("court tables: missing faction %s", f)
		}
	}

	for key, rs := range raw.Stages {
		f, err := economy.ParseFaction(rs.Faction)
		if err != nil {
			return nil, fmt.Errorf("court tables: stage %s: %w", key, err)
		}
		names := rs.Names
		switch names {
		case NamesAny, NamesMale, NamesFemale:
		case "":
			names = NamesAny
		default:
			return nil, fmt.Errorf("court tables: stage %s: unknown name pool %q", key, names)
		}
		t.Stages[key] = StageTemplate{
			Faction:   f,
			Names:     names,
			Role:      rs.Role,
			Mood:      rs.Mood,
			Portrait:  rs.Portrait,
			Situation: rs.Situation,
		}
	}
	return t, nil
}

func (t *Tables) namePool(p NamePool) []string {
	switch p {
	case NamesMale:
		return t.MaleNames
	case NamesFemale:
		return t.FemaleNames
	default:
		all := make([]string, 0, len(t.FemaleNames)+len(t.MaleNames))
		all = append(all, t.FemaleNames...)
		return append(all, t.MaleNames...)
	}
}
