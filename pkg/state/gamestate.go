package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

const (
	DefaultPlayerName  = "King Arthur"
	DefaultKingdomName = "Eldoria"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Clock is the in-game calendar. Month is 0-based.
type Clock struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Advance moves the calendar forward one month, rolling the year over.
func (c *Clock) Advance() {
	c.Month++
	if c.Month >= len(monthNames) {
		c.Month = 0
		c.Year++
	}
}

// Valid reports whether the month is in range and the year has begun.
func (c Clock) Valid() bool {
	return c.Year >= 1 && c.Month >= 0 && c.Month < len(monthNames)
}

func (c Clock) MonthName() string {
	if c.Month < 0 || c.Month >= len(monthNames) {
		return "Unknown"
	}
	return monthNames[c.Month]
}

func (c Clock) String() string {
	return fmt.Sprintf("%s, Year %d", c.MonthName(), c.Year)
}

// Roller supplies randomness to the engine. *rand.Rand from math/rand/v2
// satisfies it; tests inject fixed sequences.
type Roller interface {
	Float64() float64
	IntN(n int) int
}

// GameState is the single session value for one reign. Every engine
// operation takes it explicitly.
type GameState struct {
	ID          uuid.UUID       `json:"id"`
	PlayerName  string          `json:"player_name"`
	KingdomName string          `json:"kingdom_name"`
	Turn        int             `json:"turn"`
	Clock       Clock           `json:"clock"`
	Economy     economy.Economy `json:"economy"`
	Active      []*ActiveCrisis `json:"active_crises"`

	// ChainOwner is the crisis whose stage event is currently presented.
	ChainOwner string           `json:"chain_owner,omitempty"`
	Event      *narrative.Event `json:"event,omitempty"`

	Ended     bool      `json:"ended"`
	EndReason string    `json:"end_reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState starts a new reign in year 1 at a random month.
func NewGameState(playerName, kingdomName string, roller Roller) *GameState {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = DefaultPlayerName
	}
	kingdomName = strings.TrimSpace(kingdomName)
	if kingdomName == "" {
		kingdomName = DefaultKingdomName
	}
	now := time.Now()
	return &GameState{
		ID:          uuid.New(),
		PlayerName:  playerName,
		KingdomName: kingdomName,
		Clock:       Clock{Year: 1, Month: roller.IntN(len(monthNames))},
		Economy:     *economy.New(),
		Active:      make([]*ActiveCrisis, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GetValue implements conditionals.KingdomView.
func (gs *GameState) GetValue(t economy.Target) int {
	return gs.Economy.Value(t)
}

// GetYear implements conditionals.KingdomView.
func (gs *GameState) GetYear() int {
	return gs.Clock.Year
}

// FindActive returns the active instance of a crisis, or nil.
func (gs *GameState) FindActive(crisisID string) *ActiveCrisis {
	for _, ac := range gs.Active {
		if ac.CrisisID == crisisID {
			return ac
		}
	}
	return nil
}

func (gs *GameState) IsActive(crisisID string) bool {
	return gs.FindActive(crisisID) != nil
}

// CrisisPrompts returns the narrative summary of every active crisis.
func (gs *GameState) CrisisPrompts() []string {
	var out []string
	for _, ac := range gs.Active {
		if ac.Definition != nil && ac.Definition.PromptText != "" {
			out = append(out, ac.Definition.PromptText)
		}
	}
	return out
}

// ActiveCrisis is a live instance of a catalog definition.
type ActiveCrisis struct {
	Definition    *crisis.Definition `json:"-"`
	CrisisID      string             `json:"crisis_id"`
	TurnsActive   int                `json:"turns_active"`
	ChainProgress string             `json:"chain_progress,omitempty"`
	ChainState    ChainState         `json:"chain_state,omitempty"`
}

// Name returns the display name, falling back to the id.
func (ac *ActiveCrisis) Name() string {
	if ac.Definition != nil && ac.Definition.Name != "" {
		return ac.Definition.Name
	}
	return ac.CrisisID
}

// ChainState tracks an event chain's progress. Empty for crises without one.
type ChainState string

const (
	ChainNone               ChainState = ""
	ChainOngoing            ChainState = "ongoing"
	ChainResolvedSuccess    ChainState = "resolved_success"
	ChainResolvedFailure    ChainState = "resolved_failure"
	ChainResolvedByDuration ChainState = "resolved_by_duration"
)

// Concluded reports whether the chain was ended by a player decision.
func (s ChainState) Concluded() bool {
	return s == ChainResolvedSuccess || s == ChainResolvedFailure
}

func (s ChainState) Valid() bool {
	switch s {
	case ChainNone, ChainOngoing, ChainResolvedSuccess, ChainResolvedFailure, ChainResolvedByDuration:
		return true
	}
	return false
}
