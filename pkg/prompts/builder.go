package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jwebster45206/kingdom-engine/pkg/chat"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

// Builder constructs chat messages for an event request using a fluent interface.
type Builder struct {
	gs       *state.GameState
	params   *court.EventParams
	status   bool
	messages []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		status:   true,
		messages: make([]chat.ChatMessage, 0),
	}
}

// WithGameState sets the kingdom the event is presented in.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithEventParams sets the courtier and situation.
func (b *Builder) WithEventParams(p court.EventParams) *Builder {
	b.params = &p
	return b
}

// WithKingdomStatus toggles the resource summary section.
func (b *Builder) WithKingdomStatus(enabled bool) *Builder {
	b.status = enabled
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, errors.New("gamestate is required")
	}
	if b.params == nil {
		return nil, errors.New("event params are required")
	}
	if err := validateParams(b.params); err != nil {
		return nil, err
	}

	b.messages = make([]chat.ChatMessage, 0, 4)

	// 1. Kingdom context, crises and chain stage
	b.addContext()

	// 2. Courtier and situation
	b.addCharacter()

	// 3. Output rules
	b.addTask()

	// 4. Begin reminder
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: fmt.Sprintf(BeginPrompt, b.params.Name),
	})

	return b.messages, nil
}

func validateParams(p *court.EventParams) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", p.Name},
		{"role", p.Role},
		{"faction", p.FactionName},
		{"mood", p.Mood},
		{"situation", p.Situation},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if !p.Faction.Valid() {
		missing = append(missing, "faction id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("event params missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (b *Builder) addContext() {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(IntroPrompt, b.gs.KingdomName, b.gs.PlayerName, b.gs.Clock.String()))

	if b.status {
		sb.WriteString("\n\n" + KingdomStatus(&b.gs.Economy))
	}

	if crises := b.gs.CrisisPrompts(); len(crises) > 0 {
		sb.WriteString("\n\n" + CrisisContextHeader + "\n")
		for _, text := range crises {
			sb.WriteString("- " + text + "\n")
		}
		sb.WriteString(CrisisContextFooter)
	}

	if b.params.IsChainStage() {
		name := "the current crisis"
		if ac := b.gs.FindActive(b.params.CrisisID); ac != nil {
			name = ac.Name()
		}
		sb.WriteString("\n\n")
		if b.params.Guidance != "" {
			sb.WriteString(fmt.Sprintf(StageContextPrompt, name, b.params.Guidance))
		} else {
			sb.WriteString(fmt.Sprintf(StageContextNoGuidancePrompt, name))
		}
	}

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})
}

func (b *Builder) addCharacter() {
	p := b.params
	standing := b.gs.Economy.Value(economy.FactionTarget(p.Faction))
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(CharacterPrompt, p.Name, p.Role, p.FactionName, p.Mood, standing, p.Situation),
	})
}

func (b *Builder) addTask() {
	parts := []string{fmt.Sprintf(TaskPrompt, b.gs.PlayerName, b.gs.PlayerName)}
	if b.params.IsChainStage() {
		parts = append(parts, fmt.Sprintf(ChainTagPrompt, b.stageIDs()))
	}
	parts = append(parts, ValueGuidancePrompt, FormatExamplePrompt)
	if b.params.IsChainStage() {
		parts = append(parts, ChainFormatExamplePrompt)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: strings.Join(parts, "\n\n"),
	})
}

func (b *Builder) stageIDs() string {
	ac := b.gs.FindActive(b.params.CrisisID)
	if ac == nil || ac.Definition == nil {
		return "the next stage id"
	}
	ids := ac.Definition.StageIDs()
	if len(ids) == 0 {
		return "the next stage id"
	}
	return strings.Join(ids, ", ")
}

// KingdomStatus renders the resource registers and faction standings as a
// prompt section.
func KingdomStatus(e *economy.Economy) string {
	var sb strings.Builder
	sb.WriteString("KINGDOM STATUS (for your awareness; do not recite these figures):\n")
	for _, r := range economy.Resources {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", r.DisplayName(), humanize.Comma(int64(e.Value(economy.ResourceTarget(r))))))
	}
	sb.WriteString("- Faction standings: ")
	for i, f := range economy.Factions {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s %d", f.DisplayName(), e.Value(economy.FactionTarget(f))))
	}
	return sb.String()
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(gs *state.GameState, params court.EventParams) ([]chat.ChatMessage, error) {
	return New().
		WithGameState(gs).
		WithEventParams(params).
		Build()
}
