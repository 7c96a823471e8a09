package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/kingdom-engine/internal/services"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
	"github.com/jwebster45206/kingdom-engine/pkg/prompts"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/textfilter"
)

// EventPresenter chooses who appears before the throne next and asks the
// narrative service for their petition.
type EventPresenter struct {
	llm     services.LLMService
	tables  *court.Tables
	roller  court.Roller
	timeout time.Duration
	filter  *textfilter.Filter
	logger  *slog.Logger
}

func NewEventPresenter(llm services.LLMService, tables *court.Tables, roller court.Roller, timeout time.Duration, logger *slog.Logger) *EventPresenter {
	return &EventPresenter{
		llm:     llm,
		tables:  tables,
		roller:  roller,
		timeout: timeout,
		logger:  logger,
	}
}

// WithFilter rewrites generated dialogue and choice text through f.
// Returns the EventPresenter for method chaining
func (p *EventPresenter) WithFilter(f *textfilter.Filter) *EventPresenter {
	p.filter = f
	return p
}

// NextParams picks the courtier for the next event. The first ongoing
// chain crisis gets its current stage and becomes the chain owner;
// otherwise a random courtier is drawn and no chain owns the event.
func (p *EventPresenter) NextParams(gs *state.GameState) court.EventParams {
	gs.ChainOwner = ""

	driver := state.NewChainDriver(gs, p.logger)
	ac := driver.NextChainCrisis()
	if ac == nil {
		return p.tables.RandomParams(p.roller)
	}

	stage, err := driver.CurrentStage(ac)
	if err != nil {
		p.logger.Warn("Chain stage unavailable, presenting a generic event",
			"error", err,
			"crisis_id", ac.CrisisID,
			"game_id", gs.ID.String())
		return p.tables.RandomParams(p.roller)
	}

	params, err := p.tables.StageParams(stage.GeneratorKey, p.roller)
	if err != nil {
		p.logger.Warn("Stage generator unavailable, presenting a generic event",
			"error", err,
			"crisis_id", ac.CrisisID,
			"stage", stage.ID,
			"game_id", gs.ID.String())
		return p.tables.RandomParams(p.roller)
	}

	params.CrisisID = ac.CrisisID
	params.StageID = stage.ID
	params.Guidance = stage.Guidance
	params.TerminalSuccess = stage.TerminalSuccess
	gs.ChainOwner = ac.CrisisID

	p.logger.Debug("Presenting chain stage",
		"crisis_id", ac.CrisisID,
		"stage", stage.ID,
		"generator", stage.GeneratorKey)
	return params
}

// Present requests the event text for params and parses it.
func (p *EventPresenter) Present(ctx context.Context, gs *state.GameState, params court.EventParams) (*narrative.Event, error) {
	messages, err := prompts.BuildMessages(gs, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build event prompt: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Debug("Sending event request to LLM",
		"provider", p.llm.Name(),
		"game_id", gs.ID.String(),
		"character", params.Name)
	resp, err := p.llm.Chat(reqCtx, messages)
	if err != nil {
		var ese *services.ExternalServiceError
		if !errors.As(err, &ese) && errors.Is(err, context.DeadlineExceeded) {
			return nil, &services.ExternalServiceError{Provider: p.llm.Name(), Kind: services.KindUnavailable, Err: err}
		}
		return nil, fmt.Errorf("LLM chat failed: %w", err)
	}

	parsed, err := narrative.ParseResponse(resp.Message)
	if err != nil {
		return nil, &services.ExternalServiceError{Provider: p.llm.Name(), Kind: services.KindBadResponse, Err: err}
	}
	if len(parsed.Ignored) > 0 {
		p.logger.Warn("Ignored unusable event tags", "ignored", parsed.Ignored, "game_id", gs.ID.String())
	}

	if p.filter != nil {
		p.applyFilter(parsed, gs)
	}

	return &narrative.Event{
		Character: narrative.Character{
			Name:         params.Name,
			Role:         params.Role,
			Faction:      params.Faction,
			FactionName:  params.FactionName,
			Mood:         params.Mood,
			PortraitSeed: params.PortraitSeed,
		},
		Dialogue:      parsed.Dialogue,
		Choices:       parsed.Choices,
		ChainCrisisID: params.CrisisID,
		StageID:       params.StageID,
	}, nil
}

func (p *EventPresenter) applyFilter(parsed *narrative.ParseResult, gs *state.GameState) {
	changed := false
	if out := p.filter.Apply(parsed.Dialogue); out != parsed.Dialogue {
		parsed.Dialogue = out
		changed = true
	}
	for i := range parsed.Choices {
		if out := p.filter.Apply(parsed.Choices[i].Text); out != parsed.Choices[i].Text {
			parsed.Choices[i].Text = out
			changed = true
		}
	}
	if changed {
		p.logger.Debug("Filtered event text", "game_id", gs.ID.String())
	}
}
