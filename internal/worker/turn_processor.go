package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/storage"
)

var (
	// ErrNoKingdom means there is no saved reign.
	ErrNoKingdom = errors.New("no kingdom in progress")
	// ErrStaleKingdom means the request names a reign that has been replaced.
	ErrStaleKingdom = errors.New("kingdom id does not match the current reign")
	// ErrInvalidChoice means the choice index is outside the presented choices.
	ErrInvalidChoice = errors.New("choice index out of range")
	// ErrNoEvent means no event was awaiting a decision. A new one has been
	// presented in its place.
	ErrNoEvent = errors.New("no event awaiting a decision")
)

// TurnResult is the outcome of one decision.
type TurnResult struct {
	Report    *state.TurnReport
	GameState *state.GameState
}

// TurnProcessor owns the saved reign. It runs every mutation under one
// lock: start, decide, abandon.
type TurnProcessor struct {
	mu        sync.Mutex
	engine    *state.Engine
	presenter *EventPresenter
	storage   storage.Storage
	logger    *slog.Logger
}

func NewTurnProcessor(engine *state.Engine, presenter *EventPresenter, storage storage.Storage, logger *slog.Logger) *TurnProcessor {
	return &TurnProcessor{
		engine:    engine,
		presenter: presenter,
		storage:   storage,
		logger:    logger,
	}
}

// StartGame replaces any saved reign with a new one and presents its first
// event.
func (p *TurnProcessor) StartGame(ctx context.Context, playerName, kingdomName string) (*state.GameState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gs := p.engine.NewGame(playerName, kingdomName)
	if err := p.presentEvent(ctx, gs); err != nil {
		return nil, err
	}
	return gs, nil
}

// Current returns the saved reign. A reign saved without its event, which
// happens when the process stops during an event request, gets one now.
func (p *TurnProcessor) Current(ctx context.Context) (*state.GameState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gs, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	if !gs.Ended && gs.Event == nil {
		if err := p.presentEvent(ctx, gs); err != nil {
			return nil, err
		}
	}
	return gs, nil
}

// ProcessChoice applies the chosen option of the presented event, runs a
// turn and presents the next event. A reign that ends is removed from
// storage; the result still carries its final state.
func (p *TurnProcessor) ProcessChoice(ctx context.Context, kingdomID uuid.UUID, index int) (*TurnResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gs, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	if gs.ID != kingdomID {
		return nil, fmt.Errorf("%w: current reign is %s", ErrStaleKingdom, gs.ID)
	}
	if gs.Ended {
		return nil, state.ErrGameEnded
	}
	if gs.Event == nil {
		if err := p.presentEvent(ctx, gs); err != nil {
			return nil, err
		}
		return nil, ErrNoEvent
	}
	if index < 0 || index >= len(gs.Event.Choices) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidChoice, index, len(gs.Event.Choices))
	}

	choice := gs.Event.Choices[index]
	p.logger.Info("Decision made",
		"game_id", gs.ID.String(),
		"turn", gs.Turn,
		"choice", choice.Text,
		"fallback", gs.Event.Fallback)

	report, err := p.engine.AdvanceTurn(gs, choice.Effect)
	if err != nil {
		return nil, fmt.Errorf("failed to advance turn: %w", err)
	}

	if report.GameOver != nil {
		if err := p.storage.DeleteSnapshot(ctx); err != nil {
			return nil, fmt.Errorf("failed to delete ended kingdom: %w", err)
		}
		return &TurnResult{Report: report, GameState: gs}, nil
	}

	if err := p.presentEvent(ctx, gs); err != nil {
		return nil, err
	}
	return &TurnResult{Report: report, GameState: gs}, nil
}

// Abandon removes the saved reign.
func (p *TurnProcessor) Abandon(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.storage.DeleteSnapshot(ctx); err != nil {
		return fmt.Errorf("failed to delete kingdom: %w", err)
	}
	p.logger.Info("Kingdom abandoned")
	return nil
}

func (p *TurnProcessor) load(ctx context.Context) (*state.GameState, error) {
	snap, err := p.storage.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load kingdom: %w", err)
	}
	if snap == nil {
		return nil, ErrNoKingdom
	}
	gs, _ := state.Restore(snap, p.engine.Catalog(), p.logger)
	return gs, nil
}

// presentEvent saves the reign, requests its next event and saves again
// with the event attached. Any failure to get a usable event falls back to
// the local mock event.
func (p *TurnProcessor) presentEvent(ctx context.Context, gs *state.GameState) error {
	params := p.presenter.NextParams(gs)
	gs.Event = nil
	if err := p.save(ctx, gs); err != nil {
		return err
	}

	event, err := p.presenter.Present(ctx, gs, params)
	if err != nil {
		p.logger.Warn("Event request failed, using fallback event",
			"error", err,
			"game_id", gs.ID.String(),
			"chain_owner", gs.ChainOwner)
		mock := court.MockEvent(params)
		event = &mock
	}
	gs.Event = event

	return p.save(ctx, gs)
}

func (p *TurnProcessor) save(ctx context.Context, gs *state.GameState) error {
	if err := p.storage.SaveSnapshot(ctx, gs.Snapshot()); err != nil {
		return fmt.Errorf("failed to save kingdom: %w", err)
	}
	return nil
}
