package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/internal/services"
	"github.com/jwebster45206/kingdom-engine/pkg/chat"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/textfilter"
)

func TestNextParams_Random(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("", "")
	gs.ChainOwner = "stale"

	p := f.presenter.NextParams(gs)
	assert.Empty(t, gs.ChainOwner)
	assert.False(t, p.IsChainStage())
	assert.NotEmpty(t, p.Name)
	assert.NotEmpty(t, p.Situation)
}

func TestNextParams_ChainStage(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("", "")
	f.activate(t, gs, "comet_sighted", "0")

	p := f.presenter.NextParams(gs)
	assert.Equal(t, "comet_sighted", gs.ChainOwner)
	assert.Equal(t, "comet_sighted", p.CrisisID)
	assert.Equal(t, "0", p.StageID)
	assert.Equal(t, "Temple Astrologer", p.Role)
	assert.Contains(t, p.Guidance, "astronomer or village elder")
	assert.False(t, p.TerminalSuccess)

	gs.Active[0].ChainProgress = "2"
	p = f.presenter.NextParams(gs)
	assert.Equal(t, "2", p.StageID)
	assert.True(t, p.TerminalSuccess)
}

func TestNextParams_SkipsConcludedChains(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("", "")
	done := f.activate(t, gs, "comet_sighted", "1")
	done.ChainState = state.ChainResolvedSuccess
	f.activate(t, gs, "plague", "0")

	p := f.presenter.NextParams(gs)
	assert.Equal(t, "plague", p.CrisisID)
	assert.Equal(t, "plague", gs.ChainOwner)
}

func TestNextParams_FallsBackToRandom(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown stage", func(t *testing.T) {
		gs := f.engine.NewGame("", "")
		f.activate(t, gs, "comet_sighted", "9")

		p := f.presenter.NextParams(gs)
		assert.Empty(t, gs.ChainOwner)
		assert.False(t, p.IsChainStage())
	})

	t.Run("unknown generator", func(t *testing.T) {
		gs := f.engine.NewGame("", "")
		gs.Active = append(gs.Active, &state.ActiveCrisis{
			Definition: &crisis.Definition{
				ID:         "dragon",
				Name:       "Dragon",
				Resolution: crisis.ChainResolution{},
				Stages:     []crisis.Stage{{ID: "0", GeneratorKey: "dragon_stage_0"}},
			},
			CrisisID:      "dragon",
			ChainProgress: "0",
			ChainState:    state.ChainOngoing,
		})

		p := f.presenter.NextParams(gs)
		assert.Empty(t, gs.ChainOwner)
		assert.False(t, p.IsChainStage())
	})
}

func TestPresent(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("King Test", "Testland")
	f.activate(t, gs, "comet_sighted", "0")
	params := f.presenter.NextParams(gs)

	ev, err := f.presenter.Present(context.Background(), gs, params)
	require.NoError(t, err)
	assert.False(t, ev.Fallback)
	assert.Equal(t, params.Name, ev.Character.Name)
	assert.Equal(t, params.Faction, ev.Character.Faction)
	assert.Equal(t, "comet_sighted", ev.ChainCrisisID)
	assert.Equal(t, "0", ev.StageID)
	assert.Len(t, ev.Choices, 3)
	assert.Contains(t, ev.Dialogue, "royal granaries")

	_, calls := f.llm.GetCalls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, chat.ChatRoleUser, msgs[3].Role)
	assert.Contains(t, msgs[0].Content, "Testland")
	assert.Contains(t, msgs[0].Content, "Ominous Comet")
}

func TestPresent_Errors(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("", "")
	params := f.presenter.NextParams(gs)

	t.Run("empty response", func(t *testing.T) {
		f.llm.SetChatResponse("   ")
		_, err := f.presenter.Present(context.Background(), gs, params)
		assert.True(t, services.IsKind(err, services.KindBadResponse))
	})

	t.Run("provider error", func(t *testing.T) {
		f.llm.SetChatError(&services.ExternalServiceError{Provider: "mock", Kind: services.KindRateLimited, StatusCode: 429})
		_, err := f.presenter.Present(context.Background(), gs, params)
		assert.True(t, services.IsKind(err, services.KindRateLimited))
	})

	t.Run("timeout", func(t *testing.T) {
		f.llm.ChatFunc = func(ctx context.Context, _ []chat.ChatMessage) (*chat.ChatResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		p := NewEventPresenter(f.llm, mustTables(t), nil, 10*time.Millisecond, testLogger())
		_, err := p.Present(context.Background(), gs, params)
		assert.True(t, services.IsKind(err, services.KindUnavailable))
	})

	t.Run("incomplete params", func(t *testing.T) {
		_, err := f.presenter.Present(context.Background(), gs, court.EventParams{})
		assert.ErrorContains(t, err, "event params missing")
	})
}

func TestPresent_Filter(t *testing.T) {
	f := newFixture(t)
	gs := f.engine.NewGame("", "")
	params := f.presenter.NextParams(gs)

	f.llm.SetChatResponse(`Okay, Your Majesty, those damn bandits took the tithe.

Player-facing text: Hunt the bastard down.
Tags: <military:-10>
Player-facing text: Let them be.
Tags: <stability:-2>`)

	p := NewEventPresenter(f.llm, mustTables(t), nil, time.Second, testLogger()).WithFilter(textfilter.New(true))
	ev, err := p.Present(context.Background(), gs, params)
	require.NoError(t, err)
	assert.Equal(t, "Very well, Your Majesty, those blast bandits took the tithe.", ev.Dialogue)
	require.Len(t, ev.Choices, 2)
	assert.Equal(t, "Hunt the knave down.", ev.Choices[0].Text)

	p.WithFilter(textfilter.New(false))
	ev, err = p.Present(context.Background(), gs, params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ev.Dialogue, "Okay,"))
}

func mustTables(t *testing.T) *court.Tables {
	t.Helper()
	tables, err := court.DefaultTables()
	require.NoError(t, err)
	return tables
}
