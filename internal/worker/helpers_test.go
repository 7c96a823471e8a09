package worker

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/internal/services"
	"github.com/jwebster45206/kingdom-engine/pkg/court"
	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
	"github.com/jwebster45206/kingdom-engine/pkg/storage"
)

type fixture struct {
	llm       *services.MockLLMAPI
	store     *storage.MockStorage
	engine    *state.Engine
	catalog   *crisis.Catalog
	presenter *EventPresenter
	processor *TurnProcessor
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := crisis.DefaultCatalog()
	require.NoError(t, err)
	tables, err := court.DefaultTables()
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	log := testLogger()
	f := &fixture{
		llm:     services.NewMockLLMAPI(),
		store:   storage.NewMockStorage(),
		engine:  state.NewEngine(catalog, rng, log).WithRandomChance(0),
		catalog: catalog,
	}
	f.presenter = NewEventPresenter(f.llm, tables, rng, time.Second, log)
	f.processor = NewTurnProcessor(f.engine, f.presenter, f.store, log)
	return f
}

// activate puts a crisis at the given chain stage into gs.
func (f *fixture) activate(t *testing.T, gs *state.GameState, crisisID, stage string) *state.ActiveCrisis {
	t.Helper()
	def, ok := f.catalog.Lookup(crisisID)
	require.True(t, ok, crisisID)
	ac := &state.ActiveCrisis{
		Definition:    def,
		CrisisID:      crisisID,
		ChainProgress: stage,
		ChainState:    state.ChainOngoing,
	}
	gs.Active = append(gs.Active, ac)
	return ac
}
