package state

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	cat := mustCatalog(t, famineDef(), plagueDef(12))
	gs := newTestState()
	w := NewCrisisWorker(gs, cat, &seqRoller{}, testLogger())
	famine, _ := cat.Lookup("famine")
	plague, _ := cat.Lookup("plague")
	w.Activate(famine)
	w.Activate(plague)
	w.ApplyOngoingEffects()
	gs.Active[1].ChainProgress = "1"
	gs.ChainOwner = "plague"
	gs.Economy.ApplyDelta(economy.FactionTarget(economy.Merchants), -33)
	gs.Event = &narrative.Event{
		Dialogue:      "The healers return.",
		Choices:       []narrative.Choice{{Text: "Fund them", Effect: narrative.EffectDirective{Resources: map[economy.Resource]int{economy.Wealth: -100}}}},
		ChainCrisisID: "plague",
		StageID:       "1",
	}

	data, err := json.Marshal(gs.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	restored, dropped := Restore(&snap, cat, testLogger())
	assert.Empty(t, dropped)

	assert.Equal(t, gs.Economy, restored.Economy)
	assert.Equal(t, gs.Clock, restored.Clock)
	assert.Equal(t, gs.ChainOwner, restored.ChainOwner)
	assert.Equal(t, gs.Event, restored.Event)
	require.Len(t, restored.Active, 2)
	for i, ac := range gs.Active {
		assert.Equal(t, *ac, *restored.Active[i])
		assert.Same(t, ac.Definition, restored.Active[i].Definition)
	}
}

func TestRestore_DropsUnknownCrisis(t *testing.T) {
	cat := mustCatalog(t, famineDef())
	snap := newTestState().Snapshot()
	snap.Active = []SavedCrisis{
		{CrisisID: "dragon_attack", TurnsActive: 2, ChainProgress: "0", ChainState: ChainOngoing},
		{CrisisID: "famine", TurnsActive: 1},
		{CrisisID: "famine", TurnsActive: 4},
	}
	snap.ChainOwner = "dragon_attack"
	snap.Event = &narrative.Event{ChainCrisisID: "dragon_attack", StageID: "0"}

	gs, dropped := Restore(snap, cat, testLogger())
	require.Len(t, dropped, 2)
	var le *LookupError
	require.True(t, errors.As(dropped[0], &le))
	assert.Equal(t, "dragon_attack", le.CrisisID)

	require.Len(t, gs.Active, 1)
	assert.Equal(t, 1, gs.Active[0].TurnsActive)
	assert.Empty(t, gs.ChainOwner)
	assert.Empty(t, gs.Event.ChainCrisisID)
}

func TestRestore_DropsUnknownChainState(t *testing.T) {
	cat := mustCatalog(t, famineDef(), plagueDef(12))
	snap := newTestState().Snapshot()
	snap.Active = []SavedCrisis{
		{CrisisID: "plague", TurnsActive: 3, ChainProgress: "1", ChainState: ChainState("halfway")},
		{CrisisID: "famine", TurnsActive: 1},
	}
	snap.ChainOwner = "plague"

	gs, dropped := Restore(snap, cat, testLogger())
	require.Len(t, dropped, 1)
	assert.Contains(t, dropped[0].Error(), "halfway")
	require.Len(t, gs.Active, 1)
	assert.Equal(t, "famine", gs.Active[0].CrisisID)
	assert.Empty(t, gs.ChainOwner)
}

func TestRestore_ClampsOutOfRangeValues(t *testing.T) {
	cat := mustCatalog(t, famineDef())
	snap := newTestState().Snapshot()
	snap.Clock = Clock{Year: 0, Month: 14}
	snap.Resources[economy.Stability] = 250
	snap.Resources[economy.Population] = -40
	snap.Factions[economy.Peasantry] = -12

	gs, dropped := Restore(snap, cat, testLogger())
	assert.Len(t, dropped, 2)
	assert.Equal(t, Clock{Year: 1, Month: 2}, gs.Clock)
	assert.Equal(t, 100, gs.Economy.Resources[economy.Stability])
	assert.Equal(t, 0, gs.Economy.Resources[economy.Population])
	assert.Equal(t, 0, gs.Economy.Factions[economy.Peasantry])

	// Valid values pass through untouched.
	clean := newTestState().Snapshot()
	restored, dropped := Restore(clean, cat, testLogger())
	assert.Empty(t, dropped)
	assert.Equal(t, clean.Clock, restored.Clock)
	assert.Equal(t, clean.Resources, restored.Economy.Resources)
}
