package crisis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/pkg/conditionals"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, 23, cat.Len())
	assert.Len(t, cat.ByTriggerType(TriggerResource), 9)
	assert.Len(t, cat.ByTriggerType(TriggerFaction), 9)
	assert.Len(t, cat.ByTriggerType(TriggerRandom), 5)

	famine, ok := cat.Lookup("famine")
	require.True(t, ok)
	require.NotNil(t, famine.Trigger.Predicate)
	assert.Equal(t, economy.ResourceTarget(economy.Food), famine.Trigger.Predicate.Target)
	assert.Equal(t, conditionals.Condition{Threshold: 150, Comparison: conditionals.LessThanOrEqual}, famine.Trigger.Predicate.Condition)
	res, ok := famine.Resolution.(ThresholdResolution)
	require.True(t, ok, "famine resolves on a threshold")
	assert.Equal(t, 300, res.Condition.Threshold)

	quake, ok := cat.Lookup("earthquake")
	require.True(t, ok)
	assert.Equal(t, DurationResolution{Turns: 2}, quake.Resolution)
	assert.Len(t, quake.EffectsAt(OnTrigger), 3)
	assert.Empty(t, quake.EffectsAt(PerTurn))
	assert.Empty(t, quake.Trigger.Clauses)

	plague, ok := cat.Lookup("plague")
	require.True(t, ok)
	assert.Equal(t, ChainResolution{FallbackTurns: 12}, plague.Resolution)
	assert.Equal(t, []string{"0", "1", "2"}, plague.StageIDs())
	assert.True(t, plague.Stages[2].TerminalSuccess)
	require.Len(t, plague.Trigger.Clauses, 1)
	assert.Equal(t, conditionals.SubjectYear, plague.Trigger.Clauses[0].Subject)

	bandit, ok := cat.Lookup("bandit_king")
	require.True(t, ok)
	assert.Equal(t, ChainResolution{}, bandit.Resolution)
	assert.Len(t, bandit.Stages, 4)
	assert.Len(t, bandit.Trigger.Clauses, 2)

	_, ok = cat.Lookup("dragon")
	assert.False(t, ok)
}

func TestLoadCatalog_RejectsBadData(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		subject string
		suggest string
	}{
		{
			name: "unknown resource",
			yaml: `crises:
  - id: famine
    trigger_type: resource
    trigger: {resource: fod, threshold: 150, comparison: lessThanOrEqual}
    resolution: {type: durationTurns, turns: 2}`,
			subject: "famine.trigger",
			suggest: "food",
		},
		{
			name: "unknown comparison",
			yaml: `crises:
  - id: famine
    trigger_type: resource
    trigger: {resource: food, threshold: 150, comparison: lessThenOrEqual}
    resolution: {type: durationTurns, turns: 2}`,
			subject: "famine.trigger",
			suggest: "lessThanOrEqual",
		},
		{
			name: "faction trigger naming a resource",
			yaml: `crises:
  - id: odd
    trigger_type: faction
    trigger: {resource: food, threshold: 1, comparison: lessThan}
    resolution: {type: durationTurns, turns: 1}`,
			subject: "odd.trigger",
		},
		{
			name: "chain without stages",
			yaml: `crises:
  - id: cult
    trigger_type: random
    trigger: {}
    resolution: {type: eventChain}`,
			subject: "cult.stages",
		},
		{
			name: "zero duration",
			yaml: `crises:
  - id: quake
    trigger_type: random
    trigger: {}
    resolution: {type: durationTurns, turns: 0}`,
			subject: "quake.resolution",
		},
		{
			name: "bad frequency",
			yaml: `crises:
  - id: quake
    trigger_type: random
    trigger: {}
    resolution: {type: durationTurns, turns: 1}
    effects:
      - {type: resourceChange, resource: food, amount: -5, frequency: perturn}`,
			subject: "quake.effects[0]",
			suggest: "perTurn",
		},
		{
			name: "duplicate stage ids",
			yaml: `crises:
  - id: comet
    trigger_type: random
    trigger: {}
    resolution: {type: eventChain}
    stages:
      - {id: "0", generator: a, guidance: a}
      - {id: "0", generator: b, guidance: b}`,
			subject: "comet.stages[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.yaml))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)

			var found *ConfigurationError
			for _, issue := range verr.Issues {
				if issue.Subject == tt.subject {
					found = issue
				}
			}
			require.NotNil(t, found, "no issue for %s in %v", tt.subject, verr)
			if tt.suggest != "" {
				assert.Equal(t, tt.suggest, found.Suggestion)
			}
		})
	}
}

func TestLoadCatalog_UnknownField(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader(`crises:
  - id: famine
    trigger_typ: resource`))
	assert.Error(t, err)
}

func TestValidate_DuplicateIDs(t *testing.T) {
	issues, err := Validate(strings.NewReader(`crises:
  - id: quake
    trigger_type: random
    trigger: {}
    resolution: {type: durationTurns, turns: 1}
  - id: quake
    trigger_type: random
    trigger: {}
    resolution: {type: durationTurns, turns: 2}`))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Detail, "duplicate crisis id")
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "military_leaders", Suggest("military_leader", economy.Names()))
	assert.Equal(t, "", Suggest("zzzzzzzzzz", economy.Names()))
	assert.Equal(t, "", Suggest("", economy.Names()))
}
