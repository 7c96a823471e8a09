package narrative

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		resources map[economy.Resource]int
		factions  map[economy.Faction]int
		chain     *ChainDirective
		ignored   int
	}{
		{
			name:      "signed values",
			in:        "<wealth:-50> <stability:+5> <nobility:10>",
			resources: map[economy.Resource]int{economy.Wealth: -50, economy.Stability: 5},
			factions:  map[economy.Faction]int{economy.Nobility: 10},
		},
		{
			name:      "non-integer value ignored alone",
			in:        "<food:lots> <military:-20>",
			resources: map[economy.Resource]int{economy.Military: -20},
			ignored:   1,
		},
		{
			name:      "unknown tag ignored",
			in:        "<gold:100> <population:-10>",
			resources: map[economy.Resource]int{economy.Population: -10},
			ignored:   1,
		},
		{
			name:     "chain progress",
			in:       "<clergy:5> <chain_progress:1>",
			factions: map[economy.Faction]int{economy.Clergy: 5},
			chain:    &ChainDirective{Type: ChainProgress, TargetStageID: "1"},
		},
		{
			name:  "chain resolve",
			in:    "<chain_resolve:success>",
			chain: &ChainDirective{Type: ChainResolve, Outcome: OutcomeSuccess},
		},
		{
			name:    "bad chain resolve",
			in:      "<chain_resolve:maybe>",
			ignored: 1,
		},
		{
			name:     "case and spacing",
			in:       "< Military_Leaders : -15 >",
			factions: map[economy.Faction]int{economy.MilitaryLeaders: -15},
		},
		{
			name:    "missing value",
			in:      "<wealth>",
			ignored: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ignored := ParseTags(tt.in)
			assert.Equal(t, tt.resources, d.Resources)
			assert.Equal(t, tt.factions, d.Factions)
			assert.Equal(t, tt.chain, d.Chain)
			assert.Len(t, ignored, tt.ignored)
		})
	}
}

func TestParseResponse_WellFormed(t *testing.T) {
	text := `Your Majesty, the granaries in the east are empty.
The people grow restless.

Player-facing text: Open the royal stores.
Tags: <food:-100> <peasantry:+10> <wealth:-20>
Player-facing text: Let the market sort it out.
Tags: <merchants:5> <peasantry:-10>
Choice text: Send soldiers to keep order.
Tags: <military:-10> <stability:+5> <chain_progress:2>`

	res, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, "Your Majesty, the granaries in the east are empty.\nThe people grow restless.", res.Dialogue)
	require.Len(t, res.Choices, 3)
	assert.Equal(t, "Open the royal stores.", res.Choices[0].Text)
	assert.Equal(t, -100, res.Choices[0].Effect.Resources[economy.Food])
	assert.Equal(t, 10, res.Choices[0].Effect.Factions[economy.Peasantry])
	assert.Equal(t, "Let the market sort it out.", res.Choices[1].Text)
	assert.Nil(t, res.Choices[1].Effect.Resources)
	assert.Equal(t, &ChainDirective{Type: ChainProgress, TargetStageID: "2"}, res.Choices[2].Effect.Chain)
}

func TestParseResponse_OptionHeaders(t *testing.T) {
	text := `We must act.
Options:
Option 1: Raise taxes
Tags: <wealth:100> <stability:-5>
Option 2:
Lower taxes
Tags: <wealth:-100> <stability:5>`

	res, err := ParseResponse(text)
	require.NoError(t, err)
	assert.Equal(t, "We must act.", res.Dialogue)
	require.Len(t, res.Choices, 2)
	assert.Equal(t, "Raise taxes", res.Choices[0].Text)
	assert.Equal(t, "Lower taxes", res.Choices[1].Text)
	assert.Equal(t, -100, res.Choices[1].Effect.Resources[economy.Wealth])
}

func TestParseResponse_Fallbacks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ParseResponse("  \n ")
		assert.True(t, errors.Is(err, ErrEmptyResponse))
	})

	t.Run("dialogue only", func(t *testing.T) {
		res, err := ParseResponse("I have nothing to offer but news.")
		require.NoError(t, err)
		require.Len(t, res.Choices, 1)
		assert.Equal(t, FallbackChoiceText, res.Choices[0].Text)
		assert.True(t, res.Choices[0].Effect.IsEmpty())
	})

	t.Run("choices without dialogue", func(t *testing.T) {
		res, err := ParseResponse("Player-facing text: Yes\nTags: <wealth:1>")
		require.NoError(t, err)
		assert.Equal(t, MissingDialogue, res.Dialogue)
		require.Len(t, res.Choices, 1)
		assert.Equal(t, "Yes", res.Choices[0].Text)
	})

	t.Run("headers with nothing usable", func(t *testing.T) {
		res, err := ParseResponse("Options:\nPlayer-facing text:\nTags: <wealth:1>")
		require.NoError(t, err)
		assert.Equal(t, MissingDialogue, res.Dialogue)
		require.Len(t, res.Choices, 1)
		assert.Equal(t, NoDialogueChoiceText, res.Choices[0].Text)
	})

	t.Run("too many choices", func(t *testing.T) {
		res, err := ParseResponse("Hail.\nOption 1: a\nOption 2: b\nOption 3: c\nOption 4: d")
		require.NoError(t, err)
		assert.Len(t, res.Choices, MaxChoices)
	})
}
