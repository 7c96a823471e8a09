package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/kingdom-engine/internal/handlers"
	"github.com/jwebster45206/kingdom-engine/pkg/economy"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

const helpText = `Commands:
• 1, 2, 3 - Decide the presented matter
• /crises - List every crisis that can befall the realm
• /copy - Copy the kingdom id to the clipboard
• /new - Abandon this reign and start another
• /help - Show this help
• Ctrl+C - Quit

How to play:
• Each turn a courtier brings you a matter and a few options
• Your decision changes resources and faction standing
• Crises drain the realm until they resolve
• The reign ends when the people, treasury or order collapse`

func renderEvent(ev *narrative.Event, width int) string {
	if ev == nil {
		return loadingStyle.Render("The court is quiet. Awaiting the next petitioner...")
	}
	var b strings.Builder
	c := ev.Character
	b.WriteString(speakerStyle.Render(c.Name) + " ")
	b.WriteString(promptStyle.Render(fmt.Sprintf("%s, %s", c.Role, c.FactionName)))
	if c.Mood != "" {
		b.WriteString(promptStyle.Render(" (" + c.Mood + ")"))
	}
	b.WriteString("\n\n")
	b.WriteString(narratorStyle.Render(wordwrap.String(ev.Dialogue, width)))
	b.WriteString("\n\n")

	for i, ch := range ev.Choices {
		b.WriteString(choiceKeyStyle.Render(fmt.Sprintf("[%d] ", i+1)))
		b.WriteString(wordwrap.String(ch.Text, width-4))
		b.WriteString("\n")
	}
	if ev.Fallback {
		b.WriteString("\n" + promptStyle.Render("(The royal scribe improvised this audience.)"))
	}
	return b.String()
}

func renderReport(r *state.TurnReport, width int) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Turn %d: %s", r.Turn, r.Date)) + "\n")

	if len(r.ChoiceDeltas) > 0 {
		b.WriteString("Your decree: " + formatDeltas(r.ChoiceDeltas) + "\n")
	}
	for _, m := range r.ChainMessages {
		b.WriteString(wordwrap.String(m, width) + "\n")
	}
	if len(r.CrisisDrains) > 0 {
		b.WriteString(errorStyle.Render("Crises drain the realm: ") + formatDeltas(r.CrisisDrains) + "\n")
	}
	for _, n := range r.Started {
		b.WriteString(errorStyle.Render("Crisis! "+n.Name) + "\n")
		if n.Message != "" {
			b.WriteString(wordwrap.String(n.Message, width) + "\n")
		}
	}
	for _, n := range r.Ended {
		b.WriteString(userStyle.Render("Resolved: "+n.Name) + "\n")
		if n.Message != "" {
			b.WriteString(wordwrap.String(n.Message, width) + "\n")
		}
		if len(n.Effects) > 0 {
			b.WriteString("Aftermath: " + formatDeltas(n.Effects) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDeltas(deltas []state.Delta) string {
	parts := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if d.Applied == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %+d", d.Name, d.Applied))
	}
	if len(parts) == 0 {
		return "no change"
	}
	return strings.Join(parts, ", ")
}

func renderStatus(v *handlers.KingdomView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(v.KingdomName)) + "\n")
	b.WriteString(fmt.Sprintf("%s\n%s\nTurn %d\n\n", v.PlayerName, v.Date, v.Turn))

	b.WriteString(titleStyle.Render("Resources") + "\n")
	for _, r := range economy.Resources {
		b.WriteString(fmt.Sprintf("%-11s %s\n", r.DisplayName(), humanize.Comma(int64(v.Resources[r]))))
	}

	b.WriteString("\n" + titleStyle.Render("Factions") + "\n")
	for _, f := range economy.Factions {
		b.WriteString(fmt.Sprintf("%-17s %3d\n", f.DisplayName(), v.Factions[f]))
	}

	b.WriteString("\n" + titleStyle.Render("Crises") + "\n")
	if len(v.Crises) == 0 {
		b.WriteString("None\n")
	}
	for _, c := range v.Crises {
		line := fmt.Sprintf("• %s (%d)", c.Name, c.TurnsActive)
		if c.Critical {
			line = errorStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if c.Stage != "" {
			b.WriteString(promptStyle.Render("  stage "+c.Stage) + "\n")
		}
	}

	b.WriteString("\nKingdom ID:\n" + v.ID.String()[:8] + "...\n")
	return b.String()
}

func renderCatalog(list []handlers.CrisisSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Crises of the realm:") + "\n")
	for _, c := range list {
		line := fmt.Sprintf("• %s [%s]", c.Name, c.TriggerType)
		if c.Stages > 0 {
			line += fmt.Sprintf(" %d stages", c.Stages)
		}
		if c.Critical {
			line += " (critical)"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// parseChoice maps "1".."n" to a 0-based index.
func parseChoice(input string, n int) (int, bool) {
	if len(input) != 1 || input[0] < '1' || input[0] > '9' {
		return 0, false
	}
	idx := int(input[0] - '1')
	if idx >= n {
		return 0, false
	}
	return idx, true
}
