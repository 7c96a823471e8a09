package narrative

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MaxChoices = 3

	MissingDialogue      = "The advisor's message was unclear (Missing Dialogue)."
	FallbackChoiceText   = "Acknowledge (Parsing Issue)"
	NoDialogueChoiceText = "Dismiss (Major Parsing Issue)"
)

// ErrEmptyResponse is returned when the generated text is blank.
var ErrEmptyResponse = errors.New("empty narrative response")

var (
	choiceHeader = regexp.MustCompile(`(?i)^(?:player-facing text:|player facing text:|choice text:|option \d+:)\s*(.*)$`)
	tagsLine     = regexp.MustCompile(`(?i)^tags:\s*(.*)$`)
	optionsLine  = regexp.MustCompile(`(?i)^options:?$`)
)

// ParseResult is the outcome of decomposing generated text.
type ParseResult struct {
	Dialogue string
	Choices  []Choice
	// Ignored holds tags and lines that could not be used.
	Ignored []string
}

// ParseResponse splits generated text into dialogue and choices.
//
// Dialogue is every line before the first choice header. Each choice starts
// at a header line ("Player-facing text:", "Choice text:", "Option 2:") and
// takes its effects from the "Tags:" line that follows. The result always
// has between one and MaxChoices choices.
func ParseResponse(text string) (*ParseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	var (
		dialogue []string
		segments [][]string
		current  []string
		inChoice bool
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case choiceHeader.MatchString(trimmed):
			if len(current) > 0 {
				segments = append(segments, current)
			}
			current = []string{trimmed}
			inChoice = true
		case optionsLine.MatchString(trimmed):
			inChoice = true
		case inChoice:
			if trimmed != "" {
				current = append(current, trimmed)
			}
		default:
			if trimmed != "" {
				dialogue = append(dialogue, trimmed)
			}
		}
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}

	res := &ParseResult{Dialogue: strings.Join(dialogue, "\n")}
	for _, seg := range segments {
		choice, ignored, ok := parseSegment(seg)
		res.Ignored = append(res.Ignored, ignored...)
		if ok {
			res.Choices = append(res.Choices, choice)
		}
	}

	if len(res.Choices) == 0 {
		text := NoDialogueChoiceText
		if res.Dialogue != "" {
			text = FallbackChoiceText
		}
		res.Choices = []Choice{{Text: text}}
	}
	if len(res.Choices) > MaxChoices {
		res.Choices = res.Choices[:MaxChoices]
	}
	if res.Dialogue == "" {
		res.Dialogue = MissingDialogue
	}
	return res, nil
}

func parseSegment(lines []string) (Choice, []string, bool) {
	var text, tags string
	for i, line := range lines {
		if m := tagsLine.FindStringSubmatch(line); m != nil {
			tags = m[1]
			break
		}
		if m := choiceHeader.FindStringSubmatch(line); m != nil {
			if m[1] != "" {
				text = strings.TrimSpace(m[1])
			}
			continue
		}
		if text == "" && i <= 1 {
			text = line
		}
	}
	if text == "" {
		return Choice{}, lines, false
	}
	effect, ignored := ParseTags(tags)
	return Choice{Text: text, Effect: effect}, ignored, true
}
