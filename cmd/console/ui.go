package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/kingdom-engine/internal/handlers"
	"github.com/jwebster45206/kingdom-engine/pkg/narrative"
	"github.com/jwebster45206/kingdom-engine/pkg/state"
)

const (
	PlaceHolderText    = "Press 1-3 to decide, or type /help..."
	defaultPlayerName  = "King Arthur"
	defaultKingdomName = "Camelot"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config         *ConsoleConfig
	api            *APIClient
	kingdom        *handlers.KingdomView
	entries        []entry
	eventViewport  viewport.Model
	statusViewport viewport.Model
	textarea       textarea.Model
	ready          bool
	width          int
	height         int
	err            error
	loading        bool

	// Setup modal state
	showSetupModal bool
	nameInputs     []textinput.Model
	focusIndex     int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

// entry is one item of the court record, re-rendered on resize.
type entry struct {
	report *state.TurnReport
	event  *narrative.Event
	text   string
	isErr  bool
}

type kingdomCreatedMsg struct {
	kingdom *handlers.KingdomView
	err     error
}

type turnMsg struct {
	resp *handlers.TurnResponse
	err  error
}

type crisesMsg struct {
	crises []handlers.CrisisSummary
	err    error
}

type abandonedMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	eventPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	statusPanelStyle = lipgloss.NewStyle().
				PaddingTop(2).
				PaddingBottom(0).
				PaddingLeft(0).
				PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, api *APIClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	eventVp := viewport.New(50, 20)
	eventVp.MouseWheelEnabled = true

	statusVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		api:            api,
		textarea:       ta,
		eventViewport:  eventVp,
		statusViewport: statusVp,
		showSetupModal: true,
		nameInputs:     newNameInputs(),
	}
}

func newNameInputs() []textinput.Model {
	king := textinput.New()
	king.Placeholder = defaultPlayerName
	king.CharLimit = 60
	king.Width = 40
	king.Focus()

	realm := textinput.New()
	realm.Placeholder = defaultKingdomName
	realm.CharLimit = 60
	realm.Width = 40

	return []textinput.Model{king, realm}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
		m.height = ws.Height
		m.resize()
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showSetupModal {
		return m.updateSetupModal(msg)
	}
	if m.kingdom != nil && m.kingdom.Ended {
		return m.updateGameOver(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.eventViewport, vpCmd = m.eventViewport.Update(msg)
		return m, vpCmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyRunes:
			// Bare digits on an empty prompt decide immediately.
			if m.textarea.Value() == "" {
				if idx, ok := m.choiceIndex(string(msg.Runes)); ok {
					return m.choose(idx)
				}
			}
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if idx, ok := m.choiceIndex(input); ok {
				return m.choose(idx)
			}
			m.addText("Choose by number, or type /help.", true)
			return m, nil
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.addText("Error: "+msg.err.Error(), true)
			return m, nil
		}
		m.setKingdom(&msg.resp.Kingdom)
		m.entries = append(m.entries, entry{report: msg.resp.Report})
		if m.kingdom.Ended {
			m.textarea.Blur()
		} else {
			m.entries = append(m.entries, entry{event: m.kingdom.Event})
		}
		m.writeEventContent()
		return m, nil

	case crisesMsg:
		if msg.err != nil {
			m.addText("Error: "+msg.err.Error(), true)
		} else {
			m.addText(renderCatalog(msg.crises), false)
		}
		return m, nil

	case abandonedMsg:
		m.loading = false
		if msg.err != nil {
			m.addText("Error: "+msg.err.Error(), true)
			return m, nil
		}
		return m.openSetup()

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeEventContent()
			return m, progressTick()
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.eventViewport, vpCmd = m.eventViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	eventWidth := int(float64(m.width)*0.7) - 4
	statusWidth := m.width - eventWidth - 6

	m.eventViewport.Width = eventWidth - 2
	m.eventViewport.Height = m.height - 7
	m.statusViewport.Width = statusWidth - 2
	m.statusViewport.Height = m.height - 4
	m.textarea.SetWidth(eventWidth - 4)
	m.ready = true

	if m.kingdom != nil {
		m.writeEventContent()
		m.statusViewport.SetContent(renderStatus(m.kingdom))
	}
}

func (m *ConsoleUI) choiceIndex(input string) (int, bool) {
	if m.loading || m.kingdom == nil || m.kingdom.Event == nil {
		return 0, false
	}
	return parseChoice(input, len(m.kingdom.Event.Choices))
}

func (m ConsoleUI) choose(idx int) (tea.Model, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.entries = append(m.entries, entry{text: userStyle.Render(fmt.Sprintf("You chose: %s", m.kingdom.Event.Choices[idx].Text))})
	m.writeEventContent()
	return m, tea.Batch(m.sendChoice(m.kingdom.ID, idx), progressTick())
}

func (m *ConsoleUI) setKingdom(v *handlers.KingdomView) {
	m.kingdom = v
	m.statusViewport.SetContent(renderStatus(v))
}

func (m *ConsoleUI) addText(text string, isErr bool) {
	m.entries = append(m.entries, entry{text: text, isErr: isErr})
	m.writeEventContent()
}

// writeEventContent rebuilds the court record for the current viewport width.
func (m *ConsoleUI) writeEventContent() {
	width := m.eventViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("KINGDOM ENGINE") + "\n\n")
	if m.kingdom != nil {
		content.WriteString(fmt.Sprintf("The court of %s is in session.\n", m.kingdom.KingdomName))
	}
	content.WriteString("Press 1-3 to decide each matter. Type /help for commands.\n\n")

	for _, e := range m.entries {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
		switch {
		case e.report != nil:
			content.WriteString(renderReport(e.report, width))
		case e.event != nil:
			content.WriteString(renderEvent(e.event, width))
		case e.isErr:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, width)))
		default:
			content.WriteString(wordwrap.String(e.text, width))
		}
		content.WriteString("\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.eventViewport.SetContent(content.String())
	m.eventViewport.GotoBottom()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.addText(helpText, false)
	case "/crises":
		return m, m.loadCrises()
	case "/copy":
		if m.kingdom == nil {
			return m, nil
		}
		if err := clipboard.WriteAll(m.kingdom.ID.String()); err != nil {
			m.addText("Could not copy to clipboard: "+err.Error(), true)
		} else {
			m.addText("Kingdom ID copied to clipboard: "+m.kingdom.ID.String(), false)
		}
	case "/new":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.abandon()
	default:
		m.addText(fmt.Sprintf("Unknown command %q. Type /help.", cmd), true)
	}
	return m, nil
}

func (m ConsoleUI) openSetup() (tea.Model, tea.Cmd) {
	m.showSetupModal = true
	m.nameInputs = newNameInputs()
	m.focusIndex = 0
	m.err = nil
	m.kingdom = nil
	m.entries = nil
	m.textarea.Blur()
	return m, textinput.Blink
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case kingdomCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.showSetupModal = false
		m.setKingdom(msg.kingdom)
		m.entries = []entry{{event: msg.kingdom.Event}}
		m.resize()
		m.writeEventContent()
		m.textarea.Focus()
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loading {
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyTab, tea.KeyDown, tea.KeyShiftTab, tea.KeyUp:
			dir := 1
			if msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp {
				dir = -1
			}
			m.focusIndex = (m.focusIndex + dir + len(m.nameInputs)) % len(m.nameInputs)
			for i := range m.nameInputs {
				if i == m.focusIndex {
					m.nameInputs[i].Focus()
				} else {
					m.nameInputs[i].Blur()
				}
			}
			return m, textinput.Blink
		case tea.KeyEnter:
			if m.focusIndex < len(m.nameInputs)-1 {
				m.nameInputs[m.focusIndex].Blur()
				m.focusIndex++
				m.nameInputs[m.focusIndex].Focus()
				return m, textinput.Blink
			}
			m.loading = true
			m.err = nil
			return m, m.createKingdom(
				strings.TrimSpace(m.nameInputs[0].Value()),
				strings.TrimSpace(m.nameInputs[1].Value()),
			)
		}
	}

	cmds := make([]tea.Cmd, len(m.nameInputs))
	for i := range m.nameInputs {
		m.nameInputs[i], cmds[i] = m.nameInputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m ConsoleUI) updateGameOver(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.openSetup()
		default:
			switch msg.String() {
			case "n", "N":
				return m.openSetup()
			case "q", "Q":
				return m, tea.Quit
			}
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.eventViewport, cmd = m.eventViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showSetupModal {
					return m, textinput.Blink
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) sendChoice(id uuid.UUID, idx int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		resp, err := m.api.Choose(ctx, id, idx)
		return turnMsg{resp, err}
	}
}

func (m ConsoleUI) createKingdom(player, realm string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		v, err := m.api.CreateKingdom(ctx, player, realm)
		return kingdomCreatedMsg{v, err}
	}
}

func (m ConsoleUI) loadCrises() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		list, err := m.api.Crises(ctx)
		return crisesMsg{list, err}
	}
}

func (m ConsoleUI) abandon() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		return abandonedMsg{m.api.Abandon(ctx)}
	}
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Throne?"))
	content.WriteString("\n\n")
	content.WriteString("Your reign is saved and can be resumed from the API.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	if m.loading {
		content.WriteString(modalTitleStyle.Render("Founding the Kingdom..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Summoning the first petitioner to court..."))
	} else {
		content.WriteString(modalTitleStyle.Render("A New Reign"))
		content.WriteString("\n\n")
		content.WriteString("Ruler's name:\n")
		content.WriteString(m.nameInputs[0].View())
		content.WriteString("\n\nKingdom name:\n")
		content.WriteString(m.nameInputs[1].View())
		content.WriteString("\n\n")
		if m.err != nil {
			content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to create kingdom: %v", m.err)))
			content.WriteString("\n\n")
		}
		content.WriteString(promptStyle.Render("Tab to switch, Enter to begin, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderGameOver() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("The Reign Has Ended"))
	content.WriteString("\n\n")
	content.WriteString(errorStyle.Render(wordwrap.String(m.kingdom.EndReason, 50)))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("%s ruled %s for %d turns, until %s.", m.kingdom.PlayerName, m.kingdom.KingdomName, m.kingdom.Turn, m.kingdom.Date))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press N for a new reign, Q to quit"))

	modal := modalStyle.Width(56).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showSetupModal {
		return m.renderSetupModal()
	}
	if !m.ready || m.kingdom == nil {
		return "\n  Initializing..."
	}
	if m.kingdom.Ended {
		return m.renderGameOver()
	}

	eventWidth := int(float64(m.width)*0.7) - 4
	statusWidth := m.width - eventWidth - 6

	eventPanel := eventPanelStyle.Width(eventWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.eventViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", eventWidth-4)),
			m.textarea.View(),
		),
	)

	statusPanel := statusPanelStyle.Width(statusWidth).Height(m.height - 2).Render(
		m.statusViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, eventPanel, statusPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.eventViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
