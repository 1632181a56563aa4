// voyagent-tui is the terminal front-end of the travel assistant. It runs a
// session in text or voice mode; switching modes discards the session and
// builds a fresh one, so no state leaks between them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	session "github.com/voyagent/voyagent-core/core"
	"github.com/voyagent/voyagent-core/core/audio/miniaudio"
	"github.com/voyagent/voyagent-core/core/backend/travelchat"
	"github.com/voyagent/voyagent-core/core/messages"
	"github.com/voyagent/voyagent-core/core/synthesis"
	synthesisdeepgram "github.com/voyagent/voyagent-core/core/synthesis/deepgram"
	transcriptiondeepgram "github.com/voyagent/voyagent-core/core/transcription/deepgram"
	"github.com/voyagent/voyagent-core/core/travel"
)

const defaultGreeting = "Hi! I'm your travel assistant. Where would you like to go?"

type chatMode int

const (
	modeText chatMode = iota
	modeVoice
)

func (m chatMode) String() string {
	if m == modeVoice {
		return "voice"
	}
	return "text"
}

// Session callbacks arrive on collaborator goroutines; they are bridged into
// the program loop through this channel.
type transcriptChangedMsg struct{}

type statusMsg string

type voiceStateMsg struct{ from, to string }

type recordingMsg bool

type playbackMsg struct {
	sourceID string
	playing  bool
}

type turnFailedMsg struct {
	state string
	err   string
}

type uiTheme struct {
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	user        lipgloss.Style
	assistant   lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	generating  lipgloss.Style
	failed      lipgloss.Style
	muted       lipgloss.Style
	selected    lipgloss.Style
	inputPanel  lipgloss.Style
}

func newTheme() uiTheme {
	teal := lipgloss.Color("#2dd4bf")
	amber := lipgloss.Color("#fbbf24")
	rose := lipgloss.Color("#fb7185")
	text := lipgloss.Color("#e2e8f0")
	muted := lipgloss.Color("#64748b")
	panelBg := lipgloss.Color("#1e293b")

	return uiTheme{
		header: lipgloss.NewStyle().
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		tabActive: lipgloss.NewStyle().
			Background(teal).
			Foreground(lipgloss.Color("#042f2e")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(teal).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(rose).Bold(true),
		user:        lipgloss.NewStyle().Foreground(amber).Bold(true),
		assistant:   lipgloss.NewStyle().Foreground(teal).Bold(true),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(teal).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(amber).Bold(true),
		generating: lipgloss.NewStyle().Foreground(muted).Italic(true),
		failed:     lipgloss.NewStyle().Foreground(rose),
		muted:      lipgloss.NewStyle().Foreground(muted),
		selected:   lipgloss.NewStyle().Foreground(amber).Bold(true),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 1),
	}
}

type model struct {
	mode chatMode

	chat       *session.Session
	chatCancel context.CancelFunc
	events     chan tea.Msg

	transcript []messages.Message
	favorites  map[string]struct{}
	selected   int

	recording  bool
	playingID  string
	voiceState string
	statusLine string
	statusErr  bool

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model
	theme    uiTheme
}

func newModel(startVoice bool) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Ask about a destination, e.g. plan 3 days in Tokyo"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2dd4bf"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true

	mode := modeText
	if startVoice {
		mode = modeVoice
		input.Blur()
	}

	m := model{
		mode:       mode,
		events:     make(chan tea.Msg, 64),
		favorites:  map[string]struct{}{},
		voiceState: string(session.VoiceStateIdle),
		statusLine: "starting...",
		input:      input,
		timeline:   timeline,
		spinner:    sp,
		theme:      newTheme(),
	}
	m.startSession()
	return m
}

// startSession builds a fresh session for the current mode. Any previous
// session was already closed by the caller.
func (m *model) startSession() {
	options := []session.SessionOption{session.WithGreeting(defaultGreeting)}

	backendClient, err := travelchat.NewClient()
	if err != nil {
		m.statusLine = fmt.Sprintf("backend unavailable: %v", err)
		m.statusErr = true
	} else {
		options = append(options, session.WithBackendClient(backendClient))
	}

	if m.mode == modeVoice {
		audioClient, err := miniaudio.NewClient()
		if err != nil {
			m.statusLine = fmt.Sprintf("audio unavailable: %v", err)
			m.statusErr = true
		} else {
			options = append(options,
				session.WithCaptureClient(audioClient),
				session.WithTranscriber(transcriptiondeepgram.NewClient()),
			)
			if synthesisClient, err := synthesisdeepgram.NewSynthesisClient(synthesisdeepgram.VoiceAsteria); err == nil {
				options = append(options, session.WithSpeaker(synthesis.NewPlayer(synthesisClient, audioClient)))
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.chatCancel = cancel
	m.chat = session.NewSession(options...)

	push := func(msg tea.Msg) {
		select {
		case m.events <- msg:
		default:
		}
	}

	m.chat.Listen(ctx,
		session.WithUserMessageCallback(func(string, string) { push(transcriptChangedMsg{}) }),
		session.WithResponseStartedCallback(func(string) { push(transcriptChangedMsg{}) }),
		session.WithResponseCallback(func(string) { push(transcriptChangedMsg{}) }),
		session.WithResponseEndCallback(func() { push(transcriptChangedMsg{}) }),
		session.WithResponseAbortedCallback(func(reason string) {
			push(transcriptChangedMsg{})
			push(statusMsg("response interrupted: " + reason))
		}),
		session.WithToolPartUpdatedCallback(func(string, string, string) { push(transcriptChangedMsg{}) }),
		session.WithRecordingStateChangedCallback(func(isRecording bool) { push(recordingMsg(isRecording)) }),
		session.WithPlaybackStateChangedCallback(func(sourceID string, isPlaying bool) {
			push(playbackMsg{sourceID: sourceID, playing: isPlaying})
		}),
		session.WithVoiceStateChangedCallback(func(from, to string) { push(voiceStateMsg{from: from, to: to}) }),
		session.WithVoiceTurnFailedCallback(func(state, errDescriptor string) {
			push(turnFailedMsg{state: state, err: errDescriptor})
		}),
	)

	m.transcript = m.chat.Transcript()
	m.selected = len(m.transcript) - 1
	if !m.statusErr {
		m.statusLine = fmt.Sprintf("ready · %s mode", m.mode)
	}
}

func (m *model) switchMode() {
	m.chatCancel()
	m.chat.Close()

	if m.mode == modeText {
		m.mode = modeVoice
		m.input.Blur()
	} else {
		m.mode = modeText
		m.input.Focus()
	}

	m.recording = false
	m.playingID = ""
	m.voiceState = string(session.VoiceStateIdle)
	m.statusErr = false
	m.startSession()
	m.renderTimeline()
}

func waitEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitEvent(m.events), textinput.Blink)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case transcriptChangedMsg:
		wasAtEnd := m.selected >= len(m.transcript)-1
		m.transcript = m.chat.Transcript()
		if wasAtEnd {
			m.selected = len(m.transcript) - 1
		}
		m.renderTimeline()
		m.timeline.GotoBottom()
		cmds = append(cmds, waitEvent(m.events))
	case statusMsg:
		m.statusLine = string(msg)
		m.statusErr = false
		cmds = append(cmds, waitEvent(m.events))
	case voiceStateMsg:
		m.voiceState = msg.to
		cmds = append(cmds, waitEvent(m.events))
	case recordingMsg:
		m.recording = bool(msg)
		if m.recording {
			m.statusLine = "recording... press r to stop"
		} else {
			m.statusLine = "transcribing..."
		}
		m.statusErr = false
		cmds = append(cmds, waitEvent(m.events))
	case playbackMsg:
		if msg.playing {
			m.playingID = msg.sourceID
			m.statusLine = "playing"
		} else {
			if m.playingID == msg.sourceID {
				m.playingID = ""
			}
			m.statusLine = fmt.Sprintf("ready · %s mode", m.mode)
		}
		m.statusErr = false
		m.renderTimeline()
		cmds = append(cmds, waitEvent(m.events))
	case turnFailedMsg:
		m.statusLine = fmt.Sprintf("voice turn failed in %s: %s · press esc to reset", msg.state, msg.err)
		m.statusErr = true
		cmds = append(cmds, waitEvent(m.events))
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderTimeline()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.chat.LiveResponsePending() {
			m.renderTimeline()
		}
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		if m.mode == modeText {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.chatCancel()
		return tea.Quit, true
	case "tab":
		m.switchMode()
		return nil, true
	case "esc":
		m.chat.Reset()
		m.statusLine = fmt.Sprintf("ready · %s mode", m.mode)
		m.statusErr = false
		return nil, true
	case "enter":
		if m.mode != modeText {
			return nil, true
		}
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return nil, true
		}
		if err := m.chat.SendPrompt(prompt); err != nil {
			m.statusLine = err.Error()
			m.statusErr = true
			return nil, true
		}
		m.input.Reset()
		m.statusLine = "thinking..."
		m.statusErr = false
		return nil, true
	}

	// Letter keys belong to the input while typing.
	if m.mode == modeText {
		return nil, false
	}

	switch msg.String() {
	case "q":
		m.chatCancel()
		return tea.Quit, true
	case "r":
		var err error
		if m.recording {
			err = m.chat.StopRecording()
		} else {
			err = m.chat.StartRecording()
		}
		if err != nil {
			m.statusLine = err.Error()
			m.statusErr = true
		}
		return nil, true
	case "m":
		m.chat.SetMuted(!m.chat.IsMuted())
		if m.chat.IsMuted() {
			m.statusLine = "muted"
		} else {
			m.statusLine = "unmuted"
		}
		m.statusErr = false
		return nil, true
	case "p":
		if message, ok := m.selectedMessage(); ok {
			if _, err := m.chat.TogglePlayback(message.ID); err != nil {
				m.statusLine = err.Error()
				m.statusErr = true
			}
		}
		return nil, true
	case "f":
		if message, ok := m.selectedMessage(); ok {
			if _, marked := m.favorites[message.ID]; marked {
				delete(m.favorites, message.ID)
			} else {
				m.favorites[message.ID] = struct{}{}
			}
			m.renderTimeline()
		}
		return nil, true
	case "up", "k":
		if m.selected > 0 {
			m.selected--
			m.renderTimeline()
		}
		return nil, true
	case "down", "j":
		if m.selected < len(m.transcript)-1 {
			m.selected++
			m.renderTimeline()
		}
		return nil, true
	}
	return nil, true
}

func (m *model) selectedMessage() (messages.Message, bool) {
	if m.selected < 0 || m.selected >= len(m.transcript) {
		return messages.Message{}, false
	}
	return m.transcript[m.selected], true
}

func (m *model) resize() {
	headerHeight := 3
	footerHeight := 3
	inputHeight := 3
	m.timeline.Width = m.width
	m.timeline.Height = max(m.height-headerHeight-footerHeight-inputHeight, 3)
	m.input.Width = max(m.width-8, 20)
}

func (m *model) renderTimeline() {
	width := max(m.timeline.Width-4, 24)

	var sb strings.Builder
	for i, message := range m.transcript {
		sb.WriteString(m.renderMessage(i, message, width))
		sb.WriteString("\n")
	}
	m.timeline.SetContent(sb.String())
}

func (m *model) renderMessage(index int, message messages.Message, width int) string {
	var sb strings.Builder

	marker := "  "
	if m.mode == modeVoice && index == m.selected {
		marker = m.theme.selected.Render("▸ ")
	}

	label := m.theme.assistant.Render("assistant")
	if message.Role == messages.RoleUser {
		label = m.theme.user.Render("you")
	}
	if _, marked := m.favorites[message.ID]; marked {
		label += m.theme.selected.Render(" ♥")
	}
	if m.playingID == message.ID {
		label += m.theme.status.Render(" ♪")
	}
	sb.WriteString(marker + label + "\n")

	for _, part := range message.Parts {
		switch part := part.(type) {
		case *messages.TextPart:
			if part.Text != "" {
				sb.WriteString(wordwrap.String(part.Text, width) + "\n")
			}
		case *messages.ToolPart:
			sb.WriteString(m.renderToolPart(part, width) + "\n")
		}
	}

	return sb.String()
}

func (m *model) renderToolPart(part *messages.ToolPart, width int) string {
	switch part.State {
	case messages.ToolStateInputStreaming, messages.ToolStateInputAvailable:
		return m.theme.generating.Render(fmt.Sprintf("%s Generating %s ...", m.spinner.View(), part.Tool))
	case messages.ToolStateFailed:
		reason := part.Error
		if reason == "" {
			reason = "failed"
		}
		return m.theme.failed.Render(fmt.Sprintf("✗ %s: %s", part.Tool, reason))
	}

	view, err := travel.Project(part)
	if err != nil {
		log.Printf("Failed to project %s payload: %v", part.Tool, err)
		return m.theme.failed.Render(fmt.Sprintf("✗ %s: malformed result", part.Tool))
	}
	return m.renderView(view, width)
}

func (m *model) renderView(view travel.View, width int) string {
	var sb strings.Builder
	switch view := view.(type) {
	case *travel.ItineraryView:
		sb.WriteString(m.theme.panelTitle.Render(fmt.Sprintf("Itinerary · %s · %d days", view.Destination, view.Duration)) + "\n")
		if view.TotalEstimatedCost != "" {
			sb.WriteString(m.theme.muted.Render("estimated cost "+view.TotalEstimatedCost) + "\n")
		}
		for _, day := range view.Days {
			sb.WriteString(fmt.Sprintf("Day %d: %s\n", day.Day, day.Title))
			for _, activity := range day.Activities {
				line := fmt.Sprintf("  %s  %s", activity.Time, activity.Activity)
				if activity.Location != "" {
					line += " @ " + activity.Location
				}
				sb.WriteString(wordwrap.String(line, width) + "\n")
			}
		}
	case *travel.AccommodationsView:
		sb.WriteString(m.theme.panelTitle.Render("Hotels · "+view.Destination) + "\n")
		for _, hotel := range view.Hotels {
			sb.WriteString(fmt.Sprintf("%s %s · $%.0f/night\n", hotel.Name, stars(hotel.Rating), hotel.PricePerNight))
			if hotel.Location != "" {
				sb.WriteString(m.theme.muted.Render("  "+hotel.Location) + "\n")
			}
			if len(hotel.Pros) > 0 {
				sb.WriteString(wordwrap.String("  + "+strings.Join(hotel.Pros, ", "), width) + "\n")
			}
			if len(hotel.Cons) > 0 {
				sb.WriteString(wordwrap.String("  - "+strings.Join(hotel.Cons, ", "), width) + "\n")
			}
		}
	case *travel.RestaurantsView:
		sb.WriteString(m.theme.panelTitle.Render(fmt.Sprintf("Restaurants · %s · %s", view.Destination, view.Cuisine)) + "\n")
		for _, restaurant := range view.Restaurants.Restaurants {
			sb.WriteString(fmt.Sprintf("%s %s · %s · %s\n", restaurant.Name, stars(restaurant.Rating), restaurant.PriceRange, restaurant.Hours))
			if restaurant.Description != "" {
				sb.WriteString(wordwrap.String("  "+restaurant.Description, width) + "\n")
			}
		}
	case *travel.LocalInfoView:
		sb.WriteString(m.theme.panelTitle.Render("Local info · "+view.Destination) + "\n")
		sb.WriteString(wordwrap.String("Transport: "+strings.Join(view.Transportation.PublicTransport, ", "), width) + "\n")
		sb.WriteString(fmt.Sprintf("Emergency: police %s · medical %s\n", view.Safety.Emergency.Police, view.Safety.Emergency.Medical))
		for _, tip := range view.PracticalTips {
			sb.WriteString(wordwrap.String("• "+tip, width) + "\n")
		}
	}
	return m.theme.panel.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}

func stars(rating float64) string {
	count := travel.Stars(rating)
	return strings.Repeat("★", count) + strings.Repeat("☆", 5-count)
}

func (m model) View() string {
	textTab := m.theme.tabInactive.Render("text")
	voiceTab := m.theme.tabInactive.Render("voice")
	if m.mode == modeText {
		textTab = m.theme.tabActive.Render("text")
	} else {
		voiceTab = m.theme.tabActive.Render("voice")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, "voyagent ", textTab, " ", voiceTab)
	if m.mode == modeVoice {
		headerLine += m.theme.muted.Render("  voice: " + m.voiceState)
		if m.chat.IsMuted() {
			headerLine += m.theme.muted.Render(" · muted")
		}
	}
	if m.chat.LiveResponsePending() {
		headerLine += "  " + m.spinner.View()
	}
	header := m.theme.header.Width(max(m.width-2, 20)).Render(headerLine)

	statusStyle := m.theme.status
	if m.statusErr {
		statusStyle = m.theme.errorStatus
	}
	help := "tab mode · ctrl+c quit"
	if m.mode == modeVoice {
		help = "r record · m mute · p play · f fav · ↑/↓ select · esc reset · tab mode · q quit"
	}
	footer := m.theme.footer.Width(max(m.width-2, 20)).Render(
		statusStyle.Render(m.statusLine) + "  " + m.theme.muted.Render(help))

	sections := []string{header, m.timeline.View()}
	if m.mode == modeText {
		sections = append(sections, m.theme.inputPanel.Width(max(m.width-2, 20)).Render(m.input.View()))
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func main() {
	voice := flag.Bool("voice", false, "start in voice mode")
	flag.Parse()

	p := tea.NewProgram(newModel(*voice), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatalf("failed to run program: %v", err)
	}
}
