package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/service"
	"demochat/chat-widget/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

var (
	appStyle    = lipgloss.NewStyle().Padding(1, 2)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3")).PaddingBottom(1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A")).PaddingTop(1)
	inputStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3F3F46"))
	darkBubble  = lipgloss.NewStyle().Background(lipgloss.Color("#4B5563")).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	lightBubble = lipgloss.NewStyle().Background(lipgloss.Color("#D1D5DB")).Foreground(lipgloss.Color("#000000")).Padding(0, 1)
	timeStyle   = lipgloss.NewStyle().Faint(true)
	avatarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	alertStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E11D48")).
			Padding(0, 1)
)

type insertMsg struct{ message models.Message }

type chatModel struct {
	ctx        context.Context
	svc        *service.ChatService
	avatars    *view.AvatarCache
	logger     *logrus.Logger
	inserts    <-chan models.Message
	input      textinput.Model
	viewport   viewport.Model
	rows       []view.Row
	cursor     int
	confirming bool
	ready      bool
	width      int
}

const insertBuffer = 64

// Run shows the chat widget until the user quits. When the store pushes
// inserts the subscription lives exactly as long as the program.
func Run(ctx context.Context, svc *service.ChatService, avatars *view.AvatarCache, logger *logrus.Logger) error {
	svc.Refresh(ctx)

	inserts, stop := subscribe(ctx, svc, logger)
	defer stop()

	p := tea.NewProgram(newChatModel(ctx, svc, avatars, logger, inserts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// subscribe forwards pushed rows into a buffered channel. A nil channel means
// the store has no push. stop unblocks a forwarder stuck on a full buffer
// before it closes the subscription.
func subscribe(ctx context.Context, svc *service.ChatService, logger *logrus.Logger) (<-chan models.Message, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := func() {
		cancel()
		if err := svc.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close subscription")
		}
	}

	inserts := make(chan models.Message, insertBuffer)
	err := svc.Subscribe(ctx, func(m models.Message) {
		select {
		case inserts <- m:
		case <-ctx.Done():
		}
	})
	switch {
	case errors.Is(err, service.ErrNotSubscribable):
		return nil, stop
	case err != nil:
		logger.WithError(err).Warn("Realtime updates unavailable")
		return nil, stop
	}
	return inserts, stop
}

func newChatModel(ctx context.Context, svc *service.ChatService, avatars *view.AvatarCache, logger *logrus.Logger, inserts <-chan models.Message) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Enter your message"
	ti.Prompt = "│ "
	ti.CharLimit = 1000
	ti.Focus()

	m := chatModel{
		ctx:     ctx,
		svc:     svc,
		avatars: avatars,
		logger:  logger,
		inserts: inserts,
		input:   ti,
	}
	m.rebuild()
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForInsert(m.inserts))
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		width, height := msg.Width-6, msg.Height-14
		if height < 3 {
			height = 3
		}
		if !m.ready {
			m.viewport = viewport.New(width, height)
			m.ready = true
		} else {
			m.viewport.Width = width
			m.viewport.Height = height
		}
		m.input.Width = width - 4
		m.refreshViewport()
		return m, nil

	case insertMsg:
		if m.svc.ApplyInsert(msg.message) {
			m.rebuild()
		}
		return m, waitForInsert(m.inserts)

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Send):
			if _, ok := m.svc.Send(m.ctx, m.input.Value()); ok {
				m.cursor = 0
				m.svc.Hover("")
				m.rebuild()
				m.viewport.GotoTop()
			}
			m.input.Reset()
			return m, nil
		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.moveCursor(1)
			return m, nil
		case key.Matches(msg, keys.Delete):
			if m.hoveredRow().ShowDelete {
				m.confirming = true
			}
			return m, nil
		case key.Matches(msg, keys.SwitchUser):
			m.svc.ToggleUser()
			m.rebuild()
			return m, nil
		case key.Matches(msg, keys.Refresh):
			m.svc.Refresh(m.ctx)
			m.rebuild()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.confirming = false
		if err := m.svc.Delete(m.ctx, m.svc.HoveredID()); err != nil {
			m.logger.WithError(err).Debug("Delete refused")
		}
		m.rebuild()
	case key.Matches(msg, keys.Cancel):
		m.confirming = false
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

// moveCursor walks the list; the row under the cursor is the hovered one.
func (m *chatModel) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	if m.svc.HoveredID() == "" {
		m.cursor = 0
	} else {
		m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	}
	m.svc.Hover(m.rows[m.cursor].Message.ID)
	m.rebuild()
}

func (m chatModel) hoveredRow() view.Row {
	for _, row := range m.rows {
		if row.Message.ID == m.svc.HoveredID() {
			return row
		}
	}
	return view.Row{}
}

func (m *chatModel) rebuild() {
	m.rows = view.Build(m.svc.Messages(), m.svc.ActiveUser().ID, m.svc.HoveredID(), m.avatars)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.refreshViewport()
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())
}

func (m chatModel) renderRows() string {
	if len(m.rows) == 0 {
		return timeStyle.Render("No messages yet.")
	}
	width := m.viewport.Width
	bubbleWidth := max(width*3/4, 10)

	names := make(map[string]string, 2)
	for _, u := range m.svc.Participants() {
		names[u.ID] = initials(u)
	}

	var b strings.Builder
	for _, row := range m.rows {
		bubble := lightBubble
		if row.Tint == view.TintDark {
			bubble = darkBubble
		}
		content := row.Message.Content
		if row.ShowDelete {
			content = "🗑 " + content
		}
		body := bubble.MaxWidth(bubbleWidth).Render(content)
		if row.Avatar != "" {
			badge, ok := names[row.Message.SenderID]
			if !ok {
				badge = "??"
			}
			body = lipgloss.JoinHorizontal(lipgloss.Bottom, avatarStyle.Render(badge)+" ", body)
		}

		pos := lipgloss.Left
		if row.Align == view.AlignRight {
			pos = lipgloss.Right
		}
		block := lipgloss.JoinVertical(pos, timeStyle.Render(row.Time), body)
		if row.Message.ID == m.svc.HoveredID() {
			block = lipgloss.JoinHorizontal(lipgloss.Bottom, cursorStyle.Render("▸ "), block)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, pos, block))
		b.WriteString("\n")
	}
	return b.String()
}

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	active := m.svc.ActiveUser()
	sections := []string{
		titleStyle.Render("Welcome"),
		nameStyle.Render(active.DisplayName()),
		inputStyle.Render(m.input.View()),
		listStyle.Render(m.viewport.View()),
	}
	if m.confirming {
		sections = append(sections, alertStyle.Render(
			view.DeleteConfirmTitle+"\n"+view.DeleteConfirmMessage+"  (y/n)"))
	}
	sections = append(sections, statusStyle.Render(fmt.Sprintf(
		"Active User: %s • enter send • ↑/↓ select • ctrl+d delete • ctrl+t switch user • esc quit",
		active.FirstName)))

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// waitForInsert turns the next pushed row into an insertMsg. A nil channel
// means the store has no push and nothing is scheduled.
func waitForInsert(inserts <-chan models.Message) tea.Cmd {
	if inserts == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-inserts
		if !ok {
			return nil
		}
		return insertMsg{message: msg}
	}
}

func initials(u models.User) string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r := []rune(part); len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return strings.ToUpper(b.String())
}
