package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daytasks/internal/transport"
	"github.com/sandeepkv93/daytasks/internal/update"
	"github.com/sandeepkv93/daytasks/internal/views"
)

type keyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Press key.Binding
	Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab/↓", "next button")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab/↑", "previous button")),
		Press: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "press button or send text")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Press, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// ScreenMsg carries the controller's answer back into the update loop.
type ScreenMsg struct {
	Screen views.Screen
	Err    error
}

// Model is a one-user chat with the controller in the terminal.
type Model struct {
	ctx       context.Context
	handler   transport.Handler
	sessionID string
	userID    string

	Screen   views.Screen
	Selected int
	Status   string
	Quitting bool

	input textinput.Model
	help  help.Model
	keys  keyMap
}

func NewModel(ctx context.Context, handler transport.Handler, user string) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type a task or /help"
	in.CharLimit = 512
	in.Width = 54
	in.Focus()

	return Model{
		ctx:       ctx,
		handler:   handler,
		sessionID: "console:" + user,
		userID:    user,
		input:     in,
		help:      help.New(),
		keys:      defaultKeys(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.send("/start"))
}

func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		s, err := transport.Message(m.ctx, m.handler, m.sessionID, m.userID, text)
		return ScreenMsg{Screen: s, Err: err}
	}
}

func (m Model) press(payload string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.handler.OnCallback(m.ctx, m.sessionID, m.userID, payload)
		return ScreenMsg{Screen: s, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case ScreenMsg:
		switch {
		case errors.Is(typed.Err, update.ErrIgnored):
			m.Status = "nothing to do here; use the buttons or /help"
		case typed.Err != nil:
			m.Status = fmt.Sprintf("error: %v", typed.Err)
		default:
			m.Screen = typed.Screen
			m.Selected = 0
			m.Status = ""
		}
		return m, nil
	case tea.KeyMsg:
		buttons := m.Screen.Flatten()
		switch {
		case key.Matches(typed, m.keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(typed, m.keys.Next):
			if len(buttons) > 0 {
				m.Selected = (m.Selected + 1) % len(buttons)
			}
			return m, nil
		case key.Matches(typed, m.keys.Prev):
			if len(buttons) > 0 {
				m.Selected = (m.Selected - 1 + len(buttons)) % len(buttons)
			}
			return m, nil
		case key.Matches(typed, m.keys.Press):
			text := m.input.Value()
			if strings.TrimSpace(text) != "" {
				m.input.Reset()
				return m, m.send(text)
			}
			if m.Selected >= 0 && m.Selected < len(buttons) {
				return m, m.press(buttons[m.Selected].Payload)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	return views.RenderConsole(views.ConsoleData{
		Header:     "daytasks · " + m.userID,
		Screen:     m.Screen,
		Selected:   m.Selected,
		InputView:  m.input.View(),
		StatusLine: m.Status,
		Footer:     m.help.View(m.keys),
	})
}

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, handler transport.Handler, user string) error {
	program := tea.NewProgram(NewModel(ctx, handler, user), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
