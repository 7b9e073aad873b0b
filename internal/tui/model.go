package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

const maxTransitions = 8

// Actions are the operations the watch view can trigger. Nil actions are
// hidden.
type Actions struct {
	Logout func() error
}

// KeyMap defines key bindings for the watch view
type KeyMap struct {
	Quit   key.Binding
	Logout key.Binding
}

// ShortHelp returns the bindings shown in the help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Logout, k.Quit}
}

func newKeyMap(actions Actions) KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Logout: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logout"),
		),
	}
	km.Logout.SetEnabled(actions.Logout != nil)
	return km
}

// WatchModel is the Bubble Tea model of `auth watch`
type WatchModel struct {
	snapshot    session.Snapshot
	transitions []session.Snapshot
	actions     Actions
	notice      string

	spinner  spinner.Model
	keys     KeyMap
	styles   Styles
	width    int
	quitting bool
}

// NewWatchModel creates a watch model showing initial.
func NewWatchModel(initial session.Snapshot, actions Actions, styles Styles) WatchModel {
	return WatchModel{
		snapshot: initial,
		actions:  actions,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Status)),
		keys:     newKeyMap(actions),
		styles:   styles,
	}
}

// Messages

// SnapshotMsg carries a published snapshot into the program
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// ActionResultMsg reports the outcome of a triggered action
type ActionResultMsg struct {
	Action string
	Err    error
}

// Init initializes the TUI model (required by Bubble Tea)
func (m WatchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case SnapshotMsg:
		// notifications can be delivered after a newer snapshot was read
		if msg.Snapshot.Version < m.snapshot.Version {
			return m, nil
		}
		m.snapshot = msg.Snapshot
		if !msg.Snapshot.Busy() {
			m.transitions = append(m.transitions, msg.Snapshot)
			if len(m.transitions) > maxTransitions {
				m.transitions = m.transitions[len(m.transitions)-maxTransitions:]
			}
		}
		return m, nil

	case ActionResultMsg:
		if msg.Err != nil {
			m.notice = m.styles.Error.Render(msg.Action + " failed: " + msg.Err.Error())
		} else {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the TUI (required by Bubble Tea)
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	return m.renderMain()
}

// Snapshot returns the snapshot currently shown.
func (m WatchModel) Snapshot() session.Snapshot {
	return m.snapshot
}

func (m WatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		return m, runAction("logout", m.actions.Logout)
	}

	return m, nil
}

func runAction(name string, fn func() error) tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		return ActionResultMsg{Action: name, Err: fn()}
	}
}
