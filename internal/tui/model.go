package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jpalmerr/habitboard/internal/habit"
)

const defaultTitle = "Habit Tracker"

// Tracker is the habit store the terminal UI drives.
type Tracker interface {
	Habits() habit.Collection
	AddHabit(ctx context.Context, title string) (habit.Habit, error)
	ToggleCompletion(ctx context.Context, id, day string) (habit.Habit, bool, error)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// Styles holds the lipgloss styles used by the model.
type Styles struct {
	Title  lipgloss.Style
	Done   lipgloss.Style
	Todo   lipgloss.Style
	Cursor lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Done:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		Todo:   lipgloss.NewStyle(),
		Cursor: lipgloss.NewStyle().Bold(true),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#B00020")),
		Help:   lipgloss.NewStyle().Faint(true),
	}
}

// habitAddedMsg reports a successful add.
type habitAddedMsg struct{ habit habit.Habit }

// habitToggledMsg reports a toggle; found is false for an unknown id.
type habitToggledMsg struct {
	habit habit.Habit
	found bool
}

// errMsg reports a failed add or toggle.
type errMsg struct{ err error }

// Model is the single-screen habit list: an input for new titles above a
// list of habits marked done or not done for today.
type Model struct {
	ctx     context.Context
	tracker Tracker
	today   func() string
	title   string
	styles  Styles

	input  textinput.Model
	habits habit.Collection
	cursor int
	focus  focusArea

	status   string
	isError  bool
	quitting bool
}

// New creates a model over tracker. today returns the current YYYY-MM-DD day.
func New(ctx context.Context, tracker Tracker, today func() string, title string) Model {
	if title == "" {
		title = defaultTitle
	}

	ti := textinput.New()
	ti.Placeholder = "New habit"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Focus()

	return Model{
		ctx:     ctx,
		tracker: tracker,
		today:   today,
		title:   title,
		styles:  DefaultStyles(),
		input:   ti,
		habits:  tracker.Habits(),
		focus:   focusInput,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case habitAddedMsg:
		m.habits = m.tracker.Habits()
		m.cursor = len(m.habits) - 1
		m.input.SetValue("")
		m.setStatus(fmt.Sprintf("Added %q", msg.habit.Title), false)
		return m, nil

	case habitToggledMsg:
		m.habits = m.tracker.Habits()
		if !msg.found {
			m.setStatus("Habit no longer exists", true)
		} else {
			m.status = ""
		}
		return m, nil

	case errMsg:
		var verr *habit.ValidationError
		if errors.As(msg.err, &verr) {
			m.setStatus(verr.Error(), true)
		} else {
			m.setStatus("Could not save: "+msg.err.Error(), true)
		}
		return m, nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab:
		m.switchFocus()
		return m, nil
	}

	if m.focus == focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.addHabit(m.input.Value())
		case tea.KeyEsc:
			m.switchFocus()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.habits)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor >= 0 && m.cursor < len(m.habits) {
			return m, m.toggleHabit(m.habits[m.cursor].ID)
		}
	case "a", "i":
		m.switchFocus()
	}
	return m, nil
}

func (m *Model) switchFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.isError = isError
}

func (m Model) addHabit(title string) tea.Cmd {
	return func() tea.Msg {
		h, err := m.tracker.AddHabit(m.ctx, title)
		if err != nil {
			return errMsg{err: err}
		}
		return habitAddedMsg{habit: h}
	}
}

func (m Model) toggleHabit(id string) tea.Cmd {
	day := m.today()
	return func() tea.Msg {
		h, found, err := m.tracker.ToggleCompletion(m.ctx, id, day)
		if err != nil {
			return errMsg{err: err}
		}
		return habitToggledMsg{habit: h, found: found}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	today := m.today()
	if len(m.habits) == 0 {
		sb.WriteString(m.styles.Help.Render("No habits yet."))
		sb.WriteString("\n")
	}
	for i, h := range m.habits {
		pointer := "  "
		if m.focus == focusList && i == m.cursor {
			pointer = m.styles.Cursor.Render("› ")
		}
		if h.DoneOn(today) {
			sb.WriteString(pointer + m.styles.Done.Render("✅  "+h.Title))
		} else {
			sb.WriteString(pointer + m.styles.Todo.Render("⬜  "+h.Title))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if m.status != "" {
		if m.isError {
			sb.WriteString(m.styles.Error.Render(m.status))
		} else {
			sb.WriteString(m.status)
		}
		sb.WriteString("\n")
	}

	if m.focus == focusInput {
		sb.WriteString(m.styles.Help.Render("enter: add • tab: list • ctrl+c: quit"))
	} else {
		sb.WriteString(m.styles.Help.Render("↑/↓: move • space: toggle today • tab: new habit • q: quit"))
	}
	return sb.String()
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, tracker Tracker, today func() string, title string) error {
	p := tea.NewProgram(New(ctx, tracker, today, title), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
