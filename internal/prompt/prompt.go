// Package prompt asks the user for bounded integers on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Parse errors. The model shows them to the user as Message text.
var (
	ErrNotInteger = errors.New("not an integer")
	ErrOutOfRange = errors.New("out of range")
)

// IntField describes a single integer question.
type IntField struct {
	Label string
	Min   int
	Max   int
}

// WorkersField and CyclesField are the questions asked before a run.
var (
	WorkersField = IntField{Label: "Enter initial number of workers", Min: 1, Max: 100}
	CyclesField  = IntField{Label: "Enter total simulation time in clock cycles", Min: 100, Max: 1000000}
)

// Prompt returns the label with its range, e.g. "Enter x (1-100): ".
func (f IntField) Prompt() string {
	return fmt.Sprintf("%s (%d-%d): ", f.Label, f.Min, f.Max)
}

// Parse validates text as an integer within [f.Min, f.Max].
func (f IntField) Parse(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, ErrNotInteger
	}
	if n < f.Min || n > f.Max {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, n, f.Min, f.Max)
	}
	return n, nil
}

// Message returns the text shown to the user for a Parse error.
func (f IntField) Message(err error) string {
	switch {
	case errors.Is(err, ErrNotInteger):
		return "Invalid input. Please enter an integer."
	case errors.Is(err, ErrOutOfRange):
		return fmt.Sprintf("Value must be between %d and %d.", f.Min, f.Max)
	default:
		return err.Error()
	}
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

// Model is the Bubbletea model for one integer question. Invalid answers
// clear the input and show the reason; the question repeats until a valid
// value is entered or the user cancels.
type Model struct {
	field     IntField
	input     textinput.Model
	value     int
	errorMsg  string
	done      bool
	cancelled bool
}

// NewModel creates a focused prompt for field.
func NewModel(field IntField) Model {
	ti := textinput.New()
	ti.Prompt = field.Prompt()
	ti.CharLimit = 12
	ti.Width = 12
	ti.Focus()

	return Model{field: field, input: ti}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			n, err := m.field.Parse(m.input.Value())
			if err != nil {
				m.errorMsg = m.field.Message(err)
				m.input.SetValue("")
				return m, nil
			}
			m.value = n
			m.errorMsg = ""
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.done {
		return m.field.Prompt() + strconv.Itoa(m.value) + "\n"
	}
	if m.cancelled {
		return ""
	}

	var b strings.Builder
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render(m.errorMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

// Value returns the accepted value and whether one was entered.
func (m Model) Value() (int, bool) {
	return m.value, m.done
}

// Cancelled reports whether the user aborted the prompt.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// AskInt runs a prompt program for field on in/out and returns the accepted
// value.
func AskInt(in io.Reader, out io.Writer, field IntField) (int, error) {
	p := tea.NewProgram(NewModel(field), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.Cancelled() {
		return 0, ErrCancelled
	}
	v, done := m.Value()
	if !done {
		return 0, ErrCancelled
	}
	return v, nil
}
