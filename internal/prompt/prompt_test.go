package prompt

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestIntField_Parse(t *testing.T) {
	f := IntField{Label: "n", Min: 1, Max: 100}

	tests := []struct {
		in      string
		want    int
		wantErr error
		wantMsg string
	}{
		{"1", 1, nil, ""},
		{"100", 100, nil, ""},
		{" 42 ", 42, nil, ""},
		{"007", 7, nil, ""},
		{"abc", 0, ErrNotInteger, "Invalid input. Please enter an integer."},
		{"", 0, ErrNotInteger, "Invalid input. Please enter an integer."},
		{"4.5", 0, ErrNotInteger, "Invalid input. Please enter an integer."},
		{"0", 0, ErrOutOfRange, "Value must be between 1 and 100."},
		{"101", 0, ErrOutOfRange, "Value must be between 1 and 100."},
		{"-3", 0, ErrOutOfRange, "Value must be between 1 and 100."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := f.Parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				if msg := f.Message(err); msg != tt.wantMsg {
					t.Errorf("Message() = %q, want %q", msg, tt.wantMsg)
				}
				if s := err.Error(); s != strings.ToLower(s[:1])+s[1:] || strings.HasSuffix(s, ".") {
					t.Errorf("error %q should be lower-case without trailing punctuation", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntField_Prompt(t *testing.T) {
	if got := CyclesField.Prompt(); got != "Enter total simulation time in clock cycles (100-1000000): " {
		t.Errorf("Prompt() = %q", got)
	}
}

func TestModel_RepromptsUntilValid(t *testing.T) {
	m := NewModel(WorkersField)

	m = typeText(m, "ten")
	m, cmd := press(m, tea.KeyEnter)
	if isQuit(cmd) {
		t.Fatal("non-integer input should not quit")
	}
	if !strings.Contains(m.View(), "Invalid input. Please enter an integer.") {
		t.Errorf("View() missing integer error:\n%s", m.View())
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	m = typeText(m, "500")
	m, cmd = press(m, tea.KeyEnter)
	if isQuit(cmd) {
		t.Fatal("out of range input should not quit")
	}
	if !strings.Contains(m.View(), "Value must be between 1 and 100.") {
		t.Errorf("View() missing range error:\n%s", m.View())
	}

	m = typeText(m, "12")
	m, cmd = press(m, tea.KeyEnter)
	if !isQuit(cmd) {
		t.Fatal("valid input should quit")
	}
	v, ok := m.Value()
	if !ok || v != 12 {
		t.Errorf("Value() = (%d, %v), want (12, true)", v, ok)
	}
	if got := m.View(); got != WorkersField.Prompt()+"12\n" {
		t.Errorf("final View() = %q", got)
	}
}

func TestModel_Cancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := NewModel(WorkersField)
		m, cmd := press(m, key)
		if !isQuit(cmd) {
			t.Errorf("%v should quit", key)
		}
		if !m.Cancelled() {
			t.Errorf("%v should cancel", key)
		}
		if _, ok := m.Value(); ok {
			t.Errorf("%v should not produce a value", key)
		}
	}
}

func TestModel_ViewShowsPrompt(t *testing.T) {
	m := NewModel(WorkersField)
	if !strings.Contains(m.View(), "Enter initial number of workers (1-100):") {
		t.Errorf("View() = %q", m.View())
	}
}
