package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scrapify/internal/shared"
)

var _ tea.Model = (*promptModel)(nil)

// promptModel is a single question. In confirm mode it takes y/n instead of text.
type promptModel struct {
	question string
	confirm  bool
	input    textinput.Model
	help     help.Model
	keys     keyMap

	answer   string
	accepted bool
	aborted  bool
	done     bool
}

func newPromptModel(question string, confirm bool) *promptModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Focus()

	return &promptModel{
		question: question,
		confirm:  confirm,
		input:    input,
		help:     help.New(),
		keys:     newKeyMap(confirm),
	}
}

func (m *promptModel) Init() tea.Cmd {
	if m.confirm {
		return nil
	}
	return textinput.Blink
}

// Update handles key presses; everything else goes to the text input.
func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.quit):
			m.aborted = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.yes):
			m.accepted = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.no):
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.submit):
			m.answer = strings.TrimSpace(m.input.Value())
			m.accepted = m.confirm
			m.done = true
			return m, tea.Quit
		}

		if m.confirm {
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the question, the input and key help. Once answered only the question and answer remain.
func (m *promptModel) View() string {
	var b strings.Builder
	b.WriteString(styles.Title(m.question))

	if m.done {
		switch {
		case m.aborted:
			b.WriteString(" " + styles.Warn("cancelled"))
		case m.confirm && m.accepted:
			b.WriteString(" " + styles.OK("yes"))
		case m.confirm:
			b.WriteString(" " + styles.Err("no"))
		default:
			b.WriteString(" " + m.answer)
		}
		b.WriteString("\n")
		return b.String()
	}

	if m.confirm {
		b.WriteString(" [Y/n]")
	} else {
		b.WriteString("\n" + m.input.View())
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// TeaPrompter asks questions with a bubbletea program.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter creates a [TeaPrompter]. Nil streams use the terminal.
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: out}
}

func (p *TeaPrompter) run(m *promptModel) error {
	var opts []tea.ProgramOption
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if m.aborted {
		return shared.ErrAborted
	}
	return nil
}

// Ask implements [Prompter].
func (p *TeaPrompter) Ask(question string) (string, error) {
	m := newPromptModel(strings.TrimSuffix(question, " "), false)
	if err := p.run(m); err != nil {
		return "", err
	}
	return m.answer, nil
}

// Confirm implements [Prompter]. Enter and y continue; n is a no.
func (p *TeaPrompter) Confirm(question string) (bool, error) {
	m := newPromptModel(question, true)
	if err := p.run(m); err != nil {
		return false, err
	}
	return m.accepted, nil
}
