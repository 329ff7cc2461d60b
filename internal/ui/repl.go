package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var _ tea.Model = (*Model)(nil)

type replyMsg struct {
	reply Reply
}

// Model is the interactive REPL. Output is printed above the input line so
// it stays in the terminal scrollback after exit.
type Model struct {
	ctx      context.Context
	sess     *Session
	input    textinput.Model
	busy     bool
	cancel   context.CancelFunc
	recall   int
	draft    string
	quitting bool
	exitCode int
}

func New(ctx context.Context, cfg Config) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	sess := NewSession(cfg)
	in := textinput.New()
	in.Prompt = cfg.Theme.Prompt.Render(sess.Prompt())
	in.Placeholder = ":help for commands"
	in.Focus()
	return Model{ctx: ctx, sess: sess, input: in, recall: -1}
}

// ExitCode is the status requested by a return statement.
func (m Model) ExitCode() int { return m.exitCode }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case replyMsg:
		return m.handleReply(typed.reply)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.busy && m.cancel != nil {
			m.cancel()
			return m, nil
		}
		if m.sess.Pending() || m.input.Value() != "" {
			m.sess.Cancel()
			m.input.SetValue("")
			m.refreshPrompt()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlD:
		if m.input.Value() == "" && !m.busy {
			m.quitting = true
			return m, tea.Quit
		}
	}
	if m.busy {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyUp:
		m.step(-1)
		return m, nil
	case tea.KeyDown:
		m.step(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.SetValue("")
	m.recall = -1
	m.draft = ""
	m.busy = true
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	sess := m.sess
	return m, func() tea.Msg {
		defer cancel()
		return replyMsg{reply: sess.Feed(ctx, line)}
	}
}

func (m Model) handleReply(rep Reply) (tea.Model, tea.Cmd) {
	m.busy = false
	m.cancel = nil
	m.refreshPrompt()

	var out []string
	if rep.Echo != "" {
		out = append(out, rep.Echo)
	}
	out = append(out, rep.Lines...)
	var cmds []tea.Cmd
	if len(out) > 0 {
		cmds = append(cmds, tea.Println(strings.Join(out, "\n")))
	}
	if rep.Quit {
		m.quitting = true
		m.exitCode = rep.ExitCode
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Sequence(cmds...)
}

// step moves through recalled lines; -1 is older, 1 is newer. Moving past
// the newest line restores what was being typed.
func (m *Model) step(dir int) {
	lines := m.sess.Recall()
	if len(lines) == 0 {
		return
	}
	if m.recall == -1 {
		if dir > 0 {
			return
		}
		m.draft = m.input.Value()
		m.recall = len(lines)
	}
	next := m.recall + dir
	switch {
	case next < 0:
		next = 0
	case next >= len(lines):
		m.recall = -1
		m.input.SetValue(m.draft)
		m.input.CursorEnd()
		return
	}
	m.recall = next
	m.input.SetValue(lines[next])
	m.input.CursorEnd()
}

func (m *Model) refreshPrompt() {
	m.input.Prompt = m.sess.cfg.Theme.Prompt.Render(m.sess.Prompt())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.busy {
		return m.sess.cfg.Theme.Muted.Render("running… (ctrl+c to cancel)")
	}
	return m.input.View()
}

// Run starts the terminal UI and returns the exit status requested by the
// session.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) (int, error) {
	p := tea.NewProgram(New(ctx, cfg), opts...)
	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	if m, ok := final.(Model); ok {
		return m.ExitCode(), nil
	}
	return 0, nil
}
