package ui

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrInterrupted is returned when the user cancels a spinner with ctrl+c
var ErrInterrupted = errors.New("interrupted")

// taskDoneMsg carries the result of the task behind a spinner
type taskDoneMsg struct {
	err error
}

// SpinnerModel is a Bubble Tea model that shows a spinner until its task
// returns, then exits.
type SpinnerModel struct {
	label   string
	spinner spinner.Model
	task    func() error
	cancel  context.CancelFunc
	err     error
	done    bool
}

// NewSpinnerModel creates a model that runs task behind a spinner. cancel,
// if not nil, is called when the user interrupts.
func NewSpinnerModel(label string, task func() error, cancel context.CancelFunc) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return SpinnerModel{label: label, spinner: s, task: task, cancel: cancel}
}

// Init implements tea.Model
func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m SpinnerModel) run() tea.Msg {
	return taskDoneMsg{err: m.task()}
}

// Update implements tea.Model
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.done = true
			m.err = ErrInterrupted
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spinner.View() + " " + SpinnerLabelStyle.Render(m.label) + "\n"
}

// Err returns the task's error once the model has finished
func (m SpinnerModel) Err() error {
	return m.err
}

// RunWithSpinner runs task while showing a spinner on out. When out is not a
// terminal the task simply runs on the calling goroutine.
//
// On a terminal the task runs on its own goroutine while Bubble Tea owns the
// calling one. Ctrl+C cancels the context passed to task and returns
// ErrInterrupted at once; task is expected to release its resources when
// its context is done.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, task func(ctx context.Context) error) error {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return task(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewSpinnerModel(label, func() error { return task(ctx) }, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
	if err != nil {
		return err
	}
	return final.(SpinnerModel).Err()
}
