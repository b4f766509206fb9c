// Package tui provides the live progress view for bulk operations.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/planweave/planweave/internal/bulk"
	"github.com/planweave/planweave/internal/domain"
)

// pollInterval is how often the view polls the running operation.
const pollInterval = 100 * time.Millisecond

var (
	doneStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00B894"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D63031"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72"))
)

// tickMsg carries one polled snapshot.
type tickMsg domain.ProgressSnapshot

// Model is the bubbletea model for watching one bulk operation.
type Model struct {
	op       *bulk.Operation
	spinner  spinner.Model
	bar      progress.Model
	snapshot domain.ProgressSnapshot
	quitting bool
}

// NewModel creates a progress model for the given operation.
func NewModel(op *bulk.Operation) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		op:      op,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the spinner and the poll loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

// poll reads a snapshot after the poll interval.
func (m Model) poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg(m.op.Progress())
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Detaching the view does not cancel the operation.
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		m.snapshot = domain.ProgressSnapshot(msg)
		if m.snapshot.State.IsTerminal() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

// View renders the progress line.
func (m Model) View() string {
	s := m.snapshot
	status := fmt.Sprintf("%d/%d committed, %d failed", s.Committed, s.Total, s.Failed)

	if m.quitting || s.State.IsTerminal() {
		switch s.State {
		case domain.OpCompleted:
			return doneStyle.Render("✓ completed") + "  " + status + "\n"
		case domain.OpRolledBack:
			return failStyle.Render("✗ rolled back") + "  " + status + "\n"
		case domain.OpPartiallyFailed:
			return failStyle.Render("✗ partially failed") + "  " + status + "\n"
		default:
			return dimStyle.Render("detached") + "  " + status + "\n"
		}
	}

	return fmt.Sprintf("%s %s  %s  %s\n",
		m.spinner.View(),
		m.bar.ViewAs(s.Fraction),
		status,
		dimStyle.Render("(q to detach)"),
	)
}

// Watch runs the progress view until the operation reaches a terminal
// state or the user detaches.
func Watch(op *bulk.Operation) error {
	p := tea.NewProgram(NewModel(op))
	_, err := p.Run()
	return err
}
