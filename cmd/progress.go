package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sheetdiff/sheetdiff/cmd/engine"
)

var (
	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Margin(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Margin(0, 2)
)

type columnCheckedMsg struct {
	done  int
	total int
}

type compareFinishedMsg struct{}

type compareModel struct {
	spinner  spinner.Model
	progress progress.Model
	done     int
	total    int
	finished bool
	width    int
}

func newCompareModel() compareModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(60),
	)

	return compareModel{
		spinner:  s,
		progress: prog,
	}
}

func (m compareModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m compareModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.progress.Width = msg.Width - 10
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		model, cmd := m.progress.Update(msg)
		if pm, ok := model.(progress.Model); ok {
			m.progress = pm
		}
		return m, cmd
	case columnCheckedMsg:
		m.done = msg.done
		m.total = msg.total
		if msg.total > 0 {
			return m, m.progress.SetPercent(float64(msg.done) / float64(msg.total))
		}
		return m, nil
	case compareFinishedMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m compareModel) View() string {
	if m.finished {
		return ""
	}

	stage := "Aligning rows..."
	if m.total > 0 {
		stage = fmt.Sprintf("Checking columns: %d/%d", m.done, m.total)
	}

	sections := []string{
		"",
		stageStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), stage)),
		"  " + m.progress.View(),
		"",
		helpStyle.Render("Press Ctrl+C or 'q' to quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// compareWithProgress runs the engine in a goroutine while a
// spinner-and-bar display tracks the per-column progress callback on
// stderr. Stdout stays untouched for the report. Falls back to the
// plain comparison when the terminal refuses the TUI.
func compareWithProgress(ctx context.Context, a, b *engine.Table, opts engine.Options) *engine.Result {
	p := tea.NewProgram(newCompareModel(), tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	results := make(chan *engine.Result, 1)
	go func() {
		engineOpts := opts
		engineOpts.Progress = func(done, total int) {
			p.Send(columnCheckedMsg{done: done, total: total})
		}
		results <- engine.Compare(a, b, engineOpts)

		// Let the final frame render before tearing down.
		time.Sleep(50 * time.Millisecond)
		p.Send(compareFinishedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		logger.Debug(fmt.Sprintf("Progress display unavailable: %v", err))
	}
	return <-results
}
