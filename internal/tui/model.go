package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cpv/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseCopying
	PhaseDone
	PhaseError
)

// Messages for the TUI
type (
	ScanProgressMsg struct {
		Operations int
		Bytes      int64
	}
	PlanReadyMsg struct {
		Plan domain.CopyPlan
	}
	ProgressMsg struct {
		Event domain.ProgressEvent
	}
	ResultMsg struct {
		Result domain.OperationResult
	}
	DoneMsg struct {
		Summary domain.CopySummary
	}
	ErrorMsg struct {
		Err error
	}
)

// maxNotices bounds the list of failed (and, when verbose, skipped) entries
// shown while copying.
const maxNotices = 5

// Config for the TUI
type Config struct {
	Source      string
	Destination string
	Verbose     bool
	// Cancel stops the running copy. It is called on ctrl+c or q.
	Cancel context.CancelFunc
}

// Model is the main TUI model
type Model struct {
	config     Config
	Phase      Phase
	Plan       domain.CopyPlan
	Summary    domain.CopySummary
	spinner    spinner.Model
	progress   progress.Model
	scanOps    int
	scanBytes  int64
	event      domain.ProgressEvent
	skipped    int
	notices    []domain.OperationResult
	Cancelling bool
	Err        error
	width      int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		config:   cfg,
		Phase:    PhasePlanning,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(msg.Width-20, 60))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.Phase == PhaseDone || m.Phase == PhaseError {
				return m, tea.Quit
			}
			// The worker still reports a summary for what was finished.
			if !m.Cancelling && m.config.Cancel != nil {
				m.config.Cancel()
			}
			m.Cancelling = true
			return m, nil
		}

	case ScanProgressMsg:
		m.scanOps = msg.Operations
		m.scanBytes = msg.Bytes
		return m, nil

	case PlanReadyMsg:
		m.Plan = msg.Plan
		m.Phase = PhaseCopying
		m.event = domain.ProgressEvent{
			OperationCount: len(msg.Plan.Operations),
			PlanTotalBytes: msg.Plan.TotalBytes,
		}
		return m, nil

	case ProgressMsg:
		m.event = msg.Event
		return m, nil

	case ResultMsg:
		switch msg.Result.Outcome {
		case domain.Skipped:
			m.skipped++
			if m.config.Verbose {
				m.notices = appendNotice(m.notices, msg.Result)
			}
		case domain.Failed:
			m.notices = appendNotice(m.notices, msg.Result)
		}
		return m, nil

	case DoneMsg:
		m.Summary = msg.Summary
		m.Phase = PhaseDone
		return m, tea.Quit

	case ErrorMsg:
		m.Phase = PhaseError
		m.Err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.Phase == PhasePlanning || m.Phase == PhaseCopying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Phase {
	case PhasePlanning:
		b.WriteString(m.renderPlanning())
	case PhaseCopying:
		b.WriteString(m.renderCopying())
	case PhaseDone:
		b.WriteString(m.renderCompletion())
	case PhaseError:
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(iconCopy + " cpv")
	route := dimStyle.Render(fmt.Sprintf("%s %s %s",
		shortenPath(m.config.Source), iconArrow, shortenPath(m.config.Destination)))

	return lipgloss.JoinVertical(lipgloss.Left, title, route)
}

func (m Model) renderPlanning() string {
	if m.scanOps == 0 {
		return fmt.Sprintf("%s Scanning source...", m.spinner.View())
	}
	return fmt.Sprintf("%s Scanning source... %s",
		m.spinner.View(),
		countStyle.Render(fmt.Sprintf("%d entries, %s", m.scanOps, humanize.IBytes(uint64(m.scanBytes)))),
	)
}

func (m Model) renderCopying() string {
	var b strings.Builder
	e := m.event
	percent := e.Percent()

	b.WriteString(sectionStyle.Render("Copying"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  %s\n", m.progress.ViewAs(percent)))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		countStyle.Render(fmt.Sprintf("%s / %s", humanize.IBytes(uint64(e.PlanBytesCopied)), humanize.IBytes(uint64(e.PlanTotalBytes)))),
		dimStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
	))

	var stats []string
	if rate := e.Throughput(); rate > 0 {
		stats = append(stats, humanize.IBytes(uint64(rate))+"/s")
	}
	if eta := e.ETA(); eta > 0 {
		stats = append(stats, "ETA "+eta.Round(time.Second).String())
	}
	stats = append(stats, fmt.Sprintf("operation %d/%d", min(e.OperationIndex+1, max(e.OperationCount, 1)), e.OperationCount))
	b.WriteString("  " + dimStyle.Render(strings.Join(stats, " • ")) + "\n")

	if e.Path != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s %s\n", m.spinner.View(), iconArrow, fileNameStyle.Render(shortenPath(e.Path))))
	}
	if m.skipped > 0 {
		b.WriteString(fmt.Sprintf("  %s\n", warningStyle.Render(fmt.Sprintf("%s %d skipped", iconSkipped, m.skipped))))
	}
	for _, n := range m.notices {
		path := shortenPath(n.Operation.Source)
		if n.Outcome == domain.Failed {
			b.WriteString(fmt.Sprintf("  %s\n", errorStyle.Render(fmt.Sprintf("%s %s: %v", iconError, path, n.Err))))
		} else {
			b.WriteString(fmt.Sprintf("  %s\n", dimStyle.Render(fmt.Sprintf("%s %s: %s", iconSkipped, path, n.Reason))))
		}
	}
	if m.Cancelling {
		b.WriteString("\n" + warningStyle.Render("Cancelling, finishing the current chunk..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderCompletion() string {
	var b strings.Builder
	s := m.Summary

	b.WriteString(sectionStyle.Render("Copy Complete"))
	b.WriteString("\n\n")

	switch {
	case s.Cancelled:
		b.WriteString(fmt.Sprintf("  %s\n\n", warningStyle.Render(iconOverride+" Copy cancelled")))
	case s.FailedCount > 0:
		b.WriteString(fmt.Sprintf("  %s\n\n", errorStyle.Render(fmt.Sprintf("%s Finished with %d failures", iconError, s.FailedCount))))
	default:
		b.WriteString(fmt.Sprintf("  %s\n\n", successStyle.Render(iconSuccess+" Copy completed successfully!")))
	}

	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Files copied:"), statValueStyle.Render(fmt.Sprintf("%d of %d", s.SucceededCount, s.TotalFiles))))
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Bytes copied:"), statValueStyle.Render(humanize.IBytes(uint64(s.BytesCopied)))))
	if s.DirectoriesCreated > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Directories:"), statValueStyle.Render(fmt.Sprintf("%d", s.DirectoriesCreated))))
	}
	if s.SkippedCount > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Skipped:"), dimStyle.Render(fmt.Sprintf("%s %d", iconSkipped, s.SkippedCount))))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", statLabelStyle.Render("Elapsed:"), dimStyle.Render(s.Elapsed.Round(time.Millisecond).String())))

	return b.String()
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))

	return highlightBoxStyle.
		BorderForeground(errorColor).
		Render(fmt.Sprintf("%s %s", icon, msg))
}

func (m Model) renderHelp() string {
	var help string
	switch m.Phase {
	case PhasePlanning, PhaseCopying:
		help = "Press q or ctrl+c to cancel"
		if m.Cancelling {
			help = "Cancelling..."
		}
	default:
		return ""
	}
	return helpStyle.Render(help)
}

func appendNotice(notices []domain.OperationResult, res domain.OperationResult) []domain.OperationResult {
	notices = append(notices, res)
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	return notices
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
