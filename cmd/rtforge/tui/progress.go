package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/rtforge/internal/dicom"
)

// ProgressMsg reports a pipeline stage.
type ProgressMsg struct {
	Message string
	Percent float64
}

// LoadedMsg is sent when the session is ready.
type LoadedMsg struct {
	Session  *dicom.Session
	Duration time.Duration
}

// ErrorMsg is sent when loading fails.
type ErrorMsg struct {
	Err error
}

var (
	progressBarStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("63"))

	progressBarEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	progressPercentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("63")).
				Bold(true)
)

// ProgressScreen shows the loading pipeline.
type ProgressScreen struct {
	dir       string
	message   string
	percent   float64
	startTime time.Time
	cancelled bool
	width     int
}

// NewProgressScreen creates a progress screen for dir.
func NewProgressScreen(dir string) *ProgressScreen {
	return &ProgressScreen{
		dir:       dir,
		message:   "Starting...",
		startTime: time.Now(),
	}
}

// Init implements tea.Model
func (s *ProgressScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ProgressScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.cancelled = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
	case ProgressMsg:
		s.message = msg.Message
		// the pipeline never goes back; ignore late messages
		if msg.Percent >= s.percent {
			s.percent = msg.Percent
		}
	}
	return s, nil
}

// View implements tea.Model
func (s *ProgressScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	barWidth := 40
	if s.width > 60 {
		barWidth = min(s.width/2, 60)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Loading patient..."))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render(s.dir))
	sb.WriteString("\n")
	sb.WriteString(renderProgressBar(s.percent, barWidth))
	sb.WriteString(" ")
	sb.WriteString(progressPercentStyle.Render(fmt.Sprintf("%d%%", int(s.percent))))
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render(s.message))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render(fmt.Sprintf("Elapsed: %.1fs", time.Since(s.startTime).Seconds())))
	sb.WriteString("\n\n")
	sb.WriteString(hintStyle.Render("Press Ctrl+C to cancel"))
	return sb.String()
}

// Percent returns the last reported percent.
func (s *ProgressScreen) Percent() float64 {
	return s.percent
}

// Cancelled returns true if the user cancelled
func (s *ProgressScreen) Cancelled() bool {
	return s.cancelled
}

func renderProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	bar := progressBarStyle.Render("[" + strings.Repeat("█", filled))
	bar += progressBarEmptyStyle.Render(strings.Repeat("░", width-filled) + "]")
	return bar
}
