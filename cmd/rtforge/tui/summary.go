package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/dvh"
)

// SummaryAction is the choice made on the summary screen.
type SummaryAction string

const (
	ActionClean  SummaryAction = "clean"
	ActionExport SummaryAction = "export"
	ActionExit   SummaryAction = "exit"
)

var summaryPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

// SummaryScreen lists the loaded ROIs with their dose statistics.
type SummaryScreen struct {
	session   *dicom.Session
	form      *huh.Form
	action    string
	notice    string
	done      bool
	cancelled bool
}

// NewSummaryScreen creates the summary of s. canExport adds the CSV export action.
func NewSummaryScreen(s *dicom.Session, canExport bool, notice string) *SummaryScreen {
	sc := &SummaryScreen{session: s, action: string(ActionExit), notice: notice}

	options := []huh.Option[string]{huh.NewOption("Clean ROI names", string(ActionClean))}
	if canExport {
		options = append(options, huh.NewOption("Export DVHs to CSV", string(ActionExport)))
	}
	options = append(options, huh.NewOption("Exit", string(ActionExit)))

	sc.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Select an action").
				Options(options...).
				Value(&sc.action),
		),
	).WithShowHelp(false)
	return sc
}

// Init implements tea.Model
func (s *SummaryScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SummaryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "q", "esc":
			s.action = string(ActionExit)
			s.done = true
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		s.done = true
	}
	return s, cmd
}

// View implements tea.Model
func (s *SummaryScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Patient summary"))
	sb.WriteString("\n")

	fs := s.session.FileSet
	stats := []struct{ label, value string }{
		{"Directory", fs.Dir},
		{"Images", strconv.Itoa(len(fs.Images))},
		{"Structure set", fileName(fs.RTSS)},
		{"Dose", fileName(fs.RTDose)},
		{"Skipped files", strconv.Itoa(fs.SkippedCount())},
	}
	for _, st := range stats {
		sb.WriteString(labelStyle.Render(st.label + ": "))
		sb.WriteString(valueStyle.Render(st.value))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(summaryPanelStyle.Render(s.roiTable()))
	sb.WriteString("\n")

	for roi, err := range s.session.FailedDVH {
		sb.WriteString(warningStyle.Render(fmt.Sprintf("ROI %d: DVH failed: %v", roi, err)))
		sb.WriteString("\n")
	}
	if s.notice != "" {
		sb.WriteString(successStyle.Render(s.notice))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(s.form.View())
	return sb.String()
}

// roiTable renders one row per ROI in ROI number order.
func (s *SummaryScreen) roiTable() string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "ROI", "Algorithm", "Volume cm³", "Min Gy", "Mean Gy", "Max Gy", "D95 Gy").
		Rows(ROIRows(s.session)...)
	return t.Render()
}

// ROIRows returns the table rows of the summary.
func ROIRows(s *dicom.Session) [][]string {
	var rows [][]string
	for _, n := range dicom.SortedROINumbers(s.ROIs) {
		r := s.ROIs[n]
		row := []string{strconv.Itoa(n), r.Name, r.GenerationAlgorithm}
		c, ok := s.DVH[n]
		if !ok {
			rows = append(rows, append(row, "-", "-", "-", "-", "-"))
			continue
		}
		st := dvh.ComputeStats(c)
		rows = append(rows, append(row,
			fmt.Sprintf("%.2f", st.Volume),
			fmt.Sprintf("%.2f", st.Min),
			fmt.Sprintf("%.2f", st.Mean),
			fmt.Sprintf("%.2f", st.Max),
			fmt.Sprintf("%.2f", st.D95),
		))
	}
	return rows
}

// Action returns the selected action once Done.
func (s *SummaryScreen) Action() SummaryAction {
	return SummaryAction(s.action)
}

// Done returns true once an action was chosen.
func (s *SummaryScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user cancelled
func (s *SummaryScreen) Cancelled() bool {
	return s.cancelled
}

func fileName(e *dicom.Entry) string {
	if e == nil {
		return "-"
	}
	return filepath.Base(e.Path)
}
