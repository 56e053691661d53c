// Package tui is the interactive front end of rtforge: it loads a patient
// directory with a progress bar, shows the ROI dose summary and lets the
// user clean ROI names or export the DVHs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mrsinham/rtforge/internal/dicom"
	"github.com/mrsinham/rtforge/internal/dicom/elem"
	"github.com/mrsinham/rtforge/internal/export"
	"github.com/mrsinham/rtforge/internal/roiclean"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Phase is the screen the app is on.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSummary
	PhaseClean
	PhaseError
)

// Options configures the app.
type Options struct {
	Load dicom.LoadOptions
	// ExportPath is the DVH CSV file; empty hides the export action.
	ExportPath string
	// MaxDoseGy is the last dose column of the export (0 = default).
	MaxDoseGy int
}

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	// send forwards progress from the loading goroutine; nil in tests.
	send func(tea.Msg)

	phase    Phase
	progress *ProgressScreen
	summary  *SummaryScreen
	clean    *CleanScreen

	session   *dicom.Session
	err       error
	cancelled bool
}

// NewApp creates the app. Loading starts with Init.
func NewApp(ctx context.Context, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)
	opts.Load.Quiet = true
	return &App{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		phase:    PhaseLoading,
		progress: NewProgressScreen(opts.Load.Dir),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.startLoad()
}

// startLoad runs the pipeline in a command and reports its outcome as a message.
func (a *App) startLoad() tea.Cmd {
	lo := a.opts.Load
	lo.Progress = func(message string, percent float64) {
		if a.send != nil {
			a.send(ProgressMsg{Message: message, Percent: percent})
		}
	}
	ctx := a.ctx
	return func() tea.Msg {
		start := time.Now()
		s, err := dicom.Load(ctx, lo)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return LoadedMsg{Session: s, Duration: time.Since(start)}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.phase {
	case PhaseLoading:
		return a.updateLoading(msg)
	case PhaseSummary:
		return a.updateSummary(msg)
	case PhaseClean:
		return a.updateClean(msg)
	case PhaseError:
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}
	return a, nil
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return a.showSummary(msg.Session, fmt.Sprintf("Loaded in %.1fs", msg.Duration.Seconds()))
	case ErrorMsg:
		a.phase = PhaseError
		a.err = msg.Err
		return a, nil
	}

	model, cmd := a.progress.Update(msg)
	if ps, ok := model.(*ProgressScreen); ok {
		a.progress = ps
	}
	if a.progress.Cancelled() {
		a.cancelled = true
		a.cancel()
		return a, tea.Quit
	}
	return a, cmd
}

func (a *App) showSummary(s *dicom.Session, notice string) (tea.Model, tea.Cmd) {
	a.session = s
	a.phase = PhaseSummary
	a.summary = NewSummaryScreen(s, a.opts.ExportPath != "", notice)
	return a, a.summary.Init()
}

func (a *App) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.summary.Update(msg)
	if ss, ok := model.(*SummaryScreen); ok {
		a.summary = ss
	}
	if a.summary.Cancelled() {
		a.cancelled = true
		return a, tea.Quit
	}
	if !a.summary.Done() {
		return a, cmd
	}

	switch a.summary.Action() {
	case ActionClean:
		a.phase = PhaseClean
		a.clean = NewCleanScreen(roiNames(a.session))
		return a, a.clean.Init()
	case ActionExport:
		id := elem.String(a.session.FileSet.RTSS.Dataset.Elements, tag.PatientID)
		if err := export.WriteDVH(a.opts.ExportPath, id, a.session.DVH, a.opts.MaxDoseGy); err != nil {
			a.phase = PhaseError
			a.err = err
			return a, nil
		}
		return a.showSummary(a.session, "DVHs appended to "+a.opts.ExportPath)
	default:
		return a, tea.Quit
	}
}

func (a *App) updateClean(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.clean.Update(msg)
	if cs, ok := model.(*CleanScreen); ok {
		a.clean = cs
	}
	if a.clean.Cancelled() {
		a.cancelled = true
		return a, tea.Quit
	}
	if !a.clean.Done() {
		return a, cmd
	}

	actions := a.clean.Actions()
	if actions == nil {
		return a.showSummary(a.session, "")
	}
	rep, err := roiclean.Apply(a.session.FileSet.RTSS.Path, actions)
	if err != nil {
		a.phase = PhaseError
		a.err = err
		return a, nil
	}
	if !rep.Changed() {
		return a.showSummary(a.session, "Nothing to change")
	}

	// names changed on disk; reload so the summary matches the file
	a.phase = PhaseLoading
	a.progress = NewProgressScreen(a.opts.Load.Dir)
	return a, a.startLoad()
}

// View implements tea.Model
func (a *App) View() string {
	switch a.phase {
	case PhaseLoading:
		return a.progress.View()
	case PhaseSummary:
		return a.summary.View()
	case PhaseClean:
		return a.clean.View()
	case PhaseError:
		var sb strings.Builder
		sb.WriteString(errorTitleStyle.Render("✗ Error"))
		sb.WriteString("\n\n  ")
		sb.WriteString(valueStyle.Render(a.err.Error()))
		sb.WriteString("\n  ")
		sb.WriteString(labelStyle.Render("Status: " + string(dicom.StatusOf(a.err))))
		sb.WriteString("\n\n")
		sb.WriteString(hintStyle.Render("Press any key to exit"))
		return sb.String()
	}
	return ""
}

// Phase returns the current screen.
func (a *App) Phase() Phase {
	return a.phase
}

// Err returns the error shown on the error screen.
func (a *App) Err() error {
	return a.err
}

func roiNames(s *dicom.Session) []string {
	names := make([]string, 0, len(s.ROIs))
	for _, n := range dicom.SortedROINumbers(s.ROIs) {
		names = append(names, s.ROIs[n].Name)
	}
	return names
}

// Run loads opts.Load.Dir in an interactive session.
func Run(opts Options) error {
	app := NewApp(context.Background(), opts)
	defer app.cancel()

	p := tea.NewProgram(app, tea.WithAltScreen())
	app.send = p.Send

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if a, ok := finalModel.(*App); ok {
		if a.cancelled {
			return nil // User cancelled, not an error
		}
		return a.err
	}
	return nil
}
