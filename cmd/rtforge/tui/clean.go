package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mrsinham/rtforge/internal/roiclean"
)

const (
	choiceIgnore = "ignore"
	choiceDelete = "delete"
	renamePrefix = "rename:"
)

// CleanScreen asks what to do with every ROI name of the structure set.
type CleanScreen struct {
	names     []string
	choices   []string
	apply     bool
	form      *huh.Form
	done      bool
	cancelled bool
}

// NewCleanScreen builds one select per ROI. ROIs with a known standard
// spelling default to renaming; the others default to being left alone.
func NewCleanScreen(names []string) *CleanScreen {
	s := &CleanScreen{names: names, choices: make([]string, len(names)), apply: true}

	fields := make([]huh.Field, 0, len(names))
	for i, name := range names {
		options := []huh.Option[string]{huh.NewOption("Keep as is", choiceIgnore)}
		s.choices[i] = choiceIgnore
		if suggestion := roiclean.Suggest(name); suggestion != "" {
			options = append(options, huh.NewOption("Rename to "+suggestion, renamePrefix+suggestion))
			s.choices[i] = renamePrefix + suggestion
		}
		options = append(options, huh.NewOption("Delete", choiceDelete))

		fields = append(fields, huh.NewSelect[string]().
			Title(fmt.Sprintf("ROI %q", name)).
			Options(options...).
			Value(&s.choices[i]))
	}
	fields = append(fields, huh.NewConfirm().
		Title("Rewrite the structure set?").
		Affirmative("Apply").
		Negative("Cancel").
		Value(&s.apply))

	s.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(false)
	return s
}

// Init implements tea.Model
func (s *CleanScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *CleanScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc":
			s.apply = false
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
func (s *CleanScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Clean ROI names"))
	sb.WriteString("\n")
	sb.WriteString(s.form.View())
	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("Esc to go back without changes"))
	return sb.String()
}

// Actions returns the chosen actions, or nil when the user backed out.
func (s *CleanScreen) Actions() []roiclean.Action {
	if !s.apply {
		return nil
	}
	return choicesToActions(s.names, s.choices)
}

// Done returns true once the form was answered or abandoned.
func (s *CleanScreen) Done() bool {
	return s.done
}

// Cancelled returns true if the user cancelled
func (s *CleanScreen) Cancelled() bool {
	return s.cancelled
}

func choicesToActions(names, choices []string) []roiclean.Action {
	actions := make([]roiclean.Action, 0, len(names))
	for i, name := range names {
		c := choices[i]
		switch {
		case c == choiceDelete:
			actions = append(actions, roiclean.Action{Name: name, Op: roiclean.Delete})
		case strings.HasPrefix(c, renamePrefix):
			actions = append(actions, roiclean.Action{Name: name, Op: roiclean.Rename, NewName: strings.TrimPrefix(c, renamePrefix)})
		default:
			actions = append(actions, roiclean.Action{Name: name, Op: roiclean.Ignore})
		}
	}
	return actions
}
