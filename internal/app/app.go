package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/ui/components"
	"github.com/rebeliceyang/lazyfilter/internal/ui/help"
	"github.com/rebeliceyang/lazyfilter/internal/ui/theme"
)

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme

	builder      *components.FilterBuilder
	builderPanel components.Panel
	resultPane   *components.ResultPane
	result       models.ViewResult
	status       string

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// New creates a new App over a column schema. opts are passed to the filter builder.
func New(cfg *config.Config, columns []models.Column, seed models.ViewResult, opts ...components.BuilderOption) *App {
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	builderOpts := []components.BuilderOption{
		components.WithSeed(seed),
		components.WithTable(cfg.Filter.TableName),
		components.WithMaxOptions(cfg.Filter.MaxOptions),
	}
	if d := cfg.Filter.Debounce(); d > 0 {
		builderOpts = append(builderOpts, components.WithDebounce(d))
	}
	builderOpts = append(builderOpts, opts...)

	a := &App{
		state:        models.NewAppState(),
		config:       cfg,
		theme:        th,
		builder:      components.NewFilterBuilder(th, columns, builderOpts...),
		builderPanel: components.Panel{Title: "Filters", Theme: th, Focused: true},
		resultPane:   components.NewResultPane(th),
		errorOverlay: components.NewErrorOverlay(th),
	}
	a.result = a.builder.Result()
	if err := a.resultPane.SetResult(a.result); err != nil {
		a.ShowError("Result Error", err.Error())
	}
	a.updateDimensions()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.builder.Init()
}

// Result returns the last emitted filter result
func (a *App) Result() models.ViewResult {
	return a.result
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case components.ResultChangedMsg:
		a.result = msg.Result
		a.status = ""
		if err := a.resultPane.SetResult(msg.Result); err != nil {
			a.ShowError("Result Error", err.Error())
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updateDimensions()
		return a, nil

	case tea.KeyMsg:
		if a.showError {
			switch msg.String() {
			case "esc", "enter":
				a.DismissError()
			case "ctrl+c":
				return a, tea.Quit
			}
			// Consume all other keys when error is showing
			return a, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "f1":
			if a.state.ViewMode == models.HelpMode {
				a.state.ViewMode = models.NormalMode
			} else {
				a.state.ViewMode = models.HelpMode
			}
			return a, nil
		case "esc":
			if a.state.ViewMode == models.HelpMode {
				a.state.ViewMode = models.NormalMode
				return a, nil
			}
		case "ctrl+y":
			if err := a.resultPane.CopyContent(); err != nil {
				a.ShowError("Clipboard Error", fmt.Sprintf("Could not copy result:\n\n%v", err))
				return a, nil
			}
			a.status = "Copied result to clipboard"
			return a, nil
		case "pgup":
			a.resultPane.ScrollUp()
			return a, nil
		case "pgdown":
			a.resultPane.ScrollDown()
			return a, nil
		}

		if a.state.ViewMode == models.HelpMode {
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.builder, cmd = a.builder.Update(msg)
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return zone.Scan(a.renderNormalView())
}

// renderNormalView renders the builder above the result pane
func (a *App) renderNormalView() string {
	topBarRight := fmt.Sprintf("%d active", len(a.result.Filters))
	if table := a.config.Filter.TableName; table != "" {
		topBarRight = table + " · " + topBarRight
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyfilter", topBarRight))

	bottomLeft := "[F1] Help | [Ctrl+Y] Copy | [Ctrl+C] Quit"
	if a.status != "" {
		bottomLeft = a.status
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomLeft, ""))

	a.builderPanel.Content = a.builder.View()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		a.builderPanel.View(),
		a.resultPane.View(),
		bottomBar,
	)
}

// updateDimensions splits the screen between the builder and the result pane
func (a *App) updateDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top and bottom bar take one line each
	contentHeight := a.state.Height - 2
	if contentHeight < 10 {
		contentHeight = 10
	}
	resultHeight := contentHeight / 3
	if resultHeight < 5 {
		resultHeight = 5
	}
	builderHeight := contentHeight - resultHeight

	a.builderPanel.Width = a.state.Width
	a.builderPanel.Height = builderHeight
	a.builder.Width = a.state.Width - 4
	a.builder.Height = builderHeight - 3

	a.resultPane.Width = a.state.Width
	a.resultPane.Height = resultHeight
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// 2 chars of padding on each side
	availableWidth := a.state.Width - 4
	if availableWidth < 0 {
		availableWidth = 0
	}

	leftLen := runewidth.StringWidth(left)
	rightLen := runewidth.StringWidth(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return runewidth.Truncate(left, availableWidth-rightLen, "") + right
		}
		return runewidth.Truncate(left, availableWidth, "")
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
