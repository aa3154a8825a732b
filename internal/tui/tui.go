package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/seanblong/repofinder/internal/finder"
)

// TUIConfig wires the controller and rendering options into the TUI.
type TUIConfig struct {
	Controller   *finder.Controller
	GlamourStyle string
	Logger       zerolog.Logger
}

// Run starts the TUI application
func Run(ctx context.Context, config TUIConfig) error {
	p := tea.NewProgram(
		newFinderModel(ctx, config),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
