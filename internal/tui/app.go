package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"regchat-cli/internal/api"
	"regchat-cli/internal/config"
)

// Run launches the interactive TUI (inline: the transcript scrolls above
// the prompt).
func Run(version, profile string, cfg *config.Config, log *zap.Logger, debug bool) error {
	client := api.NewClient(cfg)
	client.SetLogger(log)
	client.SetDebug(debug)

	m := initialModel(version, profile, cfg, client, log)

	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
