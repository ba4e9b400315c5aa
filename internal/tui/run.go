// Package tui is the interactive search screen.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Run blocks until the user quits.
func Run(api API, maxResults int, log *zap.Logger) error {
	_, err := tea.NewProgram(New(api, maxResults, log), tea.WithAltScreen()).Run()
	return err
}
