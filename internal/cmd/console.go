package cmd

import (
	"fmt"
	"io"

	"github.com/Digital-Shane/libby/internal/tui/console"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the skill from your terminal",
	Long: `Open an interactive console that stands in for the voice host.

Type what you would say, for example "find movie heat 1995", "add show severance",
"yes", "no", "help" or "cancel". The console keeps the pending confirmation between
turns the same way the host does.`,
	RunE: runConsoleCommand,
}

func runConsoleCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	th, err := uiTheme(a.cfg)
	if err != nil {
		return err
	}
	model := console.New(cmd.Context(), a.skill, console.WithTheme(th))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run console: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
