package cmd

import (
	"fmt"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/tui/history"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded conversations",
	Long: `Display recent conversations from the journal with every turn's intent, speech
and outcome. Select a conversation and press enter to delete it.`,
	RunE: runHistoryCommand,
}

func runHistoryCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Logging.JournalRetention = 0
	cfg.Logging.EnableJournal = true

	j, err := journal.Open(cfg.Logging)
	if err != nil {
		return err
	}
	summaries, err := j.Summaries()
	if err != nil {
		return fmt.Errorf("failed to read conversations: %w", err)
	}

	if len(summaries) == 0 {
		dir, _ := config.Dir()
		fmt.Fprintf(cmd.OutOrStdout(), "No conversations recorded yet in %s/logs.\n", dir)
		return nil
	}

	th, err := uiTheme(cfg)
	if err != nil {
		return err
	}
	model := history.New(history.NewTree(summaries),
		history.WithTheme(th),
		history.WithDelete(j.Delete))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
