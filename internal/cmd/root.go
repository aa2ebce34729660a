package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "libby",
	Short: "Ask your media server whether a movie or show is queued",
	Long: `libby is a voice skill backend for Radarr and Sonarr. It answers whether a movie
or show is already queued and, when it is not, searches for it and offers to add it
one match at a time.

Run "libby serve" to answer a voice host over HTTP, or "libby console" to talk to the
skill from your terminal.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	configPath string
	logLevel   string
	noJournal  bool
)

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.libby/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "Do not record conversations in the journal")
}
