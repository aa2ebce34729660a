package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Digital-Shane/libby/internal/server"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer a voice host over HTTP",
	Long: `Start the webhook the voice host posts turns to.

POST /skill accepts the host's request envelope and answers with speech, an optional
card and reprompt, and the pending confirmation as a session attribute. GET /health
reports liveness. The server stops cleanly on SIGINT or SIGTERM.`,
	RunE: runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("shutdown", "err", err)
		}
	}()

	if listenAddr != "" {
		a.cfg.Server.Listen = listenAddr
	}
	if a.cfg.Server.SharedSecret == "" {
		a.logger.Warn("no shared secret configured; /skill accepts unauthenticated requests")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.cfg.Server, a.skill, server.WithLogger(a.logger))
	return srv.ListenAndServe(ctx)
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Address to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
