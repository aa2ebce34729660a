package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/spf13/cobra"
)

var (
	askPending string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask <intent> [slot=value...]",
	Short: "Run a single turn against the skill",
	Long: `Send one request to the skill and print its reply.

The intent may be a full name such as FindMovie or AMAZON.YesIntent, or a short
form such as yes, no, help or cancel. Slots are given as name=value pairs:

  libby ask FindMovie movieName=heat releaseDate=1995
  libby ask AddShow showName="the expanse"

A YES or NO turn needs the confirmation printed by the previous turn, passed with
--pending.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAskCommand,
}

var intentAliases = map[string]string{
	"launch": skill.IntentLaunch,
	"yes":    skill.IntentYes,
	"no":     skill.IntentNo,
	"help":   skill.IntentHelp,
	"cancel": skill.IntentCancel,
	"stop":   skill.IntentStop,
}

// parseAskArgs builds a request from the ask command's arguments.
func parseAskArgs(args []string, pending string) (skill.Request, error) {
	intent := args[0]
	if full, ok := intentAliases[strings.ToLower(intent)]; ok {
		intent = full
	}
	req := skill.Request{
		SessionID:  "cli",
		Source:     "cli",
		Intent:     intent,
		NewSession: pending == "",
	}

	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return skill.Request{}, fmt.Errorf("slot %q must look like name=value", arg)
		}
		if req.Slots == nil {
			req.Slots = make(map[string]string)
		}
		req.Slots[strings.TrimSpace(name)] = value
	}

	if pending != "" {
		var p skill.PendingConfirmation
		if err := json.Unmarshal([]byte(pending), &p); err != nil {
			return skill.Request{}, fmt.Errorf("invalid --pending confirmation: %w", err)
		}
		req.Confirmation = &p
	}
	return req, nil
}

func runAskCommand(cmd *cobra.Command, args []string) error {
	req, err := parseAskArgs(args, askPending)
	if err != nil {
		return err
	}

	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	resp := a.skill.Handle(cmd.Context(), req)
	return printResponse(cmd.OutOrStdout(), resp, askJSON)
}

// printResponse writes resp for a terminal, or as JSON when asJSON is set.
func printResponse(w io.Writer, resp skill.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(w, resp.Speech)
	if resp.Card != nil {
		fmt.Fprintf(w, "\ncard: %s\n", resp.Card.Title)
		if resp.Card.ImageURL != "" {
			fmt.Fprintf(w, "image: %s\n", resp.Card.ImageURL)
		}
	}
	if resp.EndSession || resp.Confirmation == nil {
		return nil
	}

	if resp.Reprompt != "" {
		fmt.Fprintf(w, "reprompt: %s\n", resp.Reprompt)
	}
	pending, err := json.Marshal(resp.Confirmation)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation: %w", err)
	}
	fmt.Fprintf(w, "\nanswer with:\n  libby ask yes --pending '%s'\n  libby ask no --pending '%s'\n", pending, pending)
	return nil
}

func init() {
	askCmd.Flags().StringVarP(&askPending, "pending", "p", "", "Confirmation JSON returned by the previous turn")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the reply as JSON")
	rootCmd.AddCommand(askCmd)
}
