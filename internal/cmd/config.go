package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the libby configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively write ~/.libby/config.json",
	RunE:  runConfigInitCommand,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE:  runConfigShowCommand,
}

func runConfigShowCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg.Masked(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// validateURL accepts an empty value so a library can be left unconfigured.
func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter a full http:// or https:// address")
	}
	return nil
}

func validateRate(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return errors.New("enter a positive number of requests per second")
	}
	return nil
}

// configForm builds the form that edits cfg in place. Fields that are not
// plain strings go through the returned apply func once the form completes.
func configForm(cfg *config.Config) (*huh.Form, func()) {
	rate := strconv.FormatFloat(cfg.Server.RateLimit, 'f', -1, 64)
	qualities := huh.NewOptions("Any", "SD", "HD-720p", "HD-1080p", "Ultra-HD", "HD - 720p/1080p")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Radarr").
				Description("Movies are looked up and added through Radarr."),
			huh.NewInput().
				Title("Radarr URL").
				Placeholder("http://localhost:7878").
				Validate(validateURL).
				Value(&cfg.Movies.URL),
			huh.NewInput().
				Title("Radarr API key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Movies.APIKey),
			huh.NewSelect[string]().
				Title("Quality profile for new movies").
				Options(qualities...).
				Value(&cfg.Movies.Quality),
		),
		huh.NewGroup(
			huh.NewNote().
				Title("Sonarr").
				Description("Shows are looked up and added through Sonarr."),
			huh.NewInput().
				Title("Sonarr URL").
				Placeholder("http://localhost:8989").
				Validate(validateURL).
				Value(&cfg.Shows.URL),
			huh.NewInput().
				Title("Sonarr API key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Shows.APIKey),
			huh.NewSelect[string]().
				Title("Quality profile for new shows").
				Options(qualities...).
				Value(&cfg.Shows.Quality),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("TMDB API key").
				Description("Optional. Used for poster images on cards.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Artwork.TMDBAPIKey),
			huh.NewInput().
				Title("OMDb API key").
				Description("Optional.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Artwork.OMDBAPIKey),
			huh.NewInput().
				Title("TVDB API key").
				Description("Optional. Shows only.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Artwork.TVDBAPIKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&cfg.Server.Listen),
			huh.NewInput().
				Title("Shared secret").
				Description("Sent by the host in the X-Libby-Secret header. Leave empty to disable.").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Server.SharedSecret),
			huh.NewInput().
				Title("Requests per second").
				Validate(validateRate).
				Value(&rate),
			huh.NewConfirm().
				Title("Keep a journal of conversations?").
				Value(&cfg.Logging.EnableJournal),
			huh.NewSelect[string]().
				Title("Terminal icons").
				Options(huh.NewOptions("auto", "emoji", "ascii")...).
				Value(&cfg.UI.Icons),
		),
	)

	apply := func() {
		if f, err := strconv.ParseFloat(strings.TrimSpace(rate), 64); err == nil {
			cfg.Server.RateLimit = f
		}
		cfg.Movies.URL = strings.TrimSpace(cfg.Movies.URL)
		cfg.Shows.URL = strings.TrimSpace(cfg.Shows.URL)
	}
	return form, apply
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	form, apply := configForm(cfg)
	if err := form.WithTheme(huh.ThemeCharm()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration unchanged.")
			return nil
		}
		return fmt.Errorf("failed to run config form: %w", err)
	}
	apply()

	path := configPath
	if path == "" {
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
