package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Digital-Shane/libby/internal/artwork"
	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/journal"
	"github.com/Digital-Shane/libby/internal/logging"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/provider/arr"
	"github.com/Digital-Shane/libby/internal/provider/builtin"
	"github.com/Digital-Shane/libby/internal/responses"
	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/Digital-Shane/libby/internal/tui/theme"
	"github.com/charmbracelet/log"
)

const artworkCacheFile = "artwork.cache"

// app holds everything a subcommand needs to answer turns.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	journal  *journal.Journal
	registry *provider.Registry
	artwork  *artwork.Finder
	skill    *skill.Skill

	closeLog func() error
}

// loadConfig reads the --config file when given, otherwise the default
// location, and applies environment overrides.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Load()
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires configuration, logging, the journal, providers and artwork
// into a skill. logOut receives process logs; the console passes io.Discard
// so logs do not tear the terminal UI.
func newApp(logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if noJournal {
		cfg.Logging.EnableJournal = false
	}

	logger, closeLog, err := logging.New(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}
	log.SetDefault(logger)

	j, err := journal.Open(cfg.Logging)
	if err != nil {
		if j == nil {
			_ = closeLog()
			return nil, err
		}
		logger.Warn("journal cleanup failed", "err", err)
	}

	registry, err := builtin.NewRegistry(cfg, arr.WithLogger(logger))
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	table, err := responses.Load(cfg.ResponsesFile)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	finderOpts := []artwork.Option{artwork.WithLogger(logger)}
	if dir, err := config.Dir(); err == nil {
		finderOpts = append(finderOpts, artwork.WithCacheFile(filepath.Join(dir, artworkCacheFile)))
	}
	finder := artwork.New(cfg.Artwork, finderOpts...)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		journal:  j,
		registry: registry,
		artwork:  finder,
		closeLog: closeLog,
	}
	a.skill = skill.New(registry,
		skill.WithArtwork(finder),
		skill.WithResponses(table),
		skill.WithLogger(logger),
		skill.WithJournal(j),
	)

	logger.Debug("libby ready",
		"movies", cfg.Movies.Configured(),
		"shows", cfg.Shows.Configured(),
		"artwork", finder.SourceNames(),
		"journal", j.Enabled())
	return a, nil
}

// uiTheme builds the terminal theme from the ui settings.
func uiTheme(cfg *config.Config) (theme.Theme, error) {
	mode, err := theme.ParseIconMode(cfg.UI.Icons)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("invalid ui.icons: %w", err)
	}
	return theme.New(theme.WithIcons(mode)), nil
}

// Close writes out unfinished journal sessions and the artwork cache.
func (a *app) Close() error {
	start := time.Now()
	var errs []error
	if err := a.journal.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush journal: %w", err))
	}
	if err := a.artwork.SaveCache(); err != nil {
		errs = append(errs, fmt.Errorf("failed to save artwork cache: %w", err))
	}
	a.logger.Debug("shutdown complete", "took", time.Since(start))
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}
