// Package artwork finds a poster URL for a movie or show to show on a card.
// Lookups are best effort: every failure degrades to "no image".
package artwork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
)

// Query describes the title whose poster is wanted.
type Query struct {
	Kind       media.Kind
	Title      string
	Year       int
	IMDbID     string
	ExternalID string
}

// Source is one place a poster can come from. An empty URL with a nil
// error means the source had nothing for the query.
type Source interface {
	Name() string
	Supports(kind media.Kind) bool
	Poster(ctx context.Context, q Query) (string, error)
}

// Finder resolves posters by trying the result's own images and then each
// configured Source in order.
type Finder struct {
	sources   []Source
	cache     *cache.Cache
	cacheFile string
	timeout   time.Duration
	logger    *log.Logger
}

// Option configures a Finder during construction.
type Option func(*Finder)

// WithSources replaces the configured sources.
func WithSources(sources ...Source) Option {
	return func(f *Finder) {
		f.sources = sources
	}
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(l *log.Logger) Option {
	return func(f *Finder) {
		f.logger = l
	}
}

// WithCacheFile persists the lookup cache at path between runs.
func WithCacheFile(path string) Option {
	return func(f *Finder) {
		f.cacheFile = path
	}
}

// WithTimeout bounds a whole Find call.
func WithTimeout(d time.Duration) Option {
	return func(f *Finder) {
		f.timeout = d
	}
}

// New creates a Finder with sources built from the artwork settings.
func New(cfg config.ArtworkConfig, opts ...Option) *Finder {
	f := &Finder{
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		logger:  log.Default(),
	}
	hours := cfg.CacheHours
	if hours <= 0 {
		hours = 168
	}
	f.cache = cache.New(time.Duration(hours)*time.Hour, 10*time.Minute)

	if key := strings.TrimSpace(cfg.TMDBAPIKey); key != "" {
		f.sources = append(f.sources, NewTMDB(key, cfg.TMDBLanguage))
	}
	if key := strings.TrimSpace(cfg.OMDBAPIKey); key != "" {
		f.sources = append(f.sources, NewOMDb(key, nil))
	}
	if key := strings.TrimSpace(cfg.TVDBAPIKey); key != "" {
		f.sources = append(f.sources, NewTVDB(key))
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.cacheFile != "" {
		if _, err := os.Stat(f.cacheFile); err == nil {
			_ = f.cache.LoadFile(f.cacheFile)
		}
	}
	return f
}

// Find returns a poster URL for result, or "" when none is known.
func (f *Finder) Find(ctx context.Context, kind media.Kind, result media.MediaResult) string {
	if f == nil {
		return ""
	}
	if poster := result.Poster(); poster != "" {
		return poster
	}

	q := Query{Kind: kind, Title: result.Title, ExternalID: result.ExternalID}
	if result.Year != nil {
		q.Year = *result.Year
	}
	if result.IMDbID != nil {
		q.IMDbID = *result.IMDbID
	}

	key := cacheKey(q)
	if cached, ok := f.cache.Get(key); ok {
		return cached.(string)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	for _, src := range f.sources {
		if !src.Supports(kind) {
			continue
		}
		url, err := src.Poster(ctx, q)
		if err != nil {
			f.logger.Debug("artwork lookup failed", "source", src.Name(), "title", q.Title, "err", err)
			if ctx.Err() != nil {
				// Out of time: do not remember the miss.
				return ""
			}
			continue
		}
		if url != "" {
			f.cache.Set(key, url, cache.DefaultExpiration)
			return url
		}
	}

	f.cache.Set(key, "", cache.DefaultExpiration)
	return ""
}

// SaveCache persists the cache to disk when a cache file is configured.
func (f *Finder) SaveCache() error {
	if f == nil || f.cacheFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.cacheFile), 0755); err != nil {
		return err
	}
	return f.cache.SaveFile(f.cacheFile)
}

// SourceNames lists the configured sources in lookup order.
func (f *Finder) SourceNames() []string {
	names := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		names = append(names, s.Name())
	}
	return names
}

func cacheKey(q Query) string {
	if q.ExternalID != "" {
		return fmt.Sprintf("%s:id:%s", q.Kind, q.ExternalID)
	}
	return fmt.Sprintf("%s:%s:%d", q.Kind, strings.ToLower(q.Title), q.Year)
}
