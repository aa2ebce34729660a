// Package radarr implements provider.Client for movies on Radarr's v3 API.
package radarr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/provider/arr"
)

const providerName = "radarr"

// Client talks to a single Radarr instance.
type Client struct {
	api       *arr.Client
	qualities *provider.QualityCache
}

type addOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

type addMovieRequest struct {
	TmdbID           int           `json:"tmdbId"`
	Title            string        `json:"title"`
	TitleSlug        string        `json:"titleSlug"`
	Images           []media.Image `json:"images"`
	Year             int           `json:"year,omitempty"`
	QualityProfileID int           `json:"qualityProfileId"`
	RootFolderPath   string        `json:"rootFolderPath"`
	Monitored        bool          `json:"monitored"`
	AddOptions       addOptions    `json:"addOptions"`
}

// New creates a Radarr client from cfg.
func New(cfg config.ProviderConfig, opts ...arr.Option) (*Client, error) {
	api, err := arr.New(providerName, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:       api,
		qualities: provider.NewQualityCache(api.QualityProfiles, cfg.Quality),
	}, nil
}

// Factory adapts New to provider.Factory.
func Factory(opts ...arr.Option) provider.Factory {
	return func(cfg config.ProviderConfig) (provider.Client, error) {
		return New(cfg, opts...)
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return providerName
}

// List returns the movies Radarr is tracking.
func (c *Client) List(ctx context.Context, filterTitle string) ([]media.MediaResult, error) {
	if _, err := c.qualities.Load(ctx); err != nil {
		return nil, err
	}

	var movies []arr.Resource
	if err := c.api.Get(ctx, "movie", nil, &movies); err != nil {
		return nil, err
	}
	return arr.FilterByTitle(c.mapAll(movies), filterTitle), nil
}

// Search looks up movies by free text, typically "title year".
func (c *Client) Search(ctx context.Context, query string) ([]media.MediaResult, error) {
	if _, err := c.qualities.Load(ctx); err != nil {
		return nil, err
	}

	var movies []arr.Resource
	if err := c.api.Get(ctx, "movie/lookup", url.Values{"term": {query}}, &movies); err != nil {
		return nil, err
	}
	return c.mapAll(movies), nil
}

// Add queues result in Radarr and starts a search for it.
func (c *Client) Add(ctx context.Context, result media.MediaResult) (*provider.AddOutcome, error) {
	tmdbID, err := strconv.Atoi(result.ExternalID)
	if err != nil || tmdbID <= 0 {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeBadRequest,
			Message:  fmt.Sprintf("movie %q has no tmdb id", result.Title),
		}
	}

	rootFolder, err := c.api.FirstRootFolder(ctx)
	if err != nil {
		return nil, err
	}
	qualityID, err := c.qualities.PreferredID(ctx)
	if err != nil {
		return nil, err
	}

	images := result.Images
	if images == nil {
		images = []media.Image{}
	}
	req := addMovieRequest{
		TmdbID:           tmdbID,
		Title:            result.Title,
		TitleSlug:        result.Slug,
		Images:           images,
		QualityProfileID: qualityID,
		RootFolderPath:   rootFolder,
		Monitored:        true,
		AddOptions:       addOptions{SearchForMovie: true},
	}
	if result.Year != nil {
		req.Year = *result.Year
	}

	var created provider.AddOutcome
	raw, err := c.api.Post(ctx, "movie", req, &created)
	if err != nil {
		return nil, err
	}
	created.Raw = raw
	return &created, nil
}

func (c *Client) mapAll(movies []arr.Resource) []media.MediaResult {
	results := make([]media.MediaResult, 0, len(movies))
	for _, m := range movies {
		externalID := ""
		if m.TmdbID != 0 {
			externalID = strconv.Itoa(m.TmdbID)
		}
		results = append(results, m.ToMediaResult(externalID, c.qualities.Label(m.QualityProfileID)))
	}
	return results
}
