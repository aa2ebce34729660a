// Package sonarr implements provider.Client for shows on Sonarr's v3 API.
package sonarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/provider/arr"
)

const providerName = "sonarr"

// Client talks to a single Sonarr instance.
type Client struct {
	api       *arr.Client
	qualities *provider.QualityCache
}

type addOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
}

// addSeriesRequest is the POST /series body. ProfileID mirrors
// QualityProfileID for older Sonarr builds.
type addSeriesRequest struct {
	TvdbID           int               `json:"tvdbId"`
	Title            string            `json:"title"`
	TitleSlug        string            `json:"titleSlug"`
	Images           []media.Image     `json:"images"`
	Seasons          []json.RawMessage `json:"seasons,omitempty"`
	QualityProfileID int               `json:"qualityProfileId"`
	ProfileID        int               `json:"profileId"`
	RootFolderPath   string            `json:"rootFolderPath"`
	Monitored        bool              `json:"monitored"`
	AddOptions       addOptions        `json:"addOptions"`
}

// New creates a Sonarr client from cfg.
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

// List returns the series Sonarr is tracking.
func (c *Client) List(ctx context.Context, filterTitle string) ([]media.MediaResult, error) {
	if _, err := c.qualities.Load(ctx); err != nil {
		return nil, err
	}

	var series []arr.Resource
	if err := c.api.Get(ctx, "series", nil, &series); err != nil {
		return nil, err
	}
	return arr.FilterByTitle(c.mapAll(series), filterTitle), nil
}

// Search looks up series by free text.
func (c *Client) Search(ctx context.Context, query string) ([]media.MediaResult, error) {
	if _, err := c.qualities.Load(ctx); err != nil {
		return nil, err
	}

	var series []arr.Resource
	if err := c.api.Get(ctx, "series/lookup", url.Values{"term": {query}}, &series); err != nil {
		return nil, err
	}
	return c.mapAll(series), nil
}

// Add queues result in Sonarr and searches for missing episodes.
func (c *Client) Add(ctx context.Context, result media.MediaResult) (*provider.AddOutcome, error) {
	tvdbID, err := strconv.Atoi(result.ExternalID)
	if err != nil || tvdbID <= 0 {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeBadRequest,
			Message:  fmt.Sprintf("show %q has no tvdb id", result.Title),
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
	req := addSeriesRequest{
		TvdbID:           tvdbID,
		Title:            result.Title,
		TitleSlug:        result.Slug,
		Images:           images,
		Seasons:          result.Seasons,
		QualityProfileID: qualityID,
		ProfileID:        qualityID,
		RootFolderPath:   rootFolder,
		Monitored:        true,
		AddOptions:       addOptions{SearchForMissingEpisodes: true},
	}

	var created provider.AddOutcome
	raw, err := c.api.Post(ctx, "series", req, &created)
	if err != nil {
		return nil, err
	}
	created.Raw = raw
	return &created, nil
}

func (c *Client) mapAll(series []arr.Resource) []media.MediaResult {
	results := make([]media.MediaResult, 0, len(series))
	for _, s := range series {
		externalID := ""
		if s.TvdbID != 0 {
			externalID = strconv.Itoa(s.TvdbID)
		}
		results = append(results, s.ToMediaResult(externalID, c.qualities.Label(s.QualityProfileID)))
	}
	return results
}
