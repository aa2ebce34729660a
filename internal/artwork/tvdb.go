package artwork

import (
	"context"
	"strings"
	"sync"

	"github.com/Digital-Shane/libby/internal/media"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/operations"
)

// TVDBClient captures the dashotv client method used for poster lookup.
type TVDBClient interface {
	GetSearchResults(request operations.GetSearchResultsRequest) (*tvdbapi.GetSearchResultsResponse, error)
}

// TVDB looks show posters up on TheTVDB. Login is deferred to the first
// lookup since it is a network call.
type TVDB struct {
	apiKey string
	login  func(apiKey string) (TVDBClient, error)

	mu     sync.Mutex
	client TVDBClient
}

// NewTVDB creates a TVDB source for apiKey.
func NewTVDB(apiKey string) *TVDB {
	return &TVDB{
		apiKey: apiKey,
		login: func(key string) (TVDBClient, error) {
			client, err := tvdbapi.Login(key)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

// NewTVDBWithClient creates a TVDB source around an authenticated client.
func NewTVDBWithClient(client TVDBClient) *TVDB {
	return &TVDB{client: client}
}

func (t *TVDB) Name() string { return "tvdb" }

func (t *TVDB) Supports(kind media.Kind) bool { return kind == media.Shows }

func (t *TVDB) Poster(ctx context.Context, q Query) (string, error) {
	if strings.TrimSpace(q.Title) == "" {
		return "", nil
	}
	client, err := t.ensureClient()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	query := q.Title
	typeSeries := "series"
	req := operations.GetSearchResultsRequest{Query: &query, Type: &typeSeries}
	if q.Year > 0 {
		year := float64(q.Year)
		req.Year = &year
	}

	resp, err := client.GetSearchResults(req)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	for _, candidate := range resp.Data {
		if q.ExternalID != "" && candidate.TvdbID != nil && *candidate.TvdbID != q.ExternalID {
			continue
		}
		if candidate.ImageURL != nil && *candidate.ImageURL != "" {
			return *candidate.ImageURL, nil
		}
	}
	return "", nil
}

func (t *TVDB) ensureClient() (TVDBClient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		return t.client, nil
	}
	client, err := t.login(t.apiKey)
	if err != nil {
		return nil, err
	}
	t.client = client
	return client, nil
}
