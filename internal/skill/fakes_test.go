package skill

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/charmbracelet/log"
)

type fakeClient struct {
	mu sync.Mutex

	library []media.MediaResult
	results []media.MediaResult

	listErr   error
	searchErr error
	addErr    error

	listTitles []string
	queries    []string
	added      []media.MediaResult
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) List(_ context.Context, filterTitle string) ([]media.MediaResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTitles = append(f.listTitles, filterTitle)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []media.MediaResult
	for _, r := range f.library {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(filterTitle)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeClient) Search(_ context.Context, query string) ([]media.MediaResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeClient) Add(_ context.Context, result media.MediaResult) (*provider.AddOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, result)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &provider.AddOutcome{ID: 7, Title: result.Title}, nil
}

func (f *fakeClient) calls() (list, search, add int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listTitles), len(f.queries), len(f.added)
}

type fakeProviders struct {
	mu       sync.Mutex
	clients  map[media.Kind]*fakeClient
	err      error
	resolves int
}

func (p *fakeProviders) Resolve(kind media.Kind) (provider.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolves++
	if p.err != nil {
		return nil, p.err
	}
	c, ok := p.clients[kind]
	if !ok {
		return nil, &provider.ConfigurationError{Kind: kind, Reason: "url and api key are required"}
	}
	return c, nil
}

type fakeArtwork struct{ url string }

func (a fakeArtwork) Find(context.Context, media.Kind, media.MediaResult) string { return a.url }

func quietLogger() *log.Logger { return log.New(io.Discard) }

func movie(title string, year int, tmdbID string) media.MediaResult {
	return media.MediaResult{Title: title, Slug: strings.ToLower(strings.ReplaceAll(title, " ", "-")), Year: media.IntPtr(year), ExternalID: tmdbID}
}

func show(title string, year int, tvdbID string) media.MediaResult {
	r := movie(title, year, tvdbID)
	r.Status = media.StringPtr("continuing")
	return r
}

func newTestSkill(movies, shows *fakeClient, opts ...Option) (*Skill, *fakeProviders) {
	providers := &fakeProviders{clients: map[media.Kind]*fakeClient{}}
	if movies != nil {
		providers.clients[media.Movies] = movies
	}
	if shows != nil {
		providers.clients[media.Shows] = shows
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(providers, opts...), providers
}
