package sonarr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/google/go-cmp/cmp"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// fakeSonarr answers from a fixed route table and captures the add body.
type fakeSonarr struct {
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
	added  map[string]any
	term   string
}

func newFakeSonarr() *fakeSonarr {
	return &fakeSonarr{
		hits: map[string]int{},
		routes: map[string]string{
			"GET /api/v3/qualityprofile": `[{"id": 1, "name": "Any"}, {"id": 6, "name": "HD-720p"}]`,
			"GET /api/v3/rootfolder":     `[{"id": 3, "path": "/tv"}]`,
			"GET /api/v3/series": `[
				{"title": "The Expanse", "titleSlug": "the-expanse", "year": 2015, "tvdbId": 280619, "qualityProfileId": 6, "status": "ended",
				 "seasons": [{"seasonNumber": 1, "monitored": true}]},
				{"title": "Bob's Burgers", "titleSlug": "bobs-burgers", "year": 2011, "tvdbId": 194031, "qualityProfileId": 1}
			]`,
			"GET /api/v3/series/lookup": `[
				{"title": "Severance", "titleSlug": "severance", "year": 2022, "tvdbId": 371980, "imdbId": "tt11280740",
				 "seasons": [{"seasonNumber": 1, "monitored": true}, {"seasonNumber": 2, "monitored": true}],
				 "images": [{"coverType": "poster", "remoteUrl": "https://artworks.thetvdb.com/severance.jpg"}]}
			]`,
		},
	}
}

func (f *fakeSonarr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.hits[key]++

	if key == "POST /api/v3/series" {
		body, _ := io.ReadAll(r.Body)
		f.added = map[string]any{}
		_ = json.Unmarshal(body, &f.added)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 12, "title": "Severance", "path": "/tv/Severance"}`)
		return
	}
	if key == "GET /api/v3/series/lookup" {
		f.term = r.URL.Query().Get("term")
	}
	body, ok := f.routes[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	io.WriteString(w, body)
}

func (f *fakeSonarr) state() (hits map[string]int, added map[string]any, term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := make(map[string]int, len(f.hits))
	for k, v := range f.hits {
		copied[k] = v
	}
	return copied, f.added, f.term
}

func newClient(t *testing.T, fake *fakeSonarr, quality string) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	c, err := New(config.ProviderConfig{URL: server.URL, APIKey: "sonarr-key", Quality: quality})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestListFiltersAndLabels(t *testing.T) {
	t.Parallel()
	c := newClient(t, newFakeSonarr(), "")

	got, err := c.List(context.Background(), "expanse")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() returned %d results, want 1", len(got))
	}

	want := media.MediaResult{
		Title:        "The Expanse",
		Slug:         "the-expanse",
		Year:         media.IntPtr(2015),
		ExternalID:   "280619",
		Status:       media.StringPtr("ended"),
		QualityLabel: "HD-720p",
		Seasons:      []json.RawMessage{json.RawMessage(`{"seasonNumber": 1, "monitored": true}`)},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchAndAdd(t *testing.T) {
	t.Parallel()
	fake := newFakeSonarr()
	c := newClient(t, fake, "HD-720p")
	ctx := context.Background()

	results, err := c.Search(ctx, "severance")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].ExternalID != "371980" {
		t.Fatalf("Search() = %+v", results)
	}

	outcome, err := c.Add(ctx, results[0])
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if outcome.ID != 12 || outcome.Title != "Severance" {
		t.Errorf("Add() outcome = %+v", outcome)
	}

	hits, added, term := fake.state()
	if term != "severance" {
		t.Errorf("lookup term = %q", term)
	}
	want := map[string]any{
		"tvdbId":    float64(371980),
		"title":     "Severance",
		"titleSlug": "severance",
		"images": []any{
			map[string]any{"coverType": "poster", "remoteUrl": "https://artworks.thetvdb.com/severance.jpg"},
		},
		"seasons": []any{
			map[string]any{"seasonNumber": float64(1), "monitored": true},
			map[string]any{"seasonNumber": float64(2), "monitored": true},
		},
		"qualityProfileId": float64(6),
		"profileId":        float64(6),
		"rootFolderPath":   "/tv",
		"monitored":        true,
		"addOptions":       map[string]any{"searchForMissingEpisodes": true},
	}
	if diff := cmp.Diff(want, added); diff != "" {
		t.Errorf("POST body mismatch (-want +got):\n%s", diff)
	}
	if hits["GET /api/v3/qualityprofile"] != 1 {
		t.Errorf("quality profile fetches = %d, want 1", hits["GET /api/v3/qualityprofile"])
	}
}

func TestAddDefaultsQualityToAny(t *testing.T) {
	t.Parallel()
	fake := newFakeSonarr()
	c := newClient(t, fake, "Bluray-2160p")

	if _, err := c.Add(context.Background(), media.MediaResult{Title: "Severance", Slug: "severance", ExternalID: "371980"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, added, _ := fake.state()
	if added["qualityProfileId"] != float64(1) || added["profileId"] != float64(1) {
		t.Errorf("quality ids = %v / %v, want 1", added["qualityProfileId"], added["profileId"])
	}
	if _, ok := added["seasons"]; ok {
		t.Error("seasons should be omitted when the candidate has none")
	}
}

func TestURLBaseAndTransport(t *testing.T) {
	t.Parallel()
	var paths []string
	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		paths = append(paths, req.URL.Path)
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(jsonBody(req.URL.Path)),
			Header:     make(http.Header),
		}, nil
	})}

	c, err := New(config.ProviderConfig{URL: "http://nas:8989", URLBase: "sonarr", APIKey: "k"}, withHTTP(hc))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.List(context.Background(), ""); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"/sonarr/api/v3/qualityprofile", "/sonarr/api/v3/series"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("request paths mismatch (-want +got):\n%s", diff)
	}
}
