package artwork

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/google/go-cmp/cmp"
)

// fakeSource returns a fixed answer and counts calls.
type fakeSource struct {
	name  string
	kinds []media.Kind
	url   string
	err   error
	delay time.Duration
	calls int32
	seen  []Query
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Supports(kind media.Kind) bool {
	if len(f.kinds) == 0 {
		return true
	}
	for _, k := range f.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (f *fakeSource) Poster(ctx context.Context, q Query) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.seen = append(f.seen, q)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.url, f.err
}

func newFinder(sources ...Source) *Finder {
	return New(config.ArtworkConfig{TimeoutMS: 200}, WithSources(sources...))
}

func TestFindPrefersEmbeddedPoster(t *testing.T) {
	t.Parallel()
	src := &fakeSource{name: "tmdb", url: "https://tmdb/poster.jpg"}
	f := newFinder(src)

	result := media.MediaResult{
		Title:  "Arrival",
		Images: []media.Image{{CoverType: "poster", RemoteURL: "https://radarr/remote.jpg"}},
	}
	if got := f.Find(context.Background(), media.Movies, result); got != "https://radarr/remote.jpg" {
		t.Errorf("Find() = %q, want embedded poster", got)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times, want 0", src.calls)
	}
}

func TestFindFallsThroughSources(t *testing.T) {
	t.Parallel()
	failing := &fakeSource{name: "tmdb", err: errors.New("rate limited")}
	empty := &fakeSource{name: "omdb"}
	hit := &fakeSource{name: "tvdb", url: "https://tvdb/poster.jpg"}
	f := newFinder(failing, empty, hit)

	result := media.MediaResult{
		Title:      "Severance",
		Year:       media.IntPtr(2022),
		IMDbID:     media.StringPtr("tt11280740"),
		ExternalID: "371980",
	}
	if got := f.Find(context.Background(), media.Shows, result); got != "https://tvdb/poster.jpg" {
		t.Errorf("Find() = %q", got)
	}

	want := Query{Kind: media.Shows, Title: "Severance", Year: 2022, IMDbID: "tt11280740", ExternalID: "371980"}
	if diff := cmp.Diff([]Query{want}, hit.seen); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	if failing.calls != 1 || empty.calls != 1 {
		t.Errorf("calls = %d, %d; want 1, 1", failing.calls, empty.calls)
	}
}

func TestFindSkipsUnsupportedKinds(t *testing.T) {
	t.Parallel()
	showsOnly := &fakeSource{name: "tvdb", kinds: []media.Kind{media.Shows}, url: "https://tvdb/x.jpg"}
	f := newFinder(showsOnly)

	if got := f.Find(context.Background(), media.Movies, media.MediaResult{Title: "Dune"}); got != "" {
		t.Errorf("Find() = %q, want empty", got)
	}
	if showsOnly.calls != 0 {
		t.Errorf("shows-only source called for a movie")
	}
}

func TestFindCachesHitsAndMisses(t *testing.T) {
	t.Parallel()
	hit := &fakeSource{name: "tmdb", url: "https://tmdb/dune.jpg"}
	f := newFinder(hit)
	dune := media.MediaResult{Title: "Dune", ExternalID: "438631"}

	for i := 0; i < 3; i++ {
		if got := f.Find(context.Background(), media.Movies, dune); got != "https://tmdb/dune.jpg" {
			t.Fatalf("Find() = %q", got)
		}
	}
	if hit.calls != 1 {
		t.Errorf("hit source called %d times, want 1", hit.calls)
	}

	miss := &fakeSource{name: "tmdb"}
	f = newFinder(miss)
	unknown := media.MediaResult{Title: "Unreleased"}
	f.Find(context.Background(), media.Movies, unknown)
	f.Find(context.Background(), media.Movies, unknown)
	if miss.calls != 1 {
		t.Errorf("miss source called %d times, want 1", miss.calls)
	}
}

func TestFindTimeoutIsNotCached(t *testing.T) {
	t.Parallel()
	slow := &fakeSource{name: "tmdb", url: "https://tmdb/slow.jpg", delay: time.Second}
	f := New(config.ArtworkConfig{}, WithSources(slow), WithTimeout(20*time.Millisecond))
	result := media.MediaResult{Title: "Slowpoke"}

	if got := f.Find(context.Background(), media.Movies, result); got != "" {
		t.Errorf("Find() = %q, want empty on timeout", got)
	}
	f.Find(context.Background(), media.Movies, result)
	if got := atomic.LoadInt32(&slow.calls); got != 2 {
		t.Errorf("slow source called %d times, want 2", got)
	}
}

func TestNilFinder(t *testing.T) {
	t.Parallel()
	var f *Finder
	if got := f.Find(context.Background(), media.Movies, media.MediaResult{Title: "x"}); got != "" {
		t.Errorf("nil Finder.Find() = %q", got)
	}
	if err := f.SaveCache(); err != nil {
		t.Errorf("nil Finder.SaveCache() = %v", err)
	}
}

func TestNewBuildsConfiguredSources(t *testing.T) {
	t.Parallel()
	f := New(config.ArtworkConfig{TMDBAPIKey: "t", OMDBAPIKey: "o", TVDBAPIKey: "v"})
	if diff := cmp.Diff([]string{"tmdb", "omdb", "tvdb"}, f.SourceNames()); diff != "" {
		t.Errorf("SourceNames() mismatch (-want +got):\n%s", diff)
	}

	if got := New(config.ArtworkConfig{}).SourceNames(); len(got) != 0 {
		t.Errorf("unconfigured SourceNames() = %v", got)
	}
}

func TestCachePersistence(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "artwork.gob")
	hit := &fakeSource{name: "tmdb", url: "https://tmdb/heat.jpg"}
	heat := media.MediaResult{Title: "Heat", ExternalID: "949"}

	f := New(config.ArtworkConfig{}, WithSources(hit), WithCacheFile(path))
	f.Find(context.Background(), media.Movies, heat)
	if err := f.SaveCache(); err != nil {
		t.Fatalf("SaveCache() error = %v", err)
	}

	again := &fakeSource{name: "tmdb", url: "https://tmdb/other.jpg"}
	reloaded := New(config.ArtworkConfig{}, WithSources(again), WithCacheFile(path))
	if got := reloaded.Find(context.Background(), media.Movies, heat); got != "https://tmdb/heat.jpg" {
		t.Errorf("reloaded Find() = %q, want cached URL", got)
	}
	if again.calls != 0 {
		t.Errorf("source called %d times after reload, want 0", again.calls)
	}
}
