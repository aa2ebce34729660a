package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/google/go-cmp/cmp"
)

// stubClient is a minimal Client for registry tests
type stubClient struct {
	name string
	cfg  config.ProviderConfig
}

func (s *stubClient) Name() string { return s.name }
func (s *stubClient) List(context.Context, string) ([]media.MediaResult, error) {
	return nil, nil
}
func (s *stubClient) Search(context.Context, string) ([]media.MediaResult, error) {
	return nil, nil
}
func (s *stubClient) Add(context.Context, media.MediaResult) (*AddOutcome, error) {
	return &AddOutcome{}, nil
}

func countingFactory(calls *int) Factory {
	return func(cfg config.ProviderConfig) (Client, error) {
		*calls++
		return &stubClient{name: "stub", cfg: cfg}, nil
	}
}

func configured() config.ProviderConfig {
	return config.ProviderConfig{URL: "http://localhost:7878", APIKey: "key"}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	var calls int

	if err := registry.Register(media.Movies, countingFactory(&calls)); err != nil {
		t.Errorf("Register() error = %v, want nil", err)
	}
	if err := registry.Register(media.Movies, countingFactory(&calls)); err == nil {
		t.Error("Register() duplicate should return error")
	}
	if err := registry.Register(media.Shows, countingFactory(&calls)); err != nil {
		t.Errorf("Register(shows) error = %v", err)
	}

	if diff := cmp.Diff([]media.Kind{media.Movies, media.Shows}, registry.Kinds()); diff != "" {
		t.Errorf("Kinds() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ResolveBuildsOnce(t *testing.T) {
	registry := NewRegistry()
	var calls int
	_ = registry.Register(media.Movies, countingFactory(&calls))
	registry.Configure(media.Movies, configured())

	first, err := registry.Resolve(media.Movies)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := registry.Resolve(media.Movies)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if first != second {
		t.Error("Resolve() should return the same client instance")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if got := first.(*stubClient).cfg.URL; got != "http://localhost:7878" {
		t.Errorf("factory received URL %q", got)
	}
}

func TestRegistry_ResolveConfigurationErrors(t *testing.T) {
	tests := map[string]struct {
		register  bool
		configure *config.ProviderConfig
		factory   Factory
	}{
		"no factory": {
			register: false,
		},
		"not configured": {
			register: true,
		},
		"missing api key": {
			register:  true,
			configure: &config.ProviderConfig{URL: "http://localhost:7878"},
		},
		"factory failure": {
			register:  true,
			configure: &config.ProviderConfig{URL: "http://localhost:7878", APIKey: "k"},
			factory: func(config.ProviderConfig) (Client, error) {
				return nil, errors.New("bad url")
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			registry := NewRegistry()
			if tc.register {
				factory := tc.factory
				if factory == nil {
					var calls int
					factory = countingFactory(&calls)
				}
				_ = registry.Register(media.Shows, factory)
			}
			if tc.configure != nil {
				registry.Configure(media.Shows, *tc.configure)
			}

			client, err := registry.Resolve(media.Shows)
			if client != nil {
				t.Errorf("Resolve() client = %v, want nil", client)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Resolve() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Kind != media.Shows {
				t.Errorf("ConfigurationError.Kind = %q, want shows", cfgErr.Kind)
			}
		})
	}
}

func TestRegistry_ConfigureResetsClient(t *testing.T) {
	registry := NewRegistry()
	var calls int
	_ = registry.Register(media.Movies, countingFactory(&calls))

	cfg := config.DefaultConfig()
	cfg.Movies = configured()
	registry.ConfigureAll(cfg)

	if _, err := registry.Resolve(media.Movies); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	registry.Configure(media.Movies, config.ProviderConfig{URL: "http://other:7878", APIKey: "k2"})
	client, err := registry.Resolve(media.Movies)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if calls != 2 {
		t.Errorf("factory called %d times, want 2", calls)
	}
	if got := client.(*stubClient).cfg.URL; got != "http://other:7878" {
		t.Errorf("client built from stale config %q", got)
	}
}
