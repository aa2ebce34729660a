package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/Digital-Shane/libby/internal/skill"
	"github.com/Digital-Shane/libby/internal/tui/theme"
	"github.com/google/go-cmp/cmp"
)

func TestParseAskArgs(t *testing.T) {
	tests := map[string]struct {
		args    []string
		pending string
		want    skill.Request
		wantErr string
	}{
		"full intent with slots": {
			args: []string{"FindMovie", "movieName=heat", "releaseDate=1995"},
			want: skill.Request{
				SessionID: "cli", Source: "cli", Intent: skill.IntentFindMovie, NewSession: true,
				Slots: map[string]string{"movieName": "heat", "releaseDate": "1995"},
			},
		},
		"slot value keeps equals signs": {
			args: []string{"AddShow", "showName=a=b"},
			want: skill.Request{
				SessionID: "cli", Source: "cli", Intent: skill.IntentAddShow, NewSession: true,
				Slots: map[string]string{"showName": "a=b"},
			},
		},
		"alias with pending confirmation": {
			args:    []string{"YES"},
			pending: `{"providerKind":"movies","candidates":[{"title":"Heat","slug":"","externalId":"949","quality":""}],"cursor":0}`,
			want: skill.Request{
				SessionID: "cli", Source: "cli", Intent: skill.IntentYes,
				Confirmation: &skill.PendingConfirmation{
					ProviderKind: media.Movies,
					Candidates:   []media.MediaResult{{Title: "Heat", ExternalID: "949"}},
				},
			},
		},
		"malformed slot": {
			args:    []string{"FindMovie", "heat"},
			wantErr: `slot "heat" must look like name=value`,
		},
		"malformed pending": {
			args:    []string{"no"},
			pending: "{",
			wantErr: "invalid --pending confirmation",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseAskArgs(tc.args, tc.pending)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("parseAskArgs() error = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAskArgs() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("parseAskArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrintResponse(t *testing.T) {
	pending := skill.BuildReprompt([]media.MediaResult{{Title: "Heat", ExternalID: "949"}}, media.Movies)

	t.Run("pending confirmation prints follow-up commands", func(t *testing.T) {
		var buf bytes.Buffer
		err := printResponse(&buf, skill.Response{
			Speech:       "Would you like to add Heat?",
			Reprompt:     "Would you like to add Heat?",
			Card:         &skill.Card{Title: "Heat (1995)", ImageURL: "https://img/heat.jpg"},
			Confirmation: &pending,
		}, false)
		if err != nil {
			t.Fatalf("printResponse() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Would you like to add Heat?\n",
			"card: Heat (1995)",
			"image: https://img/heat.jpg",
			"reprompt: Would you like to add Heat?",
			"libby ask yes --pending '{",
			`"providerKind":"movies"`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("printResponse() output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("ended session prints speech only", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printResponse(&buf, skill.Response{Speech: "Okay, never mind.", EndSession: true}, false); err != nil {
			t.Fatalf("printResponse() error = %v", err)
		}
		if diff := cmp.Diff("Okay, never mind.\n", buf.String()); diff != "" {
			t.Errorf("printResponse() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printResponse(&buf, skill.Response{Speech: "hi", EndSession: true}, true); err != nil {
			t.Fatalf("printResponse() error = %v", err)
		}
		want := "{\n  \"speech\": \"hi\",\n  \"endSession\": true\n}\n"
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("printResponse() mismatch (-want +got):\n%s", diff)
		}
	})
}

type listClient struct {
	results []media.MediaResult
	err     error
	filters []string
}

func (c *listClient) Name() string { return "fake" }

func (c *listClient) List(_ context.Context, filter string) ([]media.MediaResult, error) {
	c.filters = append(c.filters, filter)
	return c.results, c.err
}

func (c *listClient) Search(context.Context, string) ([]media.MediaResult, error) {
	return nil, nil
}

func (c *listClient) Add(context.Context, media.MediaResult) (*provider.AddOutcome, error) {
	return nil, nil
}

type listProviders map[media.Kind]*listClient

func (p listProviders) Resolve(kind media.Kind) (provider.Client, error) {
	c, ok := p[kind]
	if !ok {
		return nil, &provider.ConfigurationError{Kind: kind, Reason: "url and api key are required"}
	}
	return c, nil
}

func TestFetchLibraries(t *testing.T) {
	movies := &listClient{results: []media.MediaResult{
		{Title: "Zodiac", Year: media.IntPtr(2007), QualityLabel: "HD-1080p"},
		{Title: "alien", Year: media.IntPtr(1979)},
	}}
	providers := listProviders{media.Movies: movies}

	listings := fetchLibraries(context.Background(), providers, media.Kinds, "a")

	if len(listings) != 2 || listings[0].Kind != media.Movies || listings[1].Kind != media.Shows {
		t.Fatalf("fetchLibraries() kinds = %+v, want movies then shows", listings)
	}
	if listings[0].Err != nil {
		t.Errorf("movies error = %v", listings[0].Err)
	}
	var cfgErr *provider.ConfigurationError
	if !errors.As(listings[1].Err, &cfgErr) {
		t.Errorf("shows error = %v, want ConfigurationError", listings[1].Err)
	}
	if diff := cmp.Diff([]string{"a"}, movies.filters); diff != "" {
		t.Errorf("List() filters mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	writeLibrary(&buf, listings)
	want := strings.Join([]string{
		"MOVIES (2)",
		"  alien   1979",
		"  Zodiac  2007  HD-1080p",
		"",
		"SHOWS: shows provider not configured: url and api key are required",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("writeLibrary() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteLibraryEmpty(t *testing.T) {
	var buf bytes.Buffer
	writeLibrary(&buf, []libraryListing{{Kind: media.Shows}})
	if diff := cmp.Diff("SHOWS (0)\n  nothing queued\n", buf.String()); diff != "" {
		t.Errorf("writeLibrary() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateURL(t *testing.T) {
	tests := map[string]bool{
		"":                      true,
		"http://localhost:7878": true,
		"https://radarr.lan":    true,
		"localhost:7878":        false,
		"ftp://radarr.lan":      false,
		"http://":               false,
	}
	for in, ok := range tests {
		if err := validateURL(in); (err == nil) != ok {
			t.Errorf("validateURL(%q) error = %v, want ok=%v", in, err, ok)
		}
	}
}

func TestConfigFormApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Movies.URL = "  http://radarr:7878  "

	form, apply := configForm(cfg)
	if form == nil {
		t.Fatal("configForm() returned nil form")
	}
	apply()

	if cfg.Movies.URL != "http://radarr:7878" {
		t.Errorf("Movies.URL = %q, want trimmed", cfg.Movies.URL)
	}
	if cfg.Server.RateLimit != 5 {
		t.Errorf("Server.RateLimit = %v, want the default to survive", cfg.Server.RateLimit)
	}
}

func TestUITheme(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.UI.Icons = "ascii"
	th, err := uiTheme(cfg)
	if err != nil {
		t.Fatalf("uiTheme() error = %v", err)
	}
	if th.IconMode() != theme.IconsASCII || th.Icon("added") != "[+]" {
		t.Errorf("uiTheme(ascii) mode = %q icon = %q", th.IconMode(), th.Icon("added"))
	}

	cfg.UI.Icons = "sparkles"
	if _, err := uiTheme(cfg); err == nil || !strings.Contains(err.Error(), "ui.icons") {
		t.Errorf("uiTheme(sparkles) error = %v, want ui.icons error", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.DefaultConfig()
	cfg.Movies.URL = "http://radarr:7878"
	cfg.Movies.APIKey = "super-secret"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	for _, key := range []string{"LIBBY_MOVIES_API_KEY", "LIBBY_MOVIES_URL"} {
		if v, ok := os.LookupEnv(key); ok {
			t.Setenv(key, v)
			os.Unsetenv(key)
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "show", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out.String(), "super-secret") {
		t.Errorf("config show leaked the api key:\n%s", out.String())
	}
	if !strings.Contains(out.String(), `"url": "http://radarr:7878"`) {
		t.Errorf("config show output missing url:\n%s", out.String())
	}
}
