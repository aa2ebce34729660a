// Package arr is the shared HTTP plumbing for the Radarr and Sonarr v3 APIs.
package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/libby/internal/config"
	"github.com/Digital-Shane/libby/internal/media"
	"github.com/Digital-Shane/libby/internal/provider"
	"github.com/charmbracelet/log"
)

const (
	apiPrefix    = "/api/v3"
	apiKeyHeader = "X-Api-Key"
	maxErrorBody = 512
)

// RootFolder is a storage location new entries are placed under.
type RootFolder struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

// Client performs authenticated JSON requests against one *arr instance.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the service called name using cfg.
func New(name string, cfg config.ProviderConfig, opts ...Option) (*Client, error) {
	base := cfg.BaseURL()
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s url %q", name, cfg.URL)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		name:       name,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the service name used in errors.
func (c *Client) Name() string {
	return c.name
}

// Get issues GET /api/v3/<path> and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, out)
	return err
}

// Post issues POST /api/v3/<path> with body as JSON and decodes the reply into
// out. The raw reply body is returned as well.
func (c *Client) Post(ctx context.Context, path string, body any, out any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// RootFolders lists the configured root folders.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.Get(ctx, "rootfolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// FirstRootFolder returns the path of the first root folder.
func (c *Client) FirstRootFolder(ctx context.Context) (string, error) {
	folders, err := c.RootFolders(ctx)
	if err != nil {
		return "", err
	}
	if len(folders) == 0 || folders[0].Path == "" {
		return "", &provider.ProviderError{
			Provider: c.name,
			Code:     provider.CodeNoRootFolder,
			Message:  "no root folder configured",
		}
	}
	return folders[0].Path, nil
}

// QualityProfiles lists the quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]media.QualityProfile, error) {
	var profiles []media.QualityProfile
	if err := c.Get(ctx, "qualityprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) ([]byte, error) {
	endpoint := c.baseURL + apiPrefix + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", c.name, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", c.name, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: c.name,
			Code:     provider.CodeUnavailable,
			Message:  fmt.Sprintf("%s %s failed", method, path),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: c.name,
			Code:     provider.CodeBadResponse,
			Status:   resp.StatusCode,
			Message:  "failed to read response body",
			Err:      err,
		}
	}

	c.logger.Debug("arr request", "provider", c.name, "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &provider.ProviderError{
			Provider: c.name,
			Code:     provider.CodeForStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("%s %s: %s", method, path, errorSummary(data)),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, &provider.ProviderError{
				Provider: c.name,
				Code:     provider.CodeBadResponse,
				Status:   resp.StatusCode,
				Message:  "failed to decode response",
				Err:      err,
			}
		}
	}

	return data, nil
}

// errorSummary extracts a readable message from an *arr error body.
func errorSummary(data []byte) string {
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &single); err == nil && single.Message != "" {
		return single.Message
	}

	var validation []struct {
		PropertyName string `json:"propertyName"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(data, &validation); err == nil && len(validation) > 0 {
		parts := make([]string, 0, len(validation))
		for _, v := range validation {
			parts = append(parts, strings.TrimSpace(v.PropertyName+" "+v.ErrorMessage))
		}
		return strings.Join(parts, "; ")
	}

	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	if text == "" {
		return "empty response"
	}
	return text
}
