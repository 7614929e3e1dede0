// Package remote talks to the external catalog and promotion services over HTTP/JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/promowizard/internal/logging"
	"github.com/aretw0/promowizard/pkg/domain"
)

// DefaultTimeout applies when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

// Fields names the record keys of the catalog service. Empty fields use the defaults.
type Fields struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
}

// DefaultFields matches a catalog serving {"id","name","category"} records.
var DefaultFields = Fields{ID: "id", Name: "name", Category: "category"}

func (f Fields) withDefaults() Fields {
	if f.ID == "" {
		f.ID = DefaultFields.ID
	}
	if f.Name == "" {
		f.Name = DefaultFields.Name
	}
	if f.Category == "" {
		f.Category = DefaultFields.Category
	}
	return f
}

// Client implements ports.CatalogService and ports.SubmitService.
type Client struct {
	base    *url.URL
	http    *http.Client
	fields  Fields
	headers http.Header
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithFields maps catalog record keys.
func WithFields(f Fields) Option {
	return func(c *Client) {
		c.fields = f.withDefaults()
	}
}

// WithHeader adds a header to every request, e.g. an authorization token.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: DefaultTimeout},
		fields:  DefaultFields,
		headers: http.Header{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends a request and decodes a 2xx JSON body into out (when out is non-nil).
// Other statuses become *domain.ServiceError.
func (c *Client) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Remote call", "method", method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serviceError(resp)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func serviceError(resp *http.Response) error {
	svcErr := &domain.ServiceError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		svcErr.Message = body.Message
	}
	if svcErr.Message == "" {
		svcErr.Message = http.StatusText(resp.StatusCode)
	}
	return svcErr
}

// IsServiceError reports whether err carries a response from the remote service.
func IsServiceError(err error) bool {
	var svcErr *domain.ServiceError
	return errors.As(err, &svcErr)
}
