// Package backend talks to the SignalRoot backend over HTTP: the version
// history, the OpenAPI document and webhook test deliveries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

// DefaultBaseURL is used when no backend URL is configured.
const DefaultBaseURL = "http://localhost:8080"

const (
	versionsPath = "/api/versions"
	apiDocsPath  = "/v3/api-docs"

	maxResponseBodySize = 4 << 20
	userAgent           = "signalroot-console/1.0"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero means 15s.
	Timeout time.Duration
	Logger  *log.Logger
	// HTTPClient overrides the pooled client, mostly for tests.
	HTTPClient *http.Client
}

// Client is a small JSON client for the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient builds a client. No authentication headers are sent.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		logger:     opts.Logger,
	}
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("%s %s failed after %s: %v", method, path, time.Since(start).Round(time.Millisecond), err)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	c.logger.Printf("%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// getJSON issues a GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		return &StatusError{Path: path, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return &TransportError{Method: http.MethodGet, URL: c.baseURL + path, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

type versionPayload struct {
	ID          any    `json:"id"`
	Version     string `json:"version"`
	ReleasedAt  string `json:"releasedAt"`
	ReleaseDate string `json:"releaseDate"`
	IsCurrent   bool   `json:"isCurrent"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Changes     []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Component   string `json:"component"`
		Breaking    bool   `json:"breaking"`
	} `json:"changes"`
}

func (p versionPayload) toModel() model.ChangelogVersion {
	v := model.ChangelogVersion{
		Version:     p.Version,
		ReleaseDate: p.ReleaseDate,
		Status:      p.Status,
	}
	if v.ReleaseDate == "" {
		v.ReleaseDate = p.ReleasedAt
	}
	if v.Status == "" {
		v.Status = "stable"
		if p.IsCurrent {
			v.Status = "current"
		}
	}
	for _, c := range p.Changes {
		v.Changes = append(v.Changes, model.Change{
			Type:        strings.ToLower(c.Type),
			Description: c.Description,
			Component:   c.Component,
			Breaking:    c.Breaking,
		})
	}
	return v
}

// Versions fetches the backend's version history.
func (c *Client) Versions(ctx context.Context) ([]model.ChangelogVersion, error) {
	var payload []versionPayload
	if err := c.getJSON(ctx, versionsPath, &payload); err != nil {
		return nil, err
	}
	out := make([]model.ChangelogVersion, 0, len(payload))
	for _, p := range payload {
		out = append(out, p.toModel())
	}
	return out, nil
}

// APIDocs fetches the backend's OpenAPI document.
func (c *Client) APIDocs(ctx context.Context) (*model.OpenAPIDocument, error) {
	var doc model.OpenAPIDocument
	if err := c.getJSON(ctx, apiDocsPath, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Endpoints fetches the OpenAPI document and flattens it.
func (c *Client) Endpoints(ctx context.Context) ([]model.APIEndpoint, error) {
	doc, err := c.APIDocs(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Endpoints(), nil
}

// TestWebhook posts payload as JSON to path and reports the outcome. It never
// returns an error; failures are described in the result.
func (c *Client) TestWebhook(ctx context.Context, path string, payload any) model.WebhookResult {
	result := model.WebhookResult{}

	body, err := json.Marshal(payload)
	if err != nil {
		result.Message = fmt.Sprintf("failed to encode payload: %v", err)
		result.Timestamp = time.Now()
		return result
	}
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		result.Message = failureMessage(err)
		result.Timestamp = time.Now()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode <= 299

	var reply struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err == nil {
		err = json.Unmarshal(data, &reply)
	}
	switch {
	case err != nil:
		// A response that is not JSON fails the test regardless of status.
		result.Success = false
		result.Message = failureMessage(&ParseError{Path: path, Err: err})
	case reply.Message != "":
		result.Message = reply.Message
	default:
		result.Message = "Test completed successfully"
	}
	result.Timestamp = time.Now()
	return result
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Test failed"
	}
	return err.Error()
}
