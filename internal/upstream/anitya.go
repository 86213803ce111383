package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrNotTracked     = errors.New("package is not tracked upstream")
	ErrNoVersion      = errors.New("upstream reports no version")
	ErrUnexpectedCode = errors.New("unexpected response status")
)

// maxResponseSize bounds the JSON body read from the service
const maxResponseSize = 1 << 20

// packagesResponse is the body of GET /api/v2/packages/
type packagesResponse struct {
	Items []struct {
		Name           string   `json:"name"`
		Project        string   `json:"project"`
		Distribution   string   `json:"distribution"`
		Version        string   `json:"version"`
		StableVersions []string `json:"stable_versions"`
	} `json:"items"`
	TotalItems int `json:"total_items"`
}

// Client queries the packages API of a release-monitoring instance
type Client struct {
	baseURL      string
	distribution string
	http         *RetryableHTTPClient
}

// NewClient creates a client for baseURL mapping names within distribution
func NewClient(baseURL, distribution string, httpClient *RetryableHTTPClient) *Client {
	if httpClient == nil {
		httpClient = NewRetryableHTTPClient()
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		distribution: distribution,
		http:         httpClient,
	}
}

// QueryURL returns the lookup URL for a package name
func (c *Client) QueryURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("distribution", c.distribution)
	return c.baseURL + "/api/v2/packages/?" + q.Encode()
}

// LatestVersion returns the newest stable upstream version of the project
// mapped to name, falling back to the latest version when no stable one
// is known.
func (c *Client) LatestVersion(ctx context.Context, name string) (string, error) {
	resp, err := c.http.Get(ctx, c.QueryURL(name))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotTracked
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var pr packagesResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(pr.Items) == 0 {
		return "", ErrNotTracked
	}

	item := pr.Items[0]
	if len(item.StableVersions) > 0 && item.StableVersions[0] != "" {
		return item.StableVersions[0], nil
	}
	if item.Version != "" {
		return item.Version, nil
	}
	return "", ErrNoVersion
}
