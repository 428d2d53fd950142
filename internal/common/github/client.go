package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/obentoo/nixbump/internal/common/version"
)

var (
	// ErrRateLimit indicates GitHub API rate limit exceeded
	ErrRateLimit = errors.New("GitHub API rate limit exceeded")
	// ErrNotFound indicates the repository has no published release
	ErrNotFound = errors.New("release not found")
	// ErrAPIError indicates a general GitHub API error
	ErrAPIError = errors.New("GitHub API error")
	// ErrInvalidResponse indicates the response body is not a release descriptor
	ErrInvalidResponse = errors.New("invalid release response")
	// ErrInvalidRepository indicates a repository identifier not in owner/repo form
	ErrInvalidRepository = errors.New("repository must be in owner/repo form")
)

// Client handles communication with the GitHub API
type Client struct {
	BaseURL    string
	UserAgent  string
	Token      string // GitHub personal access token (optional, increases rate limit)
	HTTPClient *http.Client
}

// Release is the subset of a GitHub release descriptor nixbump consumes
type Release struct {
	TagName     string    `json:"tag_name"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// NewClient creates a new GitHub API client
func NewClient() *Client {
	return &Client{
		BaseURL:   "https://api.github.com",
		UserAgent: version.UserAgent(),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithOptions creates a new GitHub API client with custom options.
// A zero timeout leaves requests unbounded.
func NewClientWithOptions(baseURL, token string, timeout time.Duration) *Client {
	client := NewClient()
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}
	client.Token = token
	client.HTTPClient.Timeout = timeout
	return client
}

// ParseRepository splits an owner/repo identifier
func ParseRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepository, repository)
	}
	return parts[0], parts[1], nil
}

// LatestRelease fetches the latest published release of repository (owner/repo)
func (c *Client) LatestRelease(ctx context.Context, repository string) (*Release, error) {
	if _, _, err := ParseRepository(repository); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.BaseURL, repository)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		resetHeader := resp.Header.Get("X-RateLimit-Reset")
		return nil, fmt.Errorf("%w: status %d, rate limit resets at %s", ErrRateLimit, resp.StatusCode, resetHeader)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, repository)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	if release.TagName == "" {
		return nil, fmt.Errorf("%w: missing tag_name", ErrInvalidResponse)
	}

	return &release, nil
}

// RepoURL returns the clone URL of a github.com repository
func RepoURL(owner, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", owner, repo)
}

// ArchiveURL returns the source tarball URL of a github.com repository at ref
func ArchiveURL(owner, repo, ref string) string {
	return fmt.Sprintf("https://github.com/%s/%s/archive/%s.tar.gz", owner, repo, ref)
}
