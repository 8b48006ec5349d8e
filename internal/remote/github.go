package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultGitHubBaseURL = "https://api.github.com"

// CodespacesUsageDTO mirrors the GitHub Codespaces billing response.
// GET /user/codespaces/billing
type CodespacesUsageDTO struct {
	TotalMinutesUsed     int            `json:"total_minutes_used"`
	TotalPaidMinutesUsed int            `json:"total_paid_minutes_used"`
	IncludedMinutes      int            `json:"included_minutes"`
	MinutesUsedBreakdown map[string]int `json:"minutes_used_breakdown"`
}

// GitHubClient calls the GitHub REST API. Requests pass through a client-side
// rate limiter so bursts of UI refreshes cannot trip GitHub's limits.
type GitHubClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// GitHubOption configures a GitHubClient.
type GitHubOption func(*GitHubClient)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) GitHubOption {
	return func(c *GitHubClient) { c.baseURL = baseURL }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) GitHubOption {
	return func(c *GitHubClient) { c.httpClient = httpClient }
}

// WithRateLimit sets the request rate ceiling.
func WithRateLimit(requestsPerSecond float64, burst int) GitHubOption {
	return func(c *GitHubClient) {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewGitHubClient creates a client against api.github.com.
func NewGitHubClient(opts ...GitHubOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultGitHubBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CodespacesUsage fetches the authenticated user's Codespaces billing usage.
// The caller supplies a non-empty bearer token with the codespace scope.
// Non-2xx responses become an *APIError carrying the upstream status line
// and GitHub's message field when present.
func (c *GitHubClient) CodespacesUsage(ctx context.Context, token string) (*CodespacesUsageDTO, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/codespaces/billing", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch codespaces usage: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		var ghErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &ghErr) == nil {
			apiErr.Message = ghErr.Message
		}
		return nil, apiErr
	}

	var dto CodespacesUsageDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    fmt.Sprintf("decode response: %v", err),
		}
	}
	return &dto, nil
}
