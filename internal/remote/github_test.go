package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestGitHubClient_CodespacesUsage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/codespaces/billing" {
			t.Errorf("expected path /user/codespaces/billing, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			t.Errorf("expected bearer token header, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_minutes_used":      120,
			"total_paid_minutes_used": 0,
			"included_minutes":        2000,
			"minutes_used_breakdown":  map[string]int{"UBUNTU": 120},
		})
	}))
	defer server.Close()

	client := NewGitHubClient(WithBaseURL(server.URL))
	dto, err := client.CodespacesUsage(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &CodespacesUsageDTO{
		TotalMinutesUsed:     120,
		TotalPaidMinutesUsed: 0,
		IncludedMinutes:      2000,
		MinutesUsedBreakdown: map[string]int{"UBUNTU": 120},
	}
	if !reflect.DeepEqual(dto, want) {
		t.Errorf("field mapping mismatch:\n got %+v\nwant %+v", dto, want)
	}
}

func TestGitHubClient_CodespacesUsage_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
	}))
	defer server.Close()

	client := NewGitHubClient(WithBaseURL(server.URL))
	_, err := client.CodespacesUsage(context.Background(), "bad-token")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.StatusCode)
	}
	// The transport's status line is preserved verbatim.
	if apiErr.Status != "401 Unauthorized" {
		t.Errorf("expected status %q, got %q", "401 Unauthorized", apiErr.Status)
	}
	if apiErr.Message != "Bad credentials" {
		t.Errorf("expected upstream message preserved, got %q", apiErr.Message)
	}
	if apiErr.Error() != "HTTP 401 Unauthorized: Bad credentials" {
		t.Errorf("unexpected error string %q", apiErr.Error())
	}
}

func TestGitHubClient_CodespacesUsage_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewGitHubClient(WithBaseURL(server.URL))
	_, err := client.CodespacesUsage(context.Background(), "token")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError for malformed body, got %v", err)
	}
}

func TestGitHubClient_RateLimiterHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(CodespacesUsageDTO{})
	}))
	defer server.Close()

	// One request per hour, burst of one: the second call has to wait and
	// must give up as soon as the context is cancelled.
	client := NewGitHubClient(WithBaseURL(server.URL), WithRateLimit(1.0/3600, 1))

	if _, err := client.CodespacesUsage(context.Background(), "token"); err != nil {
		t.Fatalf("first call should pass the limiter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.CodespacesUsage(ctx, "token"); err == nil {
		t.Error("expected error when context is cancelled while rate limited")
	}
}
