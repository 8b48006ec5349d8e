// Package remote holds the network-facing clients: the swappable Azure
// OpenAI client provider, the analysis model wrapper built on it, and the
// GitHub client used for Codespaces billing.
package remote

import (
	"sync/atomic"

	"github.com/sashabaranov/go-openai"
)

// Provider resolves the current Azure OpenAI client. Every accessor returns
// the live value at call time; consumers must call through the provider on
// each use and never keep the returned client across calls. That way a swap
// of the underlying client (token rotation, test substitution, provider
// re-initialization) is observed by every existing consumer on its next
// access, with no stale references anywhere.
type Provider interface {
	// Client returns the current client instance.
	Client() *openai.Client

	// BaseURL returns the configured endpoint.
	BaseURL() string

	// APIVersion returns the API version in use.
	APIVersion() string
}

// ClientProvider is the default Provider. It holds the single mutable slot
// for the client; reads and swaps are safe under concurrency and a reader
// always sees either the old or the new client, never anything partial.
type ClientProvider struct {
	client     atomic.Pointer[openai.Client]
	baseURL    string
	apiVersion string
}

// NewClientProvider creates a provider resolving to the given client.
func NewClientProvider(client *openai.Client, baseURL, apiVersion string) *ClientProvider {
	p := &ClientProvider{baseURL: baseURL, apiVersion: apiVersion}
	p.client.Store(client)
	return p
}

// Client returns the current client instance.
func (p *ClientProvider) Client() *openai.Client { return p.client.Load() }

// BaseURL returns the configured endpoint.
func (p *ClientProvider) BaseURL() string { return p.baseURL }

// APIVersion returns the API version in use.
func (p *ClientProvider) APIVersion() string { return p.apiVersion }

// Swap replaces the client. All consumers observe the new client on their
// next access.
func (p *ClientProvider) Swap(client *openai.Client) {
	p.client.Store(client)
}
