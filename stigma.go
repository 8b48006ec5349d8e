// Package stigma is the local-first persistence and analysis core for the
// Stigma claims client. It bundles a durable row store, reactive queries,
// the claim and analysis repositories, and the remote clients behind a
// single Open call.
//
// Everything below this package lives in internal packages; the aliases
// here are the supported surface.
package stigma

import (
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/stigmahq/stigma-core/internal/codec"
	"github.com/stigmahq/stigma-core/internal/config"
	"github.com/stigmahq/stigma-core/internal/model"
	"github.com/stigmahq/stigma-core/internal/reactive"
	"github.com/stigmahq/stigma-core/internal/remote"
	"github.com/stigmahq/stigma-core/internal/repository"
	"github.com/stigmahq/stigma-core/internal/store"
)

// Domain types.
type (
	Claim             = model.Claim
	ClaimStatus       = model.ClaimStatus
	AnalysisResult    = model.AnalysisResult
	NormalizedClaim   = model.NormalizedClaim
	AnalysisParameter = model.AnalysisParameter
	DiscoveredPattern = model.DiscoveredPattern
	ComparisonMetric  = model.ComparisonMetric
	Scenario          = model.Scenario
	CodespacesUsage   = model.CodespacesUsage
)

// Claim lifecycle states.
const (
	StatusPending   = model.StatusPending
	StatusAnalyzing = model.StatusAnalyzing
	StatusCompleted = model.StatusCompleted
	StatusFailed    = model.StatusFailed
)

// Result carries one emission of a reactive query: a value or an error,
// never both.
type Result[T any] = reactive.Result[T]

// Repository interfaces.
type (
	ClaimRepository      = repository.ClaimRepository
	AnalysisRepository   = repository.AnalysisRepository
	CodespacesRepository = repository.CodespacesRepository
)

// APIError is the typed error for non-2xx responses from remote services.
type APIError = remote.APIError

// Sentinel errors.
var (
	ErrCorruptRecord       = codec.ErrCorruptRecord
	ErrConstraintViolation = model.ErrConstraintViolation
	ErrUnimplemented       = repository.ErrUnimplemented
)

// Configuration.
type Config = config.Config

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config { return config.DefaultConfig() }

// LoadConfig reads configuration from file (may be empty) and STIGMA_*
// environment variables.
func LoadConfig(file string) (Config, error) { return config.Load(file) }

// WriteDefaultConfig creates a documented default config file at path.
func WriteDefaultConfig(path string) error { return config.WriteDefault(path) }

// NewClaim builds a claim in the PENDING state with a fresh id and
// creation timestamps.
func NewClaim(title, description, context string) Claim {
	return model.NewClaim(title, description, context)
}

// AnalysisID derives the analysis row id from its claim and completion
// time.
func AnalysisID(claimID string, completedAt int64) string {
	return model.AnalysisID(claimID, completedAt)
}

// Core owns the open store, the repositories, and the remote clients.
// A Core is safe for concurrent use. Close it when done.
type Core struct {
	store      *store.Store
	provider   *remote.ClientProvider
	azure      *remote.AzureModel
	claims     repository.ClaimRepository
	analyses   repository.AnalysisRepository
	codespaces repository.CodespacesRepository
}

// Open wires the core from cfg. The Azure model is only constructed when
// an endpoint is configured; Analyzer returns nil otherwise.
func Open(cfg Config, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	storeCfg := store.DefaultConfig(cfg.Database.Path)
	storeCfg.SyncWrites = cfg.Database.SyncWrites
	if cfg.Database.CacheTTL > 0 {
		storeCfg.CacheTTL = cfg.Database.CacheTTL
	}
	storeCfg.Logger = logger

	s, err := store.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// A zero-value Config keeps the client's own defaults: a zero-rate
	// limiter would block every request forever.
	var githubOpts []remote.GitHubOption
	if cfg.GitHub.BaseURL != "" {
		githubOpts = append(githubOpts, remote.WithBaseURL(cfg.GitHub.BaseURL))
	}
	if cfg.GitHub.RequestsPerSecond > 0 {
		githubOpts = append(githubOpts, remote.WithRateLimit(cfg.GitHub.RequestsPerSecond, cfg.GitHub.Burst))
	}
	github := remote.NewGitHubClient(githubOpts...)

	c := &Core{
		store:      s,
		claims:     repository.NewClaimRepository(s, logger),
		analyses:   repository.NewAnalysisRepository(s, logger),
		codespaces: repository.NewCodespacesRepository(github, logger),
	}

	if cfg.Azure.Endpoint != "" {
		client := remote.NewAzureClient(cfg.Azure.APIKey, cfg.Azure.Endpoint, cfg.Azure.APIVersion)
		c.provider = remote.NewClientProvider(client, cfg.Azure.Endpoint, cfg.Azure.APIVersion)
		c.azure = remote.NewAzureModel(c.provider, cfg.Azure.Deployment)
	}

	return c, nil
}

// Claims returns the claim repository.
func (c *Core) Claims() ClaimRepository { return c.claims }

// Analyses returns the analysis repository.
func (c *Core) Analyses() AnalysisRepository { return c.analyses }

// Codespaces returns the Codespaces usage repository.
func (c *Core) Codespaces() CodespacesRepository { return c.codespaces }

// Analyzer returns the Azure analysis model, or nil when no endpoint was
// configured.
func (c *Core) Analyzer() *remote.AzureModel { return c.azure }

// SwapAzureClient atomically replaces the underlying Azure client.
// In-flight calls keep the client they started with; later calls see the
// new one. No-op when no endpoint was configured at Open.
func (c *Core) SwapAzureClient(apiKey, endpoint, apiVersion string) {
	if c.provider == nil {
		return
	}
	c.provider.Swap(remote.NewAzureClient(apiKey, endpoint, apiVersion))
}

// AzureClient exposes the currently active Azure client, mainly for
// request construction tests. Nil when no endpoint was configured.
func (c *Core) AzureClient() *openai.Client {
	if c.provider == nil {
		return nil
	}
	return c.provider.Client()
}

// Close releases the store. Observers are not force-closed; cancel their
// contexts first.
func (c *Core) Close() error { return c.store.Close() }
