package repository

import (
	"context"
	"log/slog"

	"github.com/stigmahq/stigma-core/internal/model"
	"github.com/stigmahq/stigma-core/internal/remote"
)

// UsageAPI is the slice of the GitHub client this repository needs.
type UsageAPI interface {
	CodespacesUsage(ctx context.Context, token string) (*remote.CodespacesUsageDTO, error)
}

// CodespacesRepository fetches Codespaces billing usage. Every call is a
// live fetch; nothing is cached or persisted. Failures come back as error
// values carrying the upstream message, never as panics, so the caller can
// render a retriable error state.
type CodespacesRepository interface {
	GetUsage(ctx context.Context, token string) (model.CodespacesUsage, error)
}

type codespacesRepository struct {
	api    UsageAPI
	logger *slog.Logger
}

// NewCodespacesRepository creates the usage repository over the GitHub API.
func NewCodespacesRepository(api UsageAPI, logger *slog.Logger) CodespacesRepository {
	return &codespacesRepository{api: api, logger: ensureLogger(logger)}
}

// GetUsage maps the billing response field for field into the domain
// snapshot. The token must be non-empty; validating it is the caller's job.
func (r *codespacesRepository) GetUsage(ctx context.Context, token string) (model.CodespacesUsage, error) {
	r.logger.Debug("fetching codespaces usage")

	dto, err := r.api.CodespacesUsage(ctx, token)
	if err != nil {
		// Returned as is: the upstream message must survive verbatim.
		return model.CodespacesUsage{}, err
	}
	return model.CodespacesUsage{
		TotalMinutesUsed:     dto.TotalMinutesUsed,
		TotalPaidMinutesUsed: dto.TotalPaidMinutesUsed,
		IncludedMinutes:      dto.IncludedMinutes,
		MinutesUsedBreakdown: dto.MinutesUsedBreakdown,
	}, nil
}
