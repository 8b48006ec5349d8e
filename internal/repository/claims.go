package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stigmahq/stigma-core/internal/model"
	"github.com/stigmahq/stigma-core/internal/reactive"
	"github.com/stigmahq/stigma-core/internal/store"
)

// ClaimRepository is the application's contract for claim persistence.
// Observe methods return live sequences that emit the current result
// immediately and again after every write to the claim family; cancelling
// the context ends the observation.
type ClaimRepository interface {
	ObserveAll(ctx context.Context) <-chan reactive.Result[[]model.Claim]
	ObserveByID(ctx context.Context, claimID string) <-chan reactive.Result[*model.Claim]
	ObserveByStatus(ctx context.Context, status model.ClaimStatus) <-chan reactive.Result[[]model.Claim]
	GetAll(ctx context.Context) ([]model.Claim, error)
	Insert(ctx context.Context, claim model.Claim) error
	InsertMany(ctx context.Context, claims []model.Claim) error
	Update(ctx context.Context, claim model.Claim) error
	Delete(ctx context.Context, claimID string) error
	DeleteAll(ctx context.Context) error
	SyncWithRemote(ctx context.Context) error
}

type claimRepository struct {
	table  *store.Table[store.ClaimRow]
	logger *slog.Logger
}

// NewClaimRepository creates the claim repository over the given store.
func NewClaimRepository(s *store.Store, logger *slog.Logger) ClaimRepository {
	return &claimRepository{table: s.Claims(), logger: ensureLogger(logger)}
}

func (r *claimRepository) ObserveAll(ctx context.Context) <-chan reactive.Result[[]model.Claim] {
	return reactive.Observe(ctx, r.table.Hub(), func() ([]model.Claim, error) {
		return r.scan(nil)
	})
}

func (r *claimRepository) ObserveByID(ctx context.Context, claimID string) <-chan reactive.Result[*model.Claim] {
	return reactive.Observe(ctx, r.table.Hub(), func() (*model.Claim, error) {
		row, found, err := r.table.Get(claimID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		claim := claimFromRow(row)
		return &claim, nil
	})
}

func (r *claimRepository) ObserveByStatus(ctx context.Context, status model.ClaimStatus) <-chan reactive.Result[[]model.Claim] {
	return reactive.Observe(ctx, r.table.Hub(), func() ([]model.Claim, error) {
		return r.scan(func(row store.ClaimRow) bool { return row.Status == string(status) })
	})
}

func (r *claimRepository) GetAll(ctx context.Context) ([]model.Claim, error) {
	return r.scan(nil)
}

func (r *claimRepository) scan(filter func(store.ClaimRow) bool) ([]model.Claim, error) {
	rows, err := r.table.Scan(filter, nil)
	if err != nil {
		return nil, err
	}
	claims := make([]model.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, claimFromRow(row))
	}
	return claims, nil
}

func (r *claimRepository) Insert(ctx context.Context, claim model.Claim) error {
	if err := model.Validate(claim); err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	r.logger.Debug("inserting claim", "id", claim.ID, "title", claim.Title)
	return r.table.Put(claimToRow(claim))
}

func (r *claimRepository) InsertMany(ctx context.Context, claims []model.Claim) error {
	rows := make([]store.ClaimRow, 0, len(claims))
	for _, claim := range claims {
		if err := model.Validate(claim); err != nil {
			return fmt.Errorf("insert claims: %w", err)
		}
		rows = append(rows, claimToRow(claim))
	}
	r.logger.Debug("inserting claims", "count", len(rows))
	return r.table.PutAll(rows)
}

// Update persists the claim as given, refreshing UpdatedAt to the write
// time. The repository stores whatever status the orchestrator decided on;
// it never advances the lifecycle itself.
func (r *claimRepository) Update(ctx context.Context, claim model.Claim) error {
	claim.UpdatedAt = time.Now().UnixMilli()
	if claim.UpdatedAt < claim.CreatedAt {
		claim.UpdatedAt = claim.CreatedAt
	}
	if err := model.Validate(claim); err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	r.logger.Debug("updating claim", "id", claim.ID, "status", claim.Status)
	return r.table.Put(claimToRow(claim))
}

// Delete removes the claim only. Its analysis results stay behind with a
// dangling claimId; the caller deletes them explicitly when that is wanted.
func (r *claimRepository) Delete(ctx context.Context, claimID string) error {
	r.logger.Debug("deleting claim", "id", claimID)
	return r.table.Delete(claimID)
}

func (r *claimRepository) DeleteAll(ctx context.Context) error {
	n, err := r.table.DeleteAll(nil)
	if err != nil {
		return err
	}
	r.logger.Debug("deleted all claims", "count", n)
	return nil
}

func (r *claimRepository) SyncWithRemote(ctx context.Context) error {
	return fmt.Errorf("claims: sync with remote: %w", ErrUnimplemented)
}
