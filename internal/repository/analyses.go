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

// AnalysisRepository is the application's contract for analysis results.
// A result is written once when a claim completes; re-analysis adds a new
// row. Aggregates define safe defaults: no analyses yet is not an error.
type AnalysisRepository interface {
	ObserveAll(ctx context.Context) <-chan reactive.Result[[]model.AnalysisResult]
	ObserveByID(ctx context.Context, analysisID string) <-chan reactive.Result[*model.AnalysisResult]
	ObserveByClaimID(ctx context.Context, claimID string) <-chan reactive.Result[[]model.AnalysisResult]
	ObserveRecent(ctx context.Context, limit int) <-chan reactive.Result[[]model.AnalysisResult]
	GetAll(ctx context.Context) ([]model.AnalysisResult, error)
	Insert(ctx context.Context, analysis model.AnalysisResult) error
	InsertMany(ctx context.Context, analyses []model.AnalysisResult) error
	Delete(ctx context.Context, analysisID string) error
	DeleteByClaimID(ctx context.Context, claimID string) error
	DeleteAll(ctx context.Context) error
	AverageConfidence(ctx context.Context) (float64, error)
	TotalCount(ctx context.Context) (int, error)
	SyncWithRemote(ctx context.Context) error
}

type analysisRepository struct {
	table  *store.Table[store.AnalysisRow]
	logger *slog.Logger
}

// NewAnalysisRepository creates the analysis repository over the given store.
func NewAnalysisRepository(s *store.Store, logger *slog.Logger) AnalysisRepository {
	return &analysisRepository{table: s.Analyses(), logger: ensureLogger(logger)}
}

func (r *analysisRepository) ObserveAll(ctx context.Context) <-chan reactive.Result[[]model.AnalysisResult] {
	return reactive.Observe(ctx, r.table.Hub(), func() ([]model.AnalysisResult, error) {
		return r.scan(nil, 0)
	})
}

func (r *analysisRepository) ObserveByID(ctx context.Context, analysisID string) <-chan reactive.Result[*model.AnalysisResult] {
	return reactive.Observe(ctx, r.table.Hub(), func() (*model.AnalysisResult, error) {
		row, found, err := r.table.Get(analysisID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		analysis, err := analysisFromRow(row)
		if err != nil {
			return nil, err
		}
		return &analysis, nil
	})
}

func (r *analysisRepository) ObserveByClaimID(ctx context.Context, claimID string) <-chan reactive.Result[[]model.AnalysisResult] {
	return reactive.Observe(ctx, r.table.Hub(), func() ([]model.AnalysisResult, error) {
		return r.scan(func(row store.AnalysisRow) bool { return row.ClaimID == claimID }, 0)
	})
}

func (r *analysisRepository) ObserveRecent(ctx context.Context, limit int) <-chan reactive.Result[[]model.AnalysisResult] {
	return reactive.Observe(ctx, r.table.Hub(), func() ([]model.AnalysisResult, error) {
		return r.scan(nil, limit)
	})
}

func (r *analysisRepository) GetAll(ctx context.Context) ([]model.AnalysisResult, error) {
	return r.scan(nil, 0)
}

// scan reads matching rows in completion-time descending order and decodes
// them. limit > 0 truncates after ordering.
func (r *analysisRepository) scan(filter func(store.AnalysisRow) bool, limit int) ([]model.AnalysisResult, error) {
	rows, err := r.table.Scan(filter, nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	analyses := make([]model.AnalysisResult, 0, len(rows))
	for _, row := range rows {
		analysis, err := analysisFromRow(row)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// Insert writes one completed analysis. The row ID is derived from the claim
// and completion time, so re-inserting the same completion replaces that row
// rather than duplicating it; a new completion always gets a fresh row.
func (r *analysisRepository) Insert(ctx context.Context, analysis model.AnalysisResult) error {
	analysis.ID = model.AnalysisID(analysis.ClaimID, analysis.CompletedAt)
	if err := model.Validate(analysis); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	row, err := analysisToRow(analysis, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	r.logger.Debug("inserting analysis", "id", row.ID, "claim_id", row.ClaimID)
	return r.table.Put(row)
}

func (r *analysisRepository) InsertMany(ctx context.Context, analyses []model.AnalysisResult) error {
	writtenAt := time.Now().UnixMilli()
	rows := make([]store.AnalysisRow, 0, len(analyses))
	for _, analysis := range analyses {
		analysis.ID = model.AnalysisID(analysis.ClaimID, analysis.CompletedAt)
		if err := model.Validate(analysis); err != nil {
			return fmt.Errorf("insert analyses: %w", err)
		}
		row, err := analysisToRow(analysis, writtenAt)
		if err != nil {
			return fmt.Errorf("insert analyses: %w", err)
		}
		rows = append(rows, row)
	}
	r.logger.Debug("inserting analyses", "count", len(rows))
	return r.table.PutAll(rows)
}

func (r *analysisRepository) Delete(ctx context.Context, analysisID string) error {
	r.logger.Debug("deleting analysis", "id", analysisID)
	return r.table.Delete(analysisID)
}

// DeleteByClaimID removes every analysis of one claim. This is the explicit
// cleanup a caller performs alongside deleting the claim; nothing cascades
// on its own.
func (r *analysisRepository) DeleteByClaimID(ctx context.Context, claimID string) error {
	n, err := r.table.DeleteAll(func(row store.AnalysisRow) bool { return row.ClaimID == claimID })
	if err != nil {
		return err
	}
	r.logger.Debug("deleted analyses for claim", "claim_id", claimID, "count", n)
	return nil
}

func (r *analysisRepository) DeleteAll(ctx context.Context) error {
	n, err := r.table.DeleteAll(nil)
	if err != nil {
		return err
	}
	r.logger.Debug("deleted all analyses", "count", n)
	return nil
}

func (r *analysisRepository) AverageConfidence(ctx context.Context) (float64, error) {
	return r.table.Average(nil, func(row store.AnalysisRow) float64 { return row.ConfidenceScore })
}

func (r *analysisRepository) TotalCount(ctx context.Context) (int, error) {
	return r.table.Count(nil)
}

func (r *analysisRepository) SyncWithRemote(ctx context.Context) error {
	return fmt.Errorf("analyses: sync with remote: %w", ErrUnimplemented)
}
