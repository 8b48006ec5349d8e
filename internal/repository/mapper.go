package repository

import (
	"fmt"

	"github.com/stigmahq/stigma-core/internal/codec"
	"github.com/stigmahq/stigma-core/internal/model"
	"github.com/stigmahq/stigma-core/internal/store"
)

func claimToRow(c model.Claim) store.ClaimRow {
	return store.ClaimRow{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Context:     c.Context,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func claimFromRow(r store.ClaimRow) model.Claim {
	return model.Claim{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Context:     r.Context,
		Status:      model.ClaimStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// analysisToRow flattens a result into its row, serializing every composite
// field. The row ID is derived from claim and completion time; createdAt is
// the write timestamp, which may lag completedAt.
func analysisToRow(a model.AnalysisResult, writtenAt int64) (store.AnalysisRow, error) {
	row := store.AnalysisRow{
		ID:                      model.AnalysisID(a.ClaimID, a.CompletedAt),
		ClaimID:                 a.ClaimID,
		ExecutiveSummary:        a.ExecutiveSummary,
		StanceFraming:           a.StanceFraming,
		StrategicRecommendation: a.StrategicRecommendation,
		ConfidenceScore:         a.ConfidenceScore,
		CorrelationAnalysis:     a.CorrelationAnalysis,
		CompletedAt:             a.CompletedAt,
		CreatedAt:               writtenAt,
	}

	var err error
	if row.NormalizedClaimJson, err = codec.EncodeValue(a.NormalizedClaim); err != nil {
		return row, fmt.Errorf("normalized claim: %w", err)
	}
	if row.ParametersJson, err = codec.Encode(a.Parameters); err != nil {
		return row, fmt.Errorf("parameters: %w", err)
	}
	if row.PatternsJson, err = codec.Encode(a.Patterns); err != nil {
		return row, fmt.Errorf("patterns: %w", err)
	}
	if row.SupportingTrendsJson, err = codec.Encode(a.SupportingTrends); err != nil {
		return row, fmt.Errorf("supporting trends: %w", err)
	}
	if row.ComparativeMetricsJson, err = codec.Encode(a.ComparativeMetrics); err != nil {
		return row, fmt.Errorf("comparative metrics: %w", err)
	}
	if row.ScenarioAdvantagesJson, err = codec.Encode(a.ScenarioAdvantages); err != nil {
		return row, fmt.Errorf("scenario advantages: %w", err)
	}
	if row.LimitationsJson, err = codec.Encode(a.Limitations); err != nil {
		return row, fmt.Errorf("limitations: %w", err)
	}
	if row.DataSourcesJson, err = codec.Encode(a.DataSources); err != nil {
		return row, fmt.Errorf("data sources: %w", err)
	}
	return row, nil
}

// analysisFromRow rebuilds the full domain result, decoding every composite
// field. Any field that fails to decode fails this one row with
// codec.ErrCorruptRecord; the caller decides how far that propagates.
func analysisFromRow(r store.AnalysisRow) (model.AnalysisResult, error) {
	a := model.AnalysisResult{
		ID:                      r.ID,
		ClaimID:                 r.ClaimID,
		ExecutiveSummary:        r.ExecutiveSummary,
		StanceFraming:           r.StanceFraming,
		StrategicRecommendation: r.StrategicRecommendation,
		ConfidenceScore:         r.ConfidenceScore,
		CorrelationAnalysis:     r.CorrelationAnalysis,
		CompletedAt:             r.CompletedAt,
		CreatedAt:               r.CreatedAt,
	}

	var err error
	if a.NormalizedClaim, err = codec.DecodeValue[model.NormalizedClaim](r.NormalizedClaimJson); err != nil {
		return a, fmt.Errorf("analysis %s normalized claim: %w", r.ID, err)
	}
	if a.Parameters, err = codec.Decode[model.AnalysisParameter](r.ParametersJson); err != nil {
		return a, fmt.Errorf("analysis %s parameters: %w", r.ID, err)
	}
	if a.Patterns, err = codec.Decode[model.DiscoveredPattern](r.PatternsJson); err != nil {
		return a, fmt.Errorf("analysis %s patterns: %w", r.ID, err)
	}
	if a.SupportingTrends, err = codec.Decode[string](r.SupportingTrendsJson); err != nil {
		return a, fmt.Errorf("analysis %s supporting trends: %w", r.ID, err)
	}
	if a.ComparativeMetrics, err = codec.Decode[model.ComparisonMetric](r.ComparativeMetricsJson); err != nil {
		return a, fmt.Errorf("analysis %s comparative metrics: %w", r.ID, err)
	}
	if a.ScenarioAdvantages, err = codec.Decode[model.Scenario](r.ScenarioAdvantagesJson); err != nil {
		return a, fmt.Errorf("analysis %s scenario advantages: %w", r.ID, err)
	}
	if a.Limitations, err = codec.Decode[string](r.LimitationsJson); err != nil {
		return a, fmt.Errorf("analysis %s limitations: %w", r.ID, err)
	}
	if a.DataSources, err = codec.Decode[string](r.DataSourcesJson); err != nil {
		return a, fmt.Errorf("analysis %s data sources: %w", r.ID, err)
	}
	return a, nil
}
