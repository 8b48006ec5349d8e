package repository

import (
	"testing"
	"time"

	"github.com/stigmahq/stigma-core/internal/model"
	"github.com/stigmahq/stigma-core/internal/reactive"
	"github.com/stigmahq/stigma-core/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.InMemoryConfig())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func recv[T any](t *testing.T, ch <-chan reactive.Result[T]) reactive.Result[T] {
	t.Helper()
	select {
	case r, ok := <-ch:
		if !ok {
			t.Fatal("observation closed before expected emission")
		}
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for emission")
	}
	return reactive.Result[T]{}
}

func fullAnalysis(claimID string, completedAt int64, confidence float64) model.AnalysisResult {
	return model.AnalysisResult{
		ClaimID:         claimID,
		NormalizedClaim: model.NormalizedClaim{Text: "normalized claim text", Confidence: 0.9},
		Parameters: []model.AnalysisParameter{
			{Name: "timeframe", Value: "1900-2020", Confidence: 0.8},
			{Name: "region", Value: "global", Confidence: 0.7},
		},
		Patterns: []model.DiscoveredPattern{
			{Type: "trend", Description: "steady rise", Significance: 0.95},
		},
		ExecutiveSummary:    "Sea levels rose measurably.",
		StanceFraming:       "Descriptive, not normative.",
		SupportingTrends:    []string{"tide gauge data", "satellite altimetry"},
		CorrelationAnalysis: "Strong correlation with temperature records.",
		ComparativeMetrics: []model.ComparisonMetric{
			{Metric: "rise_cm", Value: 20, Baseline: 0},
		},
		ScenarioAdvantages: []model.Scenario{
			{ID: "s1", Description: "continued rise", Probability: 0.85},
		},
		StrategicRecommendation: "Plan for coastal adaptation.",
		ConfidenceScore:         confidence,
		Limitations:             []string{"regional variance"},
		DataSources:             []string{"NOAA", "NASA"},
		CompletedAt:             completedAt,
	}
}
