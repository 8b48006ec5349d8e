package model

import "strconv"

// AnalysisResult is the full output of one completed analysis of a claim.
// Re-analysis of the same claim produces a new result, never a mutation of
// an old one. Results reference their claim by ID only; deleting a claim
// does not delete its results.
type AnalysisResult struct {
	ID                      string              `json:"id" validate:"required"`
	ClaimID                 string              `json:"claim_id" validate:"required"`
	NormalizedClaim         NormalizedClaim     `json:"normalized_claim"`
	Parameters              []AnalysisParameter `json:"parameters" validate:"dive"`
	Patterns                []DiscoveredPattern `json:"patterns" validate:"dive"`
	ExecutiveSummary        string              `json:"executive_summary"`
	StanceFraming           string              `json:"stance_framing"`
	SupportingTrends        []string            `json:"supporting_trends"`
	CorrelationAnalysis     string              `json:"correlation_analysis"`
	ComparativeMetrics      []ComparisonMetric  `json:"comparative_metrics"`
	ScenarioAdvantages      []Scenario          `json:"scenario_advantages" validate:"dive"`
	StrategicRecommendation string              `json:"strategic_recommendation"`
	ConfidenceScore         float64             `json:"confidence_score" validate:"gte=0,lte=1"`
	Limitations             []string            `json:"limitations"`
	DataSources             []string            `json:"data_sources"`
	CompletedAt             int64               `json:"completed_at" validate:"gt=0"` // When the analysis finished
	CreatedAt               int64               `json:"created_at"`                   // When the row was written; may lag CompletedAt
}

// NormalizedClaim is the analysis engine's canonical restatement of the claim
type NormalizedClaim struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// AnalysisParameter is one named input the analysis was conditioned on
type AnalysisParameter struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// DiscoveredPattern is a pattern the analysis surfaced in the claim's domain
type DiscoveredPattern struct {
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Significance float64 `json:"significance"`
}

// ComparisonMetric compares an observed value against a baseline
type ComparisonMetric struct {
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
	Baseline float64 `json:"baseline"`
}

// Scenario is a possible outcome with an estimated probability
type Scenario struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
}

// AnalysisID derives the result's primary key from its claim and completion
// time, so each completion event maps to exactly one row.
func AnalysisID(claimID string, completedAt int64) string {
	return claimID + "_" + strconv.FormatInt(completedAt, 10)
}
