package store

// Row is a record stored under its primary key within one family.
type Row interface {
	Key() string
}

// ClaimRow is the physical layout of one claim. Columns are flat scalars;
// the store owns this shape and nothing above the repositories sees it.
type ClaimRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Context     string `json:"context"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Key returns the primary key.
func (r ClaimRow) Key() string { return r.ID }

// AnalysisRow is the physical layout of one analysis result. Composite
// fields are stored as opaque serialized text in the *Json columns; their
// internal shape belongs to the codec and the repositories, never to the
// store.
type AnalysisRow struct {
	ID                      string  `json:"id"`
	ClaimID                 string  `json:"claimId"`
	ExecutiveSummary        string  `json:"executiveSummary"`
	StanceFraming           string  `json:"stanceFraming"`
	StrategicRecommendation string  `json:"strategicRecommendation"`
	ConfidenceScore         float64 `json:"confidenceScore"`
	NormalizedClaimJson     string  `json:"normalizedClaimJson"`
	ParametersJson          string  `json:"parametersJson"`
	PatternsJson            string  `json:"patternsJson"`
	SupportingTrendsJson    string  `json:"supportingTrendsJson"`
	CorrelationAnalysis     string  `json:"correlationAnalysis"`
	ComparativeMetricsJson  string  `json:"comparativeMetricsJson"`
	ScenarioAdvantagesJson  string  `json:"scenarioAdvantagesJson"`
	LimitationsJson         string  `json:"limitationsJson"`
	DataSourcesJson         string  `json:"dataSourcesJson"`
	CompletedAt             int64   `json:"completedAt"`
	CreatedAt               int64   `json:"createdAt"`
}

// Key returns the primary key.
func (r AnalysisRow) Key() string { return r.ID }
