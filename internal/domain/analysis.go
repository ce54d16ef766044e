package domain

import "time"

// Analysis statuses persisted with each run.
const (
	AnalysisOK               = "ok"
	AnalysisSummarizerFailed = "summarizer_failed"
)

// Analysis is one completed analyze run: the inputs, the synthesized report
// and a coarse status. On SummarizerFailed the Report holds a displayable
// error message instead of the model's output.
type Analysis struct {
	ID          int64
	Target      string
	Competitor  *string
	Region      string
	Language    string
	TargetCount int
	Status      string
	Report      string
	CreatedAt   time.Time
}

// StoredReview is a review persisted under an analysis, keyed by entity label
// and its position in source order.
type StoredReview struct {
	AnalysisID int64
	Entity     string
	Position   int
	Rating     *float64
	Author     *string
	Text       string
	Date       *string
	RawJSON    []byte
}
