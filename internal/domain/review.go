package domain

// ReviewRecord is a single customer review as returned by the source feed.
// Optional fields stay nil when the source omits them.
type ReviewRecord struct {
	SourceID *string
	Author   *string
	Rating   *float64
	Text     string
	Date     *string
	RawJSON  []byte
}

// Negative reports whether the review counts toward the negative subset.
// An absent rating is not negative.
func (r ReviewRecord) Negative() bool {
	return r.Rating != nil && *r.Rating <= 3
}

// FetchRequest describes one bounded fetch against the review source.
type FetchRequest struct {
	PlaceID     string
	Region      string
	Language    string
	TargetCount int
	PageSize    int
}

type FetchStatus string

const (
	FetchCompleted FetchStatus = "completed-at-target"
	FetchExhausted FetchStatus = "exhausted-source"
	FetchErrored   FetchStatus = "errored"
)

// FetchResult holds the accumulated records and the terminal status of a fetch.
// On FetchErrored, Records still carries everything gathered before the failure.
type FetchResult struct {
	Records []ReviewRecord
	Status  FetchStatus
	Pages   int
}

// ReviewPageQuery is one page request against the review source. An empty
// PageToken means the first page; continuation pages carry both the token and
// the original place/region/language filters.
type ReviewPageQuery struct {
	PlaceID   string
	Region    string
	Language  string
	PageToken string
}
