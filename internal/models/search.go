package models

// Search method tags. A SearchCandidate carries the method that produced it;
// a RankedResult carries the method that won the merge.
const (
	MethodExact    = "exact"
	MethodFuzzy    = "fuzzy"
	MethodFullText = "fulltext"
	MethodSemantic = "semantic"
	MethodHybrid   = "hybrid"
	MethodAuto     = "auto"
)

// Verse is one searchable unit of text: a verse in one language, or a
// translation of a verse. Verses are read-only to the search core; ingestion
// owns their lifecycle.
type Verse struct {
	ID       int64  `json:"id" db:"id"`
	Language string `json:"language" db:"language"`
	Chapter  int    `json:"chapter" db:"chapter"`
	Seq      int    `json:"seq" db:"seq"`
	Text     string `json:"text" db:"text"`
}

// ScoredVerse is a verse with the raw score assigned by one matcher. Raw
// scores are engine-specific and not comparable across matchers until
// normalized.
type ScoredVerse struct {
	Verse
	Score float64 `json:"score" db:"score"`
}

// SearchCandidate is one matcher's vote for a verse. Candidates exist only
// within the lifetime of a single query.
type SearchCandidate struct {
	VerseID int64   `json:"verse_id"`
	Score   float64 `json:"score"`
	Method  string  `json:"method"`
}

// RankedResult is one entry of the final merged result list.
type RankedResult struct {
	VerseID       int64              `json:"verse_id"`
	Language      string             `json:"language"`
	Chapter       int                `json:"chapter"`
	Seq           int                `json:"seq"`
	Text          string             `json:"text"`
	CombinedScore float64            `json:"combined_score"`
	WinningMethod string             `json:"winning_method"`
	MethodScores  map[string]float64 `json:"method_scores"`
}

// SearchRequest is the request for POST /search.
type SearchRequest struct {
	Query    string `json:"query" validate:"required"`
	Language string `json:"language" validate:"required"`
	Method   string `json:"method"`
	Limit    int    `json:"limit" validate:"min=0,max=100"`
}

// SearchResponse is the response for POST /search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Method  string         `json:"method"`
	Results []RankedResult `json:"results"`
}
