package common

import "time"

// FactKind distinguishes event-centric facts from assertion-centric claims.
type FactKind string

const (
	FactWhat  FactKind = "what"
	FactClaim FactKind = "claim"
)

// FactRecord represents a single extracted fact. A fact is either an event
// (what happened) or a claim (what was asserted), with the people, places
// and timeframes it relates to carried as context.
//
// Importance and Confidence are the labels emitted by the extraction model
// ("high", "medium" or "low"); they map to numeric weights through
// ImportanceWeight and ConfidenceWeight.
type FactRecord struct {
	Kind       FactKind `json:"kind"`
	Text       string   `json:"text"`
	Who        []string `json:"related_who"`
	Where      []string `json:"related_where"`
	When       []string `json:"related_when"`
	Importance string   `json:"importance"`
	Confidence string   `json:"confidence"`
}

// FactSet is the ordered collection of facts extracted from one article.
// ParseError is set when the extraction model returned output that had to be
// coerced into an empty default shape; it is diagnostic only and never fatal.
type FactSet struct {
	Facts      []FactRecord `json:"facts"`
	ParseError string       `json:"parse_error,omitempty"`
}

// WhatFacts returns the event facts in order.
func (fs FactSet) WhatFacts() []FactRecord {
	return fs.byKind(FactWhat)
}

// Claims returns the claim facts in order.
func (fs FactSet) Claims() []FactRecord {
	return fs.byKind(FactClaim)
}

func (fs FactSet) byKind(kind FactKind) []FactRecord {
	out := make([]FactRecord, 0, len(fs.Facts))
	for _, f := range fs.Facts {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether the set contains no facts at all.
func (fs FactSet) IsEmpty() bool {
	return len(fs.Facts) == 0
}

// ImportanceWeight maps an importance label to its numeric weight.
func ImportanceWeight(label string) float64 {
	switch label {
	case "high":
		return 0.9
	case "low":
		return 0.3
	default:
		return 0.6
	}
}

// ConfidenceWeight maps a confidence label to its numeric weight.
func ConfidenceWeight(label string) float64 {
	switch label {
	case "high":
		return 0.9
	case "low":
		return 0.5
	default:
		return 0.7
	}
}

// ImportanceLabel converts a stored numeric weight back to its label.
func ImportanceLabel(weight float64) string {
	switch {
	case weight >= 0.8:
		return "high"
	case weight >= 0.5:
		return "medium"
	default:
		return "low"
	}
}

// ConfidenceLabel converts a stored numeric weight back to its label.
func ConfidenceLabel(weight float64) string {
	switch {
	case weight >= 0.8:
		return "high"
	case weight >= 0.6:
		return "medium"
	default:
		return "low"
	}
}

// Source type classifications, ordered by authority.
const (
	SourceOfficial    = "official"
	SourceNewsMajor   = "news_major"
	SourceNewsGeneral = "news_general"
	SourceBlog        = "blog"
	SourceSocial      = "social"
	SourceWiki        = "wiki"
)

// SourceTypeWeight returns the reliability weight of a source type for
// aggregate scoring. Unknown types get a neutral 0.5.
func SourceTypeWeight(sourceType string) float64 {
	switch sourceType {
	case SourceOfficial:
		return 1.0
	case SourceNewsMajor:
		return 0.8
	case SourceNewsGeneral:
		return 0.6
	case SourceBlog:
		return 0.4
	case SourceSocial:
		return 0.3
	default:
		return 0.5
	}
}

// SourceCandidate is a discovered source that may corroborate or refute the
// original article. Candidates are transient: they exist between discovery
// and comparison and are never persisted as-is.
type SourceCandidate struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	SourceType  string `json:"source_type"`
	SourceName  string `json:"source_name,omitempty"`
	Domain      string `json:"domain,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// MatchingFact records a fact pair that two sources agree on.
type MatchingFact struct {
	OriginalFact   string `json:"original_fact"`
	ComparisonFact string `json:"comparison_fact"`
	MatchStrength  string `json:"match_strength"` // strong | moderate
	Category       string `json:"category"`       // what | claim
	Confidence     string `json:"confidence,omitempty"`
}

// ConflictingFact records a fact pair that two sources disagree on.
type ConflictingFact struct {
	Original         string `json:"original"`
	Comparison       string `json:"comparison"`
	ConflictType     string `json:"conflict_type"`
	ConflictSeverity string `json:"conflict_severity"` // high | medium | low
	Category         string `json:"category"`          // what | claim
}

// UniqueFact is a fact present in only one of the two compared sources.
type UniqueFact struct {
	Fact         string `json:"fact"`
	Category     string `json:"category"`
	Significance string `json:"significance"`
}

// AnalysisDetails carries the comparison context that does not influence the
// accuracy score directly but is needed for reporting and aggregate weighting.
type AnalysisDetails struct {
	UniqueToOriginal   []UniqueFact `json:"unique_to_original"`
	UniqueToComparison []UniqueFact `json:"unique_to_comparison"`
	AnalysisNotes      string       `json:"analysis_notes,omitempty"`
	RelevanceScore     float64      `json:"relevance_score"`
	SourceType         string       `json:"source_type"`
	SourceDomain       string       `json:"source_domain,omitempty"`
}

// Analysis is the scored comparison between the original article and one
// comparison source. There is at most one Analysis per (original, comparison)
// article pair; re-analysis reuses the stored record instead of recomputing.
type Analysis struct {
	ID                  int64             `json:"id"`
	OriginalArticleID   int64             `json:"original_article_id"`
	ComparisonArticleID int64             `json:"comparison_article_id"`
	AccuracyScore       float64           `json:"accuracy_score"`
	MatchingFacts       []MatchingFact    `json:"matching_facts"`
	ConflictingFacts    []ConflictingFact `json:"conflicting_facts"`
	Details             AnalysisDetails   `json:"analysis_details"`
	CreatedAt           time.Time         `json:"created_at"`
}

// ScoreStats summarizes accuracy scores of one source type.
type ScoreStats struct {
	Count        int       `json:"count"`
	AverageScore float64   `json:"average_score"`
	Scores       []float64 `json:"scores"`
}

// FactVerification totals matching and conflicting facts across all analyses.
type FactVerification struct {
	TotalMatchingFacts    int     `json:"total_matching_facts"`
	TotalConflictingFacts int     `json:"total_conflicting_facts"`
	VerificationRatio     float64 `json:"verification_ratio"`
}

// DetailedResults is the typed breakdown attached to a Report.
type DetailedResults struct {
	ScoreBreakdown     map[string]ScoreStats `json:"score_breakdown"`
	SourceDistribution map[string]int        `json:"source_distribution"`
	FactVerification   FactVerification      `json:"fact_verification_details"`
}

// Report is the aggregate fact-checking verdict for one original article.
// The live report for an article is the most recently updated one; each
// merge writes a superseding row whose ParentReportID points at the row
// it replaced, so lineage stays walkable.
type Report struct {
	ID                int64           `json:"id"`
	OriginalArticleID int64           `json:"original_article_id"`
	OverallScore      float64         `json:"overall_score"`
	ConfidenceLevel   string          `json:"confidence_level"` // high | medium | low
	SourcesChecked    int             `json:"sources_checked"`
	Summary           string          `json:"summary"`
	Recommendations   string          `json:"recommendations"`
	Detailed          DetailedResults `json:"detailed_results"`
	IsMerged          bool            `json:"is_merged"`
	MergeCount        int             `json:"merge_count"`
	AnalysisAttempts  int             `json:"analysis_attempts"`
	ParentReportID    *int64          `json:"parent_report_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// Article is a fetched or user-provided document. The original article and
// every comparison source get an Article row; facts and analyses reference
// articles by id.
type Article struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Content      string    `json:"content,omitempty"`
	SourceType   string    `json:"source_type"`
	SourceDomain string    `json:"source_domain,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProvidedURL is the placeholder URL stored for articles submitted as
// raw text rather than fetched from the web.
const UserProvidedURL = "user_provided_text"
