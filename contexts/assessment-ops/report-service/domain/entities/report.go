// Package entities holds the report aggregate: the report itself, the
// vulnerability findings rolled up into its summary, and the review
// notes left by client team members.
package entities

import "time"

// Report lifecycle states.
const (
	StatusDraft    = "Draft"
	StatusInReview = "In Review"
	StatusFinal    = "Final"
)

// Overall risk ratings derived from the findings summary.
const (
	RatingGood     = "Good"
	RatingNotGood  = "Not Good"
	RatingCritical = "Critical"
)

// Finding severities, highest first.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityInfo     = "Info"
)

// Finding remediation states.
const (
	FindingStatusNew      = "New"
	FindingStatusReopened = "Reopened"
	FindingStatusNotFixed = "Not Fixed"
	FindingStatusFixed    = "Fixed"
)

// Note classification defaults.
const (
	NoteTypeReview     = "Review"
	NotePriorityMedium = "Medium"
	NoteStatusOpen     = "Open"
)

// Report is an assessment report tied to one asset. The summary fields
// (TotalFindings, SeverityBreakdown, OverallRiskRating) are derived
// from the findings and recomputed on every finding change.
type Report struct {
	ID                int64
	ReportTitle       string
	AssetID           int64
	TesterName        string
	TestStartDate     time.Time
	TestEndDate       time.Time
	TotalTestDuration string
	ExecutiveSummary  string

	TotalFindings     int
	SeverityBreakdown map[string]int
	OverallRiskRating string
	CurrentStatus     string

	PreparedBy          string
	ReviewedBy          string
	ReportFinalizedDate *time.Time
	NextScheduledTest   *time.Time
	DistributionEmails  []string

	CreatedByID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VulnerabilityFinding is a single vulnerability documented under a
// report. FindingID is the externally visible identifier.
type VulnerabilityFinding struct {
	ID                  int64
	ReportID            int64
	FindingID           string
	VulnerabilityTitle  string
	Severity            string
	Impact              string
	Likelihood          string
	Category            string
	VulnerabilityStatus string
	NumberOfOccurrences int
	AffectedURLs        []string
	Description         string
	ProofOfConcept      string
	Recommendation      string
	References          []string
	AdditionalNotes     string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReportNote is a client-side review note on a report.
type ReportNote struct {
	ID          int64
	ReportID    int64
	AssetID     int64
	AuthorID    int64
	NoteContent string
	NoteType    string
	Priority    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FindingsSummary is the derived rollup stored on the report.
type FindingsSummary struct {
	Total     int
	Breakdown map[string]int
	Rating    string
}

// Summarize computes the findings rollup. A single critical finding
// marks the report Critical; any high finding, or more than two medium
// findings, marks it Not Good.
func Summarize(findings []VulnerabilityFinding) FindingsSummary {
	breakdown := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	for _, finding := range findings {
		switch finding.Severity {
		case SeverityCritical:
			breakdown["critical"]++
		case SeverityHigh:
			breakdown["high"]++
		case SeverityMedium:
			breakdown["medium"]++
		case SeverityLow:
			breakdown["low"]++
		case SeverityInfo:
			breakdown["info"]++
		}
	}

	rating := RatingGood
	switch {
	case breakdown["critical"] > 0:
		rating = RatingCritical
	case breakdown["high"] > 0:
		rating = RatingNotGood
	case breakdown["medium"] > 2:
		rating = RatingNotGood
	}

	return FindingsSummary{Total: len(findings), Breakdown: breakdown, Rating: rating}
}

func ValidReportStatus(value string) bool {
	switch value {
	case StatusDraft, StatusInReview, StatusFinal:
		return true
	}
	return false
}

func ValidSeverity(value string) bool {
	switch value {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

func ValidImpact(value string) bool {
	switch value {
	case "High", "Medium", "Low":
		return true
	}
	return false
}

func ValidFindingStatus(value string) bool {
	switch value {
	case FindingStatusNew, FindingStatusReopened, FindingStatusNotFixed, FindingStatusFixed:
		return true
	}
	return false
}

func ValidNoteType(value string) bool {
	switch value {
	case NoteTypeReview, "Feedback", "Question", "Concern":
		return true
	}
	return false
}

func ValidNotePriority(value string) bool {
	switch value {
	case "Low", "Medium", "High", "Critical":
		return true
	}
	return false
}

func ValidNoteStatus(value string) bool {
	switch value {
	case NoteStatusOpen, "Addressed", "Closed":
		return true
	}
	return false
}
