// Package document renders assessment reports into downloadable
// documents.
package document

import (
	"fmt"
	"strings"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/ports"
)

// TextRenderer produces a plain-text rendition of the report. It is
// the default renderer; richer formats can be slotted in behind the
// same port.
type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) Render(doc ports.ReportDocument) ([]byte, error) {
	var b strings.Builder

	line := strings.Repeat("=", 72)
	fmt.Fprintf(&b, "%s\nSECURITY ASSESSMENT REPORT\n%s\n\n", line, line)

	fmt.Fprintf(&b, "Title:            %s\n", doc.Report.ReportTitle)
	fmt.Fprintf(&b, "Asset:            %s / %s\n", doc.Asset.ProjectName, doc.Asset.AssetName)
	if doc.Asset.AssetURL != "" {
		fmt.Fprintf(&b, "Target URL:       %s\n", doc.Asset.AssetURL)
	}
	fmt.Fprintf(&b, "Status:           %s\n", doc.Report.CurrentStatus)
	fmt.Fprintf(&b, "Overall Risk:     %s\n", ratingOrPending(doc.Report.OverallRiskRating))
	fmt.Fprintf(&b, "Test Window:      %s to %s\n", formatDate(doc.Report.TestStartDate), formatDate(doc.Report.TestEndDate))
	if doc.Report.TotalTestDuration != "" {
		fmt.Fprintf(&b, "Duration:         %s\n", doc.Report.TotalTestDuration)
	}
	fmt.Fprintf(&b, "Tester:           %s\n", doc.Report.TesterName)
	if doc.Report.PreparedBy != "" {
		fmt.Fprintf(&b, "Prepared By:      %s\n", doc.Report.PreparedBy)
	}
	if doc.Report.ReviewedBy != "" {
		fmt.Fprintf(&b, "Reviewed By:      %s\n", doc.Report.ReviewedBy)
	}
	if doc.ProjectOwner != nil {
		fmt.Fprintf(&b, "Project Owner:    %s\n", doc.ProjectOwner.FullName())
	}
	if doc.Report.ReportFinalizedDate != nil {
		fmt.Fprintf(&b, "Finalized:        %s\n", formatDate(*doc.Report.ReportFinalizedDate))
	}

	if doc.Report.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "\nEXECUTIVE SUMMARY\n%s\n%s\n", strings.Repeat("-", 72), doc.Report.ExecutiveSummary)
	}

	fmt.Fprintf(&b, "\nFINDINGS SUMMARY\n%s\n", strings.Repeat("-", 72))
	fmt.Fprintf(&b, "Total Findings:   %d\n", doc.Report.TotalFindings)
	for _, severity := range []string{"critical", "high", "medium", "low", "info"} {
		fmt.Fprintf(&b, "  %-10s %d\n", capitalize(severity)+":", doc.Report.SeverityBreakdown[severity])
	}

	for i, finding := range doc.Findings {
		fmt.Fprintf(&b, "\nFINDING %d: %s\n%s\n", i+1, finding.VulnerabilityTitle, strings.Repeat("-", 72))
		fmt.Fprintf(&b, "ID:               %s\n", finding.FindingID)
		fmt.Fprintf(&b, "Severity:         %s\n", finding.Severity)
		fmt.Fprintf(&b, "Impact:           %s\n", finding.Impact)
		fmt.Fprintf(&b, "Likelihood:       %s\n", finding.Likelihood)
		if finding.Category != "" {
			fmt.Fprintf(&b, "Category:         %s\n", finding.Category)
		}
		fmt.Fprintf(&b, "Status:           %s\n", finding.VulnerabilityStatus)
		fmt.Fprintf(&b, "Occurrences:      %d\n", finding.NumberOfOccurrences)
		if len(finding.AffectedURLs) > 0 {
			fmt.Fprintf(&b, "Affected URLs:    %s\n", strings.Join(finding.AffectedURLs, ", "))
		}
		if finding.Description != "" {
			fmt.Fprintf(&b, "\nDescription:\n%s\n", finding.Description)
		}
		if finding.ProofOfConcept != "" {
			fmt.Fprintf(&b, "\nProof of Concept:\n%s\n", finding.ProofOfConcept)
		}
		if finding.Recommendation != "" {
			fmt.Fprintf(&b, "\nRecommendation:\n%s\n", finding.Recommendation)
		}
		if len(finding.References) > 0 {
			fmt.Fprintf(&b, "\nReferences:\n")
			for _, ref := range finding.References {
				fmt.Fprintf(&b, "  - %s\n", ref)
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\nEnd of report.\n", line)
	return []byte(b.String()), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func ratingOrPending(rating string) string {
	if rating == "" {
		return "Pending"
	}
	return rating
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
