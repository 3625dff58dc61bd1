package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserRefData is the embedded user summary on report payloads.
type UserRefData struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// AssetRefData is the embedded asset summary on report payloads.
type AssetRefData struct {
	ID          int64  `json:"id"`
	ProjectName string `json:"projectName"`
	AssetName   string `json:"assetName"`
	AssetURL    string `json:"assetUrl,omitempty"`
}

type ReportData struct {
	ID                int64         `json:"id"`
	ReportTitle       string        `json:"reportTitle"`
	AssociatedAsset   *AssetRefData `json:"associatedAsset,omitempty"`
	TesterName        string        `json:"testerName"`
	TestStartDate     string        `json:"testStartDate"`
	TestEndDate       string        `json:"testEndDate"`
	TotalTestDuration string        `json:"totalTestDuration,omitempty"`
	ExecutiveSummary  string        `json:"executiveSummary,omitempty"`

	TotalFindings     int            `json:"totalFindings"`
	SeverityBreakdown map[string]int `json:"severityBreakdown"`
	OverallRiskRating string         `json:"overallRiskRating,omitempty"`
	CurrentStatus     string         `json:"currentStatus"`

	PreparedBy          string   `json:"preparedBy,omitempty"`
	ReviewedBy          string   `json:"reviewedBy,omitempty"`
	ReportFinalizedDate string   `json:"reportFinalizedDate,omitempty"`
	NextScheduledTest   string   `json:"nextScheduledTest,omitempty"`
	DistributionEmails  []string `json:"distributionEmails"`

	CreatedBy *UserRefData `json:"createdBy,omitempty"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

type CreateReportRequest struct {
	ReportTitle        string   `json:"reportTitle"`
	AssociatedAssetID  int64    `json:"associatedAssetId"`
	TestStartDate      string   `json:"testStartDate"`
	TestEndDate        string   `json:"testEndDate"`
	TotalTestDuration  string   `json:"totalTestDuration,omitempty"`
	ExecutiveSummary   string   `json:"executiveSummary,omitempty"`
	NextScheduledTest  string   `json:"nextScheduledTest,omitempty"`
	DistributionEmails []string `json:"distributionEmails,omitempty"`
}

type UpdateReportRequest struct {
	ReportTitle        *string  `json:"reportTitle,omitempty"`
	TestStartDate      *string  `json:"testStartDate,omitempty"`
	TestEndDate        *string  `json:"testEndDate,omitempty"`
	TotalTestDuration  *string  `json:"totalTestDuration,omitempty"`
	ExecutiveSummary   *string  `json:"executiveSummary,omitempty"`
	CurrentStatus      *string  `json:"currentStatus,omitempty"`
	PreparedBy         *string  `json:"preparedBy,omitempty"`
	ReviewedBy         *string  `json:"reviewedBy,omitempty"`
	NextScheduledTest  *string  `json:"nextScheduledTest,omitempty"`
	DistributionEmails []string `json:"distributionEmails,omitempty"`
}

type ReportResponse struct {
	Status string     `json:"status"`
	Data   ReportData `json:"data"`
}

type ReportListResponse struct {
	Status string       `json:"status"`
	Data   []ReportData `json:"data"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type FindingData struct {
	ID                  int64    `json:"id"`
	ReportID            int64    `json:"reportId"`
	FindingID           string   `json:"findingId"`
	VulnerabilityTitle  string   `json:"vulnerabilityTitle"`
	Severity            string   `json:"severity"`
	Impact              string   `json:"impact"`
	Likelihood          string   `json:"likelihood"`
	Category            string   `json:"category,omitempty"`
	VulnerabilityStatus string   `json:"vulnerabilityStatus"`
	NumberOfOccurrences int      `json:"numberOfOccurrences"`
	AffectedURLs        []string `json:"affectedUrls"`
	Description         string   `json:"description,omitempty"`
	ProofOfConcept      string   `json:"proofOfConcept,omitempty"`
	Recommendation      string   `json:"recommendation,omitempty"`
	References          []string `json:"references"`
	AdditionalNotes     string   `json:"additionalNotes,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

type CreateFindingRequest struct {
	VulnerabilityTitle  string   `json:"vulnerabilityTitle"`
	Severity            string   `json:"severity"`
	Impact              string   `json:"impact"`
	Likelihood          string   `json:"likelihood"`
	Category            string   `json:"category,omitempty"`
	VulnerabilityStatus string   `json:"vulnerabilityStatus,omitempty"`
	NumberOfOccurrences int      `json:"numberOfOccurrences,omitempty"`
	AffectedURLs        []string `json:"affectedUrls,omitempty"`
	Description         string   `json:"description,omitempty"`
	ProofOfConcept      string   `json:"proofOfConcept,omitempty"`
	Recommendation      string   `json:"recommendation,omitempty"`
	References          []string `json:"references,omitempty"`
	AdditionalNotes     string   `json:"additionalNotes,omitempty"`
}

type UpdateFindingRequest struct {
	VulnerabilityTitle  *string  `json:"vulnerabilityTitle,omitempty"`
	Severity            *string  `json:"severity,omitempty"`
	Impact              *string  `json:"impact,omitempty"`
	Likelihood          *string  `json:"likelihood,omitempty"`
	Category            *string  `json:"category,omitempty"`
	VulnerabilityStatus *string  `json:"vulnerabilityStatus,omitempty"`
	NumberOfOccurrences *int     `json:"numberOfOccurrences,omitempty"`
	AffectedURLs        []string `json:"affectedUrls,omitempty"`
	Description         *string  `json:"description,omitempty"`
	ProofOfConcept      *string  `json:"proofOfConcept,omitempty"`
	Recommendation      *string  `json:"recommendation,omitempty"`
	References          []string `json:"references,omitempty"`
	AdditionalNotes     *string  `json:"additionalNotes,omitempty"`
}

type FindingResponse struct {
	Status string      `json:"status"`
	Data   FindingData `json:"data"`
}

type FindingListResponse struct {
	Status string        `json:"status"`
	Data   []FindingData `json:"data"`
}

type NoteData struct {
	ID          int64        `json:"id"`
	ReportID    int64        `json:"reportId"`
	AssetID     int64        `json:"assetId"`
	Author      *UserRefData `json:"author,omitempty"`
	NoteContent string       `json:"noteContent"`
	NoteType    string       `json:"noteType"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

type CreateNoteRequest struct {
	AssetID     int64  `json:"assetId"`
	NoteContent string `json:"noteContent"`
	NoteType    string `json:"noteType,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type UpdateNoteRequest struct {
	NoteContent *string `json:"noteContent,omitempty"`
	NoteType    *string `json:"noteType,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type NoteResponse struct {
	Status string   `json:"status"`
	Data   NoteData `json:"data"`
}

type NoteListResponse struct {
	Status string     `json:"status"`
	Data   []NoteData `json:"data"`
}
