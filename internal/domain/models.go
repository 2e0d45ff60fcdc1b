package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReviewJob is a registered asynchronous review job. The external job ID is
// opaque; polling resumes from it alone, nothing else survives a restart.
type ReviewJob struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ExternalJobID string          `db:"external_job_id" json:"external_job_id"`
	Name          string          `db:"name" json:"name"`
	State         JobState        `db:"state" json:"state"`
	OverallStatus Status          `db:"overall_status" json:"overall_status"`
	Progress      int             `db:"progress" json:"progress"`
	Summary       string          `db:"summary" json:"summary"`
	IssueCount    int             `db:"issue_count" json:"issue_count"`
	FailureReason string          `db:"failure_reason" json:"failure_reason,omitempty"`
	Result        json.RawMessage `db:"result" json:"result,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Material is the canonical unit of reviewable content, derived from a raw
// result payload. Expanded is presentation state only and defaults to false.
type Material struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Code      string      `json:"code,omitempty"`
	PageCount int         `json:"page_count"`
	Status    Status      `json:"status"`
	Expanded  bool        `json:"expanded"`
	Items     []Item      `json:"items"`
	Preview   *DocPreview `json:"preview,omitempty"`
}

// Item is a canonical sub-unit of a Material (one attachment or check point).
type Item struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Status     Status  `json:"status"`
	Doc        DocInfo `json:"doc"`
	Annotation string  `json:"annotation,omitempty"`
}

// DocInfo describes the renderable document behind an item.
type DocInfo struct {
	Type        DocType  `json:"type"`
	PageURLs    []string `json:"page_urls,omitempty"`
	DownloadURL string   `json:"download_url,omitempty"`
	TextContent string   `json:"text_content,omitempty"`
	MimeType    string   `json:"mime_type,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
	FileSize    int64    `json:"file_size,omitempty"`
}

// DocPreview is the optional preview-image descriptor for a material.
type DocPreview struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// AggregateResult is the overall outcome computed across all materials.
type AggregateResult struct {
	Status     Status `json:"status"`
	Progress   int    `json:"progress"`
	Summary    string `json:"summary"`
	IssueCount int    `json:"issue_count"`
}

// ReviewResult is the canonical result handed to presentation: the
// normalized materials plus their aggregate.
type ReviewResult struct {
	Materials []Material      `json:"materials"`
	Aggregate AggregateResult `json:"aggregate"`
}

// StatusSynonym maps one raw backend status word onto the canonical taxonomy.
type StatusSynonym struct {
	Raw    string `db:"raw" json:"raw"`
	Status Status `db:"status" json:"status"`
}
