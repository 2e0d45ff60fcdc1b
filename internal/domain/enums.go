package domain

// Status is the canonical 4-value review status taxonomy. Every backend
// status vocabulary is mapped onto these values before anything downstream
// sees it; raw backend strings never leak into the canonical model.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusHasIssues Status = "hasIssues"
	StatusError     Status = "error"
	StatusLoading   Status = "loading"
)

// severityRank orders statuses worst-first for aggregation. A material takes
// the worst status among its items.
var severityRank = map[Status]int{
	StatusError:     3,
	StatusHasIssues: 2,
	StatusLoading:   1,
	StatusPassed:    0,
}

// Worse reports whether s is more severe than other.
func (s Status) Worse(other Status) bool {
	return severityRank[s] > severityRank[other]
}

// JobState is the lifecycle state of an asynchronous review job.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether no further state transition can occur.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// DocType classifies the renderable document behind an item.
type DocType string

const (
	DocTypeImage DocType = "image"
	DocTypePDF   DocType = "pdf"
	DocTypeText  DocType = "text"
	DocTypeFile  DocType = "file"
	DocTypeNone  DocType = "none"
)

// docTypeByExtension maps lowercased file extensions (without dot) to DocType.
var docTypeByExtension = map[string]DocType{
	"png":  DocTypeImage,
	"jpg":  DocTypeImage,
	"jpeg": DocTypeImage,
	"gif":  DocTypeImage,
	"bmp":  DocTypeImage,
	"webp": DocTypeImage,
	"pdf":  DocTypePDF,
	"txt":  DocTypeText,
}

// DocTypeForExtension returns the DocType for a file extension, defaulting
// to DocTypeFile for anything unrecognized and DocTypeNone for empty input.
func DocTypeForExtension(ext string) DocType {
	if ext == "" {
		return DocTypeNone
	}
	if t, ok := docTypeByExtension[ext]; ok {
		return t
	}
	return DocTypeFile
}

// ReportFormat identifies a downloadable report rendering.
type ReportFormat string

const (
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatHTML ReportFormat = "html"
)

// ValidReportFormat reports whether the given format is supported.
func ValidReportFormat(f ReportFormat) bool {
	return f == ReportFormatPDF || f == ReportFormatHTML
}
