package port

import (
	"context"
	"encoding/json"
	"io"

	"reviewd/internal/domain"
)

// JobStatus is the raw lifecycle report from the upstream backend for one
// poll tick.
type JobStatus struct {
	State   domain.JobState
	Message string
}

// ReportStream is an open download of a rendered report. The caller owns
// Body and must close it; the engine never parses the stream.
type ReportStream struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// ReviewBackend abstracts the upstream recognition/rule services. An
// authentication demand (HTTP 401 or a redirect-marker payload) surfaces
// as domain.ErrAuthRequired from any method, uniformly with transport
// failures.
type ReviewBackend interface {
	// Status fetches the current lifecycle state of a job.
	Status(ctx context.Context, jobID string) (*JobStatus, error)

	// Result fetches the raw result payload of a job. The payload shape
	// varies by backend version; callers normalize it.
	Result(ctx context.Context, jobID string) (json.RawMessage, error)

	// ReportURL constructs the download URL for a rendered report.
	ReportURL(jobID string, format domain.ReportFormat) string

	// FetchReport opens the report download stream.
	FetchReport(ctx context.Context, jobID string, format domain.ReportFormat) (*ReportStream, error)
}
