package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"reviewd/internal/config"
	"reviewd/internal/domain"
	"reviewd/internal/port"
)

// ReportService serves rendered review reports. The engine only constructs
// upstream download URLs; archiving fetches the stream once and parks it in
// object storage so repeated downloads don't hit the backend.
type ReportService interface {
	DownloadURL(externalJobID string, format domain.ReportFormat) string
	Archive(ctx context.Context, jobID uuid.UUID, externalJobID string, format domain.ReportFormat) (string, error)
}

type reportService struct {
	backend port.ReviewBackend
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewReportService creates a new ReportService implementation.
func NewReportService(backend port.ReviewBackend, storage port.ObjectStorage, cfg *config.S3Config) ReportService {
	return &reportService{backend: backend, storage: storage, cfg: cfg}
}

func (s *reportService) DownloadURL(externalJobID string, format domain.ReportFormat) string {
	return s.backend.ReportURL(externalJobID, format)
}

// Archive streams the rendered report into the archive bucket and returns
// a presigned download URL.
func (s *reportService) Archive(ctx context.Context, jobID uuid.UUID, externalJobID string, format domain.ReportFormat) (string, error) {
	if !domain.ValidReportFormat(format) {
		return "", domain.ErrInvalidReportFormat
	}

	stream, err := s.backend.FetchReport(ctx, externalJobID, format)
	if err != nil {
		return "", err
	}
	defer func() { _ = stream.Body.Close() }()

	contentType := stream.ContentType
	if contentType == "" {
		if format == domain.ReportFormatPDF {
			contentType = "application/pdf"
		} else {
			contentType = "text/html"
		}
	}

	key := fmt.Sprintf("reports/%s/report.%s", jobID, format)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        stream.Body,
		ContentType: contentType,
		Size:        stream.Size,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning report: %w", err)
	}
	return url, nil
}
