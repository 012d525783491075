package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
	"github.com/noah-isme/campus-issue-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportFile is a rendered analytics report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService renders the analytics rollups as downloadable CSV or PDF
// reports. Authorization follows the analytics service (admin only).
type ReportService struct {
	analytics *AnalyticsService
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(analytics *AnalyticsService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{analytics: analytics, csv: csv, pdf: pdf, logger: logger}
}

// Export builds the status and category rollups and renders them in the
// requested format.
func (s *ReportService) Export(ctx context.Context, actor *models.JWTClaims, format string) (*ReportFile, error) {
	statusCounts, _, err := s.analytics.StatusCounts(ctx, actor)
	if err != nil {
		return nil, err
	}
	categoryCounts, _, err := s.analytics.CategoryCounts(ctx, actor)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"Section", "Name", "Count"}}
	for _, count := range statusCounts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Section": "Status",
			"Name":    string(count.Status),
			"Count":   strconv.Itoa(count.Count),
		})
	}
	for _, count := range categoryCounts {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Section": "Category",
			"Name":    string(count.Category),
			"Count":   strconv.Itoa(count.Count),
		})
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("issue-analytics-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        payload,
		}, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Issue Analytics")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("issue-analytics-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        payload,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}
