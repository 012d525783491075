package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

func newReportService(repo *mockAnalyticsRepo) *ReportService {
	return NewReportService(newAnalyticsService(repo), nil, nil, zap.NewNop())
}

func TestExportCSVContainsRollups(t *testing.T) {
	repo := &mockAnalyticsRepo{
		statusCounts:   []models.StatusCount{{Status: models.StatusSubmitted, Count: 3}},
		categoryCounts: []models.CategoryCount{{Category: models.CategoryGradeDispute, Count: 2}},
	}
	svc := newReportService(repo)

	file, err := svc.Export(context.Background(), adminClaims("admin-1"), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	body := string(file.Data)
	assert.Contains(t, body, "SUBMITTED")
	assert.Contains(t, body, "GRADE_DISPUTE")
}

func TestExportPDFProducesDocument(t *testing.T) {
	repo := &mockAnalyticsRepo{
		statusCounts: []models.StatusCount{{Status: models.StatusResolved, Count: 1}},
	}
	svc := newReportService(repo)

	file, err := svc.Export(context.Background(), adminClaims("admin-1"), "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, len(file.Data) > 0)
	assert.Equal(t, "%PDF", string(file.Data[:4]))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newReportService(&mockAnalyticsRepo{})

	_, err := svc.Export(context.Background(), adminClaims("admin-1"), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRequiresAdmin(t *testing.T) {
	svc := newReportService(&mockAnalyticsRepo{})

	_, err := svc.Export(context.Background(), studentClaims("student-1"), "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
