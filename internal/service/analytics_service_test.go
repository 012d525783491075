package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	statusCounts   []models.StatusCount
	categoryCounts []models.CategoryCount
	resolution     []models.ResolutionSample
	facultySamples []models.FacultyIssueSample
	trendSamples   []models.TrendSample
	lastTrendSince time.Time
}

func (m *mockAnalyticsRepo) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return m.statusCounts, nil
}

func (m *mockAnalyticsRepo) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	return m.categoryCounts, nil
}

func (m *mockAnalyticsRepo) ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error) {
	return m.resolution, nil
}

func (m *mockAnalyticsRepo) FacultyIssueSamples(ctx context.Context) ([]models.FacultyIssueSample, error) {
	return m.facultySamples, nil
}

func (m *mockAnalyticsRepo) TrendSamples(ctx context.Context, since time.Time) ([]models.TrendSample, error) {
	m.lastTrendSince = since
	return m.trendSamples, nil
}

func newAnalyticsService(repo *mockAnalyticsRepo) *AnalyticsService {
	return NewAnalyticsService(repo, nil, nil, time.Minute, zap.NewNop())
}

func TestAnalyticsRejectsNonAdmins(t *testing.T) {
	svc := newAnalyticsService(&mockAnalyticsRepo{})

	_, _, err := svc.StatusCounts(context.Background(), studentClaims("student-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestResolutionTimeZeroWhenNothingResolved(t *testing.T) {
	svc := newAnalyticsService(&mockAnalyticsRepo{})

	result, _, err := svc.ResolutionTime(context.Background(), adminClaims("admin-1"))
	require.NoError(t, err)
	assert.Zero(t, result.TotalResolved)
	assert.Zero(t, result.AverageTimeInHours)
}

func TestResolutionTimeAveragesAndRounds(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockAnalyticsRepo{resolution: []models.ResolutionSample{
		{IssueID: "i1", SubmittedAt: timePtr(base), ResolvedAt: timePtr(base.Add(2 * time.Hour))},
	}}
	svc := newAnalyticsService(repo)

	result, _, err := svc.ResolutionTime(context.Background(), adminClaims("admin-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalResolved)
	assert.Equal(t, 2.0, result.AverageTimeInHours)

	// 1h and 2h average to 1.5
	repo.resolution = append(repo.resolution, models.ResolutionSample{
		IssueID: "i2", SubmittedAt: timePtr(base), ResolvedAt: timePtr(base.Add(time.Hour)),
	})
	result, _, err = svc.ResolutionTime(context.Background(), adminClaims("admin-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalResolved)
	assert.Equal(t, 1.5, result.AverageTimeInHours)
}

func TestFacultyPerformanceRates(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockAnalyticsRepo{facultySamples: []models.FacultyIssueSample{
		{FacultyID: "f1", FacultyName: "Faculty One", IssueID: strPtr("i1"), AssignedAt: timePtr(base), ResolvedAt: timePtr(base.Add(3 * time.Hour))},
		{FacultyID: "f1", FacultyName: "Faculty One", IssueID: strPtr("i2")},
		{FacultyID: "f2", FacultyName: "Faculty Two"},
	}}
	svc := newAnalyticsService(repo)

	result, _, err := svc.FacultyPerformance(context.Background(), adminClaims("admin-1"))
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, 2, result[0].AssignedIssues)
	assert.Equal(t, 1, result[0].ResolvedIssues)
	assert.Equal(t, 50.0, result[0].ResolutionRate)
	assert.Equal(t, 3.0, result[0].AverageResolutionTimeInHours)

	// faculty with no assignments still appear, zeroed
	assert.Equal(t, "f2", result[1].Faculty.ID)
	assert.Zero(t, result[1].AssignedIssues)
	assert.Zero(t, result[1].ResolutionRate)
}

func TestTrendsWeekProducesEightDailyBuckets(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockAnalyticsRepo{trendSamples: []models.TrendSample{
		{IssueID: "i1", CreatedAt: now.Add(-2 * time.Hour)},
		{IssueID: "i2", CreatedAt: now.AddDate(0, 0, -3), ResolvedAt: timePtr(now.AddDate(0, 0, -1))},
	}}
	svc := newAnalyticsService(repo)
	svc.now = func() time.Time { return now }

	points, _, err := svc.Trends(context.Background(), adminClaims("admin-1"), models.TrendWeek)
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, "2026-03-03", points[0].Date)
	assert.Equal(t, "2026-03-10", points[7].Date)
	assert.Equal(t, 1, points[7].Created)
	assert.Equal(t, 1, points[4].Created)
	assert.Equal(t, 1, points[6].Resolved)
}

func TestTrendsYearStepsThirtyDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockAnalyticsRepo{trendSamples: []models.TrendSample{
		// falls between step dates, so it is never counted
		{IssueID: "i1", CreatedAt: now.AddDate(0, 0, -10)},
		// exactly on the newest step date
		{IssueID: "i2", CreatedAt: now.AddDate(0, 0, -5)},
	}}
	svc := newAnalyticsService(repo)
	svc.now = func() time.Time { return now }

	points, _, err := svc.Trends(context.Background(), adminClaims("admin-1"), models.TrendYear)
	require.NoError(t, err)
	require.Len(t, points, 13)

	var totalCreated int
	for _, p := range points {
		totalCreated += p.Created
	}
	assert.Equal(t, 1, totalCreated)
	assert.Equal(t, 1, points[12].Created)
}

func TestTrendsRejectsUnknownPeriod(t *testing.T) {
	svc := newAnalyticsService(&mockAnalyticsRepo{})

	_, _, err := svc.Trends(context.Background(), adminClaims("admin-1"), "decade")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func timePtr(t time.Time) *time.Time { return &t }
